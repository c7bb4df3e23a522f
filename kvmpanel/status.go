package main

import (
	"fmt"
	"image/color"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/kvmswitch/pkg/events"
	"github.com/itohio/kvmswitch/pkg/kvm"
	"github.com/itohio/kvmswitch/pkg/led"
)

// refreshInterval throttles pixel and scope updates to ~30 FPS.
const refreshInterval = 33 * time.Millisecond

// createStatusBar creates the labels showing the switch state and the
// latest notification.
func createStatusBar(p *panel) fyne.CanvasObject {
	p.targetLbl = widget.NewLabel("Target: -")
	p.mouseLbl = widget.NewLabel("Mouse middle: -")
	p.ledLbl = widget.NewLabel("LED: -")
	p.eventLbl = widget.NewLabel("")

	return container.NewBorder(
		nil,
		nil,
		container.NewHBox(p.targetLbl, p.mouseLbl, p.ledLbl),
		nil,
		p.eventLbl,
	)
}

// subscribe shows bus notifications in the status bar. Handlers run on the
// bus goroutine.
func (p *panel) subscribe() {
	p.bus.Subscribe(func(e events.SwitchedEvent) {
		p.notify(fmt.Sprintf("Switched to %s", e.Target))
	})
	p.bus.Subscribe(func(e events.FeatureToggledEvent) {
		p.notify(fmt.Sprintf("%s %s", e.Feature, onOff(e.Enabled)))
	})
	p.bus.Subscribe(func(e events.RejectedEvent) {
		p.notify(fmt.Sprintf("%s rejected by lockout", e.Action))
	})
	p.bus.Subscribe(func(e events.RestartingEvent) {
		p.notify("Restarting")
	})
}

func (p *panel) notify(msg string) {
	at := time.Now().Format("15:04:05.000")
	fyne.Do(func() {
		p.eventLbl.SetText(at + "  " + msg)
	})
}

// refreshLoop periodically copies the pixel trace and the switch state to
// the widgets until stop is closed.
func (p *panel) refreshLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		p.mu.Lock()
		s := p.session
		p.mu.Unlock()

		var snap kvm.Snapshot
		connected := s != nil
		if connected {
			s.drain()
			snap = s.sys.Snapshot()
		}
		points := p.trace.Points(nil)

		fyne.Do(func() {
			p.scopeWidget.UpdateData(points)
			p.pixel.FillColor = pixelColor(snap.Pixel)
			p.pixel.Refresh()
			if !connected {
				p.targetLbl.SetText("Target: -")
				p.mouseLbl.SetText("Mouse middle: -")
				p.ledLbl.SetText("LED: -")
				return
			}
			p.targetLbl.SetText(fmt.Sprintf("Target: %s", snap.Target))
			p.mouseLbl.SetText(fmt.Sprintf("Mouse middle: %s", onOff(snap.MouseMiddle)))
			p.ledLbl.SetText(fmt.Sprintf("LED: %s (%s)", onOff(snap.Led), snap.Phase))
		})
	}
}

func pixelColor(c led.RGB) color.Color {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
