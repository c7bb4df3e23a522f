package main

import (
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/kvmswitch/pkg/button"
)

// holdButton is a button that reports press and release separately, the
// way a physical active-low push button produces two edges.
type holdButton struct {
	widget.Button

	onDown func()
	onUp   func()
}

// Ensure holdButton receives mouse button events.
var _ desktop.Mouseable = (*holdButton)(nil)

func newHoldButton(label string, onDown, onUp func()) *holdButton {
	b := &holdButton{onDown: onDown, onUp: onUp}
	b.Text = label
	b.ExtendBaseWidget(b)
	return b
}

// MouseDown implements desktop.Mouseable.
func (b *holdButton) MouseDown(*desktop.MouseEvent) {
	if b.onDown != nil {
		b.onDown()
	}
}

// MouseUp implements desktop.Mouseable.
func (b *holdButton) MouseUp(*desktop.MouseEvent) {
	if b.onUp != nil {
		b.onUp()
	}
}

// createButtons creates the three switch buttons.
func createButtons(p *panel) fyne.CanvasObject {
	buttons := []struct {
		label string
		id    button.ID
	}{
		{"Switch", button.Switch},
		{"Mouse middle", button.MouseToggle},
		{"LED (hold to reset)", button.LedToggle},
	}

	objects := make([]fyne.CanvasObject, 0, len(buttons))
	for _, b := range buttons {
		id := b.id
		objects = append(objects, newHoldButton(b.label,
			func() { p.edge(id, false) },
			func() { p.edge(id, true) },
		))
	}
	return container.NewGridWithColumns(len(objects), objects...)
}

// edge forwards a button level change to the running core. Buttons are
// active-low: pressed is low.
func (p *panel) edge(id button.ID, high bool) {
	p.mu.Lock()
	s := p.session
	p.mu.Unlock()
	if s == nil {
		return
	}
	s.sys.Monitor.Edge(id, high, time.Now())
}
