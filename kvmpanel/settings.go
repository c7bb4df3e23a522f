package main

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/kvmswitch/pkg/config"
	"github.com/itohio/kvmswitch/pkg/relay"
)

// showSettingsDialog displays a settings dialog with tabs for all configuration options.
func showSettingsDialog(p *panel) {
	tabs := container.NewAppTabs(
		createSerialTab(p),
		createSwitchTab(p),
		createButtonsTab(p),
		createMockTab(p),
	)

	content := container.NewBorder(nil, nil, nil, nil, tabs)
	content.Resize(fyne.NewSize(600, 400))

	d := dialog.NewCustom("Settings", "Close", content, p.window)
	d.Resize(fyne.NewSize(600, 400))
	d.Show()
}

// current returns a copy of the configuration for editing.
func (p *panel) current() config.Config {
	p.mu.Lock()
	defer p.mu.Unlock()
	return *p.cfg
}

// apply saves cfg. The config watcher picks the file up and restarts a
// running session; without a watcher the change is applied directly.
func (p *panel) apply(cfg config.Config) {
	if err := cfg.Save(p.configPath); err != nil {
		dialog.ShowError(fmt.Errorf("failed to save config: %w", err), p.window)
		return
	}
	if !p.watching {
		go p.reload(&cfg)
	}
}

// portSelect creates a port selector that keeps current selectable even
// when it is not attached.
func portSelect(ports []relay.Port, current string) (*widget.Select, map[string]string) {
	options := []string{}
	names := make(map[string]string) // Map display name to actual port name
	selected := current

	for _, port := range ports {
		display := port.Name
		if port.Description != "" && port.Description != port.Name {
			display = fmt.Sprintf("%s (%s)", port.Name, port.Description)
		}
		options = append(options, display)
		names[display] = port.Name
		if port.Name == current {
			selected = display
		}
	}
	if _, ok := names[selected]; !ok && current != "" {
		options = append(options, current)
		names[current] = current
	}

	sel := widget.NewSelect(options, nil)
	if selected != "" {
		sel.SetSelected(selected)
	}
	return sel, names
}

// createSerialTab creates the Serial configuration tab.
func createSerialTab(p *panel) *container.TabItem {
	cfg := p.current()
	ports, _ := relay.Ports()

	lowerSel, lowerNames := portSelect(ports, cfg.Serial.Lower)
	upperASel, upperANames := portSelect(ports, cfg.Serial.UpperA)
	upperBSel, upperBNames := portSelect(ports, cfg.Serial.UpperB)

	baudEntry := widget.NewEntry()
	baudEntry.SetText(strconv.Itoa(cfg.Serial.BaudRate))

	pick := func(sel *widget.Select, names map[string]string, fallback string) string {
		if sel.Selected == "" {
			return fallback
		}
		if name := names[sel.Selected]; name != "" {
			return name
		}
		return sel.Selected
	}

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Lower device", Widget: lowerSel},
			{Text: "Target A", Widget: upperASel},
			{Text: "Target B", Widget: upperBSel},
			{Text: "Baud rate", Widget: baudEntry},
		},
		OnSubmit: func() {
			next := p.current()
			next.Serial.Lower = pick(lowerSel, lowerNames, next.Serial.Lower)
			next.Serial.UpperA = pick(upperASel, upperANames, next.Serial.UpperA)
			next.Serial.UpperB = pick(upperBSel, upperBNames, next.Serial.UpperB)
			if baud, err := strconv.Atoi(baudEntry.Text); err == nil && baud > 0 {
				next.Serial.BaudRate = baud
			}
			p.apply(next)
		},
	}

	return container.NewTabItem("Serial", form)
}

// durationEntry creates an entry editing d in time.Duration syntax.
func durationEntry(d time.Duration) *widget.Entry {
	e := widget.NewEntry()
	e.SetText(d.String())
	return e
}

// parseInto stores the parsed entry text in d when it is a positive duration.
func parseInto(e *widget.Entry, d *time.Duration) {
	if v, err := time.ParseDuration(e.Text); err == nil && v > 0 {
		*d = v
	}
}

// createSwitchTab creates the Switch configuration tab.
func createSwitchTab(p *panel) *container.TabItem {
	cfg := p.current()
	lockoutEntry := durationEntry(cfg.Switch.Lockout)
	settleEntry := durationEntry(cfg.Switch.Settle)
	sleepEntry := durationEntry(cfg.Relay.Sleep)

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Lockout", Widget: lockoutEntry},
			{Text: "Settle", Widget: settleEntry},
			{Text: "Relay sleep", Widget: sleepEntry},
		},
		OnSubmit: func() {
			next := p.current()
			parseInto(lockoutEntry, &next.Switch.Lockout)
			parseInto(settleEntry, &next.Switch.Settle)
			parseInto(sleepEntry, &next.Relay.Sleep)
			p.apply(next)
		},
	}

	return container.NewTabItem("Switch", form)
}

// createButtonsTab creates the Buttons configuration tab.
func createButtonsTab(p *panel) *container.TabItem {
	cfg := p.current()
	debounceEntry := durationEntry(cfg.Buttons.Debounce)
	longPressEntry := durationEntry(cfg.Buttons.LongPress)
	pollEntry := durationEntry(cfg.Buttons.PollPeriod)
	cueEntry := durationEntry(cfg.Buttons.ResetCue)

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Debounce", Widget: debounceEntry},
			{Text: "Long press", Widget: longPressEntry},
			{Text: "Poll period", Widget: pollEntry},
			{Text: "Reset cue", Widget: cueEntry},
		},
		OnSubmit: func() {
			next := p.current()
			parseInto(debounceEntry, &next.Buttons.Debounce)
			parseInto(longPressEntry, &next.Buttons.LongPress)
			parseInto(pollEntry, &next.Buttons.PollPeriod)
			parseInto(cueEntry, &next.Buttons.ResetCue)
			p.apply(next)
		},
	}

	return container.NewTabItem("Buttons", form)
}

// createMockTab creates the Mock channel configuration tab.
func createMockTab(p *panel) *container.TabItem {
	cfg := p.current()
	periodEntry := widget.NewEntry()
	periodEntry.SetText(cfg.Mock.Period.String())

	echoCheck := widget.NewCheck("", nil)
	echoCheck.SetChecked(cfg.Mock.Echo)

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Mouse frame period (0 = off)", Widget: periodEntry},
			{Text: "Targets echo", Widget: echoCheck},
		},
		OnSubmit: func() {
			next := p.current()
			if d, err := time.ParseDuration(periodEntry.Text); err == nil && d >= 0 {
				next.Mock.Period = d
			}
			next.Mock.Echo = echoCheck.Checked
			p.apply(next)
		},
	}

	return container.NewTabItem("Mock", form)
}
