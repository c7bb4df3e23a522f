package kvm

import (
	"context"
	"log"
	"sync/atomic"

	"github.com/itohio/kvmswitch/pkg/button"
)

// Action is a request for the controller.
type Action uint8

const (
	ActionSwitch Action = iota
	ActionToggleMouseMiddle
	ActionToggleLed
	ActionRestart
)

func (a Action) String() string {
	switch a {
	case ActionSwitch:
		return "switch"
	case ActionToggleMouseMiddle:
		return "toggle-mouse-middle"
	case ActionToggleLed:
		return "toggle-led"
	case ActionRestart:
		return "restart"
	default:
		return "unknown"
	}
}

// ActionOf maps a button event to its action.
func ActionOf(e button.Event) (Action, bool) {
	switch {
	case e.Button == button.LedToggle && e.Kind == button.LongPress:
		return ActionRestart, true
	case e.Kind != button.ShortPress:
		return 0, false
	case e.Button == button.Switch:
		return ActionSwitch, true
	case e.Button == button.MouseToggle:
		return ActionToggleMouseMiddle, true
	case e.Button == button.LedToggle:
		return ActionToggleLed, true
	default:
		return 0, false
	}
}

// Handler executes actions. *Controller implements it.
type Handler interface {
	Switch() bool
	ToggleMouseMiddle() bool
	ToggleLedFeature() bool
	Restart()
}

// Dispatcher owns the single request queue fed by the button edge handler,
// the long-press poller and the relay, and is the only caller of its
// Handler. Posting never blocks; requests arriving while the queue is full
// are dropped.
type Dispatcher struct {
	handler Handler
	queue   chan Action
	dropped atomic.Uint32
}

// Ensure Dispatcher accepts button events.
var _ button.Sink = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher with a queue of size entries.
func NewDispatcher(h Handler, size int) *Dispatcher {
	if size <= 0 {
		size = 1
	}
	return &Dispatcher{
		handler: h,
		queue:   make(chan Action, size),
	}
}

// Post implements button.Sink.
func (d *Dispatcher) Post(e button.Event) bool {
	a, ok := ActionOf(e)
	if !ok {
		return true
	}
	return d.Request(a)
}

// RequestSwitch queues a switch for a consumed middle-click frame.
func (d *Dispatcher) RequestSwitch() bool {
	return d.Request(ActionSwitch)
}

// Request queues a without blocking.
func (d *Dispatcher) Request(a Action) bool {
	select {
	case d.queue <- a:
		return true
	default:
		d.dropped.Add(1)
		return false
	}
}

// Dropped returns the number of requests refused because the queue was full.
func (d *Dispatcher) Dropped() uint32 { return d.dropped.Load() }

// Run executes queued actions until ctx is done.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case a := <-d.queue:
			d.handle(a)
		}
	}
}

func (d *Dispatcher) handle(a Action) {
	switch a {
	case ActionSwitch:
		d.handler.Switch()
	case ActionToggleMouseMiddle:
		d.handler.ToggleMouseMiddle()
	case ActionToggleLed:
		d.handler.ToggleLedFeature()
	case ActionRestart:
		d.handler.Restart()
	default:
		log.Printf("Unknown action %d", a)
	}
}
