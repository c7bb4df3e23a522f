package kvm

import (
	"context"
	"math/rand"
	"sync"

	"github.com/itohio/kvmswitch/pkg/button"
	"github.com/itohio/kvmswitch/pkg/clock"
	"github.com/itohio/kvmswitch/pkg/config"
	"github.com/itohio/kvmswitch/pkg/led"
	"github.com/itohio/kvmswitch/pkg/pixel"
	"github.com/itohio/kvmswitch/pkg/relay"
	"github.com/itohio/kvmswitch/pkg/state"
)

// Options carries the collaborators of a System. Zero fields select
// defaults: no pixel, no restart, no notifications, the real clock.
type Options struct {
	Emitter   pixel.Emitter
	Restarter Restarter
	Notifier  Notifier
	Clock     clock.Clock
	Rand      *rand.Rand
}

// System is the complete switch core wired to its channels and pixel.
type System struct {
	Config     *config.Config
	State      *state.State
	Channels   relay.Channels
	Engine     *led.Engine
	Controller *Controller
	Dispatcher *Dispatcher
	Monitor    *button.Monitor
	Relay      *relay.Relay

	clk clock.Clock
}

// Snapshot is a point-in-time view of the system for observers.
type Snapshot struct {
	Target       state.Target
	MouseMiddle  bool
	Led          bool
	Phase        led.Phase
	Pixel        led.RGB
	Relay        relay.Stats
	Accepted     uint64
	Rejected     uint64
	ButtonDrops  uint32
	RequestDrops uint32
}

type discard struct{}

func (discard) Emit(*pixel.Frame) error { return nil }

// NewSystem builds a System in its power-on state: target A, both features
// enabled.
func NewSystem(cfg *config.Config, ch relay.Channels, opts Options) *System {
	if cfg == nil {
		cfg = config.Default()
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.Real()
	}
	emitter := opts.Emitter
	if emitter == nil {
		emitter = discard{}
	}

	s := &System{
		Config:   cfg,
		State:    state.New(cfg.Switch.Lockout),
		Channels: ch,
		clk:      clk,
	}
	s.Engine = led.New(&cfg.LED, emitter, s.State, clk, opts.Rand)
	s.Controller = NewController(s.State, ch, s.Engine, opts.Restarter, opts.Notifier, cfg, clk)
	s.Dispatcher = NewDispatcher(s.Controller, cfg.Buttons.EventBuffer)
	s.Monitor = button.New(&cfg.Buttons, s.Dispatcher)
	s.Relay = relay.New(ch, s.State, s.Dispatcher, cfg, clk)
	return s
}

// Run starts the dispatcher, the long-press poller, the relay and the LED
// engine, and blocks until ctx is done and all of them returned.
func (s *System) Run(ctx context.Context) {
	var wg sync.WaitGroup
	workers := []func(context.Context){
		s.Dispatcher.Run,
		func(ctx context.Context) { s.Monitor.RunPoller(ctx, s.clk) },
		s.Relay.Run,
		s.Engine.Run,
	}

	wg.Add(len(workers))
	for _, w := range workers {
		go func(run func(context.Context)) {
			defer wg.Done()
			run(ctx)
		}(w)
	}
	wg.Wait()

	s.Engine.Cancel()
	s.Engine.Blackout()
}

// Snapshot returns the current view of the system.
func (s *System) Snapshot() Snapshot {
	return Snapshot{
		Target:       s.State.Target(),
		MouseMiddle:  s.State.MouseMiddleEnabled(),
		Led:          s.State.LedEnabled(),
		Phase:        s.Engine.Phase(),
		Pixel:        s.Engine.Output().Last(),
		Relay:        s.Relay.Stats(),
		Accepted:     s.Controller.Accepted(),
		Rejected:     s.Controller.Rejected(),
		ButtonDrops:  s.Monitor.Dropped(),
		RequestDrops: s.Dispatcher.Dropped(),
	}
}
