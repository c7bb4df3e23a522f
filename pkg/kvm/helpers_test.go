package kvm

import (
	"fmt"
	"sync"
	"time"

	"github.com/itohio/kvmswitch/pkg/clock"
	"github.com/itohio/kvmswitch/pkg/config"
	"github.com/itohio/kvmswitch/pkg/events"
	"github.com/itohio/kvmswitch/pkg/led"
	"github.com/itohio/kvmswitch/pkg/pixel"
	"github.com/itohio/kvmswitch/pkg/relay"
	"github.com/itohio/kvmswitch/pkg/state"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// callLog records collaborator calls in order.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(format string, args ...any) {
	l.mu.Lock()
	l.calls = append(l.calls, fmt.Sprintf(format, args...))
	l.mu.Unlock()
}

func (l *callLog) Calls() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

func (l *callLog) Reset() {
	l.mu.Lock()
	l.calls = nil
	l.mu.Unlock()
}

// pixels records emitted colors and when they were emitted.
type pixels struct {
	mu     sync.Mutex
	frames []led.RGB
	times  []time.Time
}

func (p *pixels) Emit(f *pixel.Frame) error {
	r, g, b, err := pixel.Decode(f)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.frames = append(p.frames, led.RGB{R: r, G: g, B: b})
	p.times = append(p.times, time.Now())
	p.mu.Unlock()
	return nil
}

func (p *pixels) Frames() []led.RGB {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]led.RGB(nil), p.frames...)
}

func (p *pixels) Timed() ([]led.RGB, []time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]led.RGB(nil), p.frames...), append([]time.Time(nil), p.times...)
}

type fakeEffects struct {
	log   *callLog
	token led.Token
	out   *led.Output
}

func (f *fakeEffects) Cancel()             { f.token.Raise(); f.log.add("cancel") }
func (f *fakeEffects) Blackout()           { f.out.Blackout(); f.log.add("blackout") }
func (f *fakeEffects) Trigger(k led.Kind)  { f.log.add("trigger %d", k) }
func (f *fakeEffects) Output() *led.Output { return f.out }

// loggedChannel records flushes together with the target active at the time.
type loggedChannel struct {
	*relay.Mock
	name  string
	log   *callLog
	state *state.State
}

func (c *loggedChannel) Flush() error {
	c.log.add("flush %s target=%s", c.name, c.state.Target())
	return c.Mock.Flush()
}

type notes struct {
	mu  sync.Mutex
	evs []events.Event
}

func (n *notes) Publish(ev events.Event) {
	n.mu.Lock()
	n.evs = append(n.evs, ev)
	n.mu.Unlock()
}

func (n *notes) Events() []events.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]events.Event(nil), n.evs...)
}

type controllerFixture struct {
	ctrl      *Controller
	state     *state.State
	clk       *clock.FakeClock
	log       *callLog
	pixels    *pixels
	notes     *notes
	restarts  int
	lower     *loggedChannel
	upperA    *loggedChannel
	upperB    *loggedChannel
	effects   *fakeEffects
	restarter RestartFunc
}

func newControllerFixture() *controllerFixture {
	cfg := config.Default()
	f := &controllerFixture{
		state:  state.New(cfg.Switch.Lockout),
		clk:    clock.Fake(epoch),
		log:    &callLog{},
		pixels: &pixels{},
		notes:  &notes{},
	}
	f.clk.OnSleep(func(d time.Duration) { f.log.add("sleep %s", d) })

	f.effects = &fakeEffects{log: f.log}
	f.effects.out = led.NewOutput(f.pixels, f.state, &f.effects.token)

	f.lower = &loggedChannel{Mock: relay.NewMock(nil), name: "lower", log: f.log, state: f.state}
	f.upperA = &loggedChannel{Mock: relay.NewMock(nil), name: "A", log: f.log, state: f.state}
	f.upperB = &loggedChannel{Mock: relay.NewMock(nil), name: "B", log: f.log, state: f.state}
	ch := relay.Channels{Lower: f.lower, UpperA: f.upperA, UpperB: f.upperB}

	f.restarter = func() {
		f.restarts++
		f.log.add("restart")
	}
	f.ctrl = NewController(f.state, ch, f.effects, f.restarter, f.notes, cfg, f.clk)
	return f
}
