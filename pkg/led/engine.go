package led

import (
	"context"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/itohio/kvmswitch/pkg/clock"
	"github.com/itohio/kvmswitch/pkg/config"
	"github.com/itohio/kvmswitch/pkg/pixel"
)

// Kind selects the sequence a trigger starts.
type Kind uint8

const (
	// Burst plays the burst effect, then breathes.
	Burst Kind = iota
	// Resume breathes without a burst.
	Resume
)

// Phase is the externally observable engine state.
type Phase uint32

const (
	PhaseIdle Phase = iota
	PhaseBurst
	PhaseBreathing
)

func (p Phase) String() string {
	switch p {
	case PhaseBurst:
		return "burst"
	case PhaseBreathing:
		return "breathing"
	default:
		return "idle"
	}
}

type request struct {
	kind Kind
	gen  uint32
}

// Engine sequences the pixel effects. Effects are cooperative: they check
// the cancellation token and the LED feature flag once per step.
type Engine struct {
	cfg    config.LEDConfig
	clock  clock.Clock
	status Status
	rng    *rand.Rand

	token   Token
	out     *Output
	trigger chan request
	phase   atomic.Uint32
}

// New creates an Engine. A nil rng is seeded from the clock.
func New(cfg *config.LEDConfig, emitter pixel.Emitter, status Status, clk clock.Clock, rng *rand.Rand) *Engine {
	if cfg == nil {
		cfg = &config.Default().LED
	}
	if clk == nil {
		clk = clock.Real()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(clk.Now().UnixNano()))
	}

	e := &Engine{
		cfg:     *cfg,
		clock:   clk,
		status:  status,
		rng:     rng,
		trigger: make(chan request, 1),
	}
	e.out = NewOutput(emitter, status, &e.token)
	return e
}

// Output returns the gated pixel output shared with the controller.
func (e *Engine) Output() *Output { return e.out }

// Phase returns the current engine phase.
func (e *Engine) Phase() Phase { return Phase(e.phase.Load()) }

// Cancel stops the running effect at its next step.
func (e *Engine) Cancel() { e.token.Raise() }

// Blackout turns the pixel off.
func (e *Engine) Blackout() { e.out.Blackout() }

// Trigger requests a new sequence. The request is bound to the current
// token generation, so a Cancel issued after Trigger also cancels it. A
// pending request that has not been picked up yet is replaced.
func (e *Engine) Trigger(k Kind) {
	req := request{kind: k, gen: e.token.Snapshot()}
	for {
		select {
		case e.trigger <- req:
			return
		default:
		}
		select {
		case <-e.trigger:
		default:
		}
	}
}

// Run is the engine worker. It breathes in the current color at start if
// the LED feature is enabled, then waits for triggers until ctx is done.
func (e *Engine) Run(ctx context.Context) {
	if e.status.LedEnabled() {
		e.breathe(ctx, e.token.Snapshot(), e.status.BreathColor())
	}

	for {
		select {
		case <-ctx.Done():
			return
		case req := <-e.trigger:
			if !e.status.LedEnabled() {
				continue
			}
			if req.kind == Burst && !e.burst(ctx, req.gen) {
				continue
			}
			e.breathe(ctx, req.gen, e.status.BreathColor())
		}
	}
}

func (e *Engine) setPhase(p Phase) { e.phase.Store(uint32(p)) }

// alive reports whether an effect of generation gen may continue.
func (e *Engine) alive(ctx context.Context, gen uint32) bool {
	if ctx.Err() != nil {
		return false
	}
	if !e.status.LedEnabled() {
		e.out.Blackout()
		return false
	}
	return !e.token.Cancelled(gen)
}

func (e *Engine) show(ctx context.Context, gen uint32, c RGB) bool {
	if ctx.Err() != nil {
		return false
	}
	return e.out.Show(gen, c)
}

// wait sleeps for d in breathing-step slices, stopping early when the
// effect must end.
func (e *Engine) wait(ctx context.Context, gen uint32, d time.Duration) bool {
	step := e.cfg.BreathStep
	if step <= 0 {
		step = d
	}
	for d > 0 {
		if !e.alive(ctx, gen) {
			return false
		}
		s := min(step, d)
		e.clock.Sleep(s)
		d -= s
	}
	return e.alive(ctx, gen)
}
