package led

import (
	"context"

	"github.com/chewxy/math32"
	"github.com/itohio/kvmswitch/pkg/state"
)

// HalfSteps returns the number of brightness steps in one half of a
// breathing cycle.
func (e *Engine) HalfSteps() int {
	if e.cfg.BreathStep <= 0 {
		return 0
	}
	return int(e.cfg.BreathPeriod() / (2 * e.cfg.BreathStep))
}

// Envelope returns the raw brightness at step i of a half cycle of n steps:
// round(sin(i*pi/n)^exp * max).
func Envelope(i, n int, max uint8, exp float32) uint8 {
	if n <= 0 {
		return 0
	}
	s := math32.Sin(float32(i) * (math32.Pi / float32(n)))
	if s <= 0 {
		return 0
	}
	v := math32.Round(math32.Pow(s, exp) * float32(max))
	if v > float32(max) {
		v = float32(max)
	}
	return uint8(v)
}

// Slew limits the change from prev to target to one unit.
func Slew(prev, target uint8) uint8 {
	switch {
	case target > prev+1 && prev < 255:
		return prev + 1
	case prev > 0 && target < prev-1:
		return prev - 1
	default:
		return target
	}
}

// Tint scales the breathing color to brightness b.
func Tint(c state.Color, b uint8) RGB {
	if c == state.Red {
		return RGB{R: b}
	}
	return RGB{B: b}
}

// breathe runs the breathing effect until it is cancelled, the LED feature
// is disabled or ctx is done. The pixel is black on return unless the
// effect was cancelled, in which case the canceller owns it.
func (e *Engine) breathe(ctx context.Context, gen uint32, c state.Color) {
	if !e.status.LedEnabled() {
		return
	}
	e.setPhase(PhaseBreathing)
	defer e.setPhase(PhaseIdle)
	defer e.out.Clear(gen)

	n := e.HalfSteps()
	var last uint8
	for e.alive(ctx, gen) {
		// rise
		for i := 0; i < n; i++ {
			if !e.breathStep(ctx, gen, c, i, n, &last) {
				return
			}
		}
		if !e.alive(ctx, gen) {
			return
		}
		// fall
		for i := n; i > 0; i-- {
			if !e.breathStep(ctx, gen, c, i, n, &last) {
				return
			}
		}
		if !e.show(ctx, gen, Black) {
			return
		}
		if !e.wait(ctx, gen, e.cfg.BreathDark) {
			return
		}
	}
}

func (e *Engine) breathStep(ctx context.Context, gen uint32, c state.Color, i, n int, last *uint8) bool {
	b := Slew(*last, Envelope(i, n, e.cfg.BreathMax, e.cfg.BreathExponent))
	*last = b
	if !e.show(ctx, gen, Tint(c, b)) {
		return false
	}
	e.clock.Sleep(e.cfg.BreathStep)
	return true
}
