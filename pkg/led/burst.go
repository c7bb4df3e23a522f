package led

import "context"

// burst flashes randomly chosen palette colors. It returns false if the
// effect was cut short.
func (e *Engine) burst(ctx context.Context, gen uint32) bool {
	if !e.status.LedEnabled() {
		return false
	}
	e.setPhase(PhaseBurst)
	defer e.setPhase(PhaseIdle)

	colors := Pick(e.rng, e.cfg.BurstColors)
	off := e.cfg.BurstPeriod - e.cfg.BurstOn

	if !e.show(ctx, gen, Black) {
		return false
	}
	for ci, c := range colors {
		for i := 0; i < e.cfg.BurstFlashes; i++ {
			if !e.show(ctx, gen, c) {
				return false
			}
			e.clock.Sleep(e.cfg.BurstOn)
			if !e.show(ctx, gen, Black) {
				return false
			}
			e.clock.Sleep(off)
		}
		if ci < len(colors)-1 {
			if !e.wait(ctx, gen, e.cfg.BurstPause) {
				return false
			}
		}
	}
	return true
}
