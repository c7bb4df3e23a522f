package led

import (
	"context"
	"testing"
	"time"

	"github.com/itohio/kvmswitch/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelope(t *testing.T) {
	tests := []struct {
		name string
		i    int
		want uint8
	}{
		{"start", 0, 0},
		{"peak", 400, 155},
		{"end", 800, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Envelope(tt.i, 800, 155, 2.0))
		})
	}

	assert.Zero(t, Envelope(5, 0, 155, 2.0))
}

func TestSlew(t *testing.T) {
	tests := []struct {
		prev, target, want uint8
	}{
		{0, 0, 0},
		{0, 1, 1},
		{0, 5, 1},
		{10, 3, 9},
		{10, 9, 9},
		{1, 0, 0},
		{255, 255, 255},
		{254, 255, 255},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Slew(tt.prev, tt.target), "Slew(%d, %d)", tt.prev, tt.target)
	}
}

func TestTint(t *testing.T) {
	assert.Equal(t, RGB{R: 42}, Tint(state.Red, 42))
	assert.Equal(t, RGB{B: 42}, Tint(state.Blue, 42))
}

func TestEngine_HalfSteps(t *testing.T) {
	e, _, _, _ := newTestEngine(t, state.Blue)
	assert.Equal(t, 800, e.HalfSteps())
}

func TestBreathe_HalfCycleShape(t *testing.T) {
	n := 800
	var last uint8
	samples := make([]uint8, 0, n)
	for i := 0; i < n; i++ {
		last = Slew(last, Envelope(i, n, 155, 2.0))
		samples = append(samples, last)
	}

	peak := 0
	for i := 1; i < len(samples); i++ {
		diff := int(samples[i]) - int(samples[i-1])
		assert.LessOrEqual(t, diff, 1)
		assert.GreaterOrEqual(t, diff, -1)
		if samples[i] > samples[peak] {
			peak = i
		}
	}
	for i := 1; i <= peak; i++ {
		assert.GreaterOrEqual(t, samples[i], samples[i-1], "rising at %d", i)
	}
	for i := peak + 1; i < len(samples); i++ {
		assert.LessOrEqual(t, samples[i], samples[i-1], "falling at %d", i)
	}
	assert.Equal(t, uint8(155), samples[peak])
}

func TestBreathe_CycleThenPause(t *testing.T) {
	e, rec, _, clk := newTestEngine(t, state.Blue)
	const cycleFrames = 800 + 800 + 1

	rec.onEmit = func(n int, c RGB) {
		if n == cycleFrames+1 {
			e.Cancel()
		}
	}

	e.breathe(context.Background(), e.token.Snapshot(), state.Blue)

	frames := rec.Frames()
	// The cancelled first step of the next cycle is never emitted.
	require.Len(t, frames, cycleFrames+1)

	var maxB uint8
	for i, f := range frames[:1600] {
		assert.Zero(t, f.R, "frame %d", i)
		assert.Zero(t, f.G, "frame %d", i)
		maxB = max(maxB, f.B)
	}
	assert.Equal(t, uint8(155), maxB)
	assert.Equal(t, Black, frames[1600], "dark pause after the cycle")
	assert.Equal(t, Black, frames[len(frames)-1], "first step of the next cycle")

	// 1600 steps, the dark pause, then one step of the next cycle
	assert.Equal(t, 1600*10*time.Millisecond+500*time.Millisecond+10*time.Millisecond, clk.Slept())
	assert.Equal(t, PhaseIdle, e.Phase())
}

func TestBreathe_Red(t *testing.T) {
	e, rec, _, _ := newTestEngine(t, state.Red)
	rec.onEmit = func(n int, c RGB) {
		if n == 500 {
			e.Cancel()
		}
	}

	e.breathe(context.Background(), e.token.Snapshot(), state.Red)

	frames := rec.Frames()
	for _, f := range frames {
		assert.Zero(t, f.G)
		assert.Zero(t, f.B)
	}
	assert.Greater(t, frames[len(frames)-1].R, uint8(0), "a cancelled effect leaves its last frame")
}

func TestBreathe_DisableForcesBlack(t *testing.T) {
	e, rec, st, _ := newTestEngine(t, state.Blue)
	rec.onEmit = func(n int, c RGB) {
		if n == 300 {
			st.enabled.Store(false)
		}
	}

	e.breathe(context.Background(), e.token.Snapshot(), state.Blue)

	frames := rec.Frames()
	require.Greater(t, len(frames), 300)
	for _, f := range frames[300:] {
		assert.Equal(t, Black, f)
	}
	assert.Equal(t, PhaseIdle, e.Phase())
}

func TestBreathe_DisabledDoesNothing(t *testing.T) {
	e, rec, st, _ := newTestEngine(t, state.Blue)
	st.enabled.Store(false)

	e.breathe(context.Background(), e.token.Snapshot(), state.Blue)

	assert.Empty(t, rec.Frames())
}
