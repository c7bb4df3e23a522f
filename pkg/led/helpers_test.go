package led

import (
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/itohio/kvmswitch/pkg/clock"
	"github.com/itohio/kvmswitch/pkg/config"
	"github.com/itohio/kvmswitch/pkg/pixel"
	"github.com/itohio/kvmswitch/pkg/state"
	"github.com/stretchr/testify/require"
)

// recorder decodes every emitted frame.
type recorder struct {
	mu     sync.Mutex
	frames []RGB
	onEmit func(n int, c RGB)
}

func (r *recorder) Emit(f *pixel.Frame) error {
	red, green, blue, err := pixel.Decode(f)
	if err != nil {
		return err
	}
	c := RGB{red, green, blue}

	r.mu.Lock()
	r.frames = append(r.frames, c)
	n := len(r.frames)
	hook := r.onEmit
	r.mu.Unlock()

	if hook != nil {
		hook(n, c)
	}
	return nil
}

func (r *recorder) Frames() []RGB {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]RGB(nil), r.frames...)
}

type fakeStatus struct {
	enabled atomic.Bool
	color   atomic.Uint32
}

func newStatus(c state.Color) *fakeStatus {
	s := &fakeStatus{}
	s.enabled.Store(true)
	s.color.Store(uint32(c))
	return s
}

func (s *fakeStatus) LedEnabled() bool         { return s.enabled.Load() }
func (s *fakeStatus) BreathColor() state.Color { return state.Color(s.color.Load()) }

func newTestEngine(t *testing.T, c state.Color) (*Engine, *recorder, *fakeStatus, *clock.FakeClock) {
	t.Helper()
	rec := &recorder{}
	st := newStatus(c)
	clk := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	e := New(&config.Default().LED, rec, st, clk, rand.New(rand.NewSource(1)))
	require.NotNil(t, e)
	return e, rec, st, clk
}

func isPaletteColor(c RGB) bool {
	for _, p := range Palette {
		if p == c {
			return true
		}
	}
	return false
}
