package state

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestNew_Defaults(t *testing.T) {
	s := New(1500 * time.Millisecond)

	assert.Equal(t, TargetA, s.Target())
	assert.Equal(t, Blue, s.BreathColor())
	assert.True(t, s.MouseMiddleEnabled())
	assert.True(t, s.LedEnabled())
	assert.Equal(t, 1500*time.Millisecond, s.Lockout.Duration())
	assert.True(t, s.Lockout.Last().IsZero())
}

func TestState_FlipAlternates(t *testing.T) {
	s := New(0)
	want := []Target{TargetB, TargetA, TargetB, TargetA}
	for _, w := range want {
		assert.Equal(t, w, s.Flip())
		assert.Equal(t, w, s.Target())
		assert.Equal(t, ColorOf(w), s.BreathColor())
	}
}

func TestColorOf(t *testing.T) {
	assert.Equal(t, Blue, ColorOf(TargetA))
	assert.Equal(t, Red, ColorOf(TargetB))
	assert.Equal(t, "blue", Blue.String())
	assert.Equal(t, "red", Red.String())
	assert.Equal(t, "A", TargetA.String())
	assert.Equal(t, "B", TargetB.String())
}

func TestState_Toggles(t *testing.T) {
	s := New(0)

	assert.False(t, s.ToggleMouseMiddle())
	assert.False(t, s.MouseMiddleEnabled())
	assert.True(t, s.ToggleMouseMiddle())

	assert.False(t, s.ToggleLed())
	assert.False(t, s.LedEnabled())
	s.SetLedEnabled(true)
	assert.True(t, s.LedEnabled())
}

func TestLockout_Admit(t *testing.T) {
	tests := []struct {
		name  string
		after time.Duration
		want  bool
	}{
		{"immediately", 0, false},
		{"500ms", 500 * time.Millisecond, false},
		{"exactly at lockout", 1500 * time.Millisecond, false},
		{"just after lockout", 1501 * time.Millisecond, true},
		{"1600ms", 1600 * time.Millisecond, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLockout(1500 * time.Millisecond)
			assert.True(t, l.Admit(epoch), "first event is always admitted")

			got := l.Admit(epoch.Add(tt.after))
			assert.Equal(t, tt.want, got)
			if tt.want {
				assert.True(t, l.Last().Equal(epoch.Add(tt.after)))
			} else {
				assert.True(t, l.Last().Equal(epoch), "rejected event must not move the timestamp")
			}
		})
	}
}

func TestLockout_ConcurrentAdmitsOnlyOne(t *testing.T) {
	l := NewLockout(time.Second)

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Admit(epoch) {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, admitted)
}
