// Package clock abstracts the time source used by the switch core so that
// effects, debouncing and the lockout can be driven deterministically in
// tests.
package clock

import (
	"sync"
	"time"
)

// Clock is the time source of every worker. Production code uses Real();
// tests use Fake().
type Clock interface {
	// Now returns the current time.
	Now() time.Time
	// Sleep pauses the caller for at least d.
	Sleep(d time.Duration)
}

// Real returns a Clock backed by the time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time        { return time.Now() }
func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

// FakeClock is a deterministic Clock. Time only moves when Advance or Sleep
// is called; Sleep advances the fake time by d and returns immediately, so
// an animation that would take seconds runs in microseconds.
//
// FakeClock is safe for concurrent use.
type FakeClock struct {
	mu      sync.Mutex
	current time.Time
	slept   time.Duration
	onSleep func(d time.Duration)
}

// Fake returns a FakeClock initialized to the given time.
func Fake(initial time.Time) *FakeClock {
	return &FakeClock{current: initial}
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Sleep advances the clock by d. If d <= 0, it returns immediately.
func (c *FakeClock) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	c.mu.Lock()
	c.current = c.current.Add(d)
	c.slept += d
	hook := c.onSleep
	c.mu.Unlock()

	if hook != nil {
		hook(d)
	}
}

// Advance moves the clock forward by d without counting it as sleep.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
}

// Slept returns the total duration passed to Sleep.
func (c *FakeClock) Slept() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slept
}

// OnSleep registers a hook called after every Sleep, outside the clock lock.
// Tests use it to inject events at a given point of an animation.
func (c *FakeClock) OnSleep(hook func(d time.Duration)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onSleep = hook
}
