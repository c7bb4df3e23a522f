// Package state holds the switch state shared between interrupt context and
// the background workers. Every field is a single atomic word, so readers
// never observe a half-updated value and no lock is needed.
package state

import (
	"sync/atomic"
	"time"
)

// Target identifies the upper consumer currently receiving the relayed stream.
type Target uint32

const (
	TargetA Target = iota
	TargetB
)

// Other returns the opposite target.
func (t Target) Other() Target {
	if t == TargetA {
		return TargetB
	}
	return TargetA
}

func (t Target) String() string {
	if t == TargetA {
		return "A"
	}
	return "B"
}

// Color is the breathing color announcing the active target.
type Color uint8

const (
	Blue Color = iota
	Red
)

func (c Color) String() string {
	if c == Red {
		return "red"
	}
	return "blue"
}

// ColorOf maps a target to its breathing color: A is blue, B is red.
func ColorOf(t Target) Color {
	if t == TargetB {
		return Red
	}
	return Blue
}

// State is the owned shared state of the switch. The zero value is not
// usable; use New.
type State struct {
	target      atomic.Uint32
	mouseMiddle atomic.Bool
	ledEnabled  atomic.Bool

	Lockout *Lockout
}

// New returns the power-on state: target A, both features enabled.
func New(lockout time.Duration) *State {
	s := &State{Lockout: NewLockout(lockout)}
	s.target.Store(uint32(TargetA))
	s.mouseMiddle.Store(true)
	s.ledEnabled.Store(true)
	return s
}

// Target returns the active target.
func (s *State) Target() Target { return Target(s.target.Load()) }

// BreathColor returns the breathing color of the active target. It is
// derived from the same atomic word as Target, so the two always agree.
func (s *State) BreathColor() Color { return ColorOf(s.Target()) }

// Flip switches to the other target and returns the new one.
func (s *State) Flip() Target {
	for {
		old := s.target.Load()
		next := Target(old).Other()
		if s.target.CompareAndSwap(old, uint32(next)) {
			return next
		}
	}
}

// MouseMiddleEnabled reports whether mouse-middle frames are intercepted.
func (s *State) MouseMiddleEnabled() bool { return s.mouseMiddle.Load() }

// ToggleMouseMiddle flips mouse-middle interception and returns the new value.
func (s *State) ToggleMouseMiddle() bool { return toggle(&s.mouseMiddle) }

// LedEnabled reports whether the LED feature is enabled.
func (s *State) LedEnabled() bool { return s.ledEnabled.Load() }

// SetLedEnabled sets the LED feature flag.
func (s *State) SetLedEnabled(v bool) { s.ledEnabled.Store(v) }

// ToggleLed flips the LED feature flag and returns the new value.
func (s *State) ToggleLed() bool { return toggle(&s.ledEnabled) }

func toggle(b *atomic.Bool) bool {
	for {
		old := b.Load()
		if b.CompareAndSwap(old, !old) {
			return !old
		}
	}
}
