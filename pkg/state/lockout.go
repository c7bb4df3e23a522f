package state

import (
	"sync/atomic"
	"time"
)

// Lockout is the rate limiter shared by every switch-triggering input.
// An event is admitted only if more than the lockout duration has passed
// since the previously admitted one.
type Lockout struct {
	duration time.Duration
	last     atomic.Int64 // UnixNano of the last admitted event, 0 if none
}

// NewLockout creates a lockout with the given duration.
func NewLockout(d time.Duration) *Lockout {
	return &Lockout{duration: d}
}

// Duration returns the lockout duration.
func (l *Lockout) Duration() time.Duration { return l.duration }

// Admit reports whether an event at now is accepted, and records now as the
// last accepted time if so. Concurrent callers race on a compare-and-swap,
// so at most one of several simultaneous events is admitted.
func (l *Lockout) Admit(now time.Time) bool {
	ts := now.UnixNano()
	for {
		last := l.last.Load()
		if last != 0 && time.Duration(ts-last) <= l.duration {
			return false
		}
		if l.last.CompareAndSwap(last, ts) {
			return true
		}
	}
}

// Last returns the time of the last admitted event, or the zero time.
func (l *Lockout) Last() time.Time {
	last := l.last.Load()
	if last == 0 {
		return time.Time{}
	}
	return time.Unix(0, last)
}
