// Package button debounces the three front-panel buttons and recognizes
// short presses and the long press of the reset button.
//
// Edge is called from the GPIO interrupt handler and only does timestamp
// arithmetic and a non-blocking post. A long press is detected by Poll,
// which runs from an independent periodic worker so that a held button is
// recognized without a release edge.
package button

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/itohio/kvmswitch/pkg/clock"
	"github.com/itohio/kvmswitch/pkg/config"
)

// ID identifies a button.
type ID uint8

const (
	Switch      ID = iota // Button 1: switch target
	MouseToggle           // Button 2: toggle mouse-middle interception
	LedToggle             // Button 3: toggle LED feature, hold to restart

	Count = 3
)

func (id ID) String() string {
	switch id {
	case Switch:
		return "switch"
	case MouseToggle:
		return "mouse-toggle"
	case LedToggle:
		return "led-toggle"
	default:
		return "unknown"
	}
}

// Kind is the recognized gesture.
type Kind uint8

const (
	ShortPress Kind = iota
	LongPress
)

func (k Kind) String() string {
	if k == LongPress {
		return "long"
	}
	return "short"
}

// Event is a recognized press.
type Event struct {
	Button ID
	Kind   Kind
	At     time.Time
}

// Sink receives events. Post is called from interrupt context and must not
// block; it reports whether the event was accepted.
type Sink interface {
	Post(e Event) bool
}

// runtime is the per-button state shared by the edge handler and the poll.
type runtime struct {
	pressedAt atomic.Int64 // UnixNano of the falling edge, 0 while released
	fired     atomic.Bool  // long press already reported for this press
}

// Monitor tracks the buttons.
type Monitor struct {
	debounce  time.Duration
	longPress time.Duration
	period    time.Duration
	sink      Sink

	buttons [Count]runtime
	dropped atomic.Uint32
}

// New creates a Monitor posting to sink.
func New(cfg *config.ButtonsConfig, sink Sink) *Monitor {
	if cfg == nil {
		cfg = &config.Default().Buttons
	}
	return &Monitor{
		debounce:  cfg.Debounce,
		longPress: cfg.LongPress,
		period:    cfg.PollPeriod,
		sink:      sink,
	}
}

// Edge handles a level change of button id. Buttons are active-low: high
// is false means the button went down. Safe to call from an interrupt.
func (m *Monitor) Edge(id ID, high bool, now time.Time) {
	if id >= Count {
		return
	}
	b := &m.buttons[id]
	ts := now.UnixNano()

	if !high {
		b.fired.Store(false)
		b.pressedAt.Store(ts)
		return
	}

	start := b.pressedAt.Swap(0)
	if start == 0 {
		return
	}
	elapsed := time.Duration(ts - start)
	if elapsed > m.debounce && elapsed < m.longPress {
		m.post(Event{Button: id, Kind: ShortPress, At: now})
	}
}

// Poll checks the reset button for a long press. The long press is
// reported once per press, without waiting for the release. A long press
// the sink refused is retried by the next Poll.
func (m *Monitor) Poll(now time.Time) {
	b := &m.buttons[LedToggle]
	start := b.pressedAt.Load()
	if start == 0 {
		return
	}
	if time.Duration(now.UnixNano()-start) >= m.longPress && b.fired.CompareAndSwap(false, true) {
		if !m.post(Event{Button: LedToggle, Kind: LongPress, At: now}) {
			b.fired.Store(false)
		}
	}
}

// RunPoller calls Poll every poll period until ctx is done.
func (m *Monitor) RunPoller(ctx context.Context, clk clock.Clock) {
	var reported uint32
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		m.Poll(clk.Now())

		if d := m.dropped.Load(); d != reported {
			log.Printf("Button events dropped: %d", d-reported)
			reported = d
		}

		clk.Sleep(m.period)
	}
}

// Pressed reports whether button id is currently held.
func (m *Monitor) Pressed(id ID) bool {
	if id >= Count {
		return false
	}
	return m.buttons[id].pressedAt.Load() != 0
}

// Dropped returns the number of events the sink refused.
func (m *Monitor) Dropped() uint32 { return m.dropped.Load() }

// Reset forgets all pressed buttons.
func (m *Monitor) Reset() {
	for i := range m.buttons {
		m.buttons[i].pressedAt.Store(0)
		m.buttons[i].fired.Store(false)
	}
}

func (m *Monitor) post(e Event) bool {
	if m.sink == nil || !m.sink.Post(e) {
		m.dropped.Add(1)
		return false
	}
	return true
}
