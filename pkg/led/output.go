// Package led runs the status pixel effects: a multi-color burst announcing a
// switch and a continuous breathing effect in the color of the active target.
package led

import (
	"log"
	"sync"
	"sync/atomic"

	"github.com/itohio/kvmswitch/pkg/pixel"
	"github.com/itohio/kvmswitch/pkg/state"
)

// RGB is a pixel color.
type RGB struct {
	R, G, B uint8
}

// Black turns the pixel off.
var Black = RGB{}

// Status is the part of the shared state the effects depend on.
type Status interface {
	LedEnabled() bool
	BreathColor() state.Color
}

// Token is the effect cancellation token. Raising it bumps a generation
// counter; an effect started at generation g is cancelled as soon as the
// counter no longer equals g. A raise is never lost to a late reset.
type Token struct {
	gen atomic.Uint32
}

// Raise cancels every effect started before the call.
func (t *Token) Raise() { t.gen.Add(1) }

// Snapshot returns the current generation.
func (t *Token) Snapshot() uint32 { return t.gen.Load() }

// Cancelled reports whether an effect of generation gen must stop.
func (t *Token) Cancelled(gen uint32) bool { return t.gen.Load() != gen }

// Output is the single path to the pixel. It serializes emission and
// enforces that the pixel is black while the LED feature is disabled.
type Output struct {
	mu      sync.Mutex
	emitter pixel.Emitter
	status  Status
	token   *Token
	frame   pixel.Frame
	last    RGB
}

// NewOutput creates an Output writing to emitter.
func NewOutput(emitter pixel.Emitter, status Status, token *Token) *Output {
	return &Output{
		emitter: emitter,
		status:  status,
		token:   token,
	}
}

// Show emits c on behalf of an effect of generation gen. It returns false,
// without emitting c, when the effect has been cancelled or the LED feature
// is disabled; in the latter case the pixel is forced black.
func (o *Output) Show(gen uint32, c RGB) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.status.LedEnabled() {
		o.emit(Black)
		return false
	}
	if o.token.Cancelled(gen) {
		return false
	}
	o.emit(c)
	return true
}

// Set emits c regardless of any running effect. It still emits black when
// the LED feature is disabled.
func (o *Output) Set(c RGB) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.status.LedEnabled() {
		c = Black
	}
	o.emit(c)
}

// Blackout turns the pixel off.
func (o *Output) Blackout() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.emit(Black)
}

// Clear turns the pixel off on behalf of an effect of generation gen. Once
// gen is cancelled the pixel belongs to whoever cancelled it and Clear
// emits nothing, unless the LED feature is disabled.
func (o *Output) Clear(gen uint32) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.token.Cancelled(gen) && o.status.LedEnabled() {
		return
	}
	o.emit(Black)
}

// Last returns the most recently emitted color.
func (o *Output) Last() RGB {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.last
}

func (o *Output) emit(c RGB) {
	pixel.EncodeInto(&o.frame, c.R, c.G, c.B)
	if err := o.emitter.Emit(&o.frame); err != nil {
		log.Printf("Error emitting pixel frame: %v", err)
	}
	o.last = c
}
