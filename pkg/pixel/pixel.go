// Package pixel encodes colors into the pulse-timing frames of a three-wire
// addressable LED (WS2812 family).
//
// A frame is 24 data pulses, green byte first, each byte MSB first, followed
// by one reset pulse. Durations are expressed in ticks of a 10 MHz pulse
// generator, matching the resolution of typical remote-control peripherals.
package pixel

import (
	"errors"
	"fmt"
)

const (
	// Resolution is the pulse generator tick rate in Hz.
	Resolution = 10_000_000

	// Bit timings in ticks.
	T0H   = 400 * Resolution / 1_000_000_000   // 0.40 us
	T0L   = 850 * Resolution / 1_000_000_000   // 0.85 us
	T1H   = 800 * Resolution / 1_000_000_000   // 0.80 us
	T1L   = 450 * Resolution / 1_000_000_000   // 0.45 us
	Reset = 50000 * Resolution / 1_000_000_000 // 50 us low

	// DataPulses is the number of bit pulses in a frame.
	DataPulses = 24
	// FrameLen is the number of entries handed to the emitter.
	FrameLen = DataPulses + 1
)

// ErrMalformed is returned by Decode for frames that do not follow the timing contract.
var ErrMalformed = errors.New("malformed pixel frame")

// Pulse is one two-phase timing entry: Level0 for Duration0 ticks, then
// Level1 for Duration1 ticks.
type Pulse struct {
	Level0    bool
	Duration0 uint16
	Level1    bool
	Duration1 uint16
}

// Frame is the complete timing sequence for one pixel update.
type Frame [FrameLen]Pulse

var (
	one   = Pulse{Level0: true, Duration0: T1H, Level1: false, Duration1: T1L}
	zero  = Pulse{Level0: true, Duration0: T0H, Level1: false, Duration1: T0L}
	reset = Pulse{Level0: false, Duration0: Reset, Level1: false, Duration1: 0}
)

// Emitter transmits a frame on the LED data line. Emit returns once the
// transmission has completed.
type Emitter interface {
	Emit(f *Frame) error
}

// Encode returns the frame for the given color.
func Encode(r, g, b uint8) Frame {
	var f Frame
	EncodeInto(&f, r, g, b)
	return f
}

// EncodeInto writes the frame for the given color into f.
func EncodeInto(f *Frame, r, g, b uint8) {
	grb := uint32(g)<<16 | uint32(r)<<8 | uint32(b)
	for i := 0; i < DataPulses; i++ {
		if (grb>>(DataPulses-1-i))&1 == 1 {
			f[i] = one
		} else {
			f[i] = zero
		}
	}
	f[DataPulses] = reset
}

// Decode recovers the color carried by f.
func Decode(f *Frame) (r, g, b uint8, err error) {
	var grb uint32
	for i := 0; i < DataPulses; i++ {
		grb <<= 1
		switch f[i] {
		case one:
			grb |= 1
		case zero:
		default:
			return 0, 0, 0, fmt.Errorf("%w: pulse %d is %+v", ErrMalformed, i, f[i])
		}
	}
	if f[DataPulses] != reset {
		return 0, 0, 0, fmt.Errorf("%w: missing reset pulse", ErrMalformed)
	}
	return uint8(grb >> 8), uint8(grb >> 16), uint8(grb), nil
}

// Bits returns the 24 data bits of f as booleans, bit 23 first.
// Pulses that are neither a one nor a zero are reported as false.
func Bits(f *Frame) [DataPulses]bool {
	var bits [DataPulses]bool
	for i := range bits {
		bits[i] = f[i] == one
	}
	return bits
}
