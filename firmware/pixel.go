//go:build tinygo

package main

import (
	"image/color"
	"machine"
	"runtime/interrupt"
	"time"

	"github.com/itohio/kvmswitch/pkg/pixel"
	"tinygo.org/x/drivers/ws2812"
)

// latch is the reset low time that ends a frame.
const latch = pixel.Reset * time.Second / pixel.Resolution

var _ pixel.Emitter = (*ws2812Emitter)(nil)

// ws2812Emitter replays encoded frames through the bit-banged ws2812
// driver, which generates the same pulse timing from GRB bytes.
type ws2812Emitter struct {
	dev ws2812.Device
	buf [1]color.RGBA
}

func newPixel(pin machine.Pin) *ws2812Emitter {
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return &ws2812Emitter{dev: ws2812.New(pin)}
}

func (e *ws2812Emitter) Emit(f *pixel.Frame) error {
	r, g, b, err := pixel.Decode(f)
	if err != nil {
		return err
	}
	e.buf[0] = color.RGBA{R: r, G: g, B: b, A: 255}

	critical(func() { err = e.dev.WriteColors(e.buf[:]) })
	if err != nil {
		return err
	}
	time.Sleep(latch)
	return nil
}

// critical runs f with interrupts disabled so the bit timing is not
// stretched by UART or GPIO handlers.
func critical(f func()) {
	state := interrupt.Disable()
	f()
	interrupt.Restore(state)
}
