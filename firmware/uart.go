//go:build tinygo

package main

import (
	"machine"

	"github.com/itohio/kvmswitch/pkg/relay"
)

// uartRing is the capacity of machine.RingBuffer. A ring that reached it
// has been dropping bytes since.
const uartRing = 128

var _ relay.Channel = (*uartChannel)(nil)

// uartChannel exposes an interrupt-buffered machine.UART as a relay.Channel.
type uartChannel struct {
	uart *machine.UART
}

func newUART(uart *machine.UART, tx, rx machine.Pin) (*uartChannel, error) {
	if err := uart.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
		TX:       tx,
		RX:       rx,
	}); err != nil {
		return nil, err
	}
	return &uartChannel{uart: uart}, nil
}

func (c *uartChannel) Read(p []byte) (int, error) {
	if c.uart.Buffered() >= uartRing {
		return 0, relay.ErrBufferFull
	}
	n := 0
	for n < len(p) && c.uart.Buffered() > 0 {
		b, err := c.uart.ReadByte()
		if err != nil {
			break
		}
		p[n] = b
		n++
	}
	return n, nil
}

func (c *uartChannel) Write(p []byte) (int, error) {
	return c.uart.Write(p)
}

func (c *uartChannel) Flush() error {
	for c.uart.Buffered() > 0 {
		if _, err := c.uart.ReadByte(); err != nil {
			return err
		}
	}
	return nil
}
