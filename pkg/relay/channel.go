package relay

import "errors"

const (
	// DefaultBaudRate is the baud rate of the lower device and both targets.
	DefaultBaudRate = 115200
	// DefaultBufferSize is the default size of a receive buffer.
	DefaultBufferSize = 1024
)

var (
	// ErrOverflow is returned by Read when the receiver lost bytes in hardware.
	ErrOverflow = errors.New("receive overflow")
	// ErrBufferFull is returned by Read when the receive buffer filled up.
	ErrBufferFull = errors.New("receive buffer full")
)

// Channel defines a raw byte channel (real serial port, UART or mock).
type Channel interface {
	// Read copies already received bytes into p and returns immediately,
	// possibly with n == 0. It reports ErrOverflow or ErrBufferFull once
	// when received bytes were lost.
	Read(p []byte) (int, error)
	// Write queues p for transmission.
	Write(p []byte) (int, error)
	// Flush discards everything received but not yet read.
	Flush() error
}

// Device is a Channel with a connection lifecycle.
type Device interface {
	Channel
	Connect() error
	Close() error
	IsConnected() bool
}

// Ensure Mock implements Channel.
var _ Channel = (*Mock)(nil)
