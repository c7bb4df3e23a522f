//go:build !tinygo

package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// readTimeout bounds a blocking port read so the reader notices Close.
const readTimeout = 50 * time.Millisecond

// ErrNotConnected is returned by Serial operations before Connect.
var ErrNotConnected = errors.New("not connected")

// Ensure Serial implements Device.
var _ Device = (*Serial)(nil)

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Serial is a Channel backed by a host serial port. A background reader
// moves received bytes into a bounded buffer, so Read never blocks.
type Serial struct {
	port     string
	baudRate int

	rx        *queue
	conn      serial.Port
	mu        sync.RWMutex
	cancel    context.CancelFunc
	done      chan struct{}
	connected bool
}

// NewSerial creates a Serial for the given port. Zero values select the
// default baud rate and buffer size.
func NewSerial(port string, baudRate int, bufSize int) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}

	return &Serial{
		port:     port,
		baudRate: baudRate,
		rx:       newQueue(bufSize),
	}
}

// Ports returns a list of available serial ports. USB adapters are
// described by their product name and VID:PID.
func Ports() ([]Port, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err == nil {
		result := make([]Port, 0, len(details))
		for _, d := range details {
			desc := d.Name
			if d.IsUSB {
				desc = fmt.Sprintf("%s (%s:%s %s)", d.Name, d.VID, d.PID, d.Product)
			}
			result = append(result, Port{Name: d.Name, Description: desc})
		}
		return result, nil
	}

	names, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(names))
	for _, name := range names {
		result = append(result, Port{Name: name, Description: name})
	}
	return result, nil
}

// Name returns the port name.
func (d *Serial) Name() string { return d.port }

// Connect opens the port and starts the background reader.
func (d *Serial) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return fmt.Errorf("already connected")
	}

	port, err := serial.Open(d.port, &serial.Mode{
		BaudRate: d.baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", d.port, err)
	}
	if err := port.SetReadTimeout(readTimeout); err != nil {
		port.Close()
		return fmt.Errorf("failed to set read timeout on %s: %w", d.port, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	d.conn = port
	d.cancel = cancel
	d.done = make(chan struct{})
	d.connected = true
	d.rx.reset()

	go d.readLoop(ctx, port, d.done)

	return nil
}

// Close stops the reader and closes the port.
func (d *Serial) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return nil
	}

	d.cancel()

	var err error
	if d.conn != nil {
		if err = d.conn.Close(); err != nil {
			log.Printf("Error closing serial port %s: %v", d.port, err)
		}
		d.conn = nil
	}
	<-d.done

	d.connected = false
	return err
}

// IsConnected returns whether the port is open.
func (d *Serial) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}

// Read implements Channel.
func (d *Serial) Read(p []byte) (int, error) {
	if !d.IsConnected() {
		return 0, ErrNotConnected
	}
	return d.rx.pop(p)
}

// Write implements Channel.
func (d *Serial) Write(p []byte) (int, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.connected {
		return 0, ErrNotConnected
	}

	n, err := d.conn.Write(p)
	if err != nil {
		return n, fmt.Errorf("failed to write to %s: %w", d.port, err)
	}
	return n, nil
}

// Flush implements Channel. It drops the receive buffer and whatever the
// driver still holds.
func (d *Serial) Flush() error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	d.rx.reset()
	if !d.connected {
		return nil
	}
	if err := d.conn.ResetInputBuffer(); err != nil {
		return fmt.Errorf("failed to reset input buffer of %s: %w", d.port, err)
	}
	return nil
}

// readLoop moves bytes from the port into the receive buffer.
func (d *Serial) readLoop(ctx context.Context, port serial.Port, done chan<- struct{}) {
	defer close(done)
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Panic in serial reader of %s: %v", d.port, r)
		}
	}()

	buf := make([]byte, 256)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n, err := port.Read(buf)
		if err != nil {
			if ctx.Err() == nil && !errors.Is(err, io.EOF) {
				log.Printf("Error reading from serial port %s: %v", d.port, err)
			}
			return
		}
		if n > 0 {
			d.rx.push(buf[:n])
		}
	}
}
