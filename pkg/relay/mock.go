package relay

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/itohio/kvmswitch/pkg/config"
)

// Mock simulates a serial channel for testing and development. Bytes
// written to it are recorded; received bytes are injected by the test or
// produced by the synthetic traffic generator.
type Mock struct {
	cfg *config.MockConfig
	rx  *queue

	mu        sync.Mutex
	tx        []byte
	flushes   int
	overflow  bool
	cancel    context.CancelFunc
	done      chan struct{}
	connected bool
	seq       byte
}

// NewMock creates a new mocked channel. A nil cfg disables synthetic
// traffic and echo.
func NewMock(cfg *config.MockConfig) *Mock {
	if cfg == nil {
		cfg = &config.MockConfig{BufferSize: DefaultBufferSize}
	}
	size := cfg.BufferSize
	if size <= 0 {
		size = DefaultBufferSize
	}
	return &Mock{
		cfg: cfg,
		rx:  newQueue(size),
	}
}

// Connect starts the traffic generator when a period is configured.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return fmt.Errorf("already connected")
	}
	m.connected = true

	if m.cfg.Period > 0 {
		ctx, cancel := context.WithCancel(context.Background())
		m.cancel = cancel
		m.done = make(chan struct{})
		go m.generate(ctx, m.done)
	}

	return nil
}

// Close stops the traffic generator.
func (m *Mock) Close() error {
	m.mu.Lock()
	if !m.connected {
		m.mu.Unlock()
		return nil
	}
	m.connected = false
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	return nil
}

// IsConnected returns whether Connect was called.
func (m *Mock) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// Read implements Channel.
func (m *Mock) Read(p []byte) (int, error) {
	m.mu.Lock()
	if m.overflow {
		m.overflow = false
		m.mu.Unlock()
		return 0, ErrOverflow
	}
	m.mu.Unlock()
	return m.rx.pop(p)
}

// Write implements Channel. With echo enabled the bytes are also received
// back.
func (m *Mock) Write(p []byte) (int, error) {
	m.mu.Lock()
	m.tx = append(m.tx, p...)
	echo := m.cfg.Echo
	m.mu.Unlock()

	if echo {
		m.rx.push(p)
	}
	return len(p), nil
}

// Flush implements Channel.
func (m *Mock) Flush() error {
	m.mu.Lock()
	m.flushes++
	m.overflow = false
	m.mu.Unlock()

	m.rx.reset()
	return nil
}

// Inject simulates received bytes and returns how many fit the buffer.
func (m *Mock) Inject(p []byte) int {
	return m.rx.push(p)
}

// InjectOverflow makes the next Read report a hardware overflow.
func (m *Mock) InjectOverflow() {
	m.mu.Lock()
	m.overflow = true
	m.mu.Unlock()
}

// Written drains and returns the bytes written so far.
func (m *Mock) Written() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.tx
	m.tx = nil
	return out
}

// Flushes returns how many times Flush was called.
func (m *Mock) Flushes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flushes
}

// Pending returns the number of received bytes not read yet.
func (m *Mock) Pending() int { return m.rx.len() }

// generate produces plain mouse movement frames.
func (m *Mock) generate(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(m.cfg.Period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.mu.Lock()
			m.seq++
			dx := m.seq
			m.mu.Unlock()
			// Buffer full is reported by the next Read.
			m.rx.push(MouseFrame(0, dx, 0, 0))
		}
	}
}
