package relay

import (
	"testing"
	"time"

	"github.com/itohio/kvmswitch/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMock_GracefulShutdown tests that the traffic generator produces mouse
// frames and stops when Close() is called.
func TestMock_GracefulShutdown(t *testing.T) {
	m := NewMock(&config.MockConfig{
		Period:     time.Millisecond,
		BufferSize: 1024,
	})
	require.NoError(t, m.Connect())

	assert.Eventually(t, func() bool { return m.Pending() >= 3*FrameLen }, 5*time.Second, time.Millisecond)

	done := make(chan struct{})
	go func() {
		defer close(done)
		m.Close()
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Mock did not close within timeout")
	}

	require.NoError(t, m.Flush())
	time.Sleep(10 * time.Millisecond)
	assert.Zero(t, m.Pending(), "generator should be stopped")

	// Generated frames are plain movement, never middle clicks.
	m2 := NewMock(&config.MockConfig{Period: time.Millisecond, BufferSize: 64})
	require.NoError(t, m2.Connect())
	assert.Eventually(t, func() bool { return m2.Pending() >= FrameLen }, 5*time.Second, time.Millisecond)
	require.NoError(t, m2.Close())

	p := make([]byte, FrameLen)
	n, err := m2.Read(p)
	require.NoError(t, err)
	require.Equal(t, FrameLen, n)
	assert.False(t, IsMiddleClick(p))
}
