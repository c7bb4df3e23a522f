//go:build !tinygo

package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSerial_Defaults(t *testing.T) {
	s := NewSerial("/dev/null-port", 0, 0)
	assert.Equal(t, "/dev/null-port", s.Name())
	assert.Equal(t, DefaultBaudRate, s.baudRate)
	assert.Equal(t, DefaultBufferSize, s.rx.size)
	assert.False(t, s.IsConnected())
}

func TestSerial_NotConnected(t *testing.T) {
	s := NewSerial("/dev/null-port", 9600, 16)

	_, err := s.Read(make([]byte, 4))
	assert.ErrorIs(t, err, ErrNotConnected)

	_, err = s.Write([]byte{1})
	assert.ErrorIs(t, err, ErrNotConnected)

	require.NoError(t, s.Flush())
	require.NoError(t, s.Close())
}

func TestSerial_ConnectMissingPort(t *testing.T) {
	s := NewSerial("/dev/kvmswitch-does-not-exist", 0, 0)
	assert.Error(t, s.Connect())
	assert.False(t, s.IsConnected())
}
