package main

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/itohio/kvmswitch/pkg/config"
	"github.com/itohio/kvmswitch/pkg/events"
	"github.com/itohio/kvmswitch/pkg/relay"
	"github.com/itohio/kvmswitch/pkg/scope"
	"github.com/itohio/kvmswitch/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockConfig() *config.Config {
	cfg := config.Default()
	cfg.Switch.Lockout = 100 * time.Millisecond
	cfg.Switch.Settle = time.Millisecond
	cfg.Relay.Sleep = time.Millisecond
	cfg.Mock.Period = 5 * time.Millisecond
	cfg.LED.BurstPeriod = 2 * time.Millisecond
	cfg.LED.BurstOn = time.Millisecond
	cfg.LED.BurstPause = time.Millisecond
	return cfg
}

func TestOpenDevices_Mock(t *testing.T) {
	cfg := mockConfig()
	devices, lower := openDevices(cfg, true)
	require.Len(t, devices, 3)
	require.NotNil(t, lower)
	assert.Same(t, devices[0], relay.Device(lower))

	for _, d := range devices {
		require.NoError(t, d.Connect())
	}
	defer closeDevices(devices)

	// Targets echo, the lower device does not.
	_, err := devices[1].Write([]byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 3, devices[1].(*relay.Mock).Pending())

	_, err = lower.Write([]byte{1, 2, 3})
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return lower.Pending() >= relay.FrameLen }, time.Second, time.Millisecond,
		"lower channel generates frames")
}

func TestOpenDevices_Serial(t *testing.T) {
	cfg := mockConfig()
	devices, lower := openDevices(cfg, false)
	require.Len(t, devices, 3)
	assert.Nil(t, lower)
	assert.Equal(t, cfg.Serial.Lower, devices[0].(*relay.Serial).Name())
	assert.Equal(t, cfg.Serial.UpperB, devices[2].(*relay.Serial).Name())
}

func TestStartSession_MissingPort(t *testing.T) {
	cfg := mockConfig()
	cfg.Serial.Lower = "/dev/kvmswitch-missing"

	s, err := startSession(cfg, false, nil, nil, func() {})
	require.Error(t, err)
	assert.Nil(t, s)
	assert.Contains(t, err.Error(), "lower")
}

func TestSession_MiddleClickSwitches(t *testing.T) {
	bus := events.New()
	switched := make(chan events.SwitchedEvent, 4)
	defer bus.Subscribe(func(e events.SwitchedEvent) { switched <- e })()

	trace := scope.NewTrace(256, nil)
	var restarts atomic.Int32
	s, err := startSession(mockConfig(), true, trace, bus, func() { restarts.Add(1) })
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		s.drain()
		return s.sys.Snapshot().Relay.Down > 0
	}, time.Second, time.Millisecond, "generated frames reach target A")

	require.True(t, s.injectMiddleClick())

	select {
	case e := <-switched:
		assert.Equal(t, state.TargetB, e.Target)
	case <-time.After(2 * time.Second):
		t.Fatal("no switch after middle click")
	}
	assert.Equal(t, state.TargetB, s.sys.State.Target())

	s.stop()
	for _, d := range s.devices {
		assert.False(t, d.IsConnected())
	}
	_, ok := trace.Last()
	assert.True(t, ok, "pixel frames were traced")
	assert.Zero(t, restarts.Load())
}

func TestSession_InjectWithoutMock(t *testing.T) {
	s := &session{}
	assert.False(t, s.injectMiddleClick())
}
