package main

import (
	"context"
	"fmt"

	"github.com/itohio/kvmswitch/pkg/config"
	"github.com/itohio/kvmswitch/pkg/events"
	"github.com/itohio/kvmswitch/pkg/kvm"
	"github.com/itohio/kvmswitch/pkg/pixel"
	"github.com/itohio/kvmswitch/pkg/relay"
)

// session tracks one running core and its channels for graceful shutdown.
type session struct {
	sys     *kvm.System
	devices []relay.Device
	mock    *relay.Mock // lower channel in mock mode, nil otherwise
	cancel  context.CancelFunc
	done    chan struct{} // Closed when the core returned
}

// openDevices creates the lower, upper A and upper B channels.
func openDevices(cfg *config.Config, useMock bool) ([]relay.Device, *relay.Mock) {
	if useMock {
		// The lower device never echoes, otherwise echoing targets would
		// bounce traffic forever. Targets do not generate traffic.
		down := config.MockConfig{Period: cfg.Mock.Period, BufferSize: cfg.Mock.BufferSize}
		up := config.MockConfig{Echo: cfg.Mock.Echo, BufferSize: cfg.Mock.BufferSize}
		lower := relay.NewMock(&down)
		return []relay.Device{lower, relay.NewMock(&up), relay.NewMock(&up)}, lower
	}

	ports := []string{cfg.Serial.Lower, cfg.Serial.UpperA, cfg.Serial.UpperB}
	devices := make([]relay.Device, len(ports))
	for i, port := range ports {
		devices[i] = relay.NewSerial(port, cfg.Serial.BaudRate, relay.DefaultBufferSize)
	}
	return devices, nil
}

// startSession connects all channels and runs the core on them.
// restart is handed to the core as its restart collaborator.
func startSession(cfg *config.Config, useMock bool, emitter pixel.Emitter, bus *events.Bus, restart func()) (*session, error) {
	devices, mock := openDevices(cfg, useMock)
	names := []string{"lower", "upper A", "upper B"}
	for i, d := range devices {
		if err := d.Connect(); err != nil {
			closeDevices(devices[:i])
			return nil, fmt.Errorf("failed to connect %s channel: %w", names[i], err)
		}
	}

	s := &session{
		devices: devices,
		mock:    mock,
		done:    make(chan struct{}),
	}
	s.sys = kvm.NewSystem(cfg, relay.Channels{
		Lower:  devices[0],
		UpperA: devices[1],
		UpperB: devices[2],
	}, kvm.Options{
		Emitter:   emitter,
		Restarter: kvm.RestartFunc(restart),
		Notifier:  bus,
	})

	var ctx context.Context
	ctx, s.cancel = context.WithCancel(context.Background())
	go func() {
		defer close(s.done)
		s.sys.Run(ctx)
	}()
	return s, nil
}

// stop cancels the core, waits for all workers and closes the channels.
func (s *session) stop() {
	s.cancel()
	<-s.done
	closeDevices(s.devices)
}

// injectMiddleClick feeds one mouse-middle frame into the mock lower
// channel. It reports false when the frame did not fit or no mock is in use.
func (s *session) injectMiddleClick() bool {
	if s.mock == nil {
		return false
	}
	frame := relay.MouseFrame(0x04, 0, 0, 0)
	return s.mock.Inject(frame) == len(frame)
}

// drain discards what the core wrote to mock channels so the recorded
// history does not grow while the panel runs.
func (s *session) drain() {
	for _, d := range s.devices {
		if m, ok := d.(*relay.Mock); ok {
			m.Written()
		}
	}
}

func closeDevices(devices []relay.Device) {
	for _, d := range devices {
		d.Close()
	}
}
