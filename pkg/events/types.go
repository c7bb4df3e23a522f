package events

import (
	"time"

	"github.com/itohio/kvmswitch/pkg/state"
)

// Event type constants for kelindar/event.
const (
	TypeSwitched uint32 = iota + 1
	TypeFeatureToggled
	TypeRestarting
	TypeRejected
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// Feature names a toggleable feature.
type Feature string

const (
	FeatureMouseMiddle Feature = "mouse-middle"
	FeatureLed         Feature = "led"
)

// SwitchedEvent is published after the active target changed.
type SwitchedEvent struct {
	Target state.Target
	At     time.Time
}

// Type returns the event type identifier for SwitchedEvent.
func (e SwitchedEvent) Type() uint32 { return TypeSwitched }

// FeatureToggledEvent is published after a feature flag changed.
type FeatureToggledEvent struct {
	Feature Feature
	Enabled bool
	At      time.Time
}

// Type returns the event type identifier for FeatureToggledEvent.
func (e FeatureToggledEvent) Type() uint32 { return TypeFeatureToggled }

// RestartingEvent is published right before the restart collaborator runs.
type RestartingEvent struct {
	At time.Time
}

// Type returns the event type identifier for RestartingEvent.
func (e RestartingEvent) Type() uint32 { return TypeRestarting }

// RejectedEvent is published when the lockout refused a request.
type RejectedEvent struct {
	Action string
	At     time.Time
}

// Type returns the event type identifier for RejectedEvent.
func (e RejectedEvent) Type() uint32 { return TypeRejected }
