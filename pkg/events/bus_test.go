package events

import (
	"testing"
	"time"

	"github.com/itohio/kvmswitch/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_PublishSubscribe(t *testing.T) {
	bus := New()
	received := make(chan SwitchedEvent, 1)

	unsub := bus.Subscribe(func(e SwitchedEvent) {
		received <- e
	})
	defer unsub()

	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	bus.Publish(SwitchedEvent{Target: state.TargetB, At: at})

	select {
	case got := <-received:
		assert.Equal(t, state.TargetB, got.Target)
		assert.Equal(t, at, got.At)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestBus_TypedDelivery(t *testing.T) {
	bus := New()
	toggles := make(chan FeatureToggledEvent, 4)
	restarts := make(chan RestartingEvent, 4)

	defer bus.Subscribe(func(e FeatureToggledEvent) { toggles <- e })()
	defer bus.Subscribe(func(e RestartingEvent) { restarts <- e })()

	bus.Publish(FeatureToggledEvent{Feature: FeatureLed, Enabled: false})
	bus.Publish(RestartingEvent{})

	select {
	case got := <-toggles:
		assert.Equal(t, FeatureLed, got.Feature)
		assert.False(t, got.Enabled)
	case <-time.After(time.Second):
		t.Fatal("toggle not delivered")
	}
	select {
	case <-restarts:
	case <-time.After(time.Second):
		t.Fatal("restart not delivered")
	}
	assert.Empty(t, toggles)
}

func TestBus_UnknownHandler(t *testing.T) {
	bus := New()
	unsub := bus.Subscribe(func(int) {})
	require.NotNil(t, unsub)
	unsub()
}

func TestSubscribeToChannel(t *testing.T) {
	bus := New()
	ch := make(chan any, 1)

	unsub := SubscribeToChannel[RejectedEvent](bus, ch)
	defer unsub()

	bus.Publish(RejectedEvent{Action: "switch"})

	select {
	case got := <-ch:
		ev, ok := got.(RejectedEvent)
		require.True(t, ok)
		assert.Equal(t, "switch", ev.Action)
	case <-time.After(time.Second):
		t.Fatal("event not forwarded")
	}
}

func TestEventTypes(t *testing.T) {
	assert.Equal(t, TypeSwitched, SwitchedEvent{}.Type())
	assert.Equal(t, TypeFeatureToggled, FeatureToggledEvent{}.Type())
	assert.Equal(t, TypeRestarting, RestartingEvent{}.Type())
	assert.Equal(t, TypeRejected, RejectedEvent{}.Type())
}
