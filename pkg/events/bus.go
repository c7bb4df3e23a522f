// Package events broadcasts switch notifications to observers such as the
// desktop panel.
package events

import (
	"github.com/kelindar/event"
)

// Bus wraps kelindar/event dispatcher for event broadcasting.
type Bus struct {
	dispatcher *event.Dispatcher
}

// New creates a new event bus.
func New() *Bus {
	return &Bus{
		dispatcher: event.NewDispatcher(),
	}
}

// Publish publishes an event to all subscribers.
func (b *Bus) Publish(ev Event) {
	switch e := ev.(type) {
	case SwitchedEvent:
		event.Publish(b.dispatcher, e)
	case FeatureToggledEvent:
		event.Publish(b.dispatcher, e)
	case RestartingEvent:
		event.Publish(b.dispatcher, e)
	case RejectedEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe registers handler for the event type of its argument and
// returns an unsubscribe function. Unknown handler types are ignored.
func (b *Bus) Subscribe(handler any) func() {
	switch h := handler.(type) {
	case func(SwitchedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(FeatureToggledEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(RestartingEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(RejectedEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		return func() {}
	}
}

// SubscribeToChannel forwards events of type T to ch without blocking;
// events are dropped while ch is full.
func SubscribeToChannel[T Event](bus *Bus, ch chan<- any) func() {
	return event.Subscribe(bus.dispatcher, func(e T) {
		select {
		case ch <- e:
		default:
		}
	})
}
