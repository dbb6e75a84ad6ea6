package events

import "shareit/internal/metrics"

// CountEvents increments the published-events counter for every known type.
func CountEvents(bus *EventBus) {
	bus.SubscribeAll(func(event *Event) error {
		metrics.IncEvent(event.Type)
		return nil
	})
}
