package events

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus(t *testing.T) {
	bus := NewEventBus(nil)

	var received *Event
	var callCount int

	bus.Subscribe("test_event", func(event *Event) error {
		received = event
		callCount++
		return nil
	})

	require.NoError(t, bus.PublishJSON("test_event", map[string]string{"foo": "bar"}))
	assert.Equal(t, 1, callCount)
	require.NotNil(t, received)
	assert.Equal(t, "test_event", received.Type)

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(received.Payload, &decoded))
	assert.Equal(t, "bar", decoded["foo"])
}

func TestEventBusMultipleSubscribers(t *testing.T) {
	bus := NewEventBus(nil)
	var count1, count2 int

	bus.Subscribe("event", func(_ *Event) error { count1++; return errors.New("ignored") })
	bus.Subscribe("event", func(_ *Event) error { count2++; return nil })

	bus.Publish(&Event{Type: "event"})

	assert.Equal(t, 1, count1)
	assert.Equal(t, 1, count2)
}

func TestEventBusNoSubscribers(t *testing.T) {
	bus := NewEventBus(nil)
	assert.NotPanics(t, func() { bus.Publish(&Event{Type: "unknown"}) })
	assert.NoError(t, bus.PublishJSON("unknown", nil))

	var nilBus *EventBus
	assert.NoError(t, nilBus.PublishJSON(EventBookingCreated, nil))
}

func TestSubscribeAll(t *testing.T) {
	bus := NewEventBus(nil)
	seen := map[string]int{}
	bus.SubscribeAll(func(e *Event) error { seen[e.Type]++; return nil })

	for _, typ := range AllTypes {
		require.NoError(t, bus.PublishJSON(typ, struct{}{}))
	}
	for _, typ := range AllTypes {
		assert.Equal(t, 1, seen[typ], typ)
	}
}

func TestNewJSONEventKeys(t *testing.T) {
	event, err := NewJSONEvent(EventBookingApproved, BookingEventPayload{BookingID: 123, Status: "APPROVED", Start: time.Unix(0, 0).UTC()})
	require.NoError(t, err)
	assert.Equal(t, EventBookingApproved, event.Type)
	assert.Equal(t, "123", event.Key)

	var decoded BookingEventPayload
	require.NoError(t, json.Unmarshal(event.Payload, &decoded))
	assert.Equal(t, int64(123), decoded.BookingID)
	assert.Equal(t, "APPROVED", decoded.Status)

	event, err = NewJSONEvent(EventCommentAdded, CommentEventPayload{CommentID: 5, ItemID: 42})
	require.NoError(t, err)
	assert.Equal(t, "42", event.Key)

	event, err = NewJSONEvent("plain", map[string]int{"a": 1})
	require.NoError(t, err)
	assert.Empty(t, event.Key)

	_, err = NewJSONEvent("bad", make(chan int))
	assert.Error(t, err)
}
