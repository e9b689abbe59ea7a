package events

import (
	"time"
)

// Payload is the body of an event. It names its own event type and the key
// of the stream it belongs to: an order ref, a material or a production id.
type Payload interface {
	EventType() string
	StreamKey() string
}

// Event is an immutable fact about an order plan or production record
type Event interface {
	Type() string
	StreamID() string
	Data() Payload
	Timestamp() time.Time
	Version() int
}

// EventHandler receives events for the types it subscribed to
type EventHandler interface {
	Handle(event Event) error
	CanHandle(eventType string) bool
}

// EventStore appends events per stream and fans them out to subscribers
type EventStore interface {
	AppendEvent(streamID string, event Event) error
	ReadEvents(streamID string, fromVersion int) ([]Event, error)
	ReadAllEvents(fromPosition int) ([]Event, error)
	Subscribe(eventTypes []string, handler EventHandler) error
	Unsubscribe(handler EventHandler) error
}

// Recorded is the Event implementation of this package. Version is the
// position within its stream, assigned when a store appends it.
type Recorded struct {
	Payload    Payload
	Stream     string
	RecordedAt time.Time
	Seq        int
}

func (e Recorded) Type() string         { return e.Payload.EventType() }
func (e Recorded) StreamID() string     { return e.Stream }
func (e Recorded) Data() Payload        { return e.Payload }
func (e Recorded) Timestamp() time.Time { return e.RecordedAt }
func (e Recorded) Version() int         { return e.Seq }

// inStream returns a copy of e placed at position seq of stream
func (e Recorded) inStream(stream string, seq int) Recorded {
	e.Stream = stream
	e.Seq = seq
	return e
}

// NewEvent wraps payload as an unsequenced event on the payload's own stream
func NewEvent(payload Payload) Event {
	return Recorded{
		Payload:    payload,
		Stream:     payload.StreamKey(),
		RecordedAt: time.Now().UTC(),
	}
}
