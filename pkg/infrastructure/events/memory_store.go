package events

import (
	"sync"

	"github.com/rs/zerolog"
)

// InMemoryEventStore keeps every stream in memory and notifies subscribers
// asynchronously. Flush waits for in-flight handlers.
type InMemoryEventStore struct {
	streams     map[string][]Event
	subscribers map[string][]EventHandler
	mutex       sync.RWMutex
	allEvents   []Event
	inflight    sync.WaitGroup
	logger      zerolog.Logger
}

func NewInMemoryEventStore(logger zerolog.Logger) *InMemoryEventStore {
	return &InMemoryEventStore{
		streams:     make(map[string][]Event),
		subscribers: make(map[string][]EventHandler),
		allEvents:   make([]Event, 0),
		logger:      logger,
	}
}

var _ EventStore = (*InMemoryEventStore)(nil)

func (s *InMemoryEventStore) AppendEvent(streamID string, event Event) error {
	s.mutex.Lock()

	eventWithVersion := Recorded{
		Payload:    event.Data(),
		RecordedAt: event.Timestamp(),
	}.inStream(streamID, len(s.streams[streamID])+1)

	s.streams[streamID] = append(s.streams[streamID], eventWithVersion)
	s.allEvents = append(s.allEvents, eventWithVersion)

	var handlers []EventHandler
	for _, h := range s.subscribers[eventWithVersion.Type()] {
		if h.CanHandle(eventWithVersion.Type()) {
			handlers = append(handlers, h)
		}
	}
	s.inflight.Add(len(handlers))
	s.mutex.Unlock()

	for _, h := range handlers {
		go s.dispatch(h, eventWithVersion)
	}
	return nil
}

func (s *InMemoryEventStore) dispatch(h EventHandler, e Event) {
	defer s.inflight.Done()
	if err := h.Handle(e); err != nil {
		s.logger.Error().Err(err).
			Str("event_type", e.Type()).
			Str("stream_id", e.StreamID()).
			Msg("event handler failed")
	}
}

// Flush blocks until every handler started so far has returned
func (s *InMemoryEventStore) Flush() {
	s.inflight.Wait()
}

func (s *InMemoryEventStore) ReadEvents(streamID string, fromVersion int) ([]Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	events, exists := s.streams[streamID]
	if !exists {
		return []Event{}, nil
	}

	if fromVersion < 1 {
		fromVersion = 1
	}

	if fromVersion > len(events) {
		return []Event{}, nil
	}

	return append([]Event(nil), events[fromVersion-1:]...), nil
}

func (s *InMemoryEventStore) ReadAllEvents(fromPosition int) ([]Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if fromPosition < 0 {
		fromPosition = 0
	}

	if fromPosition >= len(s.allEvents) {
		return []Event{}, nil
	}

	return append([]Event(nil), s.allEvents[fromPosition:]...), nil
}

func (s *InMemoryEventStore) Subscribe(eventTypes []string, handler EventHandler) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, eventType := range eventTypes {
		s.subscribers[eventType] = append(s.subscribers[eventType], handler)
	}

	return nil
}

func (s *InMemoryEventStore) Unsubscribe(handler EventHandler) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for eventType, handlers := range s.subscribers {
		kept := make([]EventHandler, 0, len(handlers))
		for _, h := range handlers {
			if h != handler {
				kept = append(kept, h)
			}
		}
		s.subscribers[eventType] = kept
	}

	return nil
}
