package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// MessageWriter is the part of *kafka.Writer the publisher needs
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewKafkaWriter creates a writer for topic on the given brokers
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
}

// envelope is the wire form of an event on the topic
type envelope struct {
	Type      string    `json:"type"`
	StreamID  string    `json:"stream_id"`
	Version   int       `json:"version"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// KafkaPublisher forwards events to a Kafka topic keyed by stream id, so
// every event of one production record lands on the same partition.
type KafkaPublisher struct {
	writer  MessageWriter
	types   map[string]bool
	timeout time.Duration
	logger  zerolog.Logger
}

// NewKafkaPublisher creates a publisher for eventTypes, or for every type when none are given
func NewKafkaPublisher(writer MessageWriter, logger zerolog.Logger, eventTypes ...string) *KafkaPublisher {
	types := make(map[string]bool, len(eventTypes))
	for _, t := range eventTypes {
		types[t] = true
	}
	return &KafkaPublisher{writer: writer, types: types, timeout: 5 * time.Second, logger: logger}
}

var _ EventHandler = (*KafkaPublisher)(nil)

func (p *KafkaPublisher) CanHandle(eventType string) bool {
	return len(p.types) == 0 || p.types[eventType]
}

func (p *KafkaPublisher) Handle(event Event) error {
	value, err := json.Marshal(envelope{
		Type:      event.Type(),
		StreamID:  event.StreamID(),
		Version:   event.Version(),
		Timestamp: event.Timestamp(),
		Data:      event.Data(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event.Type(), err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(event.StreamID()),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type())},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type(), err)
	}

	p.logger.Debug().
		Str("event_type", event.Type()).
		Str("stream_id", event.StreamID()).
		Msg("event published")
	return nil
}

// Close closes the underlying writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
