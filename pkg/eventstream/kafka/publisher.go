// Package kafka publishes session events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/grouptheoryco/verbatim/pkg/eventstream"
)

// Publisher writes SessionSavedEvents to a Kafka topic, keyed by
// study and session so all saves of one session land on the same
// partition in order.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher creates a Kafka-backed publisher for the given brokers
// and topic.
func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.Hash{},
		},
	}
}

// PublishSessionSaved serializes the event and writes it to the topic.
func (p *Publisher) PublishSessionSaved(ctx context.Context, event *eventstream.SessionSavedEvent) error {
	if event == nil {
		return eventstream.ErrNilSessionEvent
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal session event: %w", err)
	}

	key := event.Session.StudyID + "/" + event.Session.SessionID
	message := kafka.Message{
		Key:   []byte(key),
		Value: payload,
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to publish session event: %w", err)
	}

	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
