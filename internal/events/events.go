// Package events publishes analysis notifications to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/cognicore/textsuite/internal/logger"
)

// AnalysisCompleted is published after a topic analysis is archived.
type AnalysisCompleted struct {
	ReportID   string    `json:"report_id"`
	Name       string    `json:"name"`
	Topics     int       `json:"topics"`
	Coherence  float64   `json:"coherence"`
	Confidence string    `json:"confidence"`
	DurationMS int64     `json:"duration_ms"`
	At         time.Time `json:"at"`
}

// Publisher sends analysis events.
type Publisher interface {
	Publish(ctx context.Context, e AnalysisCompleted) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes JSON-encoded events to a Kafka topic, keyed by
// report id.
type Producer struct {
	writer messageWriter
	logger *slog.Logger
}

// NewProducer creates a Producer for the given topic.
func NewProducer(brokers []string, topic string) *Producer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		MaxAttempts:  3,
		RequiredAcks: kafka.RequireAll,
	}
	return &Producer{
		writer: w,
		logger: logger.WithComponent("kafka-producer").With("topic", topic),
	}
}

// Publish serialises e and writes it synchronously.
func (p *Producer) Publish(ctx context.Context, e AnalysisCompleted) error {
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(e.ReportID),
		Value: value,
		Time:  e.At,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("failed to publish event", "report_id", e.ReportID, "error", err)
		return fmt.Errorf("publishing to kafka: %w", err)
	}
	p.logger.Debug("event published", "report_id", e.ReportID, "value_size", len(value))
	return nil
}

// Close flushes pending writes and closes the underlying Kafka writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, AnalysisCompleted) error { return nil }
func (Nop) Close() error                                     { return nil }
