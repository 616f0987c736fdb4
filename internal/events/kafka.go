package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink publishes transitional events to a Kafka topic, keyed by session
// so a session's events stay ordered within one partition. Per-frame events
// are dropped unless IncludeFrames is set.
type KafkaSink struct {
	writer        messageWriter
	IncludeFrames bool
}

// NewKafkaSink creates a sink writing to topic on brokers. Writes are
// asynchronous so an unreachable broker never stalls the frame loop; delivery
// failures are logged to logger.
func NewKafkaSink(brokers []string, topic string, logger *slog.Logger) *KafkaSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &KafkaSink{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Compression:  kafka.Snappy,
			BatchTimeout: 100 * time.Millisecond,
			Async:        true,
			Completion:   completionLogger(logger, topic),
		},
	}
}

func completionLogger(logger *slog.Logger, topic string) func([]kafka.Message, error) {
	return func(msgs []kafka.Message, err error) {
		if err == nil {
			return
		}
		logger.Warn("kafka delivery failed", "topic", topic, "messages", len(msgs), "error", err)
	}
}

// Publish encodes e as JSON and writes it.
func (s *KafkaSink) Publish(ctx context.Context, e Event) error {
	if !e.Kind.Transitional() && !s.IncludeFrames {
		return nil
	}

	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(e.SessionID),
		Value: payload,
		Time:  e.Timestamp,
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(e.Kind)},
		},
	}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s event: %w", e.Kind, err)
	}
	return nil
}

// Close flushes and releases the writer.
func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
