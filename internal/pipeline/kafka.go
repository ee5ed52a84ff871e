package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/cwpoller/cwpoller/internal/emitter"
)

var _ emitter.Pipeline = (*Kafka)(nil)

// Kafka publishes records as JSON messages. Messages are keyed by the
// originating stream when present so a stream's records stay ordered within
// one partition, falling back to the tag.
type Kafka struct {
	ctx    context.Context
	writer *kafka.Writer
}

// NewKafka creates a Kafka pipeline for the given brokers and topic. ctx
// bounds in-flight writes: cancelling it releases an Emit blocked on an
// unresponsive broker instead of holding up shutdown.
func NewKafka(ctx context.Context, brokers []string, topic string) *Kafka {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		MaxAttempts:            5,
		ReadTimeout:            10 * time.Second,
		WriteTimeout:           10 * time.Second,
		AllowAutoTopicCreation: true,
	}
	return &Kafka{ctx: ctx, writer: w}
}

func (k *Kafka) Emit(tag string, eventTime time.Time, fields map[string]any) error {
	value, err := json.Marshal(envelope{Tag: tag, Time: eventTime.Unix(), Record: fields})
	if err != nil {
		return fmt.Errorf("marshaling record: %w", err)
	}
	key := tag
	if s, ok := fields[emitter.StreamKey].(string); ok && s != "" {
		key = s
	}
	if err := k.writer.WriteMessages(k.ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
	}); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	return nil
}

// Close flushes and releases the underlying writer.
func (k *Kafka) Close() error {
	return k.writer.Close()
}
