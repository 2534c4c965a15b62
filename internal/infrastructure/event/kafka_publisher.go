package event

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/storefront/backend/internal/domain/shared"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

// Message header names
const (
	HeaderEventType = "event_type"
	HeaderEventID   = "event_id"
)

// MessageWriter is the subset of *kafka.Writer the publisher needs
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConfig configures the lifecycle event producer
type KafkaConfig struct {
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
}

// NewKafkaWriter builds a writer that balances on the message key, so every
// event of one order lands on the same partition.
func NewKafkaWriter(cfg KafkaConfig) *kafka.Writer {
	timeout := cfg.WriteTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		WriteTimeout:           timeout,
		AllowAutoTopicCreation: true,
	}
}

// KafkaPublisher publishes lifecycle events to a Kafka topic
type KafkaPublisher struct {
	writer     MessageWriter
	serializer *EventSerializer
	logger     *zap.Logger
}

// NewKafkaPublisher creates a new KafkaPublisher
func NewKafkaPublisher(writer MessageWriter, serializer *EventSerializer, logger *zap.Logger) *KafkaPublisher {
	if serializer == nil {
		serializer = NewEventSerializer()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KafkaPublisher{
		writer:     writer,
		serializer: serializer,
		logger:     logger,
	}
}

// Publish writes all events in one batch. Trace context is injected into the
// message headers.
func (p *KafkaPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(events))
	for _, event := range events {
		value, err := p.serializer.Serialize(event)
		if err != nil {
			return err
		}
		key := shared.PartitionKey(event)

		headers := headerCarrier{
			{Key: HeaderEventType, Value: []byte(event.EventType())},
			{Key: HeaderEventID, Value: []byte(event.EventID().String())},
		}
		otel.GetTextMapPropagator().Inject(ctx, &headers)

		msgs = append(msgs, kafka.Message{
			Key:     []byte(key),
			Value:   value,
			Headers: headers,
			Time:    event.OccurredAt(),
		})
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("failed to write %d events to kafka: %w", len(msgs), err)
	}
	p.logger.Debug("Published lifecycle events", zap.Int("count", len(msgs)))
	return nil
}

// Close flushes and closes the writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

var _ shared.EventPublisher = (*KafkaPublisher)(nil)

// headerCarrier adapts Kafka headers to the OpenTelemetry propagation carrier
type headerCarrier []kafka.Header

func (c *headerCarrier) Get(key string) string {
	for _, h := range *c {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c *headerCarrier) Set(key, value string) {
	for i := range *c {
		if (*c)[i].Key == key {
			(*c)[i].Value = []byte(value)
			return
		}
	}
	*c = append(*c, kafka.Header{Key: key, Value: []byte(value)})
}

func (c *headerCarrier) Keys() []string {
	keys := make([]string, len(*c))
	for i, h := range *c {
		keys[i] = h.Key
	}
	return keys
}
