package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/momo-payment-gateway/internal/config"
	"github.com/segmentio/kafka-go"
)

// EventProducer publishes domain events to the event bus, holding one writer
// per configured topic.
type EventProducer struct {
	logger  *slog.Logger
	writers map[string]KafkaWriter
}

// NewEventProducer creates the event producer and ensures all configured
// topics exist.
func NewEventProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*EventProducer, error) {
	topics := []string{cfg.TransactionTopic, cfg.MandateTopic, cfg.OTPTopic}
	for _, topic := range topics {
		if topic == "" {
			return nil, fmt.Errorf("kafka event topic is not configured")
		}
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for event producer: %w", err)
	}
	defer conn.Close()

	writers := make(map[string]KafkaWriter, len(topics))
	for _, topic := range topics {
		if err := createKafkaTopicIfNotExists(conn, topic, cfg.NumPartitions, cfg.ReplicationFactor, logger); err != nil {
			return nil, fmt.Errorf("failed to ensure topic %s exists for event producer: %w", topic, err)
		}
		writers[topic] = newTopicWriter(cfg, topic, logger)
	}

	return &EventProducer{
		logger:  logger,
		writers: writers,
	}, nil
}

// newTopicWriter builds the writer for one topic. Transaction and mandate
// status events tolerate async delivery, but code-issuance events must be
// written synchronously: the issuing call fails the request when the
// notification event cannot be delivered, which requires observing the
// write error inline.
func newTopicWriter(cfg *config.KafkaConfig, topic string, logger *slog.Logger) *kafka.Writer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: cfg.MaxWait,
	}
	if topic != cfg.OTPTopic {
		w.Async = true
		w.Completion = func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error("Failed to write messages asynchronously", "topic", topic, "error", err, "count", len(messages))
			} else {
				logger.Debug("Successfully wrote messages asynchronously", "topic", topic, "count", len(messages))
			}
		}
	}
	return w
}

// Publish serializes the value as JSON and writes it to the named topic
func (p *EventProducer) Publish(ctx context.Context, topic string, key string, value interface{}) error {
	writer, ok := p.writers[topic]
	if !ok {
		return fmt.Errorf("no writer configured for topic %s", topic)
	}

	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal event value for topic %s: %w", topic, err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
	}

	if err := writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish event",
			"topic", topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish event to %s: %w", topic, err)
	}

	p.logger.Debug("Published event",
		"topic", topic,
		"key", key,
	)
	return nil
}

// Close closes every topic writer, returning the first error encountered
func (p *EventProducer) Close() error {
	var firstErr error
	for topic, writer := range p.writers {
		p.logger.Info("Closing event producer writer", "topic", topic)
		if err := writer.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close kafka writer for topic %s: %w", topic, err)
		}
	}
	return firstErr
}
