package producers

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// EventPublisher publishes domain events on named topics. This core only
// publishes; consumption belongs to downstream collaborators.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key string, value interface{}) error
	Close() error
}

// KafkaWriter wraps kafka.Writer methods for testing
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}
