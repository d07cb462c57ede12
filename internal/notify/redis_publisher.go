// Package notify fans lifecycle events out to external listeners.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-tracker/internal/events"
)

// RedisPublisher publishes every lifecycle event as JSON on a Redis channel.
type RedisPublisher struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

// NewRedisPublisher returns a publisher. A nil client yields a no-op publisher.
func NewRedisPublisher(client *redis.Client, channel string, logger *zap.Logger) *RedisPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisPublisher{client: client, channel: channel, logger: logger}
}

// Register subscribes the publisher to all lifecycle events.
func (p *RedisPublisher) Register(dispatcher events.Dispatcher) {
	if p.client == nil || dispatcher == nil {
		return
	}
	events.SubscribeAll(dispatcher, p.Handle)
}

// Handle publishes event.
func (p *RedisPublisher) Handle(ctx context.Context, event events.Event) error {
	if p.client == nil {
		return nil
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	receivers, err := p.client.Publish(ctx, p.channel, body).Result()
	if err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	p.logger.Debug("event published",
		zap.String("channel", p.channel),
		zap.String("event_type", string(event.Type)),
		zap.Int64("receivers", receivers))
	return nil
}
