package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/go-redis/redis/v8"

	"eventcircle/internal/domain"
)

// DefaultChannel is the Redis channel membership changes go to when none is configured.
const DefaultChannel = "event-membership"

// publisher is the subset of *redis.Client used for pub/sub.
type publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

type redisPublisher struct {
	client  publisher
	channel string
	logger  *slog.Logger
}

// NewRedisPublisher publishes JSON-encoded changes on channel.
func NewRedisPublisher(client publisher, channel string, logger *slog.Logger) domain.MembershipPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &redisPublisher{client: client, channel: channel, logger: logger}
}

func (p *redisPublisher) Publish(ctx context.Context, change domain.MembershipChange) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("marshal membership change: %w", err)
	}
	receivers, err := p.client.Publish(ctx, p.channel, payload).Result()
	if err != nil {
		return fmt.Errorf("publish membership change: %w", err)
	}
	p.logger.DebugContext(ctx, "membership change published",
		"channel", p.channel, "type", change.Type, "event_id", change.EventID, "receivers", receivers)
	return nil
}

type noopPublisher struct{}

// NewNoopPublisher returns a publisher that drops every change.
func NewNoopPublisher() domain.MembershipPublisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(ctx context.Context, change domain.MembershipChange) error {
	return nil
}
