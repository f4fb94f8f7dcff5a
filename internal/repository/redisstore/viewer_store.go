package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"eventcircle/internal/domain"
)

// kv is the subset of *redis.Client the store needs.
type kv interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

type viewerStore struct {
	client kv
	ttl    time.Duration
}

// NewClient parses url, connects and pings Redis.
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// NewViewerStore returns a ViewerStore keeping one key per scope. A zero ttl keeps keys forever.
func NewViewerStore(client kv, ttl time.Duration) domain.ViewerStore {
	return &viewerStore{client: client, ttl: ttl}
}

func viewerKey(scope, key string) string {
	return "viewer:" + scope + ":" + key
}

func (s *viewerStore) Get(ctx context.Context, scope, key string) (*domain.User, error) {
	raw, err := s.client.Get(ctx, viewerKey(scope, key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.MarkTransient(fmt.Errorf("get viewer: %w", err))
	}
	var u domain.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("decode viewer: %w", err)
	}
	return &u, nil
}

func (s *viewerStore) Set(ctx context.Context, scope, key string, user *domain.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode viewer: %w", err)
	}
	if err := s.client.Set(ctx, viewerKey(scope, key), raw, s.ttl).Err(); err != nil {
		return domain.MarkTransient(fmt.Errorf("set viewer: %w", err))
	}
	return nil
}
