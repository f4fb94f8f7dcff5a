package feed

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventcircle/internal/domain"
)

type fakePublisher struct {
	channel string
	payload []byte
	err     error
}

func (f *fakePublisher) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	f.channel = channel
	f.payload, _ = message.([]byte)
	return redis.NewIntResult(1, f.err)
}

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestRedisPublisher_Publish(t *testing.T) {
	fake := &fakePublisher{}
	p := NewRedisPublisher(fake, "", testLogger)

	change := domain.MembershipChange{
		Type:    domain.ChangeMemberInvited,
		EventID: 4,
		UserID:  2,
		At:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, p.Publish(context.Background(), change))
	assert.Equal(t, DefaultChannel, fake.channel)

	var got domain.MembershipChange
	require.NoError(t, json.Unmarshal(fake.payload, &got))
	assert.Equal(t, change, got)
}

func TestRedisPublisher_PublishError(t *testing.T) {
	fake := &fakePublisher{err: errors.New("connection refused")}
	p := NewRedisPublisher(fake, "custom", testLogger)

	err := p.Publish(context.Background(), domain.MembershipChange{Type: domain.ChangeEventDeleted, EventID: 1})
	require.Error(t, err)
	assert.Equal(t, "custom", fake.channel)
}
