package repo

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekochat-companion/server/internal/agent/model"
	errx "github.com/nekochat-companion/server/internal/core/error"
	logx "github.com/nekochat-companion/server/pkg/logger"
)

type fakePublisher struct {
	channel string
	payload []byte
	n       int64
	err     error
}

func (f *fakePublisher) Publish(_ context.Context, channel string, message interface{}) *redis.IntCmd {
	f.channel = channel
	f.payload, _ = message.([]byte)
	return redis.NewIntResult(f.n, f.err)
}

func TestPublish_EncodesEvent(t *testing.T) {
	logx.Silence()
	pub := &fakePublisher{n: 1}
	r := NewRedisEventRepository(pub, "cat")

	ev := model.Event{
		Kind:   model.EventReply,
		At:     time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		TurnID: "t-1",
		Text:   "喵～",
		Source: model.SourceRule,
	}
	require.NoError(t, r.Publish(context.Background(), ev))
	assert.Equal(t, "cat:events", pub.channel)

	var got model.Event
	require.NoError(t, json.Unmarshal(pub.payload, &got))
	assert.Equal(t, ev, got)
}

func TestPublish_DefaultPrefixAndNoSubscribers(t *testing.T) {
	logx.Silence()
	pub := &fakePublisher{}
	r := NewRedisEventRepository(pub, "")

	require.NoError(t, r.Publish(context.Background(), model.Event{Kind: model.EventReadiness, Success: true}))
	assert.Equal(t, "nekochat:events", pub.channel)
}

func TestPublish_WrapsRedisError(t *testing.T) {
	logx.Silence()
	cause := errors.New("connection refused")
	r := NewRedisEventRepository(&fakePublisher{err: cause}, "cat")

	err := r.Publish(context.Background(), model.Event{Kind: model.EventReply, Text: "hi"})
	require.Error(t, err)
	assert.True(t, errx.IsKind(err, errx.KindRedis))
	assert.ErrorIs(t, err, cause)
}
