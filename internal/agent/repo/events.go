package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/nekochat-companion/server/internal/agent/model"
	errx "github.com/nekochat-companion/server/internal/core/error"
	logx "github.com/nekochat-companion/server/pkg/logger"
)

// Publisher is the slice of redis.Cmdable the event repository needs.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisEventRepository mirrors emitted conversation events onto a Redis
// pub/sub channel so other surfaces can render the same chat.
type RedisEventRepository struct {
	rdb    Publisher
	prefix string
}

func NewRedisEventRepository(rdb Publisher, prefix string) *RedisEventRepository {
	if prefix == "" {
		prefix = "nekochat"
	}
	return &RedisEventRepository{rdb: rdb, prefix: prefix}
}

func (r *RedisEventRepository) channel() string {
	return fmt.Sprintf("%s:events", r.prefix)
}

// Publish sends ev as JSON. Having no subscribers is not an error.
func (r *RedisEventRepository) Publish(ctx context.Context, ev model.Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		logx.Error().Err(err).Str("turn_id", ev.TurnID).Msg("failed to marshal event")
		return fmt.Errorf("marshal event: %w", err)
	}

	ch := r.channel()
	n, err := r.rdb.Publish(ctx, ch, b).Result()
	if err != nil {
		logx.Error().Err(err).Str("channel", ch).Msg("failed to publish event to redis")
		return errx.WrapRedis(err)
	}
	if n == 0 {
		logx.Debug().Str("channel", ch).Str("kind", string(ev.Kind)).Msg("event published with no subscribers")
	}
	return nil
}
