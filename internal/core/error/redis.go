package errx

import (
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisNoSubscribersMessage is used when a publish reached nobody.
const RedisNoSubscribersMessage = "no subscribers for channel"

// WrapRedis maps Redis errors to AppError with the redis kind.
func WrapRedis(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, redis.Nil) {
		return New(err, KindRedis, RedisNoSubscribersMessage)
	}

	return New(err, KindRedis, RedisErrorMessage)
}
