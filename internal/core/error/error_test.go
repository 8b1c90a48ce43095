package errx

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestAppError_Chain(t *testing.T) {
	err := Transport(context.DeadlineExceeded)

	assert.Equal(t, KindTransport, KindOf(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), BackendErrorMessage)

	var ae *AppError
	assert.True(t, errors.As(err, &ae))
	assert.Equal(t, KindTransport, ae.Kind)

	assert.Nil(t, Transport(nil))
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
}

func TestMalformedAndConfig(t *testing.T) {
	m := Malformed("response")
	assert.True(t, IsKind(m, KindMalformed))
	assert.Contains(t, m.Error(), `"response"`)

	c := Config("bad %s", "thing")
	assert.True(t, IsKind(c, KindConfig))
	assert.Contains(t, c.Error(), "bad thing")
}

func TestWrapRedis(t *testing.T) {
	assert.Nil(t, WrapRedis(nil))

	nilErr := WrapRedis(redis.Nil)
	assert.True(t, IsKind(nilErr, KindRedis))
	assert.Contains(t, nilErr.Error(), RedisNoSubscribersMessage)

	other := WrapRedis(errors.New("boom"))
	assert.True(t, IsKind(other, KindRedis))
	assert.Contains(t, other.Error(), RedisErrorMessage)
}
