package redis_test

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/bizdesk/pkg/redis"
)

func TestConfig_Enabled(t *testing.T) {
	t.Parallel()
	assert.False(t, redis.Config{}.Enabled())
	assert.True(t, redis.Config{ConnectionURL: "redis://localhost:6379/0"}.Enabled())
}

func TestConnect_Errors(t *testing.T) {
	t.Parallel()

	_, err := redis.Connect(context.Background(), redis.Config{})
	assert.ErrorIs(t, err, redis.ErrEmptyConnectionURL)

	_, err = redis.Connect(context.Background(), redis.Config{ConnectionURL: "http://localhost"})
	assert.ErrorIs(t, err, redis.ErrFailedToParseRedisConnString)

	_, err = redis.Connect(context.Background(), redis.Config{
		ConnectionURL:  "redis://127.0.0.1:1/0?dial_timeout=100ms",
		RetryAttempts:  2,
		RetryInterval:  10 * time.Millisecond,
		ConnectTimeout: 2 * time.Second,
	})
	assert.ErrorIs(t, err, redis.ErrRedisNotReady)
}

func TestHealthcheck_Unreachable(t *testing.T) {
	t.Parallel()

	client := goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	err := redis.Healthcheck(client)(context.Background())
	assert.ErrorIs(t, err, redis.ErrHealthcheckFailed)
}
