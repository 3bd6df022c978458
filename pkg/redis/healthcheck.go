package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Healthcheck pings client on every call. It plugs into httpserver.Check.
func Healthcheck(client redis.UniversalClient) func(context.Context) error {
	return func(ctx context.Context) error {
		err := client.Ping(ctx).Err()
		if err == nil {
			return nil
		}
		return errors.Join(ErrHealthcheckFailed, err)
	}
}
