// Package redis connects to Redis with go-redis/v9.
//
// Connect parses a redis:// URL and retries the initial ping; Healthcheck returns a readiness
// probe. bizdesk uses Redis only as a cache for resolved principals, so a missing REDIS_URL is
// not an error at the configuration level.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
package redis
