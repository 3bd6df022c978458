package redis

import "errors"

var (
	ErrFailedToParseRedisConnString = errors.New("redis: invalid connection URL")
	ErrRedisNotReady                = errors.New("redis: not ready after retries")
	ErrEmptyConnectionURL           = errors.New("redis: connection URL is empty")
	ErrHealthcheckFailed            = errors.New("redis: healthcheck failed")
)
