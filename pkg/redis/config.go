package redis

import "time"

// Config configures the Redis connection. An empty ConnectionURL disables Redis in bizdesk.
type Config struct {
	ConnectionURL  string        `env:"REDIS_URL"` // redis://:password@localhost:6379/0
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
}

// Enabled reports whether a connection URL is configured.
func (c Config) Enabled() bool { return c.ConnectionURL != "" }
