// Package config composes the component configurations of bizdesk into one
// environment-driven struct.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dmitrymomot/bizdesk/pkg/config"
	"github.com/dmitrymomot/bizdesk/pkg/email"
	"github.com/dmitrymomot/bizdesk/pkg/httpserver"
	"github.com/dmitrymomot/bizdesk/pkg/jwt"
	"github.com/dmitrymomot/bizdesk/pkg/logger"
	"github.com/dmitrymomot/bizdesk/pkg/media"
	"github.com/dmitrymomot/bizdesk/pkg/pg"
	"github.com/dmitrymomot/bizdesk/pkg/ratelimiter"
	"github.com/dmitrymomot/bizdesk/pkg/redis"
	"github.com/dmitrymomot/bizdesk/pkg/reminder"
	"github.com/dmitrymomot/bizdesk/pkg/subscription"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid application config")

// Config is the full application configuration.
type Config struct {
	Env         string `env:"APP_ENV" envDefault:"development"`
	ServiceName string `env:"APP_NAME" envDefault:"bizdesk"`
	LogLevel    string `env:"LOG_LEVEL"` // overrides the level implied by Env
	LogFormat   string `env:"LOG_FORMAT"`

	TrustedIPHeaders  []string      `env:"HTTP_TRUSTED_IP_HEADERS" envSeparator:","` // e.g. X-Forwarded-For behind a proxy
	MetricsEnabled    bool          `env:"METRICS_ENABLED" envDefault:"true"`
	PrincipalCacheTTL time.Duration `env:"PRINCIPAL_CACHE_TTL" envDefault:"5m"`
	RolesFile         string        `env:"RBAC_ROLES_FILE"` // replaces the embedded default roles

	HTTP         httpserver.Config
	Postgres     pg.Config
	Redis        redis.Config
	Media        media.S3Config
	Email        email.Config
	JWT          jwt.Config
	Subscription subscription.Config
	Reminder     reminder.Config
	LoginLimit   ratelimiter.Config
}

// Load reads Config from the environment and optional .env files, then validates it.
func Load(opts ...config.Option) (Config, error) {
	cfg, err := config.Load[Config](opts...)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// IsProduction reports whether Env names production.
func (c Config) IsProduction() bool {
	env := strings.ToLower(c.Env)
	return env == logger.EnvProduction || env == "prod"
}

// Validate checks cross-component rules that struct tags cannot express.
func (c Config) Validate() error {
	var errs []error
	if c.IsProduction() && !c.Postgres.Enabled() {
		errs = append(errs, errors.New("PG_CONN_URL is required in production"))
	}
	if c.IsProduction() && len(c.JWT.Secret) < 32 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 32 bytes in production"))
	}
	if c.Subscription.TrialPeriod <= 0 {
		errs = append(errs, fmt.Errorf("SUBSCRIPTION_TRIAL_PERIOD must be positive, got %v", c.Subscription.TrialPeriod))
	}
	if c.LogFormat != "" && c.LogFormat != string(logger.FormatJSON) && c.LogFormat != string(logger.FormatText) {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.LogFormat))
	}
	if _, err := c.logLevel(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalidConfig}, errs...)...)
	}
	return nil
}

// LoggerOptions translates the logging fields into logger options.
func (c Config) LoggerOptions() []logger.Option {
	opts := []logger.Option{logger.WithEnvironment(c.Env, c.ServiceName)}
	if level, err := c.logLevel(); err == nil && c.LogLevel != "" {
		opts = append(opts, logger.WithLevel(level))
	}
	if c.LogFormat != "" {
		opts = append(opts, logger.WithFormat(logger.Format(c.LogFormat)))
	}
	return opts
}

func (c Config) logLevel() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return level, nil
	}
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return level, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return level, nil
}
