package config_test

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/bizdesk/internal/config"
	pkgconfig "github.com/dmitrymomot/bizdesk/pkg/config"
	"github.com/dmitrymomot/bizdesk/pkg/logger"
)

func load(vars map[string]string) (config.Config, error) {
	return config.Load(pkgconfig.WithEnvironment(vars))
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := load(map[string]string{"JWT_SECRET": "dev-secret"})
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, 14*24*time.Hour, cfg.Subscription.TrialPeriod)
	assert.Equal(t, []int{7, 3}, cfg.Reminder.WarningDays)
	assert.Equal(t, "0 9 * * *", cfg.Reminder.Spec)
	assert.Equal(t, 5, cfg.LoginLimit.Capacity)
	assert.Equal(t, time.Minute, cfg.LoginLimit.RefillInterval)

	assert.False(t, cfg.Postgres.Enabled(), "memory store by default")
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.Media.Enabled())
	assert.False(t, cfg.Email.Enabled())
	assert.False(t, cfg.IsProduction())
	assert.True(t, cfg.MetricsEnabled)
	assert.Empty(t, cfg.TrustedIPHeaders)
	assert.Equal(t, 5*time.Minute, cfg.PrincipalCacheTTL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Parallel()

	cfg, err := load(map[string]string{
		"APP_ENV":                   "prod",
		"JWT_SECRET":                "0123456789abcdef0123456789abcdef",
		"PG_CONN_URL":               "postgres://bizdesk@localhost/bizdesk",
		"REDIS_URL":                 "redis://localhost:6379/0",
		"MEDIA_S3_BUCKET":           "receipts",
		"POSTMARK_SERVER_TOKEN":     "server",
		"POSTMARK_ACCOUNT_TOKEN":    "account",
		"REMINDER_WARNING_DAYS":     "10,5,1",
		"SUBSCRIPTION_TRIAL_PERIOD": "168h",
		"HTTP_ADDR":                 ":9000",
		"HTTP_TRUSTED_IP_HEADERS":   "X-Forwarded-For,X-Real-IP",
		"METRICS_ENABLED":           "false",
	})
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.Postgres.Enabled())
	assert.True(t, cfg.Redis.Enabled())
	assert.True(t, cfg.Media.Enabled())
	assert.True(t, cfg.Email.Enabled())
	assert.Equal(t, []int{10, 5, 1}, cfg.Reminder.WarningDays)
	assert.Equal(t, 7*24*time.Hour, cfg.Subscription.TrialPeriod)
	assert.Equal(t, ":9000", cfg.HTTP.Addr)
	assert.Equal(t, []string{"X-Forwarded-For", "X-Real-IP"}, cfg.TrustedIPHeaders)
	assert.False(t, cfg.MetricsEnabled)
}

func TestLoad_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		vars map[string]string
	}{
		{name: "missing jwt secret", vars: map[string]string{}},
		{name: "production without postgres", vars: map[string]string{
			"APP_ENV":    "production",
			"JWT_SECRET": "0123456789abcdef0123456789abcdef",
		}},
		{name: "short production secret", vars: map[string]string{
			"APP_ENV":     "production",
			"JWT_SECRET":  "short",
			"PG_CONN_URL": "postgres://localhost/bizdesk",
		}},
		{name: "zero trial", vars: map[string]string{"JWT_SECRET": "x", "SUBSCRIPTION_TRIAL_PERIOD": "0s"}},
		{name: "bad log format", vars: map[string]string{"JWT_SECRET": "x", "LOG_FORMAT": "xml"}},
		{name: "bad log level", vars: map[string]string{"JWT_SECRET": "x", "LOG_LEVEL": "loud"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := load(tt.vars)
			assert.Error(t, err)
		})
	}

	_, err := load(map[string]string{"JWT_SECRET": "x", "LOG_FORMAT": "xml"})
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
	_, err = load(map[string]string{})
	assert.ErrorIs(t, err, pkgconfig.ErrParsingConfig)
}

func TestConfig_LoggerOptions(t *testing.T) {
	t.Parallel()

	cfg := config.Config{Env: "production", ServiceName: "bizdesk", LogLevel: "debug", LogFormat: "text"}
	var buf bytes.Buffer
	log := logger.New(append(cfg.LoggerOptions(), logger.WithOutput(&buf))...)
	log.Debug("probe")

	out := buf.String()
	assert.Contains(t, out, "level=DEBUG")
	assert.Contains(t, out, "service=bizdesk")
	assert.Contains(t, out, "env=production")

	assert.True(t, log.Enabled(t.Context(), slog.LevelDebug))
}
