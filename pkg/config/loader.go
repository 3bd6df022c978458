package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const defaultEnvFile = ".env"

// Option configures Load.
type Option func(*loadOptions)

type loadOptions struct {
	files       []string
	environment map[string]string
	prefix      string
}

// WithEnvFiles loads the given files before parsing. Earlier files win, and real
// environment variables always win over files. Every listed file must exist.
func WithEnvFiles(paths ...string) Option {
	return func(o *loadOptions) { o.files = append(o.files, paths...) }
}

// WithEnvironment parses from vars instead of the process environment.
// No files are loaded in this mode.
func WithEnvironment(vars map[string]string) Option {
	return func(o *loadOptions) { o.environment = vars }
}

// WithPrefix prepends prefix to every variable name.
func WithPrefix(prefix string) Option {
	return func(o *loadOptions) { o.prefix = prefix }
}

// Load parses the environment into a new T using env and envDefault tags.
//
// Without WithEnvFiles a ./.env file is read when present. Fields tagged
// `env:",required"` that are missing produce ErrParsingConfig.
//
//	type DatabaseConfig struct {
//		DSN     string `env:"DATABASE_URL,required"`
//		MaxOpen int    `env:"DATABASE_MAX_OPEN_CONNS" envDefault:"10"`
//	}
//
//	cfg, err := config.Load[DatabaseConfig]()
func Load[T any](opts ...Option) (T, error) {
	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}

	var zero T
	if o.environment == nil {
		if err := LoadEnv(o.files...); err != nil {
			return zero, err
		}
	}

	cfg, err := env.ParseAsWithOptions[T](env.Options{
		Environment: o.environment,
		Prefix:      o.prefix,
	})
	if err != nil {
		return zero, errors.Join(ErrParsingConfig, err)
	}
	return cfg, nil
}

// MustLoad is like Load but panics on error.
func MustLoad[T any](opts ...Option) T {
	cfg, err := Load[T](opts...)
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return cfg
}

// LoadEnv copies variables from .env files into the process environment without
// overriding variables that are already set. With no paths it reads ./.env if it exists.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		if _, err := os.Stat(defaultEnvFile); err != nil {
			return nil
		}
		paths = []string{defaultEnvFile}
	}
	if err := godotenv.Load(paths...); err != nil {
		return errors.Join(ErrLoadingEnvFile, err)
	}
	return nil
}
