// Package config loads typed configuration from environment variables.
//
// It combines github.com/joho/godotenv for optional .env files with
// github.com/caarlos0/env/v11 for struct parsing. Each component owns its own
// Config struct with env tags; the application composes them into one struct
// and calls Load once at startup:
//
//	type App struct {
//		HTTP httpserver.Config
//		JWT  jwt.Config
//	}
//
//	cfg, err := config.Load[App]()
//
// Tests can bypass the process environment with WithEnvironment.
package config
