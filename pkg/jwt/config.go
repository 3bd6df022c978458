package jwt

import "time"

// Config holds token settings loaded from the environment.
type Config struct {
	Secret string        `env:"JWT_SECRET,required"`
	TTL    time.Duration `env:"JWT_TTL" envDefault:"24h"`
	Issuer string        `env:"JWT_ISSUER" envDefault:"bizdesk"`
}
