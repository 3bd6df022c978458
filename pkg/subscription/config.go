package subscription

import "time"

// Config holds subscription settings.
type Config struct {
	TrialPeriod time.Duration `env:"SUBSCRIPTION_TRIAL_PERIOD" envDefault:"336h"`
}
