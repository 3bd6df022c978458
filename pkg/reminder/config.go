package reminder

// Config configures Job.
type Config struct {
	Enabled     bool   `env:"REMINDER_ENABLED" envDefault:"true"`
	Spec        string `env:"REMINDER_CRON" envDefault:"0 9 * * *"`
	WarningDays []int  `env:"REMINDER_WARNING_DAYS" envDefault:"7,3" envSeparator:","`
}
