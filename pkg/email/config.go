package email

// Config holds email service configuration.
// Postmark tokens are optional: without them bizdesk falls back to LogSender.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL" envDefault:"noreply@bizdesk.kz"`
	SupportEmail         string `env:"SUPPORT_EMAIL" envDefault:"support@bizdesk.kz"`
	DevDir               string `env:"EMAIL_DEV_DIR"` // LogSender also writes messages here when set
}

// Enabled reports whether Postmark delivery is configured.
func (c Config) Enabled() bool {
	return c.PostmarkServerToken != "" && c.PostmarkAccountToken != ""
}
