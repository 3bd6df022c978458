package payment

import (
	"log/slog"

	"github.com/dmitrymomot/bizdesk/pkg/clock"
)

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock sets the time source. Defaults to clock.System.
func WithClock(c clock.Clock) Option {
	return func(l *Ledger) {
		if c != nil {
			l.clock = c
		}
	}
}

// WithScreenshots enables screenshot uploads on Submit.
func WithScreenshots(s ScreenshotStore) Option {
	return func(l *Ledger) {
		l.screenshots = s
	}
}

// WithNotifier registers a notifier for decided requests.
func WithNotifier(n Notifier) Option {
	return func(l *Ledger) {
		l.notifier = n
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(l *Ledger) {
		if log != nil {
			l.logger = log
		}
	}
}
