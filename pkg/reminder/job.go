package reminder

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/dmitrymomot/bizdesk/pkg/clock"
	"github.com/dmitrymomot/bizdesk/pkg/logger"
	"github.com/dmitrymomot/bizdesk/pkg/subscription"
)

// DefaultSpec runs the job every day at 09:00.
const DefaultSpec = "0 9 * * *"

// DefaultWarningDays are the days before expiration an owner is warned.
var DefaultWarningDays = []int{7, 3}

const day = 24 * time.Hour

// Store lists paid subscriptions expiring in [from, to).
type Store interface {
	ListExpiring(ctx context.Context, from, to time.Time) ([]subscription.Info, error)
}

// Notifier delivers one expiry warning.
type Notifier interface {
	SubscriptionExpiring(ctx context.Context, accountID uuid.UUID, state subscription.State, daysLeft int) error
}

// Result summarises one run.
type Result struct {
	Sent   int
	Failed int
}

// Option configures Job.
type Option func(*Job)

// WithClock sets the clock.
func WithClock(c clock.Clock) Option {
	return func(j *Job) {
		if c != nil {
			j.clock = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(j *Job) { j.logger = logger.OrDiscard(l) }
}

// WithWarningDays replaces DefaultWarningDays. Non-positive and repeated days are ignored.
func WithWarningDays(days ...int) Option {
	return func(j *Job) { j.warningDays = normalizeDays(days) }
}

// WithTrialPeriod sets the trial window used to evaluate subscriptions.
func WithTrialPeriod(d time.Duration) Option {
	return func(j *Job) { j.evaluator.TrialPeriod = d }
}

// WithObserver registers fn to receive the Result of every run.
func WithObserver(fn func(Result)) Option {
	return func(j *Job) { j.observer = fn }
}

// Job sends the expiry warnings.
type Job struct {
	store       Store
	notifier    Notifier
	clock       clock.Clock
	evaluator   subscription.Evaluator
	warningDays []int
	observer    func(Result)
	logger      *slog.Logger

	mu   sync.Mutex
	cron *cron.Cron
}

// New creates a Job. Panics if store or notifier is nil.
func New(store Store, notifier Notifier, opts ...Option) *Job {
	if store == nil || notifier == nil {
		panic("reminder: store and notifier are required")
	}
	j := &Job{
		store:       store,
		notifier:    notifier,
		clock:       clock.System(),
		evaluator:   subscription.Evaluator{TrialPeriod: subscription.DefaultTrialPeriod},
		warningDays: normalizeDays(DefaultWarningDays),
		logger:      logger.Discard(),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// NewFromConfig applies cfg.WarningDays on top of opts.
func NewFromConfig(cfg Config, store Store, notifier Notifier, opts ...Option) *Job {
	if len(cfg.WarningDays) > 0 {
		opts = append(opts, WithWarningDays(cfg.WarningDays...))
	}
	return New(store, notifier, opts...)
}

// Run sends the warnings due now. Only a cancelled context stops it early.
func (j *Job) Run(ctx context.Context) Result {
	var res Result
	now := j.clock.Now()
	log := j.logger.With(logger.Component("reminder"))

	for _, d := range j.warningDays {
		if ctx.Err() != nil {
			break
		}
		to := now.Add(time.Duration(d) * day)
		infos, err := j.store.ListExpiring(ctx, to.Add(-day), to)
		if err != nil {
			log.ErrorContext(ctx, "failed to list expiring subscriptions", slog.Int("days", d), logger.Error(err))
			res.Failed++
			continue
		}

		for _, info := range infos {
			state := j.evaluator.Evaluate(info, now)
			if !state.IsActive {
				continue
			}
			if err := j.notifier.SubscriptionExpiring(ctx, info.AccountID, state, state.RemainingDays); err != nil {
				log.ErrorContext(ctx, "failed to send expiry warning",
					logger.AccountID(info.AccountID),
					slog.Int("days", d),
					logger.Error(err),
				)
				res.Failed++
				continue
			}
			res.Sent++
		}
	}

	log.InfoContext(ctx, "expiry warnings processed", slog.Int("sent", res.Sent), slog.Int("failed", res.Failed))
	if j.observer != nil {
		j.observer(res)
	}
	return res
}

// Start schedules Run on spec (DefaultSpec when empty) with a standard five-field parser.
func (j *Job) Start(ctx context.Context, spec string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.cron != nil {
		return ErrAlreadyStarted
	}

	c := cron.New(cron.WithLocation(time.UTC), cron.WithChain(cron.Recover(cronLogger{j.logger})))
	if _, err := c.AddFunc(cmp.Or(spec, DefaultSpec), func() { j.Run(ctx) }); err != nil {
		return errors.Join(ErrInvalidSchedule, err)
	}
	c.Start()
	j.cron = c
	return nil
}

// Stop halts the scheduler and waits for a running job until ctx is done.
func (j *Job) Stop(ctx context.Context) {
	j.mu.Lock()
	c := j.cron
	j.cron = nil
	j.mu.Unlock()
	if c == nil {
		return
	}
	select {
	case <-c.Stop().Done():
	case <-ctx.Done():
	}
}

func normalizeDays(days []int) []int {
	out := make([]int, 0, len(days))
	for _, d := range days {
		if d > 0 && !slices.Contains(out, d) {
			out = append(out, d)
		}
	}
	slices.SortFunc(out, func(a, b int) int { return cmp.Compare(b, a) })
	return out
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(msg, append(keysAndValues, logger.Error(err))...)
}
