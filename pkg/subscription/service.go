package subscription

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/bizdesk/pkg/clock"
	"github.com/dmitrymomot/bizdesk/pkg/logger"
)

// Service evaluates stored subscriptions against the current time.
type Service interface {
	// Info returns the raw stored record.
	Info(ctx context.Context, accountID uuid.UUID) (*Info, error)
	// Evaluate returns the state of the account at the service clock's now.
	Evaluate(ctx context.Context, accountID uuid.UUID) (State, error)
	// EvaluateAt returns the state of the account at now.
	EvaluateAt(ctx context.Context, accountID uuid.UUID, now time.Time) (State, error)
	// IsAllowedPremium recomputes premium access. Errors deny access.
	IsAllowedPremium(ctx context.Context, accountID uuid.UUID) bool
	// FinishTrial ends the account's free trial early and returns the new state.
	FinishTrial(ctx context.Context, accountID uuid.UUID) (State, error)
}

// ServiceOption configures a Service instance.
type ServiceOption func(*service)

// WithClock sets the time source. Defaults to clock.System.
func WithClock(c clock.Clock) ServiceOption {
	return func(s *service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithTrialPeriod overrides DefaultTrialPeriod.
func WithTrialPeriod(d time.Duration) ServiceOption {
	return func(s *service) {
		if d > 0 {
			s.evaluator.TrialPeriod = d
		}
	}
}

// WithLogger sets the logger used for fail-closed denials.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *service) {
		if l != nil {
			s.logger = l
		}
	}
}

type service struct {
	store     Store
	clock     clock.Clock
	evaluator Evaluator
	logger    *slog.Logger
}

// NewService creates a Service. Panics if store is nil.
func NewService(store Store, opts ...ServiceOption) Service {
	if store == nil {
		panic("subscription: Store is required")
	}
	s := &service{
		store:     store,
		clock:     clock.System(),
		evaluator: Evaluator{TrialPeriod: DefaultTrialPeriod},
		logger:    logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.Component("subscription"))
	return s
}

func (s *service) Info(ctx context.Context, accountID uuid.UUID) (*Info, error) {
	info, err := s.store.GetInfo(ctx, accountID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, err
		}
		return nil, errors.Join(ErrFailedToLoadInfo, err)
	}
	return info, nil
}

func (s *service) Evaluate(ctx context.Context, accountID uuid.UUID) (State, error) {
	return s.EvaluateAt(ctx, accountID, s.clock.Now())
}

func (s *service) EvaluateAt(ctx context.Context, accountID uuid.UUID, now time.Time) (State, error) {
	info, err := s.Info(ctx, accountID)
	if err != nil {
		return State{}, err
	}
	return s.evaluator.Evaluate(*info, now), nil
}

func (s *service) IsAllowedPremium(ctx context.Context, accountID uuid.UUID) bool {
	st, err := s.Evaluate(ctx, accountID)
	if err != nil {
		s.logger.WarnContext(ctx, "premium check denied",
			logger.AccountID(accountID),
			logger.Error(err),
		)
		return false
	}
	return st.IsAllowedPremium
}

func (s *service) FinishTrial(ctx context.Context, accountID uuid.UUID) (State, error) {
	info, err := s.Info(ctx, accountID)
	if err != nil {
		return State{}, err
	}

	now := s.clock.Now()
	if !info.FinishedFreeTrial {
		updated := FinishTrial(*info, now)
		if err := s.store.SaveInfo(ctx, &updated); err != nil {
			return State{}, errors.Join(ErrFailedToSaveInfo, err)
		}
		info = &updated
		s.logger.InfoContext(ctx, "free trial finished early", logger.AccountID(accountID))
	}
	return s.evaluator.Evaluate(*info, now), nil
}
