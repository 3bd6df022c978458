package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/dmitrymomot/bizdesk/pkg/clock"
	"github.com/dmitrymomot/bizdesk/pkg/logger"
	"github.com/dmitrymomot/bizdesk/pkg/statemachine"
	"github.com/dmitrymomot/bizdesk/pkg/subscription"
	"github.com/dmitrymomot/bizdesk/pkg/validator"
)

const (
	maxSenderNameLen   = 120
	maxCommentLen      = 1000
	maxAmountPrecision = 2
)

var purchasablePlans = []subscription.Plan{subscription.PlanProWeekly, subscription.PlanProMonthly}

// Ledger records payment requests and applies administrator decisions.
type Ledger struct {
	store       Store
	screenshots ScreenshotStore
	notifier    Notifier
	clock       clock.Clock
	table       *statemachine.Table
	logger      *slog.Logger
}

// NewLedger creates a Ledger. Panics if store is nil.
func NewLedger(store Store, opts ...Option) *Ledger {
	if store == nil {
		panic("payment: Store is required")
	}
	l := &Ledger{
		store:  store,
		clock:  clock.System(),
		table:  newTransitionTable(),
		logger: logger.Discard(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.With(logger.Component("payment_ledger"))
	return l
}

// Submit validates and records a new pending request.
func (l *Ledger) Submit(ctx context.Context, p SubmitParams) (*Request, error) {
	p.SenderName = normalizeText(p.SenderName)
	p.Comment = normalizeText(p.Comment)
	p.ScreenshotRef = strings.TrimSpace(p.ScreenshotRef)

	if err := validator.Apply(
		validator.RequiredUUID("account_id", p.AccountID),
		validator.RequiredString("sender_name", p.SenderName),
		validator.MaxLenString("sender_name", p.SenderName, maxSenderNameLen),
		validator.MaxLenString("comment", p.Comment, maxCommentLen),
		validator.PositiveDecimal("amount_paid", p.AmountPaid),
		validator.MaxDecimalPlaces("amount_paid", p.AmountPaid, maxAmountPrecision),
		validator.OneOf("plan", p.Plan, purchasablePlans),
	); err != nil {
		return nil, errors.Join(ErrInvalidRequest, err)
	}

	req := &Request{
		ID:            uuid.New(),
		AccountID:     p.AccountID,
		SubmittedBy:   p.SubmittedBy,
		SenderName:    p.SenderName,
		AmountPaid:    p.AmountPaid,
		Comment:       p.Comment,
		Plan:          p.Plan,
		ScreenshotRef: p.ScreenshotRef,
		Status:        StatusPending,
		SubmittedAt:   l.clock.Now(),
	}
	if req.SubmittedBy == uuid.Nil {
		req.SubmittedBy = req.AccountID
	}

	uploaded := false
	if p.Screenshot != nil {
		ref, err := l.uploadScreenshot(ctx, req, p.Screenshot)
		if err != nil {
			return nil, err
		}
		req.ScreenshotRef = ref
		uploaded = true
	}

	if err := l.store.CreateRequest(ctx, req); err != nil {
		if uploaded {
			if derr := l.screenshots.Delete(ctx, req.ScreenshotRef); derr != nil {
				l.logger.WarnContext(ctx, "orphaned payment screenshot",
					logger.PaymentID(req.ID),
					slog.String("ref", req.ScreenshotRef),
					logger.Error(derr),
				)
			}
		}
		return nil, errors.Join(ErrFailedToCreate, err)
	}

	l.logger.InfoContext(ctx, "payment request submitted",
		logger.PaymentID(req.ID),
		logger.AccountID(req.AccountID),
		slog.String("plan", req.Plan.String()),
		slog.String("amount", req.AmountPaid.String()),
	)
	return req, nil
}

func (l *Ledger) uploadScreenshot(ctx context.Context, req *Request, a *Attachment) (string, error) {
	if l.screenshots == nil {
		return "", ErrScreenshotsDisabled
	}
	key := fmt.Sprintf("payments/%s/%s%s", req.AccountID, req.ID, strings.ToLower(path.Ext(a.Filename)))
	ref, err := l.screenshots.Upload(ctx, key, a.Body, a.Size, a.ContentType)
	if err != nil {
		return "", errors.Join(ErrScreenshotUpload, err)
	}
	return ref, nil
}

// Decide applies an approve or reject verdict to a pending request.
// Approval extends the funded account's subscription in the same unit of work.
func (l *Ledger) Decide(ctx context.Context, p DecideParams) (*Request, error) {
	p.AdminComment = normalizeText(p.AdminComment)
	if err := validator.Apply(
		validator.RequiredUUID("request_id", p.RequestID),
		validator.OneOf("decision", p.Decision, []Decision{DecisionApprove, DecisionReject}),
		validator.MaxLenString("admin_comment", p.AdminComment, maxCommentLen),
	); err != nil {
		return nil, errors.Join(ErrInvalidRequest, err)
	}

	now := l.clock.Now()
	var state subscription.State

	decided, err := l.store.DecideRequest(ctx, p.RequestID, func(req Request, info subscription.Info) (Request, *subscription.Info, error) {
		dc := &decision{request: req, info: info, now: now}
		next, err := l.table.Next(ctx, req.Status, p.Decision, dc)
		switch {
		case statemachine.IsNoTransitionAvailableError(err):
			return req, nil, errors.Join(ErrInvalidStateTransition, err)
		case statemachine.IsTransitionRejectedError(err):
			return req, nil, errors.Join(ErrInvalidRequest, subscription.ErrPlanNotPurchasable, err)
		case err != nil:
			return req, nil, err
		}

		req.Status = next.(Status)
		req.AdminComment = p.AdminComment
		req.DecidedAt = &now
		if p.DecidedBy != uuid.Nil {
			decidedBy := p.DecidedBy
			req.DecidedBy = &decidedBy
		}

		if dc.extended != nil {
			state = subscription.Evaluate(*dc.extended, now)
		} else {
			state = subscription.Evaluate(info, now)
		}
		return req, dc.extended, nil
	})
	if err != nil {
		if errors.Is(err, ErrRequestNotFound) ||
			errors.Is(err, ErrInvalidStateTransition) ||
			errors.Is(err, ErrInvalidRequest) ||
			errors.Is(err, subscription.ErrAccountNotFound) {
			return nil, err
		}
		return nil, errors.Join(ErrFailedToDecide, err)
	}

	attrs := []any{
		logger.PaymentID(decided.ID),
		logger.AccountID(decided.AccountID),
		logger.PrincipalID(p.DecidedBy),
		slog.String("status", string(decided.Status)),
	}
	if decided.Status == StatusApproved && state.ExpirationDate != nil {
		attrs = append(attrs, slog.Time("expires_at", *state.ExpirationDate))
	}
	l.logger.InfoContext(ctx, "payment request decided", attrs...)

	if l.notifier != nil {
		if err := l.notifier.PaymentDecided(ctx, *decided, state, now); err != nil {
			l.logger.WarnContext(ctx, "payment decision notice failed",
				logger.PaymentID(decided.ID),
				logger.Error(err),
			)
		}
	}
	return decided, nil
}

// Get returns a request by id.
func (l *Ledger) Get(ctx context.Context, id uuid.UUID) (*Request, error) {
	req, err := l.store.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	return req, nil
}

// ListByAccount returns the account's requests, newest first.
func (l *Ledger) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]Request, error) {
	reqs, err := l.store.ListRequestsByAccount(ctx, accountID)
	if err != nil {
		return nil, errors.Join(ErrFailedToList, err)
	}
	return reqs, nil
}

// ListPending returns the administrator queue, oldest first.
func (l *Ledger) ListPending(ctx context.Context) ([]Request, error) {
	reqs, err := l.store.ListRequestsByStatus(ctx, StatusPending)
	if err != nil {
		return nil, errors.Join(ErrFailedToList, err)
	}
	return reqs, nil
}

func normalizeText(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}
