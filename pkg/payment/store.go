package payment

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/bizdesk/pkg/subscription"
)

// DecideFunc computes the outcome of a decision from the current request and the funded account's
// subscription. A nil *subscription.Info leaves the subscription untouched.
type DecideFunc func(req Request, info subscription.Info) (Request, *subscription.Info, error)

// Store persists payment requests.
type Store interface {
	CreateRequest(ctx context.Context, req *Request) error
	// GetRequest returns ErrRequestNotFound for unknown ids.
	GetRequest(ctx context.Context, id uuid.UUID) (*Request, error)
	// ListRequestsByAccount returns the account's requests, newest first.
	ListRequestsByAccount(ctx context.Context, accountID uuid.UUID) ([]Request, error)
	// ListRequestsByStatus returns requests in status, oldest first.
	ListRequestsByStatus(ctx context.Context, status Status) ([]Request, error)
	// DecideRequest loads the request and its account's subscription in one unit of work, calls fn
	// and persists both results, or nothing if fn or any write fails. The status write must only
	// apply while the stored status still equals the one fn saw; otherwise it returns
	// ErrInvalidStateTransition.
	DecideRequest(ctx context.Context, id uuid.UUID, fn DecideFunc) (*Request, error)
}

// ScreenshotStore keeps receipt images and returns an opaque reference.
type ScreenshotStore interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, ref string) error
}

// Notifier is told about decided requests. Errors are logged, never returned.
type Notifier interface {
	PaymentDecided(ctx context.Context, req Request, state subscription.State, at time.Time) error
}
