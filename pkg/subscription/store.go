package subscription

import (
	"context"

	"github.com/google/uuid"
)

// Store persists one Info per account.
type Store interface {
	// GetInfo returns ErrAccountNotFound when the account has no record.
	GetInfo(ctx context.Context, accountID uuid.UUID) (*Info, error)
	// SaveInfo creates or replaces the record keyed by AccountID.
	SaveInfo(ctx context.Context, info *Info) error
}
