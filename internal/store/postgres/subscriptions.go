package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/bizdesk/pkg/pg"
	"github.com/dmitrymomot/bizdesk/pkg/subscription"
)

const selectInfo = `
SELECT account_id, plan, finished_free_trial, free_trial_started_at, subscribed_at, expiration_date, updated_at
FROM subscriptions`

func (s *Store) GetInfo(ctx context.Context, accountID uuid.UUID) (*subscription.Info, error) {
	return getInfo(ctx, s.pool, accountID, false)
}

func (s *Store) SaveInfo(ctx context.Context, info *subscription.Info) error {
	return saveInfo(ctx, s.pool, info)
}

// ListExpiring returns paid subscriptions whose expiration falls in [from, to), soonest first.
func (s *Store) ListExpiring(ctx context.Context, from, to time.Time) ([]subscription.Info, error) {
	rows, err := s.pool.Query(ctx, selectInfo+`
		WHERE plan <> 'basic' AND expiration_date >= $1 AND expiration_date < $2
		ORDER BY expiration_date`, from, to)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (subscription.Info, error) {
		info, err := scanInfo(row)
		if err != nil {
			return subscription.Info{}, err
		}
		return *info, nil
	})
}

func getInfo(ctx context.Context, q querier, accountID uuid.UUID, forUpdate bool) (*subscription.Info, error) {
	query := selectInfo + ` WHERE account_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	info, err := scanInfo(q.QueryRow(ctx, query, accountID))
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, subscription.ErrAccountNotFound
		}
		return nil, err
	}
	return info, nil
}

func scanInfo(row pgx.Row) (*subscription.Info, error) {
	var info subscription.Info
	err := row.Scan(
		&info.AccountID,
		&info.Plan,
		&info.FinishedFreeTrial,
		&info.FreeTrialStartedAt,
		&info.SubscribedAt,
		&info.ExpirationDate,
		&info.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// saveInfo never touches free_trial_started_at and only ever sets finished_free_trial.
func saveInfo(ctx context.Context, q querier, info *subscription.Info) error {
	if err := info.Validate(); err != nil {
		return err
	}
	tag, err := q.Exec(ctx, `
		UPDATE subscriptions SET
			plan = $2,
			finished_free_trial = finished_free_trial OR $3,
			subscribed_at = $4,
			expiration_date = $5,
			updated_at = $6
		WHERE account_id = $1`,
		info.AccountID,
		info.Plan,
		info.FinishedFreeTrial,
		info.SubscribedAt,
		info.ExpirationDate,
		info.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return subscription.ErrAccountNotFound
	}
	return nil
}
