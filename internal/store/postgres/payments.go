package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/bizdesk/pkg/pg"
	"github.com/dmitrymomot/bizdesk/pkg/payment"
	"github.com/dmitrymomot/bizdesk/pkg/subscription"
)

const selectRequest = `
SELECT id, account_id, submitted_by, sender_name, amount_paid, comment, plan, screenshot_ref,
       status, submitted_at, admin_comment, decided_by, decided_at
FROM payment_requests`

func (s *Store) CreateRequest(ctx context.Context, req *payment.Request) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO payment_requests (
			id, account_id, submitted_by, sender_name, amount_paid, comment, plan, screenshot_ref,
			status, submitted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		req.ID,
		req.AccountID,
		req.SubmittedBy,
		req.SenderName,
		req.AmountPaid,
		req.Comment,
		req.Plan,
		req.ScreenshotRef,
		req.Status,
		req.SubmittedAt,
	)
	if pg.IsForeignKeyViolationError(err) {
		return subscription.ErrAccountNotFound
	}
	return uniqueErr(err, "payment_requests_pkey")
}

func (s *Store) GetRequest(ctx context.Context, id uuid.UUID) (*payment.Request, error) {
	return getRequest(ctx, s.pool, id, false)
}

// ListRequestsByAccount returns the account's requests, newest first.
func (s *Store) ListRequestsByAccount(ctx context.Context, accountID uuid.UUID) ([]payment.Request, error) {
	return s.listRequests(ctx, selectRequest+` WHERE account_id = $1 ORDER BY submitted_at DESC`, accountID)
}

// ListRequestsByStatus returns requests in status, oldest first.
func (s *Store) ListRequestsByStatus(ctx context.Context, status payment.Status) ([]payment.Request, error) {
	return s.listRequests(ctx, selectRequest+` WHERE status = $1 ORDER BY submitted_at`, status)
}

func (s *Store) listRequests(ctx context.Context, query string, arg any) ([]payment.Request, error) {
	rows, err := s.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (payment.Request, error) {
		req, err := scanRequest(row)
		if err != nil {
			return payment.Request{}, err
		}
		return *req, nil
	})
}

// DecideRequest locks the request and its subscription row, applies fn and writes both in one
// transaction. Concurrent deciders queue on the row lock; the status update is additionally
// conditioned on the status fn saw.
func (s *Store) DecideRequest(ctx context.Context, id uuid.UUID, fn payment.DecideFunc) (*payment.Request, error) {
	var decided payment.Request

	err := pg.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		req, err := getRequest(ctx, tx, id, true)
		if err != nil {
			return err
		}
		info, err := getInfo(ctx, tx, req.AccountID, true)
		if err != nil {
			return err
		}

		updated, newInfo, err := fn(*req, *info)
		if err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `
			UPDATE payment_requests SET
				status = $2,
				admin_comment = $3,
				decided_by = $4,
				decided_at = $5
			WHERE id = $1 AND status = $6`,
			id,
			updated.Status,
			updated.AdminComment,
			updated.DecidedBy,
			updated.DecidedAt,
			req.Status,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return payment.ErrInvalidStateTransition
		}

		if newInfo != nil {
			if err := saveInfo(ctx, tx, newInfo); err != nil {
				return err
			}
		}
		decided = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &decided, nil
}

func getRequest(ctx context.Context, q querier, id uuid.UUID, forUpdate bool) (*payment.Request, error) {
	query := selectRequest + ` WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	req, err := scanRequest(q.QueryRow(ctx, query, id))
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, payment.ErrRequestNotFound
		}
		return nil, err
	}
	return req, nil
}

func scanRequest(row pgx.Row) (*payment.Request, error) {
	var req payment.Request
	err := row.Scan(
		&req.ID,
		&req.AccountID,
		&req.SubmittedBy,
		&req.SenderName,
		&req.AmountPaid,
		&req.Comment,
		&req.Plan,
		&req.ScreenshotRef,
		&req.Status,
		&req.SubmittedAt,
		&req.AdminComment,
		&req.DecidedBy,
		&req.DecidedAt,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}
