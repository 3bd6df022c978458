// Package postgres implements every bizdesk store on PostgreSQL through pgx.
package postgres

import (
	"context"
	"embed"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/bizdesk/internal/store"
	"github.com/dmitrymomot/bizdesk/pkg/pg"
	"github.com/dmitrymomot/bizdesk/pkg/principal"
)

// Migrations holds the goose migrations of the schema, under MigrationsDir.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory of Migrations passed to pg.Migrate.
const MigrationsDir = "migrations"

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is safe for concurrent use.
type Store struct {
	pool *pgxpool.Pool
}

// New wraps an open pool.
func New(pool *pgxpool.Pool) *Store {
	if pool == nil {
		panic("postgres: pool is required")
	}
	return &Store{pool: pool}
}

const insertSubscription = `
INSERT INTO subscriptions (account_id, plan, finished_free_trial, free_trial_started_at, updated_at)
VALUES ($1, 'basic', FALSE, $2, $2)`

// CreateOwner stores the owner and its basic subscription with the trial starting at now,
// in one transaction.
func (s *Store) CreateOwner(ctx context.Context, o *principal.Owner, now time.Time) error {
	o.Email = principal.NormalizeEmail(o.Email)
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}

	return pg.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO accounts (id, email, name, password_hash, role, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			o.ID, o.Email, o.Name, o.PasswordHash, o.Role, o.CreatedAt,
		)
		if err != nil {
			return uniqueErr(err, "accounts_pkey")
		}
		if _, err := tx.Exec(ctx, insertSubscription, o.ID, now); err != nil {
			return err
		}
		return nil
	})
}

func (s *Store) CreateEmployee(ctx context.Context, e *principal.Employee) error {
	e.Email = principal.NormalizeEmail(e.Email)

	_, err := s.pool.Exec(ctx, `
		INSERT INTO employees (id, owner_id, business_id, email, name, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.OwnerID, e.BusinessID, e.Email, e.Name, e.PasswordHash, e.Role, e.CreatedAt,
	)
	if pg.IsForeignKeyViolationError(err) {
		return store.ErrOwnerMissing
	}
	return uniqueErr(err, "employees_pkey")
}

const selectOwner = `SELECT id, email, name, password_hash, role, created_at FROM accounts`

func (s *Store) GetOwnerByEmail(ctx context.Context, email string) (*principal.Owner, error) {
	return scanOwner(s.pool.QueryRow(ctx, selectOwner+` WHERE email = $1`, email))
}

// GetOwner returns the owner by id.
func (s *Store) GetOwner(ctx context.Context, id uuid.UUID) (*principal.Owner, error) {
	return scanOwner(s.pool.QueryRow(ctx, selectOwner+` WHERE id = $1`, id))
}

func scanOwner(row pgx.Row) (*principal.Owner, error) {
	var o principal.Owner
	if err := row.Scan(&o.ID, &o.Email, &o.Name, &o.PasswordHash, &o.Role, &o.CreatedAt); err != nil {
		if pg.IsNotFoundError(err) {
			return nil, principal.ErrPrincipalNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (s *Store) GetEmployeeByEmail(ctx context.Context, email string) (*principal.Employee, error) {
	var e principal.Employee
	err := s.pool.QueryRow(ctx, `
		SELECT id, owner_id, business_id, email, name, password_hash, role, created_at
		FROM employees WHERE email = $1`, email,
	).Scan(&e.ID, &e.OwnerID, &e.BusinessID, &e.Email, &e.Name, &e.PasswordHash, &e.Role, &e.CreatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, principal.ErrPrincipalNotFound
		}
		return nil, err
	}
	return &e, nil
}

// uniqueErr maps unique violations: pkeyConstraint to ErrDuplicateID, anything else to
// ErrEmailTaken.
func uniqueErr(err error, pkeyConstraint string) error {
	if err == nil || !pg.IsDuplicateKeyError(err) {
		return err
	}
	if pg.ConstraintName(err) == pkeyConstraint {
		return store.ErrDuplicateID
	}
	return store.ErrEmailTaken
}
