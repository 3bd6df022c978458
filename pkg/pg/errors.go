package pg

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrEmptyConnectionString    = errors.New("pg: PG_CONN_URL is empty")
	ErrFailedToParseDBConfig    = errors.New("pg: invalid connection string")
	ErrFailedToOpenDBConnection = errors.New("pg: failed to connect")
	ErrHealthcheckFailed        = errors.New("pg: healthcheck failed")
	ErrFailedToApplyMigrations  = errors.New("pg: failed to apply migrations")
	ErrMigrationsDirNotFound    = errors.New("pg: migrations directory not found")
	ErrMigrationPathNotProvided = errors.New("pg: migrations directory not provided")
	ErrFailedToBeginTx          = errors.New("pg: failed to begin transaction")
	ErrFailedToCommitTx         = errors.New("pg: failed to commit transaction")
)

// SQLSTATE codes the stores translate into domain errors.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// IsNotFoundError reports whether err wraps pgx.ErrNoRows.
func IsNotFoundError(err error) bool {
	return err != nil && errors.Is(err, pgx.ErrNoRows)
}

// IsTxClosedError reports whether err wraps pgx.ErrTxClosed.
func IsTxClosedError(err error) bool {
	return err != nil && errors.Is(err, pgx.ErrTxClosed)
}

// IsDuplicateKeyError reports a unique constraint violation.
func IsDuplicateKeyError(err error) bool {
	return sqlState(err) == codeUniqueViolation
}

// IsForeignKeyViolationError reports a referential integrity violation.
func IsForeignKeyViolationError(err error) bool {
	return sqlState(err) == codeForeignKeyViolation
}

// ConstraintName returns the constraint a server error names, or "".
func ConstraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if err != nil && errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
