package persistence

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/storefront/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// Postgres SQLSTATE codes for transactions aborted by the concurrency control
const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
)

// IsSerializationFailure reports whether err is a store-detected conflict
// that a fresh transaction attempt may succeed on.
func IsSerializationFailure(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return isConflictState(pgErr.Code)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return isConflictState(string(pqErr.Code))
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrBusy || liteErr.Code == sqlite3.ErrLocked
	}
	return false
}

func isConflictState(code string) bool {
	return code == sqlStateSerializationFailure || code == sqlStateDeadlockDetected
}

// translateError maps driver errors onto domain errors.
// Serialization failures become ErrTransientConflict, missing rows ErrNotFound.
// Anything else is wrapped with op for context.
func translateError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, shared.ErrTransientConflict), errors.Is(err, shared.ErrNotFound):
		return err
	case IsSerializationFailure(err):
		return fmt.Errorf("%s: %w: %v", op, shared.ErrTransientConflict, err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	default:
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) {
			return err
		}
		return fmt.Errorf("%s: %w", op, err)
	}
}
