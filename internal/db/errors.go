package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nekogravitycat/item-sharing-backend/internal/pkg/apperror"
)

// Wrap annotates a storage error with the failed operation. Connection failures
// and errors pgconn reports as safe to retry become apperror.Unavailable, so
// callers can tell an outage apart from a domain failure.
func Wrap(err error, op string) error {
	if err == nil {
		return nil
	}
	if IsTransient(err) {
		return apperror.Unavailable(fmt.Errorf("%s: %w", op, err))
	}
	return fmt.Errorf("%s failed: %w", op, err)
}

// IsTransient reports whether err is a connection-level failure.
func IsTransient(err error) bool {
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return pgconn.SafeToRetry(err)
}

// IsUniqueViolation reports whether err is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	return hasCode(err, pgerrcode.UniqueViolation)
}

// IsExclusionViolation reports whether err is an exclusion constraint violation.
func IsExclusionViolation(err error) bool {
	return hasCode(err, pgerrcode.ExclusionViolation)
}

// IsForeignKeyViolation reports whether err is a foreign key violation.
func IsForeignKeyViolation(err error) bool {
	return hasCode(err, pgerrcode.ForeignKeyViolation)
}

// ConstraintName returns the constraint a Postgres error refers to, if any.
func ConstraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
