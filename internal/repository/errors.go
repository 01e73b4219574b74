package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/stayhaven/service-booking/internal/domain"
)

// PostgreSQL error codes the core cares about: racing inserts trip either the
// unique index (23505) or the no-overlap exclusion constraint (23P01), and both
// must reach the caller as a business conflict, not a raw storage error.
const (
	pgUniqueViolation    = "23505"
	pgExclusionViolation = "23P01"
)

// translateConstraintError maps store-level constraint violations to a
// ConflictError with the given message. Returns nil when err is not a
// constraint violation.
func translateConstraintError(err error, conflictMessage string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation, pgExclusionViolation:
			return domain.NewConflictError(conflictMessage)
		}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.NewConflictError(conflictMessage)
	}
	return nil
}
