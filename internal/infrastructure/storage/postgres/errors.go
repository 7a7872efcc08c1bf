package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"khaata/internal/core/apperror"
)

// PostgreSQL error codes the repositories translate.
const (
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
	pgCheckViolation       = "23514"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// MapError translates constraint and concurrency failures into AppErrors.
// Other errors are returned unchanged.
func MapError(err error, entity, key string) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgUniqueViolation:
		return apperror.NewDuplicate(entity, pgErr.ConstraintName, key).WithCause(err)
	case pgForeignKeyViolation:
		return apperror.NewConflict(entity+" is still referenced").
			WithDetail("constraint", pgErr.ConstraintName).
			WithCause(err)
	case pgCheckViolation:
		return apperror.NewValidation(entity+" violates "+pgErr.ConstraintName).WithCause(err)
	case pgSerializationFailure, pgDeadlockDetected:
		return apperror.NewConcurrentModification(entity, key).WithCause(err)
	}
	return err
}
