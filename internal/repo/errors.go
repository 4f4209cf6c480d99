package repo

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/git21git/travelplanner/internal/domain"
)

// Postgres SQLSTATE codes the repo layer translates into domain errors.
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
	pgCheckViolation      = "23514"
)

// mapPgError converts constraint violations into domain sentinels so the
// service and handler layers never inspect driver errors. Anything else is
// returned unchanged.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		return fmt.Errorf("%w: %s", domain.ErrConflict, pgErr.ConstraintName)
	case pgCheckViolation:
		if pgErr.ConstraintName == "trips_date_range" {
			return domain.ErrInvalidRange
		}
		return fmt.Errorf("%w: %s", domain.ErrValidation, pgErr.ConstraintName)
	case pgForeignKeyViolation:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, pgErr.ConstraintName)
	}
	return err
}
