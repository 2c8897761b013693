package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Apurer/go-rental-api/internal/domains/rentals/domain"
	"github.com/Apurer/go-rental-api/internal/domains/rentals/ports"
)

// PostgreSQL SQLSTATE codes the store classifies.
const (
	codeExclusionViolation   = "23P01"
	codeForeignKeyViolation  = "23503"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// classify maps driver errors onto the port contract. A deployment that still carries
// a GiST exclusion constraint, or runs at SERIALIZABLE, reports lost races through it.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeExclusionViolation, codeSerializationFailure, codeDeadlockDetected:
		return fmt.Errorf("%w: %s", ports.ErrExclusionViolated, pgErr.Message)
	case codeForeignKeyViolation:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, pgErr.Detail)
	default:
		return err
	}
}
