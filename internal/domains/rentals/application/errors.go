package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/go-rental-api/internal/domains/rentals/domain"
	"github.com/Apurer/go-rental-api/internal/domains/rentals/ports"
)

var taxonomy = []error{
	domain.ErrValidation,
	domain.ErrNotFound,
	domain.ErrForbidden,
	domain.ErrInsufficientAvailability,
	domain.ErrReservationConflict,
	domain.ErrCrossVendorOrder,
	domain.ErrInvalidStateTransition,
	domain.ErrAlreadyTerminal,
	domain.ErrIdempotencyConflict,
}

// IsDomainError reports whether err belongs to the rentals error taxonomy.
func IsDomainError(err error) bool {
	for _, target := range taxonomy {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// mapError translates storage failures into the taxonomy and wraps anything unexpected.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ports.ErrExclusionViolated) {
		return fmt.Errorf("%w: %w", domain.ErrReservationConflict, err)
	}
	if IsDomainError(err) {
		return err
	}
	return fmt.Errorf("rentals storage failure: %w", err)
}

func forbidden(action string) error {
	return fmt.Errorf("%w: not authorized to %s", domain.ErrForbidden, action)
}
