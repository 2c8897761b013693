package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by the ledger and the order services. Callers match with errors.Is.
var (
	ErrValidation               = errors.New("validation failed")
	ErrNotFound                 = errors.New("not found")
	ErrForbidden                = errors.New("forbidden")
	ErrInsufficientAvailability = errors.New("insufficient availability")
	ErrReservationConflict      = errors.New("reservation conflict: time slot no longer available")
	ErrCrossVendorOrder         = errors.New("all items must be from the same vendor")
	ErrInvalidStateTransition   = errors.New("invalid state transition")
	ErrAlreadyTerminal          = errors.New("already in a terminal state")
	ErrIdempotencyConflict      = errors.New("idempotency key reused with a different request")
)

// Invalid wraps a validation message into ErrValidation.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFound reports a missing resource of the given kind.
func NotFound(kind string, id int64) error {
	return fmt.Errorf("%w: %s %d", ErrNotFound, kind, id)
}

// AvailabilityError carries the numbers behind a failed advisory check.
type AvailabilityError struct {
	VariantID int64
	Available int
	Requested int
}

func (e *AvailabilityError) Error() string {
	return fmt.Sprintf("insufficient availability for variant %d. Available: %d, Requested: %d",
		e.VariantID, e.Available, e.Requested)
}

func (e *AvailabilityError) Unwrap() error { return ErrInsufficientAvailability }

// ItemError identifies the first line item that failed inside a multi-item operation.
type ItemError struct {
	Index     int
	VariantID int64
	Err       error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item %d (variant %d): %v", e.Index+1, e.VariantID, e.Err)
}

func (e *ItemError) Unwrap() error { return e.Err }
