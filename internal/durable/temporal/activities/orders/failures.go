package orders

import (
	"errors"

	"go.temporal.io/sdk/temporal"

	"github.com/Apurer/go-rental-api/internal/domains/rentals/domain"
)

// Application error types carried across the Temporal boundary.
const (
	FailureValidation               = "VALIDATION"
	FailureNotFound                 = "NOT_FOUND"
	FailureForbidden                = "FORBIDDEN"
	FailureInsufficientAvailability = "INSUFFICIENT_AVAILABILITY"
	FailureReservationConflict      = "RESERVATION_CONFLICT"
	FailureCrossVendorOrder         = "CROSS_VENDOR_ORDER"
	FailureInvalidStateTransition   = "INVALID_STATE_TRANSITION"
	FailureAlreadyTerminal          = "ALREADY_TERMINAL"
	FailureIdempotencyConflict      = "IDEMPOTENCY_CONFLICT"
)

var failureTypes = []struct {
	name     string
	sentinel error
}{
	{FailureValidation, domain.ErrValidation},
	{FailureNotFound, domain.ErrNotFound},
	{FailureForbidden, domain.ErrForbidden},
	{FailureInsufficientAvailability, domain.ErrInsufficientAvailability},
	{FailureReservationConflict, domain.ErrReservationConflict},
	{FailureCrossVendorOrder, domain.ErrCrossVendorOrder},
	{FailureInvalidStateTransition, domain.ErrInvalidStateTransition},
	{FailureAlreadyTerminal, domain.ErrAlreadyTerminal},
	{FailureIdempotencyConflict, domain.ErrIdempotencyConflict},
}

// FailureDetail is the payload attached to encoded domain failures.
type FailureDetail struct {
	Message   string `json:"message"`
	ItemIndex *int   `json:"itemIndex,omitempty"`
	VariantID int64  `json:"variantId,omitempty"`
	Available *int   `json:"available,omitempty"`
	Requested int    `json:"requested,omitempty"`
}

// EncodeError turns a domain error into a Temporal application error. Everything except
// a reservation conflict is non-retryable; unknown errors are returned untouched so the
// retry policy applies.
func EncodeError(err error) error {
	if err == nil {
		return nil
	}
	name := failureType(err)
	if name == "" {
		return err
	}
	detail := FailureDetail{Message: err.Error()}
	var itemErr *domain.ItemError
	if errors.As(err, &itemErr) {
		index := itemErr.Index
		detail.ItemIndex = &index
		detail.VariantID = itemErr.VariantID
		detail.Message = itemErr.Err.Error()
	}
	var availErr *domain.AvailabilityError
	if errors.As(err, &availErr) {
		available := availErr.Available
		detail.Available = &available
		detail.Requested = availErr.Requested
		detail.VariantID = availErr.VariantID
	}
	if name == FailureReservationConflict {
		return temporal.NewApplicationError(err.Error(), name, detail)
	}
	return temporal.NewNonRetryableApplicationError(err.Error(), name, err, detail)
}

// DecodeError rebuilds the domain error from a workflow or activity failure. Errors that
// carry no known application error type are returned unchanged.
func DecodeError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) {
		return err
	}
	sentinel := sentinelFor(appErr.Type())
	if sentinel == nil {
		return err
	}
	var detail FailureDetail
	if appErr.HasDetails() {
		if detailErr := appErr.Details(&detail); detailErr != nil {
			detail = FailureDetail{}
		}
	}
	if detail.Message == "" {
		detail.Message = appErr.Message()
	}
	var decoded error = &remoteError{msg: detail.Message, sentinel: sentinel}
	if detail.Available != nil {
		decoded = &domain.AvailabilityError{
			VariantID: detail.VariantID,
			Available: *detail.Available,
			Requested: detail.Requested,
		}
	}
	if detail.ItemIndex != nil {
		decoded = &domain.ItemError{Index: *detail.ItemIndex, VariantID: detail.VariantID, Err: decoded}
	}
	return decoded
}

func failureType(err error) string {
	for _, ft := range failureTypes {
		if errors.Is(err, ft.sentinel) {
			return ft.name
		}
	}
	return ""
}

func sentinelFor(name string) error {
	for _, ft := range failureTypes {
		if ft.name == name {
			return ft.sentinel
		}
	}
	return nil
}

// remoteError keeps the original message while matching the sentinel with errors.Is.
type remoteError struct {
	msg      string
	sentinel error
}

func (e *remoteError) Error() string { return e.msg }
func (e *remoteError) Unwrap() error { return e.sentinel }
