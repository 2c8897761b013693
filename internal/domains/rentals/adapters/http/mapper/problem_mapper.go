package mapper

import (
	"errors"
	"net/http"

	"github.com/Apurer/go-rental-api/internal/domains/rentals/domain"
	apierrors "github.com/Apurer/go-rental-api/internal/shared/errors"
)

// Rentals problem types.
const (
	TypeInsufficientAvailability = "/problems/insufficient-availability"
	TypeReservationConflict      = "/problems/reservation-conflict"
	TypeCrossVendorOrder         = "/problems/cross-vendor-order"
	TypeInvalidStateTransition   = "/problems/invalid-state-transition"
	TypeAlreadyTerminal          = "/problems/already-terminal"
	TypeIdempotencyConflict      = "/problems/idempotency-conflict"
)

var problemTemplates = []struct {
	target  error
	problem apierrors.ProblemDetail
}{
	{domain.ErrValidation, apierrors.ErrValidation},
	{domain.ErrCrossVendorOrder, apierrors.Template(TypeCrossVendorOrder, "Cross-Vendor Order", http.StatusBadRequest)},
	{domain.ErrInvalidStateTransition, apierrors.Template(TypeInvalidStateTransition, "Invalid State Transition", http.StatusBadRequest)},
	{domain.ErrForbidden, apierrors.ErrForbidden},
	{domain.ErrNotFound, apierrors.ErrNotFound},
	{domain.ErrInsufficientAvailability, apierrors.Template(TypeInsufficientAvailability, "Insufficient Availability", http.StatusConflict)},
	{domain.ErrReservationConflict, apierrors.Template(TypeReservationConflict, "Reservation Conflict", http.StatusConflict)},
	{domain.ErrAlreadyTerminal, apierrors.Template(TypeAlreadyTerminal, "Already Terminal", http.StatusConflict)},
	{domain.ErrIdempotencyConflict, apierrors.Template(TypeIdempotencyConflict, "Idempotency Conflict", http.StatusConflict)},
}

// ProblemFromError maps the rentals error taxonomy onto problem details. It satisfies
// apierrors.ErrorMapper.
func ProblemFromError(err error) (apierrors.ProblemDetail, bool) {
	for _, tpl := range problemTemplates {
		if !errors.Is(err, tpl.target) {
			continue
		}
		problem := tpl.problem.WithDetail(err.Error())
		var itemErr *domain.ItemError
		if errors.As(err, &itemErr) {
			problem = problem.
				WithExtension("itemIndex", itemErr.Index).
				WithExtension("variantId", itemErr.VariantID)
		}
		var availErr *domain.AvailabilityError
		if errors.As(err, &availErr) {
			problem = problem.
				WithExtension("variantId", availErr.VariantID).
				WithExtension("available", availErr.Available).
				WithExtension("requested", availErr.Requested)
		}
		return problem, true
	}
	return apierrors.ProblemDetail{}, false
}
