package application

import (
	"context"
	"fmt"
	"time"

	"github.com/Apurer/go-rental-api/internal/domains/rentals/domain"
	"github.com/Apurer/go-rental-api/internal/domains/rentals/ports"
)

// Ledger owns availability checks and reservation state.
type Ledger struct {
	store ports.Transactor
}

// NewLedger wires the ledger with its storage handle.
func NewLedger(store ports.Transactor) *Ledger {
	return &Ledger{store: store}
}

// CheckAvailability computes the advisory free capacity of a variant over a period.
// The result is stale as soon as it returns; inserts are guarded by the store.
func (l *Ledger) CheckAvailability(ctx context.Context, query ports.AvailabilityQuery) (*domain.Availability, error) {
	if err := validateItem(ports.ItemInput{VariantID: query.VariantID, Quantity: query.Quantity, Period: query.Period}); err != nil {
		return nil, err
	}
	variant, err := l.store.Catalog().GetVariant(ctx, query.VariantID)
	if err != nil {
		return nil, mapError(err)
	}
	availability, err := availabilityFor(ctx, l.store, variant, query.Period, query.Quantity)
	if err != nil {
		return nil, mapError(err)
	}
	return availability, nil
}

// Reserve attaches reservations to an existing order, widening its envelope and adding the
// new lines to its totals. All items commit or none do.
func (l *Ledger) Reserve(ctx context.Context, input ports.ReserveInput) ([]domain.Reservation, error) {
	if input.OrderID <= 0 {
		return nil, domain.Invalid("order id must be greater than zero")
	}
	if err := validateItems(input.Items); err != nil {
		return nil, err
	}
	var created []domain.Reservation
	err := l.store.WithinTx(ctx, func(ctx context.Context, tx ports.Store) error {
		order, err := tx.Orders().Lock(ctx, input.OrderID)
		if err != nil {
			return mapError(err)
		}
		if !input.Caller.CanActFor(order.CustomerID) {
			return forbidden("reserve against this order")
		}
		if !order.Status.AcceptsReservations() {
			return fmt.Errorf("%w: cannot add reservations to order with status: %s", domain.ErrInvalidStateTransition, order.Status)
		}
		envelope := order.Period
		lines := make([]domain.LineItem, 0, len(input.Items))
		created = make([]domain.Reservation, 0, len(input.Items))
		for i, item := range input.Items {
			variant, err := tx.Catalog().GetVariant(ctx, item.VariantID)
			if err != nil {
				return itemError(i, item, mapError(err))
			}
			if variant.VendorID != order.VendorID {
				return itemError(i, item, domain.ErrCrossVendorOrder)
			}
			reservation, err := reserve(ctx, tx, order.ID, variant, item)
			if err != nil {
				return itemError(i, item, err)
			}
			created = append(created, *reservation)
			envelope = envelope.Envelope(item.Period)
			lines = append(lines, domain.LineItem{
				VariantID:  variant.ID,
				Quantity:   item.Quantity,
				Period:     item.Period,
				PriceDaily: variant.PriceDaily,
			})
		}
		totals := domain.TotalsFor(domain.AddLines(order.Subtotal, lines))
		return mapError(tx.Orders().UpdateTerms(ctx, order.ID, envelope, totals))
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Cancel releases an ACTIVE reservation owned by the caller.
func (l *Ledger) Cancel(ctx context.Context, caller domain.Caller, id int64) (*domain.Reservation, error) {
	return l.transition(ctx, id, domain.ReservationCancelled, func(view *domain.ReservationView) bool {
		return caller.CanActFor(view.CustomerID)
	}, "cancel this reservation")
}

// Complete marks an ACTIVE reservation as fulfilled. Only the vendor or an admin may do so.
func (l *Ledger) Complete(ctx context.Context, caller domain.Caller, id int64) (*domain.Reservation, error) {
	return l.transition(ctx, id, domain.ReservationCompleted, func(view *domain.ReservationView) bool {
		return isVendorOf(caller, view.VendorID)
	}, "complete this reservation")
}

func (l *Ledger) transition(ctx context.Context, id int64, to domain.ReservationStatus, allowed func(*domain.ReservationView) bool, action string) (*domain.Reservation, error) {
	var result *domain.Reservation
	err := l.store.WithinTx(ctx, func(ctx context.Context, tx ports.Store) error {
		view, err := tx.Reservations().GetView(ctx, id)
		if err != nil {
			return mapError(err)
		}
		if !allowed(view) {
			return forbidden(action)
		}
		if err := domain.CheckReservationTransition(view.Status, to); err != nil {
			return err
		}
		result, err = tx.Reservations().Transition(ctx, id, to)
		return mapError(err)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Get loads a reservation visible to the caller.
func (l *Ledger) Get(ctx context.Context, caller domain.Caller, id int64) (*domain.ReservationView, error) {
	view, err := l.store.Reservations().GetView(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	if !caller.CanActFor(view.CustomerID) && !isVendorOf(caller, view.VendorID) {
		return nil, forbidden("view this reservation")
	}
	return view, nil
}

// ListForCaller returns the caller's own reservations, newest first.
func (l *Ledger) ListForCaller(ctx context.Context, caller domain.Caller, filter ports.ReservationFilter) ([]*domain.ReservationView, error) {
	views, err := l.store.Reservations().ListByCustomer(ctx, caller.UserID, filter)
	if err != nil {
		return nil, mapError(err)
	}
	return views, nil
}

// CompleteElapsed completes reservations whose period has ended and closes fulfilled orders.
func (l *Ledger) CompleteElapsed(ctx context.Context, now time.Time) (*ports.SweepResult, error) {
	result := &ports.SweepResult{}
	err := l.store.WithinTx(ctx, func(ctx context.Context, tx ports.Store) error {
		var err error
		if result.ReservationsCompleted, err = tx.Reservations().CompleteEndedBefore(ctx, now.UTC()); err != nil {
			return mapError(err)
		}
		result.OrdersCompleted, err = tx.Orders().CompleteFulfilled(ctx)
		return mapError(err)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func availabilityFor(ctx context.Context, store ports.Store, variant *domain.Variant, period domain.Period, quantity int) (*domain.Availability, error) {
	reserved, err := store.Reservations().SumActiveOverlapping(ctx, variant.ID, period)
	if err != nil {
		return nil, err
	}
	availability := domain.ComputeAvailability(variant.ID, period, variant.StockQuantity, reserved, quantity)
	return &availability, nil
}

// reserve runs the advisory check and then the storage-guarded insert.
func reserve(ctx context.Context, tx ports.Store, orderID int64, variant *domain.Variant, item ports.ItemInput) (*domain.Reservation, error) {
	availability, err := availabilityFor(ctx, tx, variant, item.Period, item.Quantity)
	if err != nil {
		return nil, mapError(err)
	}
	if !availability.CanReserve {
		return nil, &domain.AvailabilityError{
			VariantID: variant.ID,
			Available: availability.Available,
			Requested: item.Quantity,
		}
	}
	reservation, err := domain.NewReservation(orderID, variant.ID, item.Period, item.Quantity)
	if err != nil {
		return nil, err
	}
	if err := tx.Reservations().Insert(ctx, reservation); err != nil {
		return nil, mapError(err)
	}
	return reservation, nil
}

func validateItems(items []ports.ItemInput) error {
	if len(items) == 0 {
		return domain.Invalid("at least one item is required")
	}
	for i, item := range items {
		if err := validateItem(item); err != nil {
			return itemError(i, item, err)
		}
	}
	return nil
}

func validateItem(item ports.ItemInput) error {
	if item.VariantID <= 0 {
		return domain.Invalid("variant id must be greater than zero")
	}
	if item.Quantity < 1 {
		return domain.Invalid("quantity must be at least 1")
	}
	return item.Period.Validate()
}

func itemError(index int, item ports.ItemInput, err error) error {
	return &domain.ItemError{Index: index, VariantID: item.VariantID, Err: err}
}

func isVendorOf(caller domain.Caller, vendorID int64) bool {
	return caller.IsAdmin() || (caller.Role == domain.RoleVendor && caller.UserID == vendorID)
}

var _ ports.LedgerService = (*Ledger)(nil)
