package domain

import (
	"fmt"
	"time"
)

// ReservationStatus enumerates reservation progression.
type ReservationStatus string

const (
	ReservationActive    ReservationStatus = "ACTIVE"
	ReservationCancelled ReservationStatus = "CANCELLED"
	ReservationCompleted ReservationStatus = "COMPLETED"
)

// ParseReservationStatus accepts the upper-case wire names.
func ParseReservationStatus(raw string) (ReservationStatus, error) {
	switch s := ReservationStatus(raw); s {
	case ReservationActive, ReservationCancelled, ReservationCompleted:
		return s, nil
	default:
		return "", Invalid("reservation status %q is invalid", raw)
	}
}

// Terminal reports whether no transition leaves the status.
func (s ReservationStatus) Terminal() bool {
	return s == ReservationCancelled || s == ReservationCompleted
}

// Reservation is a time-bounded claim on a quantity of one variant, owned by an order.
type Reservation struct {
	ID        int64
	OrderID   int64
	VariantID int64
	Period    Period
	Quantity  int
	Status    ReservationStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewReservation builds an ACTIVE reservation after validating its inputs.
func NewReservation(orderID, variantID int64, period Period, quantity int) (*Reservation, error) {
	r := &Reservation{
		OrderID:   orderID,
		VariantID: variantID,
		Period:    period,
		Quantity:  quantity,
		Status:    ReservationActive,
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate enforces the row-level invariants.
func (r *Reservation) Validate() error {
	if r.VariantID <= 0 {
		return Invalid("variant id must be greater than zero")
	}
	if r.Quantity < 1 {
		return Invalid("quantity must be at least 1")
	}
	return r.Period.Validate()
}

// TransitionTo moves an ACTIVE reservation into a terminal status.
func (r *Reservation) TransitionTo(next ReservationStatus) error {
	if err := CheckReservationTransition(r.Status, next); err != nil {
		return err
	}
	r.Status = next
	return nil
}

// CheckReservationTransition allows only ACTIVE -> CANCELLED and ACTIVE -> COMPLETED.
func CheckReservationTransition(from, to ReservationStatus) error {
	if from.Terminal() {
		return fmt.Errorf("%w: reservation is %s", ErrAlreadyTerminal, from)
	}
	if from != ReservationActive || !to.Terminal() {
		return fmt.Errorf("%w: reservation %s -> %s", ErrInvalidStateTransition, from, to)
	}
	return nil
}

// ReservationView is the joined read model shown to customers and vendors.
type ReservationView struct {
	Reservation
	CustomerID  int64
	VendorID    int64
	OrderNumber string
	VariantSKU  string
	ProductName string
}
