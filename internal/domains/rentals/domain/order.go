package domain

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus enumerates order progression.
type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderConfirmed OrderStatus = "CONFIRMED"
	OrderCancelled OrderStatus = "CANCELLED"
	OrderCompleted OrderStatus = "COMPLETED"
)

// ParseOrderStatus accepts the upper-case wire names.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	switch s := OrderStatus(raw); s {
	case OrderPending, OrderConfirmed, OrderCancelled, OrderCompleted:
		return s, nil
	default:
		return "", Invalid("order status %q is invalid", raw)
	}
}

// Cancellable reports whether the order may still be cancelled.
func (s OrderStatus) Cancellable() bool {
	return s == OrderPending || s == OrderConfirmed
}

// AcceptsReservations reports whether new reservations may be attached.
func (s OrderStatus) AcceptsReservations() bool {
	return s == OrderPending || s == OrderConfirmed
}

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:   {OrderConfirmed, OrderCancelled},
	OrderConfirmed: {OrderCancelled, OrderCompleted},
}

// CheckOrderTransition validates a status change against the order state machine.
func CheckOrderTransition(from, to OrderStatus) error {
	for _, allowed := range orderTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	if to == OrderCancelled {
		return fmt.Errorf("%w: cannot cancel order with status: %s", ErrInvalidStateTransition, from)
	}
	return fmt.Errorf("%w: order %s -> %s", ErrInvalidStateTransition, from, to)
}

// Order groups reservations for one customer from exactly one vendor.
type Order struct {
	ID           int64
	CustomerID   int64
	VendorID     int64
	OrderNumber  string
	Subtotal     decimal.Decimal
	Tax          decimal.Decimal
	TotalAmount  decimal.Decimal
	Period       Period
	Status       OrderStatus
	Reservations []Reservation
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TransitionTo applies a validated status change.
func (o *Order) TransitionTo(next OrderStatus) error {
	if err := CheckOrderTransition(o.Status, next); err != nil {
		return err
	}
	o.Status = next
	return nil
}

// OrderSummary is the list projection of an order.
type OrderSummary struct {
	Order
	ReservationCount int
}

// NewOrderNumber builds the human-readable identifier ORD-YYYYMMDD-NNNN.
// Collisions are not re-checked; the number is advisory.
func NewOrderNumber(now time.Time) string {
	return fmt.Sprintf("ORD-%s-%04d", now.UTC().Format("20060102"), rand.Intn(10000))
}
