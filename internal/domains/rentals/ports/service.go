package ports

import (
	"context"
	"time"

	"github.com/Apurer/go-rental-api/internal/domains/rentals/domain"
)

// ItemInput is one requested line: a quantity of a variant for a period.
type ItemInput struct {
	VariantID int64
	Quantity  int
	Period    domain.Period
}

// AvailabilityQuery asks whether quantity units of a variant are free over a period.
type AvailabilityQuery struct {
	VariantID int64
	Period    domain.Period
	Quantity  int
}

// ReserveInput attaches reservations to an existing order.
type ReserveInput struct {
	Caller  domain.Caller
	OrderID int64
	Items   []ItemInput
}

// SweepResult reports what an elapsed-reservation sweep changed.
type SweepResult struct {
	ReservationsCompleted int
	OrdersCompleted       int
}

// LedgerService exposes availability and reservation use cases to adapters.
type LedgerService interface {
	CheckAvailability(ctx context.Context, query AvailabilityQuery) (*domain.Availability, error)
	Reserve(ctx context.Context, input ReserveInput) ([]domain.Reservation, error)
	Cancel(ctx context.Context, caller domain.Caller, id int64) (*domain.Reservation, error)
	Complete(ctx context.Context, caller domain.Caller, id int64) (*domain.Reservation, error)
	Get(ctx context.Context, caller domain.Caller, id int64) (*domain.ReservationView, error)
	ListForCaller(ctx context.Context, caller domain.Caller, filter ReservationFilter) ([]*domain.ReservationView, error)
	CompleteElapsed(ctx context.Context, now time.Time) (*SweepResult, error)
}

// CreateOrderInput is the order placement command.
type CreateOrderInput struct {
	Caller         domain.Caller
	Items          []ItemInput
	IdempotencyKey string
}

// CancelOrderResult carries the cancelled order and how many reservations were released.
type CancelOrderResult struct {
	Order    *domain.Order
	Released int
}

// OrderService exposes order orchestration and lifecycle use cases to adapters.
type OrderService interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error)
	GetOrder(ctx context.Context, caller domain.Caller, id int64) (*domain.Order, error)
	ListOrders(ctx context.Context, caller domain.Caller, filter OrderFilter) ([]*domain.OrderSummary, error)
	ConfirmOrder(ctx context.Context, caller domain.Caller, id int64) (*domain.Order, error)
	CancelOrder(ctx context.Context, caller domain.Caller, id int64) (*CancelOrderResult, error)
}
