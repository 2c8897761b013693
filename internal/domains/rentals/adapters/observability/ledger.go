package observability

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Apurer/go-rental-api/internal/domains/rentals/domain"
	"github.com/Apurer/go-rental-api/internal/domains/rentals/ports"
)

// Ledger decorates the reservation ledger with tracing, logging and metrics.
type Ledger struct {
	inner ports.LedgerService
	instrumentation
}

// NewLedger wires a decorator around the core ledger.
func NewLedger(inner ports.LedgerService, opts ...Option) *Ledger {
	return &Ledger{inner: inner, instrumentation: newInstrumentation(opts)}
}

func (l *Ledger) CheckAvailability(ctx context.Context, query ports.AvailabilityQuery) (*domain.Availability, error) {
	ctx, span := l.startSpan(ctx, "Ledger.CheckAvailability",
		attribute.Int64("variant.id", query.VariantID),
		attribute.Int("reservation.quantity", query.Quantity),
	)
	defer span.End()

	result, err := l.inner.CheckAvailability(ctx, query)
	if err != nil {
		return nil, l.handleError(ctx, span, err, "availability check failed", slog.Int64("variantId", query.VariantID))
	}
	span.SetAttributes(
		attribute.Int("availability.available", result.Available),
		attribute.Bool("availability.can_reserve", result.CanReserve),
	)
	addCounter(ctx, l.metrics.availabilityChecks, 1, attribute.Bool("can_reserve", result.CanReserve))
	return result, nil
}

func (l *Ledger) Reserve(ctx context.Context, input ports.ReserveInput) ([]domain.Reservation, error) {
	ctx, span := l.startSpan(ctx, "Ledger.Reserve",
		attribute.Int64("order.id", input.OrderID),
		attribute.Int("reservation.items", len(input.Items)),
	)
	defer span.End()

	l.logInfo(ctx, "reserving", slog.Int64("orderId", input.OrderID), slog.Int("items", len(input.Items)))
	result, err := l.inner.Reserve(ctx, input)
	if err != nil {
		return nil, l.handleError(ctx, span, err, "reserve failed", slog.Int64("orderId", input.OrderID))
	}
	addCounter(ctx, l.metrics.reservationsCreated, int64(len(result)))
	l.logInfo(ctx, "reserved", slog.Int64("orderId", input.OrderID), slog.Int("count", len(result)))
	return result, nil
}

func (l *Ledger) Cancel(ctx context.Context, caller domain.Caller, id int64) (*domain.Reservation, error) {
	ctx, span := l.startSpan(ctx, "Ledger.Cancel", attribute.Int64("reservation.id", id))
	defer span.End()

	result, err := l.inner.Cancel(ctx, caller, id)
	if err != nil {
		return nil, l.handleError(ctx, span, err, "cancel reservation failed", slog.Int64("reservationId", id))
	}
	addCounter(ctx, l.metrics.reservationsCancelled, 1)
	l.logInfo(ctx, "reservation cancelled", slog.Int64("reservationId", id), slog.Int64("userId", caller.UserID))
	return result, nil
}

func (l *Ledger) Complete(ctx context.Context, caller domain.Caller, id int64) (*domain.Reservation, error) {
	ctx, span := l.startSpan(ctx, "Ledger.Complete", attribute.Int64("reservation.id", id))
	defer span.End()

	result, err := l.inner.Complete(ctx, caller, id)
	if err != nil {
		return nil, l.handleError(ctx, span, err, "complete reservation failed", slog.Int64("reservationId", id))
	}
	l.logInfo(ctx, "reservation completed", slog.Int64("reservationId", id))
	return result, nil
}

func (l *Ledger) Get(ctx context.Context, caller domain.Caller, id int64) (*domain.ReservationView, error) {
	ctx, span := l.startSpan(ctx, "Ledger.Get", attribute.Int64("reservation.id", id))
	defer span.End()

	result, err := l.inner.Get(ctx, caller, id)
	if err != nil {
		return nil, l.handleError(ctx, span, err, "load reservation failed", slog.Int64("reservationId", id))
	}
	return result, nil
}

func (l *Ledger) ListForCaller(ctx context.Context, caller domain.Caller, filter ports.ReservationFilter) ([]*domain.ReservationView, error) {
	ctx, span := l.startSpan(ctx, "Ledger.ListForCaller", attribute.Int64("user.id", caller.UserID))
	defer span.End()

	result, err := l.inner.ListForCaller(ctx, caller, filter)
	if err != nil {
		return nil, l.handleError(ctx, span, err, "list reservations failed", slog.Int64("userId", caller.UserID))
	}
	span.SetAttributes(attribute.Int("reservation.result.count", len(result)))
	return result, nil
}

func (l *Ledger) CompleteElapsed(ctx context.Context, now time.Time) (*ports.SweepResult, error) {
	ctx, span := l.startSpan(ctx, "Ledger.CompleteElapsed")
	defer span.End()

	result, err := l.inner.CompleteElapsed(ctx, now)
	if err != nil {
		return nil, l.handleError(ctx, span, err, "elapsed sweep failed")
	}
	span.SetAttributes(
		attribute.Int("reservation.completed", result.ReservationsCompleted),
		attribute.Int("order.completed", result.OrdersCompleted),
	)
	l.logInfo(ctx, "elapsed sweep finished",
		slog.Int("reservationsCompleted", result.ReservationsCompleted),
		slog.Int("ordersCompleted", result.OrdersCompleted),
	)
	return result, nil
}

var _ ports.LedgerService = (*Ledger)(nil)
