package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Apurer/go-rental-api/internal/domains/rentals/domain"
	"github.com/Apurer/go-rental-api/internal/domains/rentals/ports"
)

// Orders decorates the order services with tracing, logging and metrics.
type Orders struct {
	inner ports.OrderService
	instrumentation
}

// NewOrders wires a decorator around the core order service.
func NewOrders(inner ports.OrderService, opts ...Option) *Orders {
	return &Orders{inner: inner, instrumentation: newInstrumentation(opts)}
}

func (o *Orders) CreateOrder(ctx context.Context, input ports.CreateOrderInput) (*domain.Order, error) {
	ctx, span := o.startSpan(ctx, "Orders.CreateOrder",
		attribute.Int64("user.id", input.Caller.UserID),
		attribute.Int("order.items", len(input.Items)),
		attribute.Bool("order.idempotent", input.IdempotencyKey != ""),
	)
	defer span.End()

	o.logInfo(ctx, "creating order", slog.Int64("userId", input.Caller.UserID), slog.Int("items", len(input.Items)))
	order, err := o.inner.CreateOrder(ctx, input)
	if err != nil {
		return nil, o.handleError(ctx, span, err, "create order failed", slog.Int64("userId", input.Caller.UserID))
	}
	span.SetAttributes(attribute.Int64("order.id", order.ID), attribute.String("order.number", order.OrderNumber))
	addCounter(ctx, o.metrics.ordersCreated, 1, attribute.Int64("vendor.id", order.VendorID))
	addCounter(ctx, o.metrics.reservationsCreated, int64(len(order.Reservations)))
	o.logInfo(ctx, "order created",
		slog.Int64("orderId", order.ID),
		slog.String("orderNumber", order.OrderNumber),
		slog.String("total", order.TotalAmount.StringFixed(2)),
	)
	return order, nil
}

func (o *Orders) GetOrder(ctx context.Context, caller domain.Caller, id int64) (*domain.Order, error) {
	ctx, span := o.startSpan(ctx, "Orders.GetOrder", attribute.Int64("order.id", id))
	defer span.End()

	order, err := o.inner.GetOrder(ctx, caller, id)
	if err != nil {
		return nil, o.handleError(ctx, span, err, "load order failed", slog.Int64("orderId", id))
	}
	return order, nil
}

func (o *Orders) ListOrders(ctx context.Context, caller domain.Caller, filter ports.OrderFilter) ([]*domain.OrderSummary, error) {
	ctx, span := o.startSpan(ctx, "Orders.ListOrders",
		attribute.Int64("user.id", caller.UserID),
		attribute.Int("page", filter.Page),
		attribute.Int("limit", filter.Limit),
	)
	defer span.End()

	orders, err := o.inner.ListOrders(ctx, caller, filter)
	if err != nil {
		return nil, o.handleError(ctx, span, err, "list orders failed", slog.Int64("userId", caller.UserID))
	}
	span.SetAttributes(attribute.Int("order.result.count", len(orders)))
	return orders, nil
}

func (o *Orders) ConfirmOrder(ctx context.Context, caller domain.Caller, id int64) (*domain.Order, error) {
	ctx, span := o.startSpan(ctx, "Orders.ConfirmOrder", attribute.Int64("order.id", id))
	defer span.End()

	order, err := o.inner.ConfirmOrder(ctx, caller, id)
	if err != nil {
		return nil, o.handleError(ctx, span, err, "confirm order failed", slog.Int64("orderId", id))
	}
	o.logInfo(ctx, "order confirmed", slog.Int64("orderId", id))
	return order, nil
}

func (o *Orders) CancelOrder(ctx context.Context, caller domain.Caller, id int64) (*ports.CancelOrderResult, error) {
	ctx, span := o.startSpan(ctx, "Orders.CancelOrder", attribute.Int64("order.id", id))
	defer span.End()

	result, err := o.inner.CancelOrder(ctx, caller, id)
	if err != nil {
		return nil, o.handleError(ctx, span, err, "cancel order failed", slog.Int64("orderId", id))
	}
	span.SetAttributes(attribute.Int("reservation.released", result.Released))
	addCounter(ctx, o.metrics.ordersCancelled, 1)
	addCounter(ctx, o.metrics.reservationsCancelled, int64(result.Released))
	o.logInfo(ctx, "order cancelled", slog.Int64("orderId", id), slog.Int("released", result.Released))
	return result, nil
}

var _ ports.OrderService = (*Orders)(nil)
