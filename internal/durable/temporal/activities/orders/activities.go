package orders

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"

	"github.com/Apurer/go-rental-api/internal/domains/rentals/domain"
	"github.com/Apurer/go-rental-api/internal/domains/rentals/ports"
)

// PlaceOrderActivityName creates an order and its reservations in one storage transaction.
const PlaceOrderActivityName = "orders.activities.PlaceOrder"

// Activities groups activities that operate on the rentals bounded context.
type Activities struct {
	orders ports.OrderService
}

// NewActivities wires the order service into the Temporal activities bundle.
func NewActivities(orders ports.OrderService) *Activities {
	return &Activities{orders: orders}
}

// PlaceOrder runs the order orchestrator. Retries are safe only when the input carries an
// idempotency key, which the workflow adapter always sets.
func (a *Activities) PlaceOrder(ctx context.Context, input ports.CreateOrderInput) (*domain.Order, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.orders == nil {
		logger.Error("place order activity not initialized")
		return nil, errors.New("place order activity not initialized")
	}
	info := activity.GetInfo(ctx)
	logger.Info("PlaceOrder activity started", "customerId", input.Caller.UserID, "items", len(input.Items), "attempt", info.Attempt)
	order, err := a.orders.CreateOrder(ctx, input)
	if err != nil {
		logger.Warn("PlaceOrder activity failed", "customerId", input.Caller.UserID, "error", err)
		return nil, EncodeError(err)
	}
	logger.Info("PlaceOrder activity completed", "orderId", order.ID, "orderNumber", order.OrderNumber)
	return order, nil
}
