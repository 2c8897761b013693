package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/go-rental-api/internal/domains/rentals/domain"
	"github.com/Apurer/go-rental-api/internal/domains/rentals/ports"
	orderactivities "github.com/Apurer/go-rental-api/internal/durable/temporal/activities/orders"
)

// RunOrderPlacementSequence executes the activity that persists an order with its reservations.
// Domain failures arrive non-retryable; lost reservation races and storage errors retry.
func RunOrderPlacementSequence(ctx workflow.Context, input ports.CreateOrderInput) (*domain.Order, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("order placement sequence started", "customerId", input.Caller.UserID, "items", len(input.Items))
	options := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    500 * time.Millisecond,
			BackoffCoefficient: 2.0,
			MaximumInterval:    5 * time.Second,
			MaximumAttempts:    4,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, options)

	var order domain.Order
	err := workflow.ExecuteActivity(ctx, orderactivities.PlaceOrderActivityName, input).Get(ctx, &order)
	if err != nil {
		logger.Warn("order placement sequence failed", "customerId", input.Caller.UserID, "error", err)
		return nil, err
	}
	logger.Info("order placement sequence completed", "orderId", order.ID, "orderNumber", order.OrderNumber)
	return &order, nil
}
