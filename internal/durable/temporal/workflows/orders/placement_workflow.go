package orders

import (
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/go-rental-api/internal/domains/rentals/domain"
	"github.com/Apurer/go-rental-api/internal/domains/rentals/ports"
	"github.com/Apurer/go-rental-api/internal/durable/temporal/sequences"
)

const (
	// PlacementWorkflowName is the public identifier for registering the workflow.
	PlacementWorkflowName = "orders.workflows.Placement"
	// PlacementTaskQueue is the queue consumed by the worker processing order placement.
	PlacementTaskQueue = "ORDER_PLACEMENT"
)

// PlacementWorkflowInput captures the order command plus the caller's trace id.
type PlacementWorkflowInput struct {
	Command ports.CreateOrderInput
	TraceID string
}

// PlacementWorkflow places an order durably.
func PlacementWorkflow(ctx workflow.Context, input PlacementWorkflowInput) (*domain.Order, error) {
	logger := workflow.GetLogger(ctx)
	customerID := input.Command.Caller.UserID
	logger.Info("PlacementWorkflow started", withTraceID(input.TraceID, "customerId", customerID)...)
	order, err := sequences.RunOrderPlacementSequence(ctx, input.Command)
	if err != nil {
		logger.Warn("PlacementWorkflow failed", withTraceID(input.TraceID, "customerId", customerID, "error", err)...)
		return nil, err
	}
	logger.Info("PlacementWorkflow completed", withTraceID(input.TraceID, "orderId", order.ID)...)
	return order, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
