package workflows

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/Apurer/go-rental-api/internal/domains/rentals/domain"
	"github.com/Apurer/go-rental-api/internal/domains/rentals/ports"
	orderactivities "github.com/Apurer/go-rental-api/internal/durable/temporal/activities/orders"
	orderworkflows "github.com/Apurer/go-rental-api/internal/durable/temporal/workflows/orders"
)

var (
	_ ports.OrderPlacement = (*TemporalOrderPlacement)(nil)
	_ ports.OrderPlacement = (*InlineOrderPlacement)(nil)
)

// TemporalOrderPlacement starts order placement workflows on a Temporal cluster.
type TemporalOrderPlacement struct {
	client    client.Client
	taskQueue string
}

// NewTemporalOrderPlacement wires a Temporal client into the orchestrator.
func NewTemporalOrderPlacement(c client.Client) *TemporalOrderPlacement {
	return &TemporalOrderPlacement{client: c, taskQueue: orderworkflows.PlacementTaskQueue}
}

// PlaceOrder runs the placement workflow and waits for its result. Requests without an
// idempotency key get a generated one so activity retries replay instead of duplicating.
func (o *TemporalOrderPlacement) PlaceOrder(ctx context.Context, input ports.CreateOrderInput) (*domain.Order, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal order placement not configured")
	}
	clientKey := strings.TrimSpace(input.IdempotencyKey)
	if clientKey == "" {
		input.IdempotencyKey = "placement-" + uuid.NewString()
	}
	traceID := workflowTraceID(ctx)
	workflowID := buildPlacementWorkflowID(input, traceID)
	options := client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: o.taskQueue,
	}
	run, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		orderworkflows.PlacementWorkflowName,
		orderworkflows.PlacementWorkflowInput{Command: input, TraceID: traceID},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) && clientKey != "" {
			return awaitOrder(ctx, o.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId))
		}
		return nil, err
	}
	return awaitOrder(ctx, run)
}

func awaitOrder(ctx context.Context, run client.WorkflowRun) (*domain.Order, error) {
	var order domain.Order
	if err := run.Get(ctx, &order); err != nil {
		return nil, orderactivities.DecodeError(err)
	}
	return &order, nil
}

// InlineOrderPlacement calls the order service directly, for tests and when Temporal is unavailable.
type InlineOrderPlacement struct {
	orders ports.OrderService
}

// NewInlineOrderPlacement wraps the order service for synchronous execution.
func NewInlineOrderPlacement(orders ports.OrderService) *InlineOrderPlacement {
	return &InlineOrderPlacement{orders: orders}
}

// PlaceOrder delegates to the order service without durable orchestration.
func (o *InlineOrderPlacement) PlaceOrder(ctx context.Context, input ports.CreateOrderInput) (*domain.Order, error) {
	if o == nil || o.orders == nil {
		return nil, errors.New("inline order placement not configured")
	}
	return o.orders.CreateOrder(ctx, input)
}

func buildPlacementWorkflowID(input ports.CreateOrderInput, traceID string) string {
	if key := strings.TrimSpace(input.IdempotencyKey); key != "" {
		return fmt.Sprintf("order-placement-idem-%s", hashIdempotencyKey(input.Caller.UserID, key))
	}
	if traceID == "" {
		traceID = uuid.NewString()
	}
	return fmt.Sprintf("order-placement-%d-%s", input.Caller.UserID, traceID)
}

// hashIdempotencyKey scopes the key to the customer so two customers cannot collide.
func hashIdempotencyKey(customerID int64, key string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d:%s", customerID, key)))
	return hex.EncodeToString(sum[:8])
}

func workflowTraceID(ctx context.Context) string {
	spanCtx := oteltrace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
