package ports

import (
	"context"

	"github.com/Apurer/go-rental-api/internal/domains/rentals/domain"
)

// OrderPlacement runs order creation, either inline or as a durable workflow.
type OrderPlacement interface {
	PlaceOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error)
}
