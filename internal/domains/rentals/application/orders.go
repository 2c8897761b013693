package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Apurer/go-rental-api/internal/domains/rentals/domain"
	"github.com/Apurer/go-rental-api/internal/domains/rentals/ports"
)

const (
	defaultOrderPageLimit = 10
	maxOrderPageLimit     = 100
)

// maxOrderPage keeps (page-1)*limit far from int overflow.
const maxOrderPage = 100_000

// errReplayed rolls back a duplicate placement that lost the idempotency race.
var errReplayed = errors.New("order replayed from idempotency key")

// Orders composes reservations into orders and drives the order lifecycle.
type Orders struct {
	store        ports.Transactor
	now          func() time.Time
	orderNumber  func(time.Time) string
	maxPageLimit int
}

// OrdersOption customizes the order service.
type OrdersOption func(*Orders)

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) OrdersOption {
	return func(o *Orders) {
		if now != nil {
			o.now = now
		}
	}
}

// WithOrderNumbers overrides how order numbers are generated.
func WithOrderNumbers(gen func(time.Time) string) OrdersOption {
	return func(o *Orders) {
		if gen != nil {
			o.orderNumber = gen
		}
	}
}

// WithMaxPageLimit caps the page size accepted by ListOrders.
func WithMaxPageLimit(limit int) OrdersOption {
	return func(o *Orders) {
		if limit > 0 {
			o.maxPageLimit = limit
		}
	}
}

// NewOrders wires the order service with its storage handle.
func NewOrders(store ports.Transactor, opts ...OrdersOption) *Orders {
	o := &Orders{
		store:        store,
		now:          time.Now,
		orderNumber:  domain.NewOrderNumber,
		maxPageLimit: maxOrderPageLimit,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// CreateOrder prices the items, persists a PENDING order and reserves every item in
// one transaction. The first failing item aborts the whole order.
func (s *Orders) CreateOrder(ctx context.Context, input ports.CreateOrderInput) (*domain.Order, error) {
	if input.Caller.Role != domain.RoleCustomer {
		return nil, forbidden("place orders")
	}
	if len(input.Items) == 0 {
		return nil, domain.Invalid("order must have at least one item")
	}
	if err := validateItems(input.Items); err != nil {
		return nil, err
	}
	key := strings.TrimSpace(input.IdempotencyKey)
	var fingerprint string
	if key != "" {
		var err error
		if fingerprint, err = FingerprintOrder(input); err != nil {
			return nil, fmt.Errorf("fingerprint order request: %w", err)
		}
	}

	var orderID int64
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.Store) error {
		if key != "" {
			existing, err := tx.Idempotency().Get(ctx, key)
			if err != nil {
				return mapError(err)
			}
			if existing != nil {
				if existing.RequestHash != fingerprint {
					return domain.ErrIdempotencyConflict
				}
				orderID = existing.OrderID
				return nil
			}
		}

		order, variants, err := s.priceOrder(ctx, tx, input)
		if err != nil {
			return err
		}
		if err := tx.Orders().Create(ctx, order); err != nil {
			return mapError(err)
		}
		for i, item := range input.Items {
			reservation, err := reserve(ctx, tx, order.ID, variants[i], item)
			if err != nil {
				return itemError(i, item, err)
			}
			order.Reservations = append(order.Reservations, *reservation)
		}

		if key != "" {
			saved, err := tx.Idempotency().Save(ctx, ports.IdempotencyRecord{
				Key:         key,
				RequestHash: fingerprint,
				OrderID:     order.ID,
			})
			if err != nil {
				return mapError(err)
			}
			if saved.OrderID != order.ID {
				// A concurrent request with the same key committed first; drop ours.
				if saved.RequestHash != fingerprint {
					return domain.ErrIdempotencyConflict
				}
				orderID = saved.OrderID
				return errReplayed
			}
		}
		orderID = order.ID
		return nil
	})
	if err != nil && !errors.Is(err, errReplayed) {
		return nil, err
	}
	order, err := s.store.Orders().Get(ctx, orderID)
	if err != nil {
		return nil, mapError(err)
	}
	return order, nil
}

// priceOrder looks up each variant, enforces a single vendor and computes totals.
func (s *Orders) priceOrder(ctx context.Context, tx ports.Store, input ports.CreateOrderInput) (*domain.Order, []*domain.Variant, error) {
	variants := make([]*domain.Variant, len(input.Items))
	lines := make([]domain.LineItem, len(input.Items))
	var (
		vendorID int64
		envelope domain.Period
	)
	for i, item := range input.Items {
		variant, err := tx.Catalog().GetVariant(ctx, item.VariantID)
		if err != nil {
			return nil, nil, itemError(i, item, mapError(err))
		}
		if i == 0 {
			vendorID = variant.VendorID
			envelope = item.Period
		} else if variant.VendorID != vendorID {
			return nil, nil, itemError(i, item, domain.ErrCrossVendorOrder)
		}
		envelope = envelope.Envelope(item.Period)
		variants[i] = variant
		lines[i] = domain.LineItem{
			VariantID:  variant.ID,
			Quantity:   item.Quantity,
			Period:     item.Period,
			PriceDaily: variant.PriceDaily,
		}
	}
	totals := domain.CalculateTotals(lines)
	order := &domain.Order{
		CustomerID:  input.Caller.UserID,
		VendorID:    vendorID,
		OrderNumber: s.orderNumber(s.now()),
		Subtotal:    totals.Subtotal,
		Tax:         totals.Tax,
		TotalAmount: totals.Total,
		Period:      envelope,
		Status:      domain.OrderPending,
	}
	return order, variants, nil
}

// GetOrder loads an order visible to its customer, its vendor or an admin.
func (s *Orders) GetOrder(ctx context.Context, caller domain.Caller, id int64) (*domain.Order, error) {
	order, err := s.store.Orders().Get(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	if !caller.CanActFor(order.CustomerID) && !isVendorOf(caller, order.VendorID) {
		return nil, forbidden("view this order")
	}
	return order, nil
}

// ListOrders pages through the caller's orders, newest first.
func (s *Orders) ListOrders(ctx context.Context, caller domain.Caller, filter ports.OrderFilter) ([]*domain.OrderSummary, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Page > maxOrderPage {
		return nil, domain.Invalid("page must not exceed %d", maxOrderPage)
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultOrderPageLimit
	}
	if filter.Limit > s.maxPageLimit {
		filter.Limit = s.maxPageLimit
	}
	orders, err := s.store.Orders().ListByCustomer(ctx, caller.UserID, filter)
	if err != nil {
		return nil, mapError(err)
	}
	return orders, nil
}

// ConfirmOrder moves a PENDING order to CONFIRMED on behalf of its vendor.
func (s *Orders) ConfirmOrder(ctx context.Context, caller domain.Caller, id int64) (*domain.Order, error) {
	var confirmed *domain.Order
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.Store) error {
		order, err := tx.Orders().Lock(ctx, id)
		if err != nil {
			return mapError(err)
		}
		if !isVendorOf(caller, order.VendorID) {
			return forbidden("confirm this order")
		}
		if err := order.TransitionTo(domain.OrderConfirmed); err != nil {
			return err
		}
		if err := tx.Orders().UpdateStatus(ctx, id, order.Status); err != nil {
			return mapError(err)
		}
		confirmed, err = tx.Orders().Get(ctx, id)
		return mapError(err)
	})
	if err != nil {
		return nil, err
	}
	return confirmed, nil
}

// CancelOrder releases every ACTIVE reservation and marks the order CANCELLED atomically.
func (s *Orders) CancelOrder(ctx context.Context, caller domain.Caller, id int64) (*ports.CancelOrderResult, error) {
	result := &ports.CancelOrderResult{}
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.Store) error {
		order, err := tx.Orders().Lock(ctx, id)
		if err != nil {
			return mapError(err)
		}
		if !caller.CanActFor(order.CustomerID) {
			return forbidden("cancel this order")
		}
		if err := order.TransitionTo(domain.OrderCancelled); err != nil {
			return err
		}
		if result.Released, err = tx.Reservations().TransitionByOrder(ctx, id, domain.ReservationCancelled); err != nil {
			return mapError(err)
		}
		if err := tx.Orders().UpdateStatus(ctx, id, order.Status); err != nil {
			return mapError(err)
		}
		result.Order, err = tx.Orders().Get(ctx, id)
		return mapError(err)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

var _ ports.OrderService = (*Orders)(nil)
