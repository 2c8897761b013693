package memory

import (
	"context"
	"slices"

	"github.com/Apurer/go-rental-api/internal/domains/rentals/domain"
	"github.com/Apurer/go-rental-api/internal/domains/rentals/ports"
)

type orders struct{ scope }

func (o orders) Create(_ context.Context, order *domain.Order) error {
	return o.with(func(st *state) error {
		st.nextOrderID++
		now := o.timestamp()
		order.ID = st.nextOrderID
		order.CreatedAt = now
		order.UpdatedAt = now
		stored := *order
		stored.Reservations = nil
		st.orders[order.ID] = stored
		return nil
	})
}

func (o orders) Get(_ context.Context, id int64) (*domain.Order, error) {
	var out *domain.Order
	err := o.with(func(st *state) error {
		order, ok := st.orders[id]
		if !ok {
			return domain.NotFound("order", id)
		}
		order.Reservations = st.reservationsOf(id)
		out = &order
		return nil
	})
	return out, err
}

// Lock is Get: transactions are already exclusive.
func (o orders) Lock(ctx context.Context, id int64) (*domain.Order, error) {
	return o.Get(ctx, id)
}

func (o orders) UpdateStatus(_ context.Context, id int64, status domain.OrderStatus) error {
	return o.update(id, func(order *domain.Order) { order.Status = status })
}

func (o orders) UpdateTerms(_ context.Context, id int64, period domain.Period, totals domain.Totals) error {
	return o.update(id, func(order *domain.Order) {
		order.Period = period
		order.Subtotal = totals.Subtotal
		order.Tax = totals.Tax
		order.TotalAmount = totals.Total
	})
}

func (o orders) update(id int64, apply func(*domain.Order)) error {
	return o.with(func(st *state) error {
		order, ok := st.orders[id]
		if !ok {
			return domain.NotFound("order", id)
		}
		apply(&order)
		order.UpdatedAt = o.timestamp()
		st.orders[id] = order
		return nil
	})
}

func (o orders) ListByCustomer(_ context.Context, customerID int64, filter ports.OrderFilter) ([]*domain.OrderSummary, error) {
	var matched []*domain.OrderSummary
	err := o.with(func(st *state) error {
		for _, order := range st.orders {
			if order.CustomerID != customerID {
				continue
			}
			if filter.Status != nil && order.Status != *filter.Status {
				continue
			}
			matched = append(matched, &domain.OrderSummary{
				Order:            order,
				ReservationCount: len(st.reservationsOf(order.ID)),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(matched, func(a, b *domain.OrderSummary) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return int(b.ID - a.ID)
	})
	offset := (filter.Page - 1) * filter.Limit
	if offset < 0 || offset >= len(matched) {
		return []*domain.OrderSummary{}, nil
	}
	end := min(offset+filter.Limit, len(matched))
	return matched[offset:end], nil
}

func (o orders) CompleteFulfilled(_ context.Context) (int, error) {
	count := 0
	err := o.with(func(st *state) error {
		now := o.timestamp()
		for id, order := range st.orders {
			if order.Status != domain.OrderConfirmed {
				continue
			}
			active, completed := 0, 0
			for _, res := range st.reservationsOf(id) {
				switch res.Status {
				case domain.ReservationActive:
					active++
				case domain.ReservationCompleted:
					completed++
				}
			}
			if active > 0 || completed == 0 {
				continue
			}
			order.Status = domain.OrderCompleted
			order.UpdatedAt = now
			st.orders[id] = order
			count++
		}
		return nil
	})
	return count, err
}
