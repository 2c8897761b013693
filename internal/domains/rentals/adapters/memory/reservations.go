package memory

import (
	"context"
	"slices"
	"time"

	"github.com/Apurer/go-rental-api/internal/domains/rentals/domain"
	"github.com/Apurer/go-rental-api/internal/domains/rentals/ports"
)

type reservations struct{ scope }

func (st *state) sumActiveOverlapping(variantID int64, p domain.Period) int {
	total := 0
	for _, r := range st.reservations {
		if r.VariantID == variantID && r.Status == domain.ReservationActive && r.Period.Overlaps(p) {
			total += r.Quantity
		}
	}
	return total
}

func (r reservations) SumActiveOverlapping(_ context.Context, variantID int64, p domain.Period) (int, error) {
	var total int
	err := r.with(func(st *state) error {
		total = st.sumActiveOverlapping(variantID, p)
		return nil
	})
	return total, err
}

func (r reservations) Insert(_ context.Context, res *domain.Reservation) error {
	return r.with(func(st *state) error {
		variant, ok := st.variants[res.VariantID]
		if !ok {
			return domain.NotFound("variant", res.VariantID)
		}
		if _, ok := st.orders[res.OrderID]; !ok {
			return domain.NotFound("order", res.OrderID)
		}
		if st.sumActiveOverlapping(res.VariantID, res.Period)+res.Quantity > variant.StockQuantity {
			return ports.ErrExclusionViolated
		}
		st.nextReservationID++
		now := r.timestamp()
		res.ID = st.nextReservationID
		res.Status = domain.ReservationActive
		res.CreatedAt = now
		res.UpdatedAt = now
		st.reservations[res.ID] = *res
		return nil
	})
}

func (r reservations) Transition(_ context.Context, id int64, to domain.ReservationStatus) (*domain.Reservation, error) {
	var out *domain.Reservation
	err := r.with(func(st *state) error {
		res, ok := st.reservations[id]
		if !ok {
			return domain.NotFound("reservation", id)
		}
		if err := res.TransitionTo(to); err != nil {
			return err
		}
		res.UpdatedAt = r.timestamp()
		st.reservations[id] = res
		out = &res
		return nil
	})
	return out, err
}

func (r reservations) TransitionByOrder(_ context.Context, orderID int64, to domain.ReservationStatus) (int, error) {
	count := 0
	err := r.with(func(st *state) error {
		now := r.timestamp()
		for id, res := range st.reservations {
			if res.OrderID != orderID || res.Status != domain.ReservationActive {
				continue
			}
			if err := res.TransitionTo(to); err != nil {
				return err
			}
			res.UpdatedAt = now
			st.reservations[id] = res
			count++
		}
		return nil
	})
	return count, err
}

func (r reservations) CompleteEndedBefore(_ context.Context, cutoff time.Time) (int, error) {
	count := 0
	err := r.with(func(st *state) error {
		now := r.timestamp()
		for id, res := range st.reservations {
			if res.Status != domain.ReservationActive || res.Period.End.After(cutoff) {
				continue
			}
			res.Status = domain.ReservationCompleted
			res.UpdatedAt = now
			st.reservations[id] = res
			count++
		}
		return nil
	})
	return count, err
}

func (st *state) view(res domain.Reservation) *domain.ReservationView {
	view := &domain.ReservationView{Reservation: res}
	if order, ok := st.orders[res.OrderID]; ok {
		view.CustomerID = order.CustomerID
		view.VendorID = order.VendorID
		view.OrderNumber = order.OrderNumber
	}
	if variant, ok := st.variants[res.VariantID]; ok {
		view.VariantSKU = variant.SKU
		view.ProductName = variant.ProductName
	}
	return view
}

func (r reservations) GetView(_ context.Context, id int64) (*domain.ReservationView, error) {
	var out *domain.ReservationView
	err := r.with(func(st *state) error {
		res, ok := st.reservations[id]
		if !ok {
			return domain.NotFound("reservation", id)
		}
		out = st.view(res)
		return nil
	})
	return out, err
}

func (r reservations) ListByCustomer(_ context.Context, customerID int64, filter ports.ReservationFilter) ([]*domain.ReservationView, error) {
	var out []*domain.ReservationView
	err := r.with(func(st *state) error {
		for _, res := range st.reservations {
			if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, res.Status) {
				continue
			}
			view := st.view(res)
			if view.CustomerID != customerID {
				continue
			}
			out = append(out, view)
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *domain.ReservationView) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return int(b.ID - a.ID)
	})
	return out, err
}

func (r reservations) ListByOrder(_ context.Context, orderID int64) ([]domain.Reservation, error) {
	var out []domain.Reservation
	err := r.with(func(st *state) error {
		out = st.reservationsOf(orderID)
		return nil
	})
	return out, err
}

func (st *state) reservationsOf(orderID int64) []domain.Reservation {
	var out []domain.Reservation
	for _, res := range st.reservations {
		if res.OrderID == orderID {
			out = append(out, res)
		}
	}
	slices.SortFunc(out, func(a, b domain.Reservation) int { return int(a.ID - b.ID) })
	return out
}
