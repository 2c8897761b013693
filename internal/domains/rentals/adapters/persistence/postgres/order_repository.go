package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-rental-api/internal/domains/rentals/domain"
	"github.com/Apurer/go-rental-api/internal/domains/rentals/ports"
)

var _ ports.OrderRepository = (*OrderRepository)(nil)

// OrderRepository persists orders in PostgreSQL.
type OrderRepository struct {
	db *gorm.DB
}

func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	if err := ensureDB(r.db); err != nil {
		return err
	}
	if order == nil {
		return errors.New("order is nil")
	}
	record := toOrderRecord(order)
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return classify(err)
	}
	order.ID = record.ID
	order.CreatedAt = record.CreatedAt
	order.UpdatedAt = record.UpdatedAt
	return nil
}

func (r *OrderRepository) Get(ctx context.Context, id int64) (*domain.Order, error) {
	return r.load(ctx, r.db.WithContext(ctx), id)
}

// Lock takes FOR UPDATE on the order row; it only holds inside a transaction.
func (r *OrderRepository) Lock(ctx context.Context, id int64) (*domain.Order, error) {
	return r.load(ctx, r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *OrderRepository) load(ctx context.Context, query *gorm.DB, id int64) (*domain.Order, error) {
	if err := ensureDB(r.db); err != nil {
		return nil, err
	}
	var record orderRecord
	if err := query.Take(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("order", id)
		}
		return nil, classify(err)
	}
	order := record.toDomain()
	reservations, err := (&ReservationRepository{db: r.db}).ListByOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Reservations = reservations
	return order, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	return r.update(ctx, id, map[string]any{"status": string(status)})
}

func (r *OrderRepository) UpdateTerms(ctx context.Context, id int64, period domain.Period, totals domain.Totals) error {
	return r.update(ctx, id, map[string]any{
		"start_date":   period.Start.UTC(),
		"end_date":     period.End.UTC(),
		"subtotal":     totals.Subtotal,
		"tax":          totals.Tax,
		"total_amount": totals.Total,
	})
}

func (r *OrderRepository) update(ctx context.Context, id int64, values map[string]any) error {
	if err := ensureDB(r.db); err != nil {
		return err
	}
	values["updated_at"] = gorm.Expr("NOW()")
	result := r.db.WithContext(ctx).Model(&orderRecord{}).Where("id = ?", id).Updates(values)
	if result.Error != nil {
		return classify(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NotFound("order", id)
	}
	return nil
}

func (r *OrderRepository) ListByCustomer(ctx context.Context, customerID int64, filter ports.OrderFilter) ([]*domain.OrderSummary, error) {
	if err := ensureDB(r.db); err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx).
		Table("orders AS o").
		Select("o.*, COUNT(r.id) AS reservation_count").
		Joins("LEFT JOIN reservations r ON r.order_id = o.id").
		Where("o.customer_id = ?", customerID)
	if filter.Status != nil {
		query = query.Where("o.status = ?", string(*filter.Status))
	}
	var rows []orderSummaryRow
	err := query.Group("o.id").
		Order("o.created_at DESC, o.id DESC").
		Limit(filter.Limit).
		Offset((filter.Page - 1) * filter.Limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]*domain.OrderSummary, 0, len(rows))
	for i := range rows {
		out = append(out, &domain.OrderSummary{
			Order:            *rows[i].Order.toDomain(),
			ReservationCount: rows[i].ReservationCount,
		})
	}
	return out, nil
}

func (r *OrderRepository) CompleteFulfilled(ctx context.Context) (int, error) {
	if err := ensureDB(r.db); err != nil {
		return 0, err
	}
	result := r.db.WithContext(ctx).
		Model(&orderRecord{}).
		Where("status = ?", string(domain.OrderConfirmed)).
		Where("NOT EXISTS (SELECT 1 FROM reservations r WHERE r.order_id = orders.id AND r.status = ?)", string(domain.ReservationActive)).
		Where("EXISTS (SELECT 1 FROM reservations r WHERE r.order_id = orders.id AND r.status = ?)", string(domain.ReservationCompleted)).
		Updates(map[string]any{"status": string(domain.OrderCompleted), "updated_at": gorm.Expr("NOW()")})
	if result.Error != nil {
		return 0, classify(result.Error)
	}
	return int(result.RowsAffected), nil
}
