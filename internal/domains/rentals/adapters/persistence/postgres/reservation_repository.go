package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-rental-api/internal/domains/rentals/domain"
	"github.com/Apurer/go-rental-api/internal/domains/rentals/ports"
)

var _ ports.ReservationRepository = (*ReservationRepository)(nil)

// ReservationRepository owns the reservations table.
type ReservationRepository struct {
	db *gorm.DB
}

const reservationViewSelect = `r.id, r.order_id, r.variant_id, r.start_date, r.end_date, r.quantity, r.status,
	r.created_at, r.updated_at, o.customer_id, o.vendor_id, o.order_number,
	v.sku AS variant_sku, p.name AS product_name`

func (r *ReservationRepository) SumActiveOverlapping(ctx context.Context, variantID int64, p domain.Period) (int, error) {
	if err := ensureDB(r.db); err != nil {
		return 0, err
	}
	return sumActiveOverlapping(r.db.WithContext(ctx), variantID, p)
}

func sumActiveOverlapping(db *gorm.DB, variantID int64, p domain.Period) (int, error) {
	var total int64
	err := db.Model(&reservationRecord{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("variant_id = ? AND status = ? AND start_date < ? AND end_date > ?",
			variantID, string(domain.ReservationActive), p.End.UTC(), p.Start.UTC()).
		Scan(&total).Error
	if err != nil {
		return 0, classify(err)
	}
	return int(total), nil
}

// Insert locks the variant row for the rest of the transaction, re-sums overlapping
// ACTIVE quantity and only then writes the row. Concurrent inserts on the same variant
// queue behind the lock, so the check and the write cannot interleave.
func (r *ReservationRepository) Insert(ctx context.Context, res *domain.Reservation) error {
	if err := ensureDB(r.db); err != nil {
		return err
	}
	if res == nil {
		return errors.New("reservation is nil")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var variant variantRecord
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "stock_quantity").
			Take(&variant, "id = ?", res.VariantID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NotFound("variant", res.VariantID)
			}
			return classify(err)
		}
		reserved, err := sumActiveOverlapping(tx, res.VariantID, res.Period)
		if err != nil {
			return err
		}
		if reserved+res.Quantity > variant.StockQuantity {
			return ports.ErrExclusionViolated
		}
		record := toReservationRecord(res)
		record.Status = string(domain.ReservationActive)
		if err := tx.Create(&record).Error; err != nil {
			return classify(err)
		}
		*res = record.toDomain()
		return nil
	})
}

func (r *ReservationRepository) Transition(ctx context.Context, id int64, to domain.ReservationStatus) (*domain.Reservation, error) {
	if err := ensureDB(r.db); err != nil {
		return nil, err
	}
	var record reservationRecord
	result := r.db.WithContext(ctx).
		Model(&record).
		Clauses(clause.Returning{}).
		Where("id = ? AND status = ?", id, string(domain.ReservationActive)).
		Updates(map[string]any{"status": string(to), "updated_at": gorm.Expr("NOW()")})
	if result.Error != nil {
		return nil, classify(result.Error)
	}
	if result.RowsAffected == 0 {
		var existing reservationRecord
		if err := r.db.WithContext(ctx).Select("id", "status").Take(&existing, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, domain.NotFound("reservation", id)
			}
			return nil, classify(err)
		}
		return nil, domain.CheckReservationTransition(domain.ReservationStatus(existing.Status), to)
	}
	out := record.toDomain()
	return &out, nil
}

func (r *ReservationRepository) TransitionByOrder(ctx context.Context, orderID int64, to domain.ReservationStatus) (int, error) {
	if err := ensureDB(r.db); err != nil {
		return 0, err
	}
	result := r.db.WithContext(ctx).
		Model(&reservationRecord{}).
		Where("order_id = ? AND status = ?", orderID, string(domain.ReservationActive)).
		Updates(map[string]any{"status": string(to), "updated_at": gorm.Expr("NOW()")})
	if result.Error != nil {
		return 0, classify(result.Error)
	}
	return int(result.RowsAffected), nil
}

func (r *ReservationRepository) CompleteEndedBefore(ctx context.Context, cutoff time.Time) (int, error) {
	if err := ensureDB(r.db); err != nil {
		return 0, err
	}
	result := r.db.WithContext(ctx).
		Model(&reservationRecord{}).
		Where("status = ? AND end_date <= ?", string(domain.ReservationActive), cutoff.UTC()).
		Updates(map[string]any{"status": string(domain.ReservationCompleted), "updated_at": gorm.Expr("NOW()")})
	if result.Error != nil {
		return 0, classify(result.Error)
	}
	return int(result.RowsAffected), nil
}

func (r *ReservationRepository) views(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("reservations AS r").
		Select(reservationViewSelect).
		Joins("JOIN orders o ON o.id = r.order_id").
		Joins("LEFT JOIN variants v ON v.id = r.variant_id").
		Joins("LEFT JOIN products p ON p.id = v.product_id")
}

func (r *ReservationRepository) GetView(ctx context.Context, id int64) (*domain.ReservationView, error) {
	if err := ensureDB(r.db); err != nil {
		return nil, err
	}
	var row reservationViewRow
	if err := r.views(ctx).Where("r.id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("reservation", id)
		}
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *ReservationRepository) ListByCustomer(ctx context.Context, customerID int64, filter ports.ReservationFilter) ([]*domain.ReservationView, error) {
	if err := ensureDB(r.db); err != nil {
		return nil, err
	}
	query := r.views(ctx).Where("o.customer_id = ?", customerID)
	if len(filter.Statuses) > 0 {
		statuses := make(pq.StringArray, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, string(s))
		}
		query = query.Where("r.status = ANY(?)", statuses)
	}
	var rows []reservationViewRow
	if err := query.Order("r.created_at DESC, r.id DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	views := make([]*domain.ReservationView, 0, len(rows))
	for i := range rows {
		views = append(views, rows[i].toDomain())
	}
	return views, nil
}

func (r *ReservationRepository) ListByOrder(ctx context.Context, orderID int64) ([]domain.Reservation, error) {
	if err := ensureDB(r.db); err != nil {
		return nil, err
	}
	var records []reservationRecord
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Reservation, 0, len(records))
	for i := range records {
		out = append(out, records[i].toDomain())
	}
	return out, nil
}
