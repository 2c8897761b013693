package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Apurer/go-rental-api/internal/domains/rentals/domain"
	"github.com/Apurer/go-rental-api/internal/domains/rentals/ports"
)

var _ ports.Transactor = (*Store)(nil)

// Store persists orders and reservations in PostgreSQL using GORM. A Store built from a
// transaction handle scopes every repository to that transaction.
type Store struct {
	db *gorm.DB
}

// NewStore wires a PostgreSQL-backed store. Caller manages DB lifecycle and migrations.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Catalog() ports.Catalog                   { return &Catalog{db: s.db} }
func (s *Store) Reservations() ports.ReservationRepository { return &ReservationRepository{db: s.db} }
func (s *Store) Orders() ports.OrderRepository             { return &OrderRepository{db: s.db} }
func (s *Store) Idempotency() ports.IdempotencyStore       { return &IdempotencyStore{db: s.db} }

// WithinTx runs fn in a database transaction; nested calls become savepoints.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ports.Store) error) error {
	if err := ensureDB(s.db); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &Store{db: tx})
	})
}

func ensureDB(db *gorm.DB) error {
	if db == nil {
		return errors.New("postgres rentals store not configured")
	}
	return nil
}

// Catalog reads variants joined with their product's vendor.
type Catalog struct {
	db *gorm.DB
}

// GetVariant loads a variant or reports domain.ErrNotFound.
func (c *Catalog) GetVariant(ctx context.Context, id int64) (*domain.Variant, error) {
	if err := ensureDB(c.db); err != nil {
		return nil, err
	}
	var row variantRow
	err := c.db.WithContext(ctx).
		Table("variants AS v").
		Select("v.id, v.product_id, p.vendor_id, v.sku, p.name AS product_name, v.stock_quantity, v.price_daily").
		Joins("JOIN products p ON p.id = v.product_id").
		Where("v.id = ?", id).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("variant", id)
		}
		return nil, err
	}
	return row.toDomain(), nil
}
