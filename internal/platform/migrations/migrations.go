package migrations

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Run applies the rentals schema. Catalog tables are created here too so a standalone
// deployment and the integration tests have something to join against.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	if err := db.AutoMigrate(
		&productRecord{},
		&variantRecord{},
		&orderRecord{},
		&reservationRecord{},
		&idempotencyRecord{},
	); err != nil {
		return err
	}
	for _, c := range constraints {
		if err := ensureConstraint(db, c); err != nil {
			return err
		}
	}
	return nil
}

type constraint struct {
	table string
	name  string
	def   string
}

var constraints = []constraint{
	{"variants", "fk_variants_product", "FOREIGN KEY (product_id) REFERENCES products(id)"},
	{"reservations", "fk_reservations_order", "FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE"},
	{"reservations", "fk_reservations_variant", "FOREIGN KEY (variant_id) REFERENCES variants(id)"},
	{"reservations", "chk_reservations_period", "CHECK (end_date > start_date)"},
	{"reservations", "chk_reservations_quantity", "CHECK (quantity > 0)"},
	{"variants", "chk_variants_stock", "CHECK (stock_quantity >= 0)"},
}

func ensureConstraint(db *gorm.DB, c constraint) error {
	var exists bool
	if err := db.Raw("SELECT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = ?)", c.name).Scan(&exists).Error; err != nil {
		return err
	}
	if exists {
		return nil
	}
	stmt := fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s %s", c.table, c.name, c.def)
	if err := db.Exec(stmt).Error; err != nil {
		return fmt.Errorf("add constraint %s: %w", c.name, err)
	}
	return nil
}

// Catalog schema is owned upstream; the rentals adapter only reads it.
type productRecord struct {
	ID       int64  `gorm:"primaryKey;column:id"`
	VendorID int64  `gorm:"column:vendor_id;index"`
	Name     string `gorm:"column:name"`
}

func (productRecord) TableName() string { return "products" }

type variantRecord struct {
	ID            int64           `gorm:"primaryKey;column:id"`
	ProductID     int64           `gorm:"column:product_id;index"`
	SKU           string          `gorm:"column:sku;uniqueIndex"`
	StockQuantity int             `gorm:"column:stock_quantity"`
	PriceDaily    decimal.Decimal `gorm:"column:price_daily;type:numeric(12,2)"`
}

func (variantRecord) TableName() string { return "variants" }

// Order schema mirrors the rentals Postgres adapter. order_number is not unique.
type orderRecord struct {
	ID          int64           `gorm:"primaryKey;column:id"`
	CustomerID  int64           `gorm:"column:customer_id;index:idx_orders_customer_created,priority:1"`
	VendorID    int64           `gorm:"column:vendor_id;index"`
	OrderNumber string          `gorm:"column:order_number;size:32;index"`
	Subtotal    decimal.Decimal `gorm:"column:subtotal;type:numeric(12,2)"`
	Tax         decimal.Decimal `gorm:"column:tax;type:numeric(12,2)"`
	TotalAmount decimal.Decimal `gorm:"column:total_amount;type:numeric(12,2)"`
	StartDate   time.Time       `gorm:"column:start_date"`
	EndDate     time.Time       `gorm:"column:end_date"`
	Status      string          `gorm:"column:status;type:varchar(16);index"`
	CreatedAt   time.Time       `gorm:"column:created_at;index:idx_orders_customer_created,priority:2"`
	UpdatedAt   time.Time       `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

type reservationRecord struct {
	ID        int64     `gorm:"primaryKey;column:id"`
	OrderID   int64     `gorm:"column:order_id;index"`
	VariantID int64     `gorm:"column:variant_id;index:idx_reservations_variant_window,priority:1"`
	StartDate time.Time `gorm:"column:start_date;index:idx_reservations_variant_window,priority:3"`
	EndDate   time.Time `gorm:"column:end_date;index:idx_reservations_variant_window,priority:4"`
	Quantity  int       `gorm:"column:quantity"`
	Status    string    `gorm:"column:status;type:varchar(16);index:idx_reservations_variant_window,priority:2"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (reservationRecord) TableName() string { return "reservations" }

type idempotencyRecord struct {
	Key         string    `gorm:"primaryKey;column:key;size:255"`
	RequestHash string    `gorm:"column:request_hash;size:128"`
	OrderID     int64     `gorm:"column:order_id;index"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (idempotencyRecord) TableName() string { return "order_idempotency_keys" }
