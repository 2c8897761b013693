package postgres

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/go-rental-api/internal/domains/rentals/domain"
	"github.com/Apurer/go-rental-api/internal/domains/rentals/ports"
)

// productRecord and variantRecord are owned by the catalog; this adapter only reads them.
type productRecord struct {
	ID       int64  `gorm:"primaryKey;column:id"`
	VendorID int64  `gorm:"column:vendor_id;index"`
	Name     string `gorm:"column:name"`
}

func (productRecord) TableName() string { return "products" }

type variantRecord struct {
	ID            int64           `gorm:"primaryKey;column:id"`
	ProductID     int64           `gorm:"column:product_id;index"`
	SKU           string          `gorm:"column:sku"`
	StockQuantity int             `gorm:"column:stock_quantity"`
	PriceDaily    decimal.Decimal `gorm:"column:price_daily;type:numeric(12,2)"`
}

func (variantRecord) TableName() string { return "variants" }

type orderRecord struct {
	ID          int64           `gorm:"primaryKey;column:id"`
	CustomerID  int64           `gorm:"column:customer_id;index:idx_orders_customer_created"`
	VendorID    int64           `gorm:"column:vendor_id;index"`
	OrderNumber string          `gorm:"column:order_number;size:32;index"`
	Subtotal    decimal.Decimal `gorm:"column:subtotal;type:numeric(12,2)"`
	Tax         decimal.Decimal `gorm:"column:tax;type:numeric(12,2)"`
	TotalAmount decimal.Decimal `gorm:"column:total_amount;type:numeric(12,2)"`
	StartDate   time.Time       `gorm:"column:start_date"`
	EndDate     time.Time       `gorm:"column:end_date"`
	Status      string          `gorm:"column:status;type:varchar(16);index"`
	CreatedAt   time.Time       `gorm:"column:created_at;index:idx_orders_customer_created"`
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
	OrderID     int64     `gorm:"column:order_id"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (idempotencyRecord) TableName() string { return "order_idempotency_keys" }

type variantRow struct {
	ID            int64           `gorm:"column:id"`
	ProductID     int64           `gorm:"column:product_id"`
	VendorID      int64           `gorm:"column:vendor_id"`
	SKU           string          `gorm:"column:sku"`
	ProductName   string          `gorm:"column:product_name"`
	StockQuantity int             `gorm:"column:stock_quantity"`
	PriceDaily    decimal.Decimal `gorm:"column:price_daily"`
}

type reservationViewRow struct {
	Reservation reservationRecord `gorm:"embedded"`
	CustomerID  int64             `gorm:"column:customer_id"`
	VendorID    int64             `gorm:"column:vendor_id"`
	OrderNumber string            `gorm:"column:order_number"`
	VariantSKU  string            `gorm:"column:variant_sku"`
	ProductName string            `gorm:"column:product_name"`
}

type orderSummaryRow struct {
	Order            orderRecord `gorm:"embedded"`
	ReservationCount int         `gorm:"column:reservation_count"`
}

func (r variantRow) toDomain() *domain.Variant {
	return &domain.Variant{
		ID:            r.ID,
		ProductID:     r.ProductID,
		VendorID:      r.VendorID,
		SKU:           r.SKU,
		ProductName:   r.ProductName,
		StockQuantity: r.StockQuantity,
		PriceDaily:    r.PriceDaily,
	}
}

func toReservationRecord(r *domain.Reservation) reservationRecord {
	return reservationRecord{
		ID:        r.ID,
		OrderID:   r.OrderID,
		VariantID: r.VariantID,
		StartDate: r.Period.Start.UTC(),
		EndDate:   r.Period.End.UTC(),
		Quantity:  r.Quantity,
		Status:    string(r.Status),
	}
}

func (r reservationRecord) toDomain() domain.Reservation {
	return domain.Reservation{
		ID:        r.ID,
		OrderID:   r.OrderID,
		VariantID: r.VariantID,
		Period:    domain.Period{Start: r.StartDate.UTC(), End: r.EndDate.UTC()},
		Quantity:  r.Quantity,
		Status:    domain.ReservationStatus(r.Status),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func (r reservationViewRow) toDomain() *domain.ReservationView {
	return &domain.ReservationView{
		Reservation: r.Reservation.toDomain(),
		CustomerID:  r.CustomerID,
		VendorID:    r.VendorID,
		OrderNumber: r.OrderNumber,
		VariantSKU:  r.VariantSKU,
		ProductName: r.ProductName,
	}
}

func toOrderRecord(o *domain.Order) orderRecord {
	return orderRecord{
		ID:          o.ID,
		CustomerID:  o.CustomerID,
		VendorID:    o.VendorID,
		OrderNumber: o.OrderNumber,
		Subtotal:    o.Subtotal,
		Tax:         o.Tax,
		TotalAmount: o.TotalAmount,
		StartDate:   o.Period.Start.UTC(),
		EndDate:     o.Period.End.UTC(),
		Status:      string(o.Status),
	}
}

func (r orderRecord) toDomain() *domain.Order {
	return &domain.Order{
		ID:          r.ID,
		CustomerID:  r.CustomerID,
		VendorID:    r.VendorID,
		OrderNumber: r.OrderNumber,
		Subtotal:    r.Subtotal,
		Tax:         r.Tax,
		TotalAmount: r.TotalAmount,
		Period:      domain.Period{Start: r.StartDate.UTC(), End: r.EndDate.UTC()},
		Status:      domain.OrderStatus(r.Status),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func toPortRecord(rec *idempotencyRecord) *ports.IdempotencyRecord {
	if rec == nil {
		return nil
	}
	return &ports.IdempotencyRecord{
		Key:         rec.Key,
		RequestHash: rec.RequestHash,
		OrderID:     rec.OrderID,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
}
