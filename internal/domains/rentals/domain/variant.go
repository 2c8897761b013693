package domain

import "github.com/shopspring/decimal"

// Variant is the catalog's view of a rentable configuration. The engine only reads it.
type Variant struct {
	ID            int64
	ProductID     int64
	VendorID      int64
	SKU           string
	ProductName   string
	StockQuantity int
	PriceDaily    decimal.Decimal
}
