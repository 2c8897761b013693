package migrations

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-rental-api/internal/domains/rentals/domain"
)

// DemoCatalog is a small vendor catalog for local runs and acceptance tests.
var DemoCatalog = []domain.Variant{
	{ID: 1, ProductID: 1, VendorID: 100, SKU: "TENT-2P", ProductName: "Two-person tent", StockQuantity: 5, PriceDaily: decimal.RequireFromString("20.00")},
	{ID: 2, ProductID: 1, VendorID: 100, SKU: "TENT-4P", ProductName: "Four-person tent", StockQuantity: 3, PriceDaily: decimal.RequireFromString("35.00")},
	{ID: 3, ProductID: 2, VendorID: 100, SKU: "KAYAK-1", ProductName: "Touring kayak", StockQuantity: 2, PriceDaily: decimal.RequireFromString("49.90")},
	{ID: 4, ProductID: 3, VendorID: 200, SKU: "EBIKE-M", ProductName: "E-bike medium frame", StockQuantity: 4, PriceDaily: decimal.RequireFromString("29.50")},
}

// SeedCatalog upserts variants and their products. Existing rows are left untouched.
func SeedCatalog(db *gorm.DB, variants []domain.Variant) error {
	if db == nil || len(variants) == 0 {
		return nil
	}
	products := make([]productRecord, 0, len(variants))
	seen := map[int64]bool{}
	rows := make([]variantRecord, 0, len(variants))
	for _, v := range variants {
		if !seen[v.ProductID] {
			seen[v.ProductID] = true
			products = append(products, productRecord{ID: v.ProductID, VendorID: v.VendorID, Name: v.ProductName})
		}
		rows = append(rows, variantRecord{
			ID:            v.ID,
			ProductID:     v.ProductID,
			SKU:           v.SKU,
			StockQuantity: v.StockQuantity,
			PriceDaily:    v.PriceDaily,
		})
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&products).Error; err != nil {
			return err
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
			return err
		}
		// Explicit ids leave the sequences behind.
		for _, table := range []string{"products", "variants"} {
			stmt := "SELECT setval(pg_get_serial_sequence('" + table + "', 'id'), (SELECT COALESCE(MAX(id), 1) FROM " + table + "))"
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
