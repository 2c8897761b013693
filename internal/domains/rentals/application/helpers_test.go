package application

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	rentalsmemory "github.com/Apurer/go-rental-api/internal/domains/rentals/adapters/memory"
	"github.com/Apurer/go-rental-api/internal/domains/rentals/domain"
	"github.com/Apurer/go-rental-api/internal/domains/rentals/ports"
)

const (
	tentVariant  int64 = 1
	lampVariant  int64 = 2
	kayakVariant int64 = 3
	bikeVariant  int64 = 4

	outdoorVendor int64 = 100
	cityVendor    int64 = 200
)

var (
	alice   = domain.Caller{UserID: 10, Role: domain.RoleCustomer}
	bob     = domain.Caller{UserID: 11, Role: domain.RoleCustomer}
	outdoor = domain.Caller{UserID: outdoorVendor, Role: domain.RoleVendor}
	city    = domain.Caller{UserID: cityVendor, Role: domain.RoleVendor}
	admin   = domain.Caller{UserID: 1, Role: domain.RoleAdmin}
)

func newTestStore() *rentalsmemory.Store {
	store := rentalsmemory.NewStore()
	for _, v := range []domain.Variant{
		{ID: tentVariant, ProductID: 1, VendorID: outdoorVendor, SKU: "TENT-2P", ProductName: "Trail Tent", StockQuantity: 5, PriceDaily: decimal.RequireFromString("20.00")},
		{ID: lampVariant, ProductID: 2, VendorID: outdoorVendor, SKU: "LAMP-1", ProductName: "Camp Lamp", StockQuantity: 1, PriceDaily: decimal.RequireFromString("4.50")},
		{ID: kayakVariant, ProductID: 3, VendorID: outdoorVendor, SKU: "KAYAK-1", ProductName: "Kayak", StockQuantity: 2, PriceDaily: decimal.RequireFromString("49.90")},
		{ID: bikeVariant, ProductID: 4, VendorID: cityVendor, SKU: "EBIKE-M", ProductName: "E-Bike", StockQuantity: 4, PriceDaily: decimal.RequireFromString("29.50")},
	} {
		store.PutVariant(v)
	}
	return store
}

func june(t *testing.T, from, to int) domain.Period {
	t.Helper()
	p, err := domain.NewPeriod(
		time.Date(2030, time.June, from, 0, 0, 0, 0, time.UTC),
		time.Date(2030, time.June, to, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return p
}

func item(variantID int64, quantity int, period domain.Period) ports.ItemInput {
	return ports.ItemInput{VariantID: variantID, Quantity: quantity, Period: period}
}

func placeOrder(t *testing.T, orders *Orders, caller domain.Caller, items ...ports.ItemInput) *domain.Order {
	t.Helper()
	order, err := orders.CreateOrder(context.Background(), ports.CreateOrderInput{Caller: caller, Items: items})
	require.NoError(t, err)
	return order
}

func available(t *testing.T, ledger *Ledger, variantID int64, period domain.Period) int {
	t.Helper()
	availability, err := ledger.CheckAvailability(context.Background(), ports.AvailabilityQuery{VariantID: variantID, Period: period, Quantity: 1})
	require.NoError(t, err)
	return availability.Available
}
