//go:build pact
// +build pact

package provider_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pact-foundation/pact-go/v2/models"
	pactprovider "github.com/pact-foundation/pact-go/v2/provider"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-rental-api/internal/app/api"
	rentalshttp "github.com/Apurer/go-rental-api/internal/domains/rentals/adapters/http/handlers"
	"github.com/Apurer/go-rental-api/internal/domains/rentals/adapters/http/mapper"
	rentalsmemory "github.com/Apurer/go-rental-api/internal/domains/rentals/adapters/memory"
	rentalsobs "github.com/Apurer/go-rental-api/internal/domains/rentals/adapters/observability"
	rentalsapp "github.com/Apurer/go-rental-api/internal/domains/rentals/application"
	"github.com/Apurer/go-rental-api/internal/domains/rentals/domain"
	"github.com/Apurer/go-rental-api/internal/domains/rentals/ports"
	"github.com/Apurer/go-rental-api/internal/platform/migrations"
	apierrors "github.com/Apurer/go-rental-api/internal/shared/errors"
	pacttest "github.com/Apurer/go-rental-api/test/pact"
)

func TestRentalsProviderPact(t *testing.T) {
	gin.SetMode(gin.TestMode)

	app := newContractProviderApp(t)
	pactFile := filepath.ToSlash(pacttest.PactFile(t))
	if _, err := os.Stat(pactFile); errors.Is(err, os.ErrNotExist) {
		t.Fatalf("pact file not found at %s - run the pact consumer tests first", pactFile)
	} else {
		require.NoError(t, err)
	}

	reset := func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
		app.store.Reset()
		return nil, nil
	}
	verifier := pactprovider.NewVerifier()
	err := verifier.VerifyProvider(t, pactprovider.VerifyRequest{
		ProviderBaseURL: app.server.URL,
		Provider:        pacttest.ProviderName,
		PactFiles:       []string{pactFile},
		StateHandlers: models.StateHandlers{
			pacttest.StateCatalogSeeded: reset,
			pacttest.StateOrderMissing:  reset,
			pacttest.StateKayakSoldOut: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
				app.store.Reset()
				if setup {
					app.sellOutKayaks(t)
				}
				return nil, nil
			},
		},
		BeforeEach: func() error {
			app.store.Reset()
			return nil
		},
	})
	require.NoError(t, err)
}

type contractProviderApp struct {
	store  *rentalsmemory.Store
	orders ports.OrderService
	server *httptest.Server
}

func newContractProviderApp(t testing.TB) *contractProviderApp {
	t.Helper()

	store := rentalsmemory.NewStore()
	for _, variant := range migrations.DemoCatalog {
		store.PutVariant(variant)
	}
	ledger := rentalsobs.NewLedger(rentalsapp.NewLedger(store))
	orders := rentalsobs.NewOrders(rentalsapp.NewOrders(store))
	responder := apierrors.NewResponder(mapper.ProblemFromError)
	rentals := rentalshttp.New(ledger, orders, nil, responder)

	server := httptest.NewServer(api.NewRouter("rentals-api-pact", rentals, responder))
	t.Cleanup(server.Close)

	return &contractProviderApp{store: store, orders: orders, server: server}
}

func (a *contractProviderApp) sellOutKayaks(t testing.TB) {
	t.Helper()
	start, err := domain.ParseDate(pacttest.StartDate)
	require.NoError(t, err)
	end, err := domain.ParseDate(pacttest.EndDate)
	require.NoError(t, err)
	variant, err := a.store.Catalog().GetVariant(context.Background(), pacttest.KayakVariantID)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err = a.orders.CreateOrder(ctx, ports.CreateOrderInput{
		Caller: domain.Caller{UserID: 77, Role: domain.RoleCustomer},
		Items:  []ports.ItemInput{{VariantID: variant.ID, Quantity: variant.StockQuantity, Period: domain.Period{Start: start, End: end}}},
	})
	require.NoError(t, err)
}
