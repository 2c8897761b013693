package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.temporal.io/sdk/client"
	"gorm.io/gorm"

	rentalshttp "github.com/Apurer/go-rental-api/internal/domains/rentals/adapters/http/handlers"
	"github.com/Apurer/go-rental-api/internal/domains/rentals/adapters/http/mapper"
	rentalsmemory "github.com/Apurer/go-rental-api/internal/domains/rentals/adapters/memory"
	rentalsobs "github.com/Apurer/go-rental-api/internal/domains/rentals/adapters/observability"
	rentalspostgres "github.com/Apurer/go-rental-api/internal/domains/rentals/adapters/persistence/postgres"
	rentalsworkflows "github.com/Apurer/go-rental-api/internal/domains/rentals/adapters/workflows"
	rentalsapp "github.com/Apurer/go-rental-api/internal/domains/rentals/application"
	"github.com/Apurer/go-rental-api/internal/domains/rentals/ports"
	"github.com/Apurer/go-rental-api/internal/platform/migrations"
	platformobservability "github.com/Apurer/go-rental-api/internal/platform/observability"
	platformpostgres "github.com/Apurer/go-rental-api/internal/platform/postgres"
	platformtemporal "github.com/Apurer/go-rental-api/internal/platform/temporal"
	apierrors "github.com/Apurer/go-rental-api/internal/shared/errors"
)

const serviceName = "rentals-api"

// Services bundles the instrumented rentals use cases shared by the API and the worker.
type Services struct {
	Ledger ports.LedgerService
	Orders ports.OrderService
}

// Run boots the rentals HTTP API with observability, storage and workflows wired.
func Run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	store, cleanupStore := BuildStore(ctx, cfg, logger)
	defer cleanupStore()
	services := BuildServices(store, cfg, instruments)

	placement, closePlacement := SelectPlacement(store, services.Orders, func() (client.Client, error) {
		return platformtemporal.Dial(platformtemporal.Options{
			Address:   cfg.TemporalAddress,
			Namespace: cfg.TemporalNamespace,
			Disabled:  cfg.TemporalDisabled,
		}, instruments)
	}, logger)
	defer closePlacement()

	responder := apierrors.NewResponder(mapper.ProblemFromError)
	rentals := rentalshttp.New(services.Ledger, services.Orders, placement, responder)
	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           NewRouter(serviceName, rentals, responder),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	errCh := make(chan error, 1)
	go func() {
		logger.Info("rentals API listening", slog.String("addr", server.Addr))
		errCh <- server.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("rentals API server exited", slog.String("addr", server.Addr), slog.String("error", err.Error()))
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("rentals API shutting down")
	return server.Shutdown(shutdownCtx)
}

// SelectPlacement picks how orders are placed. Temporal placement runs the order write on
// the worker, so it is only chosen when store is shared with the worker; a process-local
// memory store always places inline. The returned func releases the Temporal client.
func SelectPlacement(store ports.Transactor, orders ports.OrderService, dial func() (client.Client, error), logger *slog.Logger) (ports.OrderPlacement, func()) {
	inline := rentalsworkflows.NewInlineOrderPlacement(orders)
	if !SharedStore(store) {
		logger.Warn("rentals store is process-local, placing orders inline without Temporal")
		return inline, func() {}
	}
	temporalClient, err := dial()
	if err != nil {
		logger.Warn("Temporal workflows unavailable, placing orders inline", slog.String("error", err.Error()))
		return inline, func() {}
	}
	logger.Info("Temporal workflows enabled")
	return rentalsworkflows.NewTemporalOrderPlacement(temporalClient), temporalClient.Close
}

// SharedStore reports whether store lives outside this process, so the API and the
// worker read and write the same ledger.
func SharedStore(store ports.Transactor) bool {
	_, ok := store.(*rentalspostgres.Store)
	return ok
}

// BuildServices wraps the core ledger and order services in their observability decorators.
func BuildServices(store ports.Transactor, cfg Config, instruments *platformobservability.Instruments) Services {
	opts := []rentalsobs.Option{
		rentalsobs.WithLogger(instruments.Log()),
		rentalsobs.WithTracer(instruments.Tracer("internal.rentals.application")),
		rentalsobs.WithMeter(instruments.Meter("internal.rentals.application")),
	}
	return Services{
		Ledger: rentalsobs.NewLedger(rentalsapp.NewLedger(store), opts...),
		Orders: rentalsobs.NewOrders(rentalsapp.NewOrders(store, rentalsapp.WithMaxPageLimit(cfg.OrderPageLimitMax)), opts...),
	}
}

// BuildStore connects PostgreSQL when configured and falls back to the in-memory store.
func BuildStore(ctx context.Context, cfg Config, logger *slog.Logger) (ports.Transactor, func()) {
	if cfg.PostgresDSN == "" {
		logger.Warn("POSTGRES_DSN not set, falling back to in-memory rentals store")
		return memoryStore(cfg, logger), func() {}
	}
	db, err := platformpostgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Warn("failed to connect to postgres, falling back to memory", slog.String("error", err.Error()))
		return memoryStore(cfg, logger), func() {}
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Warn("failed to unwrap postgres connection, falling back to memory", slog.String("error", err.Error()))
		return memoryStore(cfg, logger), func() {}
	}
	cleanup := func() { _ = sqlDB.Close() }
	if err := prepareSchema(db, cfg); err != nil {
		logger.Warn("failed to prepare postgres schema, falling back to memory", slog.String("error", err.Error()))
		cleanup()
		return memoryStore(cfg, logger), func() {}
	}
	logger.Info("rentals store configured with postgres")
	return rentalspostgres.NewStore(db), cleanup
}

func prepareSchema(db *gorm.DB, cfg Config) error {
	if err := migrations.Run(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if cfg.SeedCatalog {
		if err := migrations.SeedCatalog(db, migrations.DemoCatalog); err != nil {
			return fmt.Errorf("seed catalog: %w", err)
		}
	}
	return nil
}

func memoryStore(cfg Config, logger *slog.Logger) *rentalsmemory.Store {
	store := rentalsmemory.NewStore()
	if cfg.SeedCatalog {
		for _, variant := range migrations.DemoCatalog {
			store.PutVariant(variant)
		}
		logger.Info("seeded in-memory catalog", slog.Int("variants", len(migrations.DemoCatalog)))
	}
	return store
}
