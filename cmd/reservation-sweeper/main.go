package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	rentalspostgres "github.com/Apurer/go-rental-api/internal/domains/rentals/adapters/persistence/postgres"
	rentalsapp "github.com/Apurer/go-rental-api/internal/domains/rentals/application"
	platformobservability "github.com/Apurer/go-rental-api/internal/platform/observability"
	platformpostgres "github.com/Apurer/go-rental-api/internal/platform/postgres"
)

// Completes every ACTIVE reservation whose rental period has ended and closes out
// orders left without active reservations. Intended to run from cron.
func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := platformobservability.NewLogger(os.Stdout, os.Getenv("LOG_LEVEL"))
	db, cleanup, err := platformpostgres.ConnectFromEnv(ctx, logger)
	defer cleanup()
	if err != nil {
		log.Fatalf("cannot sweep reservations: %v", err)
	}

	ledger := rentalsapp.NewLedger(rentalspostgres.NewStore(db))
	result, err := ledger.CompleteElapsed(ctx, time.Now().UTC())
	if err != nil {
		log.Fatalf("failed to sweep reservations: %v", err)
	}
	logger.Info("reservation sweep completed",
		slog.Int("reservationsCompleted", result.ReservationsCompleted),
		slog.Int("ordersCompleted", result.OrdersCompleted),
	)
}
