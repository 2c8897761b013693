package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/go-rental-api/internal/app/api"
	orderactivities "github.com/Apurer/go-rental-api/internal/durable/temporal/activities/orders"
	orderworkflows "github.com/Apurer/go-rental-api/internal/durable/temporal/workflows/orders"
	platformobservability "github.com/Apurer/go-rental-api/internal/platform/observability"
	platformtemporal "github.com/Apurer/go-rental-api/internal/platform/temporal"
)

func main() {
	ctx := context.Background()
	const serviceName = "rentals-worker"
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	cfg, err := api.LoadConfig()
	if err != nil {
		logger.Error("invalid worker configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	store, cleanupStore := api.BuildStore(ctx, cfg, logger)
	defer cleanupStore()
	if !api.SharedStore(store) {
		logger.Error("worker requires the PostgreSQL rentals store, check POSTGRES_DSN")
		cleanupStore()
		os.Exit(1)
	}
	services := api.BuildServices(store, cfg, instruments)
	activities := orderactivities.NewActivities(services.Orders)

	temporalClient, err := platformtemporal.Dial(platformtemporal.Options{
		Address:    cfg.TemporalAddress,
		Namespace:  cfg.TemporalNamespace,
		TracerName: "temporal-worker",
	}, instruments)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, orderworkflows.PlacementTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(orderworkflows.PlacementWorkflow, workflow.RegisterOptions{Name: orderworkflows.PlacementWorkflowName})
	w.RegisterActivityWithOptions(activities.PlaceOrder, activity.RegisterOptions{Name: orderactivities.PlaceOrderActivityName})

	logger.Info("worker listening", slog.String("taskQueue", orderworkflows.PlacementTaskQueue), slog.String("namespace", cfg.TemporalNamespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}
