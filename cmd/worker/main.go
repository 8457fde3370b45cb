package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"
	"golang.org/x/sync/errgroup"

	"github.com/shroombros/shroom-api/internal/app/api"
	platformnats "github.com/shroombros/shroom-api/internal/platform/nats"
	platformobservability "github.com/shroombros/shroom-api/internal/platform/observability"
	platformpostgres "github.com/shroombros/shroom-api/internal/platform/postgres"
	platformtemporal "github.com/shroombros/shroom-api/internal/platform/temporal"
	routeactivities "github.com/shroombros/shroom-api/internal/platform/temporal/activities/routes"
	routeworkflows "github.com/shroombros/shroom-api/internal/platform/temporal/workflows/routes"
)

const serviceName = "shroom-worker"

func main() {
	if err := api.LoadDotEnv(); err != nil {
		log.Fatal(err)
	}
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	instruments, shutdown, err := platformobservability.Init(ctx, platformobservability.Settings{
		ServiceName: serviceName,
		Environment: cfg.Environment,
		LogLevel:    cfg.LogLevel,
	})
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

	// Routes persisted by the worker must be visible to the API, so there is no in-memory fallback.
	db, err := platformpostgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Error("worker requires postgres", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	natsConn, closeNATS := platformnats.Open(cfg.NATSURL, serviceName, logger)
	defer closeNATS()

	services, err := api.BuildServices(cfg, api.Infrastructure{DB: db, NATS: natsConn}, instruments)
	if err != nil {
		logger.Error("failed to build services", slog.String("error", err.Error()))
		os.Exit(1)
	}
	routeActivities := routeactivities.NewActivities(services.Logistics)

	temporalClient, err := platformtemporal.Dial(platformtemporal.Options{
		Address:   cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Disabled:  cfg.TemporalDisabled,
		Logger:    logger,
		Tracer:    instruments.Tracer("temporal-worker"),
	})
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, routeworkflows.RouteProvisioningTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(routeworkflows.RouteProvisioningWorkflow, workflow.RegisterOptions{Name: routeworkflows.RouteProvisioningWorkflowName})
	w.RegisterActivityWithOptions(routeActivities.PersistRoute, activity.RegisterOptions{Name: routeactivities.PersistRouteActivityName})
	w.RegisterActivityWithOptions(routeActivities.NotifyDriver, activity.RegisterOptions{Name: routeactivities.NotifyDriverActivityName})

	if err := w.Start(); err != nil {
		logger.Error("failed to start Temporal worker", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("worker listening", slog.String("taskQueue", routeworkflows.RouteProvisioningTaskQueue), slog.String("namespace", cfg.TemporalNamespace))

	group, groupCtx := errgroup.WithContext(ctx)
	if cfg.SessionPurgeInterval > 0 {
		group.Go(func() error {
			return api.RunSessionPurge(groupCtx, cfg.SessionPurgeInterval, services.Auth, logger)
		})
	}
	group.Go(func() error {
		<-groupCtx.Done()
		w.Stop()
		return nil
	})
	if err := group.Wait(); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}
