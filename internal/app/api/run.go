package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	natsgo "github.com/nats-io/nats.go"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	shroomserver "github.com/shroombros/shroom-api/go"
	authports "github.com/shroombros/shroom-api/internal/domains/auth/ports"
	logisticsworkflows "github.com/shroombros/shroom-api/internal/domains/logistics/adapters/workflows"
	logisticsports "github.com/shroombros/shroom-api/internal/domains/logistics/ports"
	"github.com/shroombros/shroom-api/internal/platform/migrations"
	platformnats "github.com/shroombros/shroom-api/internal/platform/nats"
	platformobservability "github.com/shroombros/shroom-api/internal/platform/observability"
	platformpostgres "github.com/shroombros/shroom-api/internal/platform/postgres"
	platformredis "github.com/shroombros/shroom-api/internal/platform/redis"
	platformtemporal "github.com/shroombros/shroom-api/internal/platform/temporal"
)

const (
	serviceName     = "shroom-api"
	shutdownTimeout = 10 * time.Second
)

// Run boots the HTTP API with observability, repositories, and workflows wired. It returns when
// ctx is cancelled and the server has drained, or when the server fails.
func Run(ctx context.Context, cfg Config) error {
	instruments, shutdown, err := platformobservability.Init(ctx, platformobservability.Settings{
		ServiceName: serviceName,
		Environment: cfg.Environment,
		LogLevel:    cfg.LogLevel,
	})
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

	db, closeDB := platformpostgres.Open(ctx, cfg.PostgresDSN, logger)
	defer closeDB()
	if db != nil {
		if err := migrations.Run(db.WithContext(ctx)); err != nil {
			return fmt.Errorf("migrate schema: %w", err)
		}
	}
	redisClient, closeRedis := platformredis.Open(ctx, platformredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, logger)
	defer closeRedis()
	natsConn, closeNATS := platformnats.Open(cfg.NATSURL, serviceName, logger)
	defer closeNATS()

	services, err := BuildServices(cfg, Infrastructure{DB: db, Redis: redisClient, NATS: natsConn}, instruments)
	if err != nil {
		return err
	}
	if err := BootstrapAdmin(ctx, cfg, services.Auth, logger); err != nil {
		return err
	}

	checks := map[string]shroomserver.Check{}
	var routeWorkflows logisticsports.WorkflowOrchestrator = logisticsworkflows.NewInlineRouteWorkflows(services.Logistics)
	temporalClient, err := platformtemporal.Dial(temporalOptions(cfg, db, instruments))
	switch {
	case err != nil && db == nil:
		logger.Info("Temporal workflows need postgres, provisioning routes inline")
	case err != nil:
		logger.Warn("Temporal workflows unavailable, provisioning routes inline", slog.String("error", err.Error()))
	default:
		defer temporalClient.Close()
		routeWorkflows = logisticsworkflows.NewTemporalRouteWorkflows(temporalClient)
		checks["temporal"] = temporalCheck(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}
	if db != nil {
		checks["postgres"] = postgresCheck(db)
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	if natsConn != nil {
		checks["nats"] = natsCheck(natsConn)
	}

	handlers := shroomserver.ApiHandleFunctions{
		Auth:          shroomserver.RequireAuth(services.Auth),
		HealthAPI:     shroomserver.NewHealthAPI(checks),
		AuthAPI:       shroomserver.NewAuthAPI(services.Auth),
		RouteAPI:      shroomserver.NewRouteAPI(services.Logistics, routeWorkflows),
		DriverAPI:     shroomserver.NewDriverAPI(services.Logistics),
		SalesAPI:      shroomserver.NewSalesAPI(services.Sales),
		MonitoringAPI: shroomserver.NewMonitoringAPI(services.Monitoring),
	}
	router := gin.New()
	router.Use(gin.Recovery(), otelgin.Middleware(serviceName), shroomserver.RequestTimeout(cfg.RequestTimeout))
	shroomserver.NewRouterWithGinEngine(router, handlers)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("Shroom API listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Shroom API server exited", slog.String("addr", server.Addr), slog.String("error", err.Error()))
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("Shroom API shutting down")
		return server.Shutdown(shutdownCtx)
	})
	if cfg.SessionPurgeInterval > 0 {
		group.Go(func() error {
			return RunSessionPurge(groupCtx, cfg.SessionPurgeInterval, services.Auth, logger)
		})
	}
	return group.Wait()
}

// RunSessionPurge deletes expired sessions every interval until ctx is done. Purge failures are
// logged and retried on the next tick.
func RunSessionPurge(ctx context.Context, interval time.Duration, auth authports.Service, logger *slog.Logger) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			purged, err := auth.PurgeExpiredSessions(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				logger.Warn("session purge failed", slog.String("error", err.Error()))
				continue
			}
			if purged > 0 {
				logger.Info("expired sessions purged", slog.Int64("count", purged))
			}
		}
	}
}

// temporalOptions disables Temporal unless postgres is open. Workers run in their own
// process and only share the stores this API writes through postgres.
func temporalOptions(cfg Config, db *gorm.DB, instruments *platformobservability.Instruments) platformtemporal.Options {
	return platformtemporal.Options{
		Address:   cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Disabled:  cfg.TemporalDisabled || db == nil,
		Logger:    instruments.Logger,
		Tracer:    instruments.Tracer("temporal-client"),
	}
}

func postgresCheck(db *gorm.DB) shroomserver.Check {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}

func natsCheck(conn *natsgo.Conn) shroomserver.Check {
	return func(context.Context) error {
		if status := conn.Status(); status != natsgo.CONNECTED {
			return fmt.Errorf("nats %s", status)
		}
		return nil
	}
}

func temporalCheck(c client.Client) shroomserver.Check {
	return func(ctx context.Context) error {
		_, err := c.CheckHealth(ctx, &client.CheckHealthRequest{})
		return err
	}
}
