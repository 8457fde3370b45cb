package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	natsgo "github.com/nats-io/nats.go"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	authmemory "github.com/shroombros/shroom-api/internal/domains/auth/adapters/memory"
	authobs "github.com/shroombros/shroom-api/internal/domains/auth/adapters/observability"
	authpostgres "github.com/shroombros/shroom-api/internal/domains/auth/adapters/persistence/postgres"
	authtoken "github.com/shroombros/shroom-api/internal/domains/auth/adapters/token"
	authapp "github.com/shroombros/shroom-api/internal/domains/auth/application"
	authdomain "github.com/shroombros/shroom-api/internal/domains/auth/domain"
	authports "github.com/shroombros/shroom-api/internal/domains/auth/ports"
	logisticsevents "github.com/shroombros/shroom-api/internal/domains/logistics/adapters/events"
	logisticsmemory "github.com/shroombros/shroom-api/internal/domains/logistics/adapters/memory"
	logisticsobs "github.com/shroombros/shroom-api/internal/domains/logistics/adapters/observability"
	logisticspostgres "github.com/shroombros/shroom-api/internal/domains/logistics/adapters/persistence/postgres"
	logisticsapp "github.com/shroombros/shroom-api/internal/domains/logistics/application"
	logisticsports "github.com/shroombros/shroom-api/internal/domains/logistics/ports"
	monitoringcache "github.com/shroombros/shroom-api/internal/domains/monitoring/adapters/cache"
	monitoringmemory "github.com/shroombros/shroom-api/internal/domains/monitoring/adapters/memory"
	monitoringobs "github.com/shroombros/shroom-api/internal/domains/monitoring/adapters/observability"
	monitoringpostgres "github.com/shroombros/shroom-api/internal/domains/monitoring/adapters/persistence/postgres"
	monitoringapp "github.com/shroombros/shroom-api/internal/domains/monitoring/application"
	monitoringports "github.com/shroombros/shroom-api/internal/domains/monitoring/ports"
	salesmemory "github.com/shroombros/shroom-api/internal/domains/sales/adapters/memory"
	salesobs "github.com/shroombros/shroom-api/internal/domains/sales/adapters/observability"
	salespostgres "github.com/shroombros/shroom-api/internal/domains/sales/adapters/persistence/postgres"
	salesapp "github.com/shroombros/shroom-api/internal/domains/sales/application"
	salesports "github.com/shroombros/shroom-api/internal/domains/sales/ports"
	platformobservability "github.com/shroombros/shroom-api/internal/platform/observability"
)

// Infrastructure holds the optional connections services are built on. Nil members select the
// in-memory or no-op adapters.
type Infrastructure struct {
	DB    *gorm.DB
	Redis *goredis.Client
	NATS  *natsgo.Conn
}

// Services is the decorated use-case layer shared by the API, the worker and shroomctl.
type Services struct {
	Auth       authports.Service
	Sales      salesports.Service
	Logistics  logisticsports.Service
	Monitoring monitoringports.Service
}

// BuildServices wires every bounded context onto infra and wraps each in its observability decorator.
func BuildServices(cfg Config, infra Infrastructure, instruments *platformobservability.Instruments) (*Services, error) {
	logger := instruments.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var (
		salesRepo    salesports.Repository
		routeStore   logisticsports.Store
		routeKeys    logisticsports.IdempotencyStore
		catalogRepo  monitoringports.Repository
		userRepo     authports.UserRepository
		sessionStore authports.SessionStore
	)
	if infra.DB != nil {
		salesRepo = salespostgres.NewRepository(infra.DB)
		routeStore = logisticspostgres.NewStore(infra.DB)
		routeKeys = logisticspostgres.NewIdempotencyStore(infra.DB)
		catalogRepo = monitoringpostgres.NewRepository(infra.DB)
		userRepo = authpostgres.NewUserRepository(infra.DB)
		sessionStore = authpostgres.NewSessionStore(infra.DB)
	} else {
		memorySales := salesmemory.NewRepository()
		salesRepo = memorySales
		routeStore = logisticsmemory.NewStore(memorySales)
		routeKeys = logisticsmemory.NewIdempotencyStore()
		catalogRepo = monitoringmemory.NewRepository()
		userRepo = authmemory.NewUserRepository()
		sessionStore = authmemory.NewSessionStore()
	}

	issuer, err := authtoken.NewJWTIssuer(cfg.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("configure token issuer: %w", err)
	}

	services := &Services{
		Auth: authobs.New(
			authapp.NewService(userRepo, sessionStore, issuer,
				authapp.WithSessionTTL(cfg.SessionTTL),
				authapp.WithLogger(logger),
			),
			authobs.WithLogger(logger),
			authobs.WithTracer(instruments.Tracer("internal.auth.application")),
			authobs.WithMeter(instruments.Meter("internal.auth.application")),
		),
		Sales: salesobs.New(
			salesapp.NewService(salesRepo),
			salesobs.WithLogger(logger),
			salesobs.WithTracer(instruments.Tracer("internal.sales.application")),
			salesobs.WithMeter(instruments.Meter("internal.sales.application")),
		),
		Logistics: logisticsobs.New(
			logisticsapp.NewService(routeStore,
				logisticsapp.WithEventPublisher(logisticsevents.NewPublisher(infra.NATS)),
				logisticsapp.WithIdempotencyStore(routeKeys),
				logisticsapp.WithLocation(cfg.Location),
				logisticsapp.WithLogger(logger),
			),
			logisticsobs.WithLogger(logger),
			logisticsobs.WithTracer(instruments.Tracer("internal.logistics.application")),
			logisticsobs.WithMeter(instruments.Meter("internal.logistics.application")),
		),
		Monitoring: monitoringobs.New(
			monitoringapp.NewService(catalogRepo,
				monitoringapp.WithCache(monitoringcache.NewLatestReadings(redisClient(infra.Redis), cfg.ReadingCacheTTL)),
				monitoringapp.WithLogger(logger),
			),
			monitoringobs.WithLogger(logger),
			monitoringobs.WithTracer(instruments.Tracer("internal.monitoring.application")),
			monitoringobs.WithMeter(instruments.Meter("internal.monitoring.application")),
		),
	}
	return services, nil
}

// redisClient keeps a nil *Client from becoming a non-nil interface.
func redisClient(c *goredis.Client) goredis.UniversalClient {
	if c == nil {
		return nil
	}
	return c
}

// BootstrapAdmin creates the configured admin account unless it already exists.
func BootstrapAdmin(ctx context.Context, cfg Config, auth authports.Service, logger *slog.Logger) error {
	if cfg.BootstrapEmail == "" || cfg.BootstrapPassword == "" {
		return nil
	}
	user, err := auth.CreateUser(ctx, authports.CreateUserInput{
		Email:    cfg.BootstrapEmail,
		Name:     "Administrator",
		Role:     authdomain.RoleAdmin,
		Password: cfg.BootstrapPassword,
	})
	switch {
	case errors.Is(err, authports.ErrDuplicateEmail):
		return nil
	case err != nil:
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	logger.Info("bootstrap admin created", slog.String("email", user.Email))
	return nil
}
