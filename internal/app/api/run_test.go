package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"gorm.io/gorm"

	authdomain "github.com/shroombros/shroom-api/internal/domains/auth/domain"
	authports "github.com/shroombros/shroom-api/internal/domains/auth/ports"
	logisticsports "github.com/shroombros/shroom-api/internal/domains/logistics/ports"
	monitoringdomain "github.com/shroombros/shroom-api/internal/domains/monitoring/domain"
	monitoringports "github.com/shroombros/shroom-api/internal/domains/monitoring/ports"
	platformobservability "github.com/shroombros/shroom-api/internal/platform/observability"
	platformtemporal "github.com/shroombros/shroom-api/internal/platform/temporal"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type purgeCounter struct {
	authports.Service
	calls atomic.Int32
	fail  bool
}

func (p *purgeCounter) PurgeExpiredSessions(context.Context) (int64, error) {
	p.calls.Add(1)
	if p.fail {
		return 0, errors.New("database unavailable")
	}
	return 2, nil
}

func TestRunSessionPurgeTicksUntilCancelled(t *testing.T) {
	for _, fail := range []bool{false, true} {
		auth := &purgeCounter{fail: fail}
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- RunSessionPurge(ctx, 5*time.Millisecond, auth, discardLogger()) }()

		require.Eventually(t, func() bool { return auth.calls.Load() >= 2 }, time.Second, time.Millisecond)
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("purge loop did not stop")
		}
	}
}

func TestBuildServicesInMemory(t *testing.T) {
	cfg := Config{JWTSecret: "secret", SessionTTL: time.Hour, Location: time.UTC, ReadingCacheTTL: time.Minute,
		BootstrapEmail: "Admin@ShroomBros.com", BootstrapPassword: "mycelium42"}
	instruments := &platformobservability.Instruments{Logger: discardLogger()}

	services, err := BuildServices(cfg, Infrastructure{}, instruments)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, BootstrapAdmin(ctx, cfg, services.Auth, discardLogger()))
	require.NoError(t, BootstrapAdmin(ctx, cfg, services.Auth, discardLogger()), "second bootstrap is a no-op")
	users, err := services.Auth.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, authdomain.RoleAdmin, users[0].Role)

	login, err := services.Auth.Login(ctx, "admin@shroombros.com", "mycelium42")
	require.NoError(t, err)
	principal, err := services.Auth.Authenticate(ctx, login.Token)
	require.NoError(t, err)
	assert.Equal(t, users[0].ID, principal.User.ID)

	product, err := services.Monitoring.CreateProduct(ctx, monitoringports.CreateProductInput{Name: "Shiitake"})
	require.NoError(t, err)
	lot, err := services.Monitoring.CreateLot(ctx, monitoringports.CreateLotInput{Code: "SHI-01", ProductID: product.ID})
	require.NoError(t, err)
	_, err = services.Monitoring.IngestReading(ctx, monitoringdomain.RawReading{
		LotID: lot.ID, Temperature: 22.0, Humidity: 88.0, CO2: 900.0,
	})
	require.NoError(t, err)
	risk, err := services.Monitoring.AssessLot(ctx, lot.ID)
	require.NoError(t, err)
	require.NotNil(t, risk.Assessment.Reading)
	assert.Zero(t, risk.Assessment.Score)

	routes, err := services.Logistics.ListRoutes(ctx, logisticsports.RouteFilter{})
	require.NoError(t, err)
	assert.Empty(t, routes)
	_, err = services.Sales.GetOrder(ctx, uuid.New())
	assert.Error(t, err)
}

func TestBuildServicesRequiresSecret(t *testing.T) {
	_, err := BuildServices(Config{}, Infrastructure{}, &platformobservability.Instruments{Logger: discardLogger()})
	assert.Error(t, err)
}

func TestTemporalOptionsRequirePostgres(t *testing.T) {
	instruments := &platformobservability.Instruments{Logger: discardLogger()}
	cfg := Config{TemporalAddress: "temporal:7233", TemporalNamespace: "shroom"}

	opts := temporalOptions(cfg, nil, instruments)
	assert.True(t, opts.Disabled, "in-memory stores are invisible to workers")
	_, err := platformtemporal.Dial(opts)
	assert.ErrorIs(t, err, platformtemporal.ErrDisabled)

	opts = temporalOptions(cfg, &gorm.DB{}, instruments)
	assert.False(t, opts.Disabled)
	assert.Equal(t, "temporal:7233", opts.Address)
	assert.Equal(t, "shroom", opts.Namespace)

	cfg.TemporalDisabled = true
	assert.True(t, temporalOptions(cfg, &gorm.DB{}, instruments).Disabled)
}
