//go:build pact
// +build pact

package provider_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	pacttest "github.com/shroombros/shroom-api/test/pact"

	shroomserver "github.com/shroombros/shroom-api/go"
	authmemory "github.com/shroombros/shroom-api/internal/domains/auth/adapters/memory"
	authobs "github.com/shroombros/shroom-api/internal/domains/auth/adapters/observability"
	authtoken "github.com/shroombros/shroom-api/internal/domains/auth/adapters/token"
	authapp "github.com/shroombros/shroom-api/internal/domains/auth/application"
	authdomain "github.com/shroombros/shroom-api/internal/domains/auth/domain"
	authports "github.com/shroombros/shroom-api/internal/domains/auth/ports"
	monitoringmemory "github.com/shroombros/shroom-api/internal/domains/monitoring/adapters/memory"
	monitoringobs "github.com/shroombros/shroom-api/internal/domains/monitoring/adapters/observability"
	monitoringapp "github.com/shroombros/shroom-api/internal/domains/monitoring/application"
	monitoringdomain "github.com/shroombros/shroom-api/internal/domains/monitoring/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pact-foundation/pact-go/v2/models"
	pactprovider "github.com/pact-foundation/pact-go/v2/provider"
	"github.com/stretchr/testify/require"
)

func TestShroomProviderPact(t *testing.T) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	app := newContractProviderApp(t)
	pactFile := filepath.ToSlash(pacttest.PactFile(t))
	if _, err := os.Stat(pactFile); errors.Is(err, os.ErrNotExist) {
		t.Fatalf("pact file not found at %s - run the pact consumer tests first", pactFile)
	} else {
		require.NoError(t, err)
	}

	verifier := pactprovider.NewVerifier()
	stateHandlers := models.StateHandlers{
		pacttest.StateOperatorExists: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			return nil, nil
		},
		pacttest.StateLotExists: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			if setup {
				app.seedLot(t)
			}
			return nil, nil
		},
		pacttest.StateLotAtRisk: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			if setup {
				app.seedLot(t)
				app.seedReading(t, 18, 85, 1600)
			}
			return nil, nil
		},
		pacttest.StateLotMissing: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			return nil, nil
		},
	}

	err := verifier.VerifyProvider(t, pactprovider.VerifyRequest{
		ProviderBaseURL: app.server.URL,
		Provider:        pacttest.ProviderName,
		PactFiles:       []string{pactFile},
		StateHandlers:   stateHandlers,
		BeforeEach: func() error {
			app.reset(t)
			return nil
		},
	})
	require.NoError(t, err)
}

// contractProviderApp serves a freshly wired in-memory API per provider state behind one stable URL.
type contractProviderApp struct {
	mu        sync.RWMutex
	handler   http.Handler
	catalog   *monitoringmemory.Repository
	liveToken string
	server    *httptest.Server
}

func newContractProviderApp(t testing.TB) *contractProviderApp {
	t.Helper()
	app := &contractProviderApp{}
	app.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.mu.RLock()
		handler := app.handler
		app.mu.RUnlock()
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(app.server.Close)
	app.reset(t)
	return app
}

func (a *contractProviderApp) reset(t testing.TB) {
	t.Helper()
	ctx := context.Background()

	issuer, err := authtoken.NewJWTIssuer("pact-provider-secret")
	require.NoError(t, err)
	authService := authobs.New(authapp.NewService(authmemory.NewUserRepository(), authmemory.NewSessionStore(), issuer))
	_, err = authService.CreateUser(ctx, authports.CreateUserInput{
		Email: pacttest.OperatorEmail, Name: "Ops", Role: authdomain.RoleAdmin, Password: pacttest.OperatorPassword,
	})
	require.NoError(t, err)
	login, err := authService.Login(ctx, pacttest.OperatorEmail, pacttest.OperatorPassword)
	require.NoError(t, err)

	catalog := monitoringmemory.NewRepository()
	monitoringService := monitoringobs.New(monitoringapp.NewService(catalog))

	router := gin.New()
	router.Use(gin.Recovery())
	shroomserver.NewRouterWithGinEngine(router, shroomserver.ApiHandleFunctions{
		Auth:          a.contractAuth(shroomserver.RequireAuth(authService)),
		HealthAPI:     shroomserver.NewHealthAPI(nil),
		AuthAPI:       shroomserver.NewAuthAPI(authService),
		MonitoringAPI: shroomserver.NewMonitoringAPI(monitoringService),
	})

	a.mu.Lock()
	defer a.mu.Unlock()
	a.handler = router
	a.catalog = catalog
	a.liveToken = login.Token
}

// contractAuth replaces the placeholder token recorded in the pact with a live session token.
func (a *contractProviderApp) contractAuth(next gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "Bearer "+pacttest.ContractToken {
			a.mu.RLock()
			c.Request.Header.Set("Authorization", "Bearer "+a.liveToken)
			a.mu.RUnlock()
		}
		next(c)
	}
}

func (a *contractProviderApp) seedLot(t testing.TB) {
	t.Helper()
	ctx := context.Background()
	product, err := monitoringdomain.NewProduct("Shiitake", nil)
	require.NoError(t, err)
	_, err = a.catalog.SaveProduct(ctx, product)
	require.NoError(t, err)
	lot, err := monitoringdomain.NewLot(pacttest.ExistingLot, product.ID, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), "")
	require.NoError(t, err)
	lot.ID = uuid.MustParse(pacttest.ExistingLotID)
	_, err = a.catalog.SaveLot(ctx, lot)
	require.NoError(t, err)
}

func (a *contractProviderApp) seedReading(t testing.TB, temperature, humidity, co2 float64) {
	t.Helper()
	at := time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC)
	require.NoError(t, a.catalog.AppendReading(context.Background(), &monitoringdomain.SensorReading{
		ID:          uuid.New(),
		LotID:       uuid.MustParse(pacttest.ExistingLotID),
		Temperature: temperature,
		Humidity:    humidity,
		CO2:         co2,
		RecordedAt:  at,
		ReceivedAt:  at,
	}))
}
