//go:build integration

package postgres

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	logisticsapp "github.com/shroombros/shroom-api/internal/domains/logistics/application"
	"github.com/shroombros/shroom-api/internal/domains/logistics/domain"
	"github.com/shroombros/shroom-api/internal/domains/logistics/ports"
	salespostgres "github.com/shroombros/shroom-api/internal/domains/sales/adapters/persistence/postgres"
	salesdomain "github.com/shroombros/shroom-api/internal/domains/sales/domain"
	"github.com/shroombros/shroom-api/internal/platform/postgres/pgtest"
)

type storeFixture struct {
	store  *Store
	keys   *IdempotencyStore
	sales  *salespostgres.Repository
	svc    *logisticsapp.Service
	driver *domain.Driver
	now    time.Time
}

func newStoreFixture(t *testing.T) *storeFixture {
	t.Helper()
	db := pgtest.Start(t)
	f := &storeFixture{
		store: NewStore(db),
		keys:  NewIdempotencyStore(db),
		sales: salespostgres.NewRepository(db),
		now:   time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC),
	}
	f.svc = logisticsapp.NewService(f.store,
		logisticsapp.WithClock(func() time.Time { return f.now }),
		logisticsapp.WithLocation(time.UTC),
		logisticsapp.WithIdempotencyStore(f.keys),
	)
	driver, err := f.svc.CreateDriver(context.Background(), ports.CreateDriverInput{
		Name: "Ana", VehiclePlate: "ABC1D23", Regions: []string{"Batel", "Centro"},
	})
	require.NoError(t, err)
	f.driver = driver
	return f
}

func (f *storeFixture) order(t *testing.T, status salesdomain.Status) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	customer, err := salesdomain.NewCustomer("Bistro", "", "", "", "Batel", "Curitiba")
	require.NoError(t, err)
	_, err = f.sales.SaveCustomer(ctx, customer)
	require.NoError(t, err)
	order, err := salesdomain.NewOrder(customer.ID, decimal.NewFromInt(80), f.now, "")
	require.NoError(t, err)
	order.Status = status
	_, err = f.sales.SaveOrder(ctx, order)
	require.NoError(t, err)
	return order.ID
}

func (f *storeFixture) orderStatus(t *testing.T, id uuid.UUID) salesdomain.Status {
	t.Helper()
	order, err := f.sales.GetOrder(context.Background(), id)
	require.NoError(t, err)
	return order.Status
}

func (f *storeFixture) createRoute(orderIDs ...uuid.UUID) (*domain.Route, error) {
	return f.svc.CreateRoute(context.Background(), ports.CreateRouteInput{
		Name: "Batel morning", DriverID: f.driver.ID, ScheduledDate: f.now, OrderIDs: orderIDs,
	})
}

func TestStore_RouteLifecycle(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()
	first := f.order(t, salesdomain.StatusReady)
	second := f.order(t, salesdomain.StatusConfirmed)

	route, err := f.createRoute(first, second)
	require.NoError(t, err)
	assert.Equal(t, "RT-20240305-001", route.Code)
	assert.Equal(t, salesdomain.StatusPreparing, f.orderStatus(t, first))

	stored, err := f.store.GetRoute(ctx, route.ID)
	require.NoError(t, err)
	require.Len(t, stored.Stops, 2)
	assert.Equal(t, first, stored.Stops[0].OrderID)
	assert.Equal(t, 1, stored.Stops[0].Position)
	assert.Equal(t, second, stored.Stops[1].OrderID)

	_, err = f.svc.StartRoute(ctx, route.ID)
	require.NoError(t, err)
	assert.Equal(t, salesdomain.StatusInRoute, f.orderStatus(t, second))

	_, err = f.svc.UpdateStop(ctx, route.ID, stored.Stops[0].ID, domain.StopStatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, salesdomain.StatusDelivered, f.orderStatus(t, first))

	result, err := f.svc.FinishRoute(ctx, route.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Undelivered)
	assert.Equal(t, domain.RouteStatusCompleted, result.Route.Status)
	assert.Equal(t, salesdomain.StatusReady, f.orderStatus(t, second))

	completed := domain.RouteStatusCompleted
	listed, err := f.store.ListRoutes(ctx, ports.RouteFilter{Status: &completed, DriverID: &f.driver.ID})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, route.ID, listed[0].ID)
}

func TestStore_OrderHeldByOneActiveRoute(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()
	orderID := f.order(t, salesdomain.StatusReady)

	route, err := f.createRoute(orderID)
	require.NoError(t, err)

	_, err = f.createRoute(orderID)
	require.Error(t, err)
	assert.ErrorIs(t, err, logisticsapp.ErrConflict)

	_, err = f.svc.CancelRoute(ctx, route.ID, "truck broke down")
	require.NoError(t, err)
	assert.Equal(t, salesdomain.StatusReady, f.orderStatus(t, orderID))

	again, err := f.createRoute(orderID)
	require.NoError(t, err)
	assert.Equal(t, "RT-20240305-002", again.Code)
}

func TestStore_UniqueIndexBacksActiveOrderCheck(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()
	orderID := f.order(t, salesdomain.StatusReady)

	first, err := domain.NewRoute("RT-X-001", "first", f.driver.ID, f.now, []uuid.UUID{orderID}, "", f.now)
	require.NoError(t, err)
	require.NoError(t, f.store.InsertRoute(ctx, first))

	second, err := domain.NewRoute("RT-X-002", "second", f.driver.ID, f.now, []uuid.UUID{orderID}, "", f.now)
	require.NoError(t, err)
	err = f.store.WithinTx(ctx, func(ctx context.Context, repo ports.Repository) error {
		return repo.InsertRoute(ctx, second)
	})
	assert.ErrorIs(t, err, ports.ErrOrderAlreadyRouted)

	_, err = f.store.GetRoute(ctx, second.ID)
	assert.ErrorIs(t, err, ports.ErrNotFound, "rolled back")
}

func TestStore_ConcurrentCreatesClaimAnOrderOnce(t *testing.T) {
	f := newStoreFixture(t)
	orderID := f.order(t, salesdomain.StatusReady)

	const attempts = 4
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.createRoute(orderID)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded)

	routes, err := f.store.ListRoutes(context.Background(), ports.RouteFilter{})
	require.NoError(t, err)
	assert.Len(t, routes, 1)
}

func TestStore_Drivers(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()

	fetched, err := f.store.GetDriver(ctx, f.driver.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Batel", "Centro"}, fetched.Regions)
	assert.True(t, fetched.Active)

	_, err = f.store.GetDriver(ctx, uuid.New())
	assert.ErrorIs(t, err, ports.ErrDriverNotFound)

	_, err = f.createRoute(uuid.New())
	assert.ErrorIs(t, err, ports.ErrOrderNotFound)
}

func TestIdempotencyStore_ReplaysAndDetectsConflicts(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()
	input := ports.CreateRouteInput{
		Name: "Batel morning", DriverID: f.driver.ID, ScheduledDate: f.now,
		OrderIDs:       []uuid.UUID{f.order(t, salesdomain.StatusReady)},
		IdempotencyKey: "dispatch-7",
	}

	route, err := f.svc.CreateRoute(ctx, input)
	require.NoError(t, err)
	replayed, err := f.svc.CreateRoute(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, route.ID, replayed.ID)

	record, err := f.keys.Get(ctx, "dispatch-7")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, route.ID, record.RouteID)

	existing, err := f.keys.Save(ctx, ports.IdempotencyRecord{Key: "dispatch-7", RequestHash: "other", RouteID: route.ID})
	assert.ErrorIs(t, err, ports.ErrIdempotencyConflict)
	require.NotNil(t, existing)
	assert.Equal(t, record.RequestHash, existing.RequestHash)

	missing, err := f.keys.Get(ctx, "unknown")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
