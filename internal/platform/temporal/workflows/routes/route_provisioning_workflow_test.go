package routes

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"

	logisticsmemory "github.com/shroombros/shroom-api/internal/domains/logistics/adapters/memory"
	logisticsapp "github.com/shroombros/shroom-api/internal/domains/logistics/application"
	"github.com/shroombros/shroom-api/internal/domains/logistics/domain"
	logisticsports "github.com/shroombros/shroom-api/internal/domains/logistics/ports"
	salesmemory "github.com/shroombros/shroom-api/internal/domains/sales/adapters/memory"
	salesdomain "github.com/shroombros/shroom-api/internal/domains/sales/domain"
	routeactivities "github.com/shroombros/shroom-api/internal/platform/temporal/activities/routes"
)

var scheduled = time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)

type capturePublisher struct {
	mu     sync.Mutex
	events []domain.EventType
	fail   bool
}

func (c *capturePublisher) Publish(_ context.Context, event domain.RouteEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail && event.Type == domain.EventDriverNotified {
		return errors.New("broker down")
	}
	c.events = append(c.events, event.Type)
	return nil
}

type provisioningFixture struct {
	env       *testsuite.TestWorkflowEnvironment
	sales     *salesmemory.Repository
	publisher *capturePublisher
	driverID  uuid.UUID
}

func newProvisioningFixture(t *testing.T) *provisioningFixture {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	f := &provisioningFixture{
		env:       suite.NewTestWorkflowEnvironment(),
		sales:     salesmemory.NewRepository(),
		publisher: &capturePublisher{},
	}
	now := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)
	svc := logisticsapp.NewService(logisticsmemory.NewStore(f.sales),
		logisticsapp.WithClock(func() time.Time { return now }),
		logisticsapp.WithLocation(time.UTC),
		logisticsapp.WithEventPublisher(f.publisher),
	)
	driver, err := svc.CreateDriver(context.Background(), logisticsports.CreateDriverInput{Name: "Bruno"})
	require.NoError(t, err)
	f.driverID = driver.ID

	acts := routeactivities.NewActivities(svc)
	f.env.RegisterWorkflow(RouteProvisioningWorkflow)
	f.env.RegisterActivityWithOptions(acts.PersistRoute, activity.RegisterOptions{Name: routeactivities.PersistRouteActivityName})
	f.env.RegisterActivityWithOptions(acts.NotifyDriver, activity.RegisterOptions{Name: routeactivities.NotifyDriverActivityName})
	return f
}

func (f *provisioningFixture) order(t *testing.T, status salesdomain.Status) uuid.UUID {
	t.Helper()
	customer, err := salesdomain.NewCustomer("Empório", "", "", "", "Batel", "Curitiba")
	require.NoError(t, err)
	_, err = f.sales.SaveCustomer(context.Background(), customer)
	require.NoError(t, err)
	order, err := salesdomain.NewOrder(customer.ID, decimal.NewFromInt(80), time.Now(), "")
	require.NoError(t, err)
	order.Status = status
	_, err = f.sales.SaveOrder(context.Background(), order)
	require.NoError(t, err)
	return order.ID
}

func TestRouteProvisioningWorkflow_PersistsAndNotifies(t *testing.T) {
	f := newProvisioningFixture(t)
	orderID := f.order(t, salesdomain.StatusReady)

	f.env.ExecuteWorkflow(RouteProvisioningWorkflow, RouteProvisioningWorkflowInput{
		Command: logisticsports.CreateRouteInput{Name: "Route Batel", DriverID: f.driverID, ScheduledDate: scheduled, OrderIDs: []uuid.UUID{orderID}},
	})

	require.True(t, f.env.IsWorkflowCompleted())
	require.NoError(t, f.env.GetWorkflowError())
	var route domain.Route
	require.NoError(t, f.env.GetWorkflowResult(&route))
	assert.Equal(t, "RT-20240305-001", route.Code)
	require.Len(t, route.Stops, 1)
	assert.Equal(t, []domain.EventType{domain.EventRouteCreated, domain.EventDriverNotified}, f.publisher.events)
}

func TestRouteProvisioningWorkflow_ConflictIsNotRetried(t *testing.T) {
	f := newProvisioningFixture(t)
	orderID := f.order(t, salesdomain.StatusPending)

	f.env.ExecuteWorkflow(RouteProvisioningWorkflow, RouteProvisioningWorkflowInput{
		Command: logisticsports.CreateRouteInput{Name: "Route Batel", DriverID: f.driverID, ScheduledDate: scheduled, OrderIDs: []uuid.UUID{orderID}},
	})

	require.True(t, f.env.IsWorkflowCompleted())
	err := f.env.GetWorkflowError()
	require.Error(t, err)
	var appErr *temporal.ApplicationError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, routeactivities.ErrTypeConflict, appErr.Type())
	assert.True(t, appErr.NonRetryable())
	assert.Empty(t, f.publisher.events)
}

func TestRouteProvisioningWorkflow_NotificationFailureKeepsRoute(t *testing.T) {
	f := newProvisioningFixture(t)
	f.publisher.fail = true
	orderID := f.order(t, salesdomain.StatusConfirmed)

	f.env.ExecuteWorkflow(RouteProvisioningWorkflow, RouteProvisioningWorkflowInput{
		Command: logisticsports.CreateRouteInput{Name: "Route Batel", DriverID: f.driverID, ScheduledDate: scheduled, OrderIDs: []uuid.UUID{orderID}},
		TraceID: "abc123",
	})

	require.True(t, f.env.IsWorkflowCompleted())
	require.NoError(t, f.env.GetWorkflowError())
	var route domain.Route
	require.NoError(t, f.env.GetWorkflowResult(&route))
	assert.Equal(t, domain.RouteStatusPending, route.Status)
	order, err := f.sales.GetOrder(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, salesdomain.StatusPreparing, order.Status)
}

func TestRouteProvisioningWorkflow_FailedWriteIsReportedOnce(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	var attempts atomic.Int32
	persist := func(context.Context, logisticsports.CreateRouteInput) (*domain.Route, error) {
		attempts.Add(1)
		return nil, errors.New("connection reset by peer")
	}
	notify := func(context.Context, uuid.UUID) error { return nil }
	env.RegisterWorkflow(RouteProvisioningWorkflow)
	env.RegisterActivityWithOptions(persist, activity.RegisterOptions{Name: routeactivities.PersistRouteActivityName})
	env.RegisterActivityWithOptions(notify, activity.RegisterOptions{Name: routeactivities.NotifyDriverActivityName})

	env.ExecuteWorkflow(RouteProvisioningWorkflow, RouteProvisioningWorkflowInput{
		Command: logisticsports.CreateRouteInput{Name: "Route Batel", DriverID: uuid.New(), OrderIDs: []uuid.UUID{uuid.New()}},
	})

	require.True(t, env.IsWorkflowCompleted())
	require.Error(t, env.GetWorkflowError())
	assert.Equal(t, int32(1), attempts.Load())
}
