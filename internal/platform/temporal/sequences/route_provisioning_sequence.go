package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/shroombros/shroom-api/internal/domains/logistics/domain"
	logisticsports "github.com/shroombros/shroom-api/internal/domains/logistics/ports"
	routeactivities "github.com/shroombros/shroom-api/internal/platform/temporal/activities/routes"
)

// PersistRouteAttempts is the number of times the route write is tried.
const PersistRouteAttempts = 1

// RunRouteProvisioningSequence persists a route and then notifies its driver. The route write runs
// exactly once and its failure goes back to the caller. A failed notification is retried and then
// logged, but does not undo the committed route.
func RunRouteProvisioningSequence(ctx workflow.Context, input logisticsports.CreateRouteInput) (*domain.Route, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("route provisioning sequence started", "driverId", input.DriverID, "orders", len(input.OrderIDs))
	persistOptions := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: PersistRouteAttempts,
		},
	}
	notifyOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        2 * time.Second,
			BackoffCoefficient:     2.0,
			MaximumInterval:        5 * time.Second,
			MaximumAttempts:        3,
			NonRetryableErrorTypes: routeactivities.NonRetryableErrorTypes,
		},
	}

	var route domain.Route
	err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, persistOptions), routeactivities.PersistRouteActivityName, input).Get(ctx, &route)
	if err != nil {
		logger.Error("route provisioning sequence failed", "driverId", input.DriverID, "error", err)
		return nil, err
	}
	logger.Info("route provisioning sequence persisted", "routeId", route.ID, "routeCode", route.Code)

	if err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, notifyOptions), routeactivities.NotifyDriverActivityName, route.ID).Get(ctx, nil); err != nil {
		logger.Warn("route provisioning sequence could not notify driver", "routeId", route.ID, "error", err)
		return &route, nil
	}
	logger.Info("route provisioning sequence notified driver", "routeId", route.ID)
	return &route, nil
}
