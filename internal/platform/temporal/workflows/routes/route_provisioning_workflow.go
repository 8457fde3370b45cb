package routes

import (
	"go.temporal.io/sdk/workflow"

	"github.com/shroombros/shroom-api/internal/domains/logistics/domain"
	logisticsports "github.com/shroombros/shroom-api/internal/domains/logistics/ports"
	"github.com/shroombros/shroom-api/internal/platform/temporal/sequences"
)

const (
	// RouteProvisioningWorkflowName is the public identifier for registering the workflow.
	RouteProvisioningWorkflowName = "routes.workflows.Provisioning"
	// RouteProvisioningTaskQueue is the queue consumed by the worker processing route workflows.
	RouteProvisioningTaskQueue = "ROUTE_PROVISIONING"
)

// RouteProvisioningWorkflowInput captures the payload required to provision a route.
type RouteProvisioningWorkflowInput struct {
	Command logisticsports.CreateRouteInput
	TraceID string
}

// RouteProvisioningWorkflow orchestrates the activities that create a route and notify its driver.
func RouteProvisioningWorkflow(ctx workflow.Context, input RouteProvisioningWorkflowInput) (*domain.Route, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("RouteProvisioningWorkflow started", withTraceID(input.TraceID, "driverId", input.Command.DriverID)...)
	route, err := sequences.RunRouteProvisioningSequence(ctx, input.Command)
	if err != nil {
		logger.Error("RouteProvisioningWorkflow failed", withTraceID(input.TraceID, "driverId", input.Command.DriverID, "error", err)...)
		return nil, err
	}
	logger.Info("RouteProvisioningWorkflow completed", withTraceID(input.TraceID, "routeCode", route.Code)...)
	return route, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
