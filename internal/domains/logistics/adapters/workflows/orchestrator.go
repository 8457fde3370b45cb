package workflows

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"

	logisticsapp "github.com/shroombros/shroom-api/internal/domains/logistics/application"
	"github.com/shroombros/shroom-api/internal/domains/logistics/domain"
	"github.com/shroombros/shroom-api/internal/domains/logistics/ports"
	routeactivities "github.com/shroombros/shroom-api/internal/platform/temporal/activities/routes"
	routeworkflows "github.com/shroombros/shroom-api/internal/platform/temporal/workflows/routes"
)

var (
	_ ports.WorkflowOrchestrator = (*TemporalRouteWorkflows)(nil)
	_ ports.WorkflowOrchestrator = (*InlineRouteWorkflows)(nil)
)

// TemporalRouteWorkflows starts route workflows on a Temporal cluster.
type TemporalRouteWorkflows struct {
	client    client.Client
	taskQueue string
}

// NewTemporalRouteWorkflows wires a Temporal client into the orchestrator.
func NewTemporalRouteWorkflows(c client.Client) *TemporalRouteWorkflows {
	return &TemporalRouteWorkflows{client: c, taskQueue: routeworkflows.RouteProvisioningTaskQueue}
}

// CreateRoute starts the provisioning workflow and waits for the persisted route.
func (o *TemporalRouteWorkflows) CreateRoute(ctx context.Context, input ports.CreateRouteInput) (*domain.Route, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal route workflows not configured")
	}
	traceID := workflowTraceID(ctx)
	workflowID := buildRouteWorkflowID(input.IdempotencyKey, traceID)
	options := client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: o.taskQueue,
	}
	run, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		routeworkflows.RouteProvisioningWorkflow,
		routeworkflows.RouteProvisioningWorkflowInput{Command: input, TraceID: traceID},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if !errors.As(err, &alreadyStarted) || strings.TrimSpace(input.IdempotencyKey) == "" {
			return nil, err
		}
		run = o.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId)
	}
	var route domain.Route
	if err := run.Get(ctx, &route); err != nil {
		return nil, unwrapApplicationError(err)
	}
	return &route, nil
}

// InlineRouteWorkflows executes the service directly without Temporal, useful for tests or dev fallbacks.
type InlineRouteWorkflows struct {
	service ports.Service
}

// NewInlineRouteWorkflows wraps the logistics service for synchronous execution.
func NewInlineRouteWorkflows(service ports.Service) *InlineRouteWorkflows {
	return &InlineRouteWorkflows{service: service}
}

// CreateRoute persists the route and notifies the driver in-process. A failed notification is not an error.
func (o *InlineRouteWorkflows) CreateRoute(ctx context.Context, input ports.CreateRouteInput) (*domain.Route, error) {
	if o == nil || o.service == nil {
		return nil, errors.New("inline route workflows not configured")
	}
	route, err := o.service.CreateRoute(ctx, input)
	if err != nil {
		return nil, err
	}
	_ = o.service.NotifyDriver(ctx, route.ID)
	return route, nil
}

// unwrapApplicationError restores the sentinel errors that crossed the workflow boundary as typed
// application errors, so transport mapping keeps working.
func unwrapApplicationError(err error) error {
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) {
		return err
	}
	switch appErr.Type() {
	case routeactivities.ErrTypeInvalidInput:
		return fmt.Errorf("%w: %s", logisticsapp.ErrInvalidInput, appErr.Message())
	case routeactivities.ErrTypeConflict:
		return fmt.Errorf("%w: %s", logisticsapp.ErrConflict, appErr.Message())
	case routeactivities.ErrTypeNotFound:
		return fmt.Errorf("%w: %s", notFoundSentinel(appErr.Message()), appErr.Message())
	}
	return err
}

func notFoundSentinel(msg string) error {
	for _, sentinel := range []error{ports.ErrDriverNotFound, ports.ErrOrderNotFound, ports.ErrStopNotFound} {
		if strings.Contains(msg, sentinel.Error()) {
			return sentinel
		}
	}
	return ports.ErrNotFound
}

// buildRouteWorkflowID derives a stable id from the idempotency key so a retried request joins the
// running provisioning workflow instead of starting another.
func buildRouteWorkflowID(idempotencyKey, traceID string) string {
	if key := strings.TrimSpace(idempotencyKey); key != "" {
		sum := sha256.Sum256([]byte(key))
		return fmt.Sprintf("route-provisioning-idem-%s", hex.EncodeToString(sum[:8]))
	}
	if traceID != "" {
		return fmt.Sprintf("route-provisioning-%s", traceID)
	}
	return fmt.Sprintf("route-provisioning-%s", uuid.NewString())
}

func workflowTraceID(ctx context.Context) string {
	span := oteltrace.SpanFromContext(ctx)
	if span == nil {
		return ""
	}
	spanCtx := span.SpanContext()
	if !spanCtx.IsValid() {
		return ""
	}
	traceID := spanCtx.TraceID()
	if !traceID.IsValid() {
		return ""
	}
	return traceID.String()
}
