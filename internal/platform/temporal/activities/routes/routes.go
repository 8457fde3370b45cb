package routes

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	logisticsapp "github.com/shroombros/shroom-api/internal/domains/logistics/application"
	"github.com/shroombros/shroom-api/internal/domains/logistics/domain"
	logisticsports "github.com/shroombros/shroom-api/internal/domains/logistics/ports"
)

const (
	// PersistRouteActivityName writes the route, its stops and the order cascade.
	PersistRouteActivityName = "routes.activities.PersistRoute"
	// NotifyDriverActivityName tells the assigned driver about a persisted route.
	NotifyDriverActivityName = "routes.activities.NotifyDriver"
)

// Application error types carried across the workflow boundary. They are never retried.
const (
	ErrTypeInvalidInput = "InvalidInput"
	ErrTypeConflict     = "Conflict"
	ErrTypeNotFound     = "NotFound"
)

// NonRetryableErrorTypes lists the error types a retry cannot fix.
var NonRetryableErrorTypes = []string{ErrTypeInvalidInput, ErrTypeConflict, ErrTypeNotFound}

// Activities groups activities that operate on the logistics bounded context.
type Activities struct {
	service logisticsports.Service
}

// NewActivities wires the logistics service into the Temporal activities bundle.
func NewActivities(service logisticsports.Service) *Activities {
	return &Activities{service: service}
}

// PersistRoute creates the route in one store transaction.
func (a *Activities) PersistRoute(ctx context.Context, input logisticsports.CreateRouteInput) (*domain.Route, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("route persist activity not initialized", "driverId", input.DriverID)
		return nil, errors.New("route persist activity not initialized")
	}
	logger.Info("PersistRoute activity started", "driverId", input.DriverID, "orders", len(input.OrderIDs))
	route, err := a.service.CreateRoute(ctx, input)
	if err != nil {
		logger.Error("PersistRoute activity failed", "driverId", input.DriverID, "error", err)
		return nil, classify(err)
	}
	logger.Info("PersistRoute activity completed", "routeId", route.ID, "routeCode", route.Code)
	return route, nil
}

// NotifyDriver announces a persisted route to its driver.
func (a *Activities) NotifyDriver(ctx context.Context, routeID uuid.UUID) error {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("driver notify activity not initialized", "routeId", routeID)
		return errors.New("driver notify activity not initialized")
	}
	logger.Info("NotifyDriver activity started", "routeId", routeID)
	if err := a.service.NotifyDriver(ctx, routeID); err != nil {
		logger.Error("NotifyDriver activity failed", "routeId", routeID, "error", err)
		return classify(err)
	}
	logger.Info("NotifyDriver activity completed", "routeId", routeID)
	return nil
}

// classify turns domain failures into typed, non-retryable application errors.
func classify(err error) error {
	switch {
	case errors.Is(err, logisticsapp.ErrInvalidInput):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInvalidInput, err)
	case errors.Is(err, logisticsapp.ErrConflict):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeConflict, err)
	case errors.Is(err, logisticsports.ErrNotFound),
		errors.Is(err, logisticsports.ErrDriverNotFound),
		errors.Is(err, logisticsports.ErrOrderNotFound),
		errors.Is(err, logisticsports.ErrStopNotFound):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeNotFound, err)
	}
	return err
}
