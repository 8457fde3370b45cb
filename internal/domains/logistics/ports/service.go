package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/shroombros/shroom-api/internal/domains/logistics/domain"
)

// CreateRouteInput carries a dispatcher's route request.
type CreateRouteInput struct {
	Name           string
	DriverID       uuid.UUID
	ScheduledDate  time.Time
	OrderIDs       []uuid.UUID
	Notes          string
	// IdempotencyKey, when set, makes retries of the same request return the route created first.
	IdempotencyKey string
}

// CreateDriverInput carries a new driver's details.
type CreateDriverInput struct {
	Name         string
	Phone        string
	Email        string
	VehiclePlate string
	Regions      []string
}

// FinishResult reports a completed route and the stops left undelivered.
type FinishResult struct {
	Route       *domain.Route
	Undelivered int
}

// Service exposes the logistics use cases.
type Service interface {
	Suggest(ctx context.Context) ([]domain.Suggestion, error)
	CreateRoute(ctx context.Context, input CreateRouteInput) (*domain.Route, error)
	GetRoute(ctx context.Context, id uuid.UUID) (*domain.Route, error)
	ListRoutes(ctx context.Context, filter RouteFilter) ([]*domain.Route, error)
	StartRoute(ctx context.Context, id uuid.UUID) (*domain.Route, error)
	FinishRoute(ctx context.Context, id uuid.UUID) (*FinishResult, error)
	CancelRoute(ctx context.Context, id uuid.UUID, reason string) (*domain.Route, error)
	UpdateStop(ctx context.Context, routeID, stopID uuid.UUID, status domain.StopStatus) (*domain.Route, error)
	NotifyDriver(ctx context.Context, routeID uuid.UUID) error

	CreateDriver(ctx context.Context, input CreateDriverInput) (*domain.Driver, error)
	GetDriver(ctx context.Context, id uuid.UUID) (*domain.Driver, error)
	ListDrivers(ctx context.Context) ([]*domain.Driver, error)
}

// WorkflowOrchestrator runs route provisioning, durably when a workflow engine is available.
type WorkflowOrchestrator interface {
	CreateRoute(ctx context.Context, input CreateRouteInput) (*domain.Route, error)
}
