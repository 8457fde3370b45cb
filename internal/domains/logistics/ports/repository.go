package ports

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/shroombros/shroom-api/internal/domains/logistics/domain"
	salesdomain "github.com/shroombros/shroom-api/internal/domains/sales/domain"
)

var (
	ErrNotFound       = errors.New("route not found")
	ErrStopNotFound   = errors.New("stop not found")
	ErrDriverNotFound = errors.New("driver not found")
	ErrOrderNotFound  = errors.New("order not found")

	// ErrOrderAlreadyRouted is returned when an order is held by another pending or in-progress route.
	ErrOrderAlreadyRouted = errors.New("order already belongs to an active route")
)

// RouteFilter narrows route listings. Nil fields match everything.
type RouteFilter struct {
	Status   *domain.RouteStatus
	DriverID *uuid.UUID
}

// Repository is the storage boundary of the logistics context.
type Repository interface {
	ListRoutes(ctx context.Context, filter RouteFilter) ([]*domain.Route, error)
	GetRoute(ctx context.Context, id uuid.UUID) (*domain.Route, error)
	// CountRoutesCreatedBetween counts routes with from <= created_at < to.
	CountRoutesCreatedBetween(ctx context.Context, from, to time.Time) (int, error)
	// ActiveOrderIDs returns the subset of orderIDs already held by a pending or in-progress route.
	ActiveOrderIDs(ctx context.Context, orderIDs []uuid.UUID) ([]uuid.UUID, error)
	InsertRoute(ctx context.Context, route *domain.Route) error
	UpdateRoute(ctx context.Context, route *domain.Route) error
	UpdateStop(ctx context.Context, stop domain.Stop) error

	ListOrders(ctx context.Context) ([]domain.OrderRef, error)
	// GetOrders resolves every id or fails with ErrOrderNotFound.
	GetOrders(ctx context.Context, ids []uuid.UUID) ([]domain.OrderRef, error)
	SetOrderStatus(ctx context.Context, ids []uuid.UUID, status salesdomain.Status) error

	SaveDriver(ctx context.Context, driver *domain.Driver) (*domain.Driver, error)
	GetDriver(ctx context.Context, id uuid.UUID) (*domain.Driver, error)
	ListDrivers(ctx context.Context) ([]*domain.Driver, error)
}

// Store adds a transactional unit of work on top of Repository. Every write made through the
// Repository handed to fn commits together or not at all.
type Store interface {
	Repository
	WithinTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error
}
