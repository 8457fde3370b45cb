package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shroombros/shroom-api/internal/domains/logistics/domain"
	"github.com/shroombros/shroom-api/internal/domains/logistics/ports"
	salesdomain "github.com/shroombros/shroom-api/internal/domains/sales/domain"
)

// Service implements the route lifecycle and driver use cases.
type Service struct {
	store     ports.Store
	keys      ports.IdempotencyStore
	publisher ports.EventPublisher
	logger    *slog.Logger
	now       func() time.Time
	location  *time.Location
}

type Option func(*Service)

// WithEventPublisher sets where committed lifecycle changes are announced.
func WithEventPublisher(p ports.EventPublisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithIdempotencyStore enables replay of route requests carrying an idempotency key.
func WithIdempotencyStore(keys ports.IdempotencyStore) Option {
	return func(s *Service) {
		if keys != nil {
			s.keys = keys
		}
	}
}

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation sets the calendar used to number routes per day.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewService(store ports.Store, opts ...Option) *Service {
	s := &Service{
		store:     store,
		publisher: ports.NoopPublisher{},
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:       time.Now,
		location:  time.Local,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Service) clock() time.Time {
	return s.now().In(s.location)
}

// Suggest groups every routable order by customer region.
func (s *Service) Suggest(ctx context.Context) ([]domain.Suggestion, error) {
	orders, err := s.store.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	return domain.SuggestRoutes(orders), nil
}

// CreateRoute allocates a code, writes the route with its stops and moves the orders to Preparing
// as one unit. Validation happens before anything is written. A request repeating a known idempotency
// key returns the route the key first created.
func (s *Service) CreateRoute(ctx context.Context, input ports.CreateRouteInput) (*domain.Route, error) {
	key := strings.TrimSpace(input.IdempotencyKey)
	if key == "" || s.keys == nil {
		return s.createRoute(ctx, input)
	}
	hash, err := FingerprintCreateRoute(input)
	if err != nil {
		return nil, err
	}
	if route, err := s.replay(ctx, key, hash); err != nil || route != nil {
		return route, err
	}
	route, err := s.createRoute(ctx, input)
	if err != nil {
		// a concurrent request with the same key may have claimed the orders first
		if replayed, replayErr := s.replay(ctx, key, hash); replayErr == nil && replayed != nil {
			return replayed, nil
		}
		return nil, err
	}
	record := ports.IdempotencyRecord{Key: key, RequestHash: hash, RouteID: route.ID, CreatedAt: route.CreatedAt}
	if _, err := s.keys.Save(ctx, record); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "idempotency key not recorded",
			slog.String("route.id", route.ID.String()),
			slog.String("error", err.Error()))
	}
	return route, nil
}

// replay returns the route stored under key, or nil when the key is unknown.
func (s *Service) replay(ctx context.Context, key, hash string) (*domain.Route, error) {
	record, err := s.keys.Get(ctx, key)
	if err != nil || record == nil {
		return nil, err
	}
	if record.RequestHash != hash {
		return nil, fmt.Errorf("%w: %w", ErrConflict, ports.ErrIdempotencyConflict)
	}
	return s.store.GetRoute(ctx, record.RouteID)
}

func (s *Service) createRoute(ctx context.Context, input ports.CreateRouteInput) (*domain.Route, error) {
	if err := domain.ValidateDraft(input.Name, input.DriverID, input.ScheduledDate, input.OrderIDs); err != nil {
		return nil, mapError(err)
	}
	var (
		created    *domain.Route
		outOfReach []string
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, repo ports.Repository) error {
		driver, err := repo.GetDriver(ctx, input.DriverID)
		if err != nil {
			return err
		}
		if !driver.Active {
			return ErrDriverInactive
		}
		orders, err := repo.GetOrders(ctx, input.OrderIDs)
		if err != nil {
			return err
		}
		for _, order := range orders {
			if !order.Status.Routable() {
				return fmt.Errorf("%w: order %s is %s", ErrOrderNotRoutable, order.ID, order.Status)
			}
			if !driver.Serves(order.Region()) {
				outOfReach = append(outOfReach, order.Region())
			}
		}
		busy, err := repo.ActiveOrderIDs(ctx, input.OrderIDs)
		if err != nil {
			return err
		}
		if len(busy) > 0 {
			return fmt.Errorf("%w: order %s", ports.ErrOrderAlreadyRouted, busy[0])
		}

		now := s.clock()
		from, to := domain.DayBounds(now)
		count, err := repo.CountRoutesCreatedBetween(ctx, from, to)
		if err != nil {
			return err
		}
		route, err := domain.NewRoute(domain.RouteCode(now, count+1), input.Name, input.DriverID, input.ScheduledDate, input.OrderIDs, input.Notes, now)
		if err != nil {
			return err
		}
		if err := repo.InsertRoute(ctx, route); err != nil {
			return err
		}
		if err := repo.SetOrderStatus(ctx, input.OrderIDs, salesdomain.StatusPreparing); err != nil {
			return err
		}
		created = route
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	if len(outOfReach) > 0 {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "driver does not serve order region",
			slog.String("route.id", created.ID.String()),
			slog.String("driver.id", input.DriverID.String()),
			slog.Any("regions", outOfReach))
	}
	s.publish(ctx, domain.NewRouteEvent(domain.EventRouteCreated, created, created.CreatedAt))
	return created, nil
}

func (s *Service) GetRoute(ctx context.Context, id uuid.UUID) (*domain.Route, error) {
	return s.store.GetRoute(ctx, id)
}

func (s *Service) ListRoutes(ctx context.Context, filter ports.RouteFilter) ([]*domain.Route, error) {
	return s.store.ListRoutes(ctx, filter)
}

// StartRoute moves a pending route into progress and every order on it to InRoute.
func (s *Service) StartRoute(ctx context.Context, id uuid.UUID) (*domain.Route, error) {
	route, err := s.transition(ctx, id, func(ctx context.Context, repo ports.Repository, route *domain.Route) error {
		if err := route.Start(s.clock()); err != nil {
			return err
		}
		if err := repo.UpdateRoute(ctx, route); err != nil {
			return err
		}
		return repo.SetOrderStatus(ctx, route.OrderIDs(), salesdomain.StatusInRoute)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, domain.NewRouteEvent(domain.EventRouteStarted, route, *route.StartedAt))
	return route, nil
}

// FinishRoute completes an in-progress route. Undelivered stops do not block completion; their
// orders go back to Ready so they can be routed again.
func (s *Service) FinishRoute(ctx context.Context, id uuid.UUID) (*ports.FinishResult, error) {
	var undelivered int
	route, err := s.transition(ctx, id, func(ctx context.Context, repo ports.Repository, route *domain.Route) error {
		n, err := route.Finish(s.clock())
		if err != nil {
			return err
		}
		undelivered = n
		if err := repo.UpdateRoute(ctx, route); err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		returned := make([]uuid.UUID, 0, n)
		for _, stop := range route.UndeliveredStops() {
			returned = append(returned, stop.OrderID)
		}
		return repo.SetOrderStatus(ctx, returned, salesdomain.StatusReady)
	})
	if err != nil {
		return nil, err
	}
	if undelivered > 0 {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "route completed with undelivered stops",
			slog.String("route.code", route.Code), slog.Int("stops.undelivered", undelivered))
	}
	event := domain.NewRouteEvent(domain.EventRouteCompleted, route, *route.FinishedAt)
	event.Undelivered = undelivered
	s.publish(ctx, event)
	return &ports.FinishResult{Route: route, Undelivered: undelivered}, nil
}

// CancelRoute abandons a pending route and hands its orders back as Ready.
func (s *Service) CancelRoute(ctx context.Context, id uuid.UUID, reason string) (*domain.Route, error) {
	route, err := s.transition(ctx, id, func(ctx context.Context, repo ports.Repository, route *domain.Route) error {
		if err := route.Cancel(reason, s.clock()); err != nil {
			return err
		}
		if err := repo.UpdateRoute(ctx, route); err != nil {
			return err
		}
		return repo.SetOrderStatus(ctx, route.OrderIDs(), salesdomain.StatusReady)
	})
	if err != nil {
		return nil, err
	}
	event := domain.NewRouteEvent(domain.EventRouteCancelled, route, route.UpdatedAt)
	event.Reason = reason
	s.publish(ctx, event)
	return route, nil
}

// UpdateStop records progress on a single delivery. Delivered cascades to the order.
func (s *Service) UpdateStop(ctx context.Context, routeID, stopID uuid.UUID, status domain.StopStatus) (*domain.Route, error) {
	var delivered *domain.Stop
	route, err := s.transition(ctx, routeID, func(ctx context.Context, repo ports.Repository, route *domain.Route) error {
		switch status {
		case domain.StopStatusDelivered:
			stop, err := route.DeliverStop(stopID, s.clock())
			if err != nil {
				return err
			}
			if err := repo.UpdateStop(ctx, *stop); err != nil {
				return err
			}
			delivered = stop
			return repo.SetOrderStatus(ctx, []uuid.UUID{stop.OrderID}, salesdomain.StatusDelivered)
		case domain.StopStatusInTransit:
			stop, err := route.MarkStopInTransit(stopID, s.clock())
			if err != nil {
				return err
			}
			return repo.UpdateStop(ctx, *stop)
		case domain.StopStatusPending:
			return domain.ErrInvalidStopTransition
		default:
			return domain.ErrInvalidStopStatus
		}
	})
	if err != nil {
		return nil, err
	}
	if delivered != nil {
		event := domain.NewRouteEvent(domain.EventStopDelivered, route, *delivered.DeliveredAt)
		event.StopID = &delivered.ID
		event.OrderID = &delivered.OrderID
		s.publish(ctx, event)
	}
	return route, nil
}

// NotifyDriver announces a route to its assigned driver.
func (s *Service) NotifyDriver(ctx context.Context, routeID uuid.UUID) error {
	route, err := s.store.GetRoute(ctx, routeID)
	if err != nil {
		return err
	}
	if _, err := s.store.GetDriver(ctx, route.DriverID); err != nil {
		return err
	}
	return s.publisher.Publish(ctx, domain.NewRouteEvent(domain.EventDriverNotified, route, s.clock()))
}

func (s *Service) CreateDriver(ctx context.Context, input ports.CreateDriverInput) (*domain.Driver, error) {
	driver, err := domain.NewDriver(input.Name, input.Phone, input.Email, input.VehiclePlate, input.Regions)
	if err != nil {
		return nil, mapError(err)
	}
	driver.CreatedAt = s.clock()
	return s.store.SaveDriver(ctx, driver)
}

func (s *Service) GetDriver(ctx context.Context, id uuid.UUID) (*domain.Driver, error) {
	return s.store.GetDriver(ctx, id)
}

func (s *Service) ListDrivers(ctx context.Context) ([]*domain.Driver, error) {
	return s.store.ListDrivers(ctx)
}

// transition loads a route and applies fn to it inside one transaction.
func (s *Service) transition(ctx context.Context, id uuid.UUID, fn func(context.Context, ports.Repository, *domain.Route) error) (*domain.Route, error) {
	var result *domain.Route
	err := s.store.WithinTx(ctx, func(ctx context.Context, repo ports.Repository) error {
		route, err := repo.GetRoute(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(ctx, repo, route); err != nil {
			return err
		}
		result = route
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	return result, nil
}

func (s *Service) publish(ctx context.Context, event domain.RouteEvent) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "route event not published",
			slog.String("event.type", string(event.Type)),
			slog.String("route.id", event.RouteID.String()),
			slog.String("error", err.Error()))
	}
}

var _ ports.Service = (*Service)(nil)
