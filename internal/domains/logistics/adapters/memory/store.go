package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shroombros/shroom-api/internal/domains/logistics/domain"
	"github.com/shroombros/shroom-api/internal/domains/logistics/ports"
	salesdomain "github.com/shroombros/shroom-api/internal/domains/sales/domain"
	salesports "github.com/shroombros/shroom-api/internal/domains/sales/ports"
)

var (
	_ ports.Store      = (*Store)(nil)
	_ ports.Repository = (*txRepository)(nil)
)

// Store keeps routes and drivers in memory and reads orders from the sales repository.
// Transactions are serialised and rolled back through an undo log.
type Store struct {
	txMu    sync.Mutex
	mu      sync.RWMutex
	routes  map[uuid.UUID]*domain.Route
	drivers map[uuid.UUID]*domain.Driver
	sales   salesports.Repository
	now     func() time.Time
}

func NewStore(sales salesports.Repository) *Store {
	return &Store{
		routes:  map[uuid.UUID]*domain.Route{},
		drivers: map[uuid.UUID]*domain.Driver{},
		sales:   sales,
		now:     time.Now,
	}
}

// WithinTx runs fn against a repository that records an undo entry for every write.
// When fn fails the entries are replayed newest first.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repo ports.Repository) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	tx := &txRepository{Store: s}
	if err := fn(ctx, tx); err != nil {
		for i := len(tx.undo) - 1; i >= 0; i-- {
			if undoErr := tx.undo[i](context.WithoutCancel(ctx)); undoErr != nil {
				return errors.Join(err, undoErr)
			}
		}
		return err
	}
	return nil
}

func (s *Store) ListRoutes(_ context.Context, filter ports.RouteFilter) ([]*domain.Route, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]*domain.Route, 0, len(s.routes))
	for _, route := range s.routes {
		if filter.Status != nil && route.Status != *filter.Status {
			continue
		}
		if filter.DriverID != nil && route.DriverID != *filter.DriverID {
			continue
		}
		list = append(list, route.Clone())
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].Code > list[j].Code
	})
	return list, nil
}

func (s *Store) GetRoute(_ context.Context, id uuid.UUID) (*domain.Route, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	route, ok := s.routes[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return route.Clone(), nil
}

func (s *Store) CountRoutesCreatedBetween(_ context.Context, from, to time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, route := range s.routes {
		if !route.CreatedAt.Before(from) && route.CreatedAt.Before(to) {
			count++
		}
	}
	return count, nil
}

func (s *Store) ActiveOrderIDs(_ context.Context, orderIDs []uuid.UUID) ([]uuid.UUID, error) {
	wanted := make(map[uuid.UUID]struct{}, len(orderIDs))
	for _, id := range orderIDs {
		wanted[id] = struct{}{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var busy []uuid.UUID
	for _, route := range s.routes {
		if !route.Status.Active() {
			continue
		}
		for _, stop := range route.Stops {
			if _, ok := wanted[stop.OrderID]; ok {
				busy = append(busy, stop.OrderID)
			}
		}
	}
	return busy, nil
}

func (s *Store) InsertRoute(_ context.Context, route *domain.Route) error {
	if route == nil {
		return errors.New("route is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.routes[route.ID]; exists {
		return errors.New("route already exists")
	}
	for _, existing := range s.routes {
		if existing.Code == route.Code {
			return errors.New("route code already exists")
		}
	}
	s.routes[route.ID] = route.Clone()
	return nil
}

func (s *Store) UpdateRoute(_ context.Context, route *domain.Route) error {
	if route == nil {
		return errors.New("route is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.routes[route.ID]
	if !ok {
		return ports.ErrNotFound
	}
	updated := route.Clone()
	updated.Stops = current.Stops
	s.routes[route.ID] = updated
	return nil
}

func (s *Store) UpdateStop(_ context.Context, stop domain.Stop) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	route, ok := s.routes[stop.RouteID]
	if !ok {
		return ports.ErrNotFound
	}
	for i := range route.Stops {
		if route.Stops[i].ID == stop.ID {
			clone := route.Clone()
			clone.Stops[i].Status = stop.Status
			clone.Stops[i].DeliveredAt = stop.DeliveredAt
			s.routes[route.ID] = clone
			return nil
		}
	}
	return ports.ErrStopNotFound
}

func (s *Store) ListOrders(ctx context.Context) ([]domain.OrderRef, error) {
	orders, err := s.sales.ListOrders(ctx, salesports.OrderFilter{})
	if err != nil {
		return nil, err
	}
	refs := make([]domain.OrderRef, 0, len(orders))
	for _, order := range orders {
		ref, err := s.orderRef(ctx, order)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func (s *Store) GetOrders(ctx context.Context, ids []uuid.UUID) ([]domain.OrderRef, error) {
	refs := make([]domain.OrderRef, 0, len(ids))
	for _, id := range ids {
		order, err := s.sales.GetOrder(ctx, id)
		if err != nil {
			if errors.Is(err, salesports.ErrNotFound) {
				return nil, ports.ErrOrderNotFound
			}
			return nil, err
		}
		ref, err := s.orderRef(ctx, order)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func (s *Store) SetOrderStatus(ctx context.Context, ids []uuid.UUID, status salesdomain.Status) error {
	for _, id := range ids {
		if _, err := s.setOrderStatus(ctx, id, status); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) setOrderStatus(ctx context.Context, id uuid.UUID, status salesdomain.Status) (*salesdomain.Order, error) {
	order, err := s.sales.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, salesports.ErrNotFound) {
			return nil, ports.ErrOrderNotFound
		}
		return nil, err
	}
	previous := *order
	if err := order.SetFulfillmentStatus(status); err != nil {
		return nil, err
	}
	order.UpdatedAt = s.now()
	if _, err := s.sales.SaveOrder(ctx, order); err != nil {
		return nil, err
	}
	return &previous, nil
}

func (s *Store) SaveDriver(_ context.Context, driver *domain.Driver) (*domain.Driver, error) {
	if driver == nil {
		return nil, errors.New("driver is nil")
	}
	clone := cloneDriver(driver)
	if clone.ID == uuid.Nil {
		clone.ID = uuid.New()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drivers[clone.ID] = clone
	return cloneDriver(clone), nil
}

func (s *Store) GetDriver(_ context.Context, id uuid.UUID) (*domain.Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	driver, ok := s.drivers[id]
	if !ok {
		return nil, ports.ErrDriverNotFound
	}
	return cloneDriver(driver), nil
}

func (s *Store) ListDrivers(_ context.Context) ([]*domain.Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]*domain.Driver, 0, len(s.drivers))
	for _, driver := range s.drivers {
		list = append(list, cloneDriver(driver))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

func (s *Store) orderRef(ctx context.Context, order *salesdomain.Order) (domain.OrderRef, error) {
	ref := domain.OrderRef{
		ID:            order.ID,
		CustomerID:    order.CustomerID,
		Status:        order.Status,
		Total:         order.Total,
		RequestedDate: order.RequestedDate,
	}
	customer, err := s.sales.GetCustomer(ctx, order.CustomerID)
	if err != nil {
		if errors.Is(err, salesports.ErrCustomerNotFound) {
			return ref, nil
		}
		return ref, err
	}
	ref.CustomerName = customer.Name
	ref.Neighborhood = customer.Neighborhood
	ref.City = customer.City
	return ref, nil
}

func (s *Store) restoreRoute(id uuid.UUID, previous *domain.Route) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if previous == nil {
		delete(s.routes, id)
		return
	}
	s.routes[id] = previous
}

func cloneDriver(d *domain.Driver) *domain.Driver {
	clone := *d
	clone.Regions = append([]string(nil), d.Regions...)
	return &clone
}

// txRepository records how to revert each write made during WithinTx.
type txRepository struct {
	*Store
	undo []func(ctx context.Context) error
}

func (t *txRepository) snapshot(id uuid.UUID) *domain.Route {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if route, ok := t.routes[id]; ok {
		return route.Clone()
	}
	return nil
}

func (t *txRepository) InsertRoute(ctx context.Context, route *domain.Route) error {
	if err := t.Store.InsertRoute(ctx, route); err != nil {
		return err
	}
	id := route.ID
	t.undo = append(t.undo, func(context.Context) error {
		t.restoreRoute(id, nil)
		return nil
	})
	return nil
}

func (t *txRepository) UpdateRoute(ctx context.Context, route *domain.Route) error {
	if route == nil {
		return errors.New("route is nil")
	}
	previous := t.snapshot(route.ID)
	if err := t.Store.UpdateRoute(ctx, route); err != nil {
		return err
	}
	t.undo = append(t.undo, func(context.Context) error {
		t.restoreRoute(route.ID, previous)
		return nil
	})
	return nil
}

func (t *txRepository) UpdateStop(ctx context.Context, stop domain.Stop) error {
	previous := t.snapshot(stop.RouteID)
	if err := t.Store.UpdateStop(ctx, stop); err != nil {
		return err
	}
	t.undo = append(t.undo, func(context.Context) error {
		t.restoreRoute(stop.RouteID, previous)
		return nil
	})
	return nil
}

func (t *txRepository) SetOrderStatus(ctx context.Context, ids []uuid.UUID, status salesdomain.Status) error {
	for _, id := range ids {
		previous, err := t.setOrderStatus(ctx, id, status)
		if err != nil {
			return err
		}
		t.undo = append(t.undo, func(ctx context.Context) error {
			_, err := t.sales.SaveOrder(ctx, previous)
			return err
		})
	}
	return nil
}

func (t *txRepository) SaveDriver(ctx context.Context, driver *domain.Driver) (*domain.Driver, error) {
	if driver == nil {
		return nil, errors.New("driver is nil")
	}
	t.mu.RLock()
	previous, existed := t.drivers[driver.ID]
	t.mu.RUnlock()
	saved, err := t.Store.SaveDriver(ctx, driver)
	if err != nil {
		return nil, err
	}
	id := saved.ID
	t.undo = append(t.undo, func(context.Context) error {
		t.mu.Lock()
		defer t.mu.Unlock()
		if existed {
			t.drivers[id] = previous
			return nil
		}
		delete(t.drivers, id)
		return nil
	})
	return saved, nil
}
