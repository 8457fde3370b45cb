package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/shroombros/shroom-api/internal/domains/sales/domain"
	"github.com/shroombros/shroom-api/internal/domains/sales/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory customer and order persistence adapter.
type Repository struct {
	mu        sync.RWMutex
	orders    map[uuid.UUID]*domain.Order
	customers map[uuid.UUID]*domain.Customer
}

func NewRepository() *Repository {
	return &Repository{
		orders:    map[uuid.UUID]*domain.Order{},
		customers: map[uuid.UUID]*domain.Customer{},
	}
}

func (r *Repository) SaveOrder(_ context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	clone := *order
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	if clone.ID == uuid.Nil {
		clone.ID = uuid.New()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[clone.ID] = &clone
	saved := clone
	return &saved, nil
}

func (r *Repository) GetOrder(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := *order
	return &clone, nil
}

func (r *Repository) ListOrders(_ context.Context, filter ports.OrderFilter) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Order, 0, len(r.orders))
	for _, order := range r.orders {
		if filter.Status != nil && order.Status != *filter.Status {
			continue
		}
		clone := *order
		list = append(list, &clone)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID.String() < list[j].ID.String()
	})
	return list, nil
}

func (r *Repository) SaveCustomer(_ context.Context, customer *domain.Customer) (*domain.Customer, error) {
	if customer == nil {
		return nil, errors.New("customer is nil")
	}
	clone := *customer
	if clone.ID == uuid.Nil {
		clone.ID = uuid.New()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.customers[clone.ID] = &clone
	saved := clone
	return &saved, nil
}

func (r *Repository) GetCustomer(_ context.Context, id uuid.UUID) (*domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	customer, ok := r.customers[id]
	if !ok {
		return nil, ports.ErrCustomerNotFound
	}
	clone := *customer
	return &clone, nil
}

func (r *Repository) ListCustomers(_ context.Context) ([]*domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Customer, 0, len(r.customers))
	for _, customer := range r.customers {
		clone := *customer
		list = append(list, &clone)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}
