package ports

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/shroombros/shroom-api/internal/domains/sales/domain"
)

var (
	ErrNotFound         = errors.New("order not found")
	ErrCustomerNotFound = errors.New("customer not found")
)

// OrderFilter narrows order listings. A nil status matches every order.
type OrderFilter struct {
	Status *domain.Status
}

// Repository persists customers and orders.
type Repository interface {
	SaveOrder(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]*domain.Order, error)
	SaveCustomer(ctx context.Context, customer *domain.Customer) (*domain.Customer, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
	ListCustomers(ctx context.Context) ([]*domain.Customer, error)
}
