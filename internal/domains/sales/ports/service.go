package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shroombros/shroom-api/internal/domains/sales/domain"
)

// CreateCustomerInput carries the contact details of a new customer.
type CreateCustomerInput struct {
	Name         string
	Phone        string
	Email        string
	Address      string
	Neighborhood string
	City         string
}

// PlaceOrderInput carries a new order.
type PlaceOrderInput struct {
	CustomerID    uuid.UUID
	Total         decimal.Decimal
	RequestedDate time.Time
	Notes         string
}

// StatusTotal aggregates orders sharing a status.
type StatusTotal struct {
	Status  domain.Status
	Orders  int
	Revenue decimal.Decimal
}

// Summary is the sales overview shown on the finance page.
type Summary struct {
	ByStatus []StatusTotal
	// Revenue excludes cancelled orders.
	Revenue decimal.Decimal
	Orders  int
}

// Service exposes sales use cases to adapters.
type Service interface {
	CreateCustomer(ctx context.Context, input CreateCustomerInput) (*domain.Customer, error)
	ListCustomers(ctx context.Context) ([]*domain.Customer, error)
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*domain.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status domain.Status) (*domain.Order, error)
	Summary(ctx context.Context) (*Summary, error)
}
