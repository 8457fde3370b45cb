package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shroombros/shroom-api/internal/domains/sales/domain"
	"github.com/shroombros/shroom-api/internal/domains/sales/ports"
)

// Service orchestrates customer and order use cases.
type Service struct {
	repo ports.Repository
	now  func() time.Time
}

func NewService(repo ports.Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// WithClock overrides the time source for deterministic testing.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

func (s *Service) CreateCustomer(ctx context.Context, input ports.CreateCustomerInput) (*domain.Customer, error) {
	customer, err := domain.NewCustomer(input.Name, input.Phone, input.Email, input.Address, input.Neighborhood, input.City)
	if err != nil {
		return nil, mapError(err)
	}
	customer.CreatedAt = s.now()
	return s.repo.SaveCustomer(ctx, customer)
}

func (s *Service) ListCustomers(ctx context.Context) ([]*domain.Customer, error) {
	return s.repo.ListCustomers(ctx)
}

func (s *Service) PlaceOrder(ctx context.Context, input ports.PlaceOrderInput) (*domain.Order, error) {
	order, err := domain.NewOrder(input.CustomerID, input.Total, input.RequestedDate, input.Notes)
	if err != nil {
		return nil, mapError(err)
	}
	if _, err := s.repo.GetCustomer(ctx, input.CustomerID); err != nil {
		return nil, err
	}
	now := s.now()
	order.CreatedAt = now
	order.UpdatedAt = now
	return s.repo.SaveOrder(ctx, order)
}

func (s *Service) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return s.repo.GetOrder(ctx, id)
}

func (s *Service) ListOrders(ctx context.Context, filter ports.OrderFilter) ([]*domain.Order, error) {
	return s.repo.ListOrders(ctx, filter)
}

// UpdateOrderStatus applies a manual status change such as confirming or cancelling.
func (s *Service) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status domain.Status) (*domain.Order, error) {
	order, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := order.Transition(status); err != nil {
		return nil, mapError(err)
	}
	order.UpdatedAt = s.now()
	return s.repo.SaveOrder(ctx, order)
}

// Summary counts orders and sums revenue per status.
func (s *Service) Summary(ctx context.Context) (*ports.Summary, error) {
	orders, err := s.repo.ListOrders(ctx, ports.OrderFilter{})
	if err != nil {
		return nil, err
	}
	totals := map[domain.Status]*ports.StatusTotal{}
	summary := &ports.Summary{Revenue: decimal.Zero}
	for _, order := range orders {
		bucket, ok := totals[order.Status]
		if !ok {
			bucket = &ports.StatusTotal{Status: order.Status, Revenue: decimal.Zero}
			totals[order.Status] = bucket
		}
		bucket.Orders++
		bucket.Revenue = bucket.Revenue.Add(order.Total)
		summary.Orders++
		if order.Status != domain.StatusCancelled {
			summary.Revenue = summary.Revenue.Add(order.Total)
		}
	}
	for _, status := range domain.Statuses {
		if bucket, ok := totals[status]; ok {
			summary.ByStatus = append(summary.ByStatus, *bucket)
		}
	}
	return summary, nil
}

var _ ports.Service = (*Service)(nil)
