package shroomserver

import (
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"

	salesdomain "github.com/shroombros/shroom-api/internal/domains/sales/domain"
	salesports "github.com/shroombros/shroom-api/internal/domains/sales/ports"
)

type CreateCustomerRequest struct {
	Name         string `json:"name"`
	Phone        string `json:"phone,omitempty"`
	Email        string `json:"email,omitempty"`
	Address      string `json:"address,omitempty"`
	Neighborhood string `json:"neighborhood,omitempty"`
	City         string `json:"city,omitempty"`
}

type Customer struct {
	Id           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone,omitempty"`
	Email        string    `json:"email,omitempty"`
	Address      string    `json:"address,omitempty"`
	Neighborhood string    `json:"neighborhood,omitempty"`
	City         string    `json:"city,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

type PlaceOrderRequest struct {
	CustomerId    uuid.UUID          `json:"customerId"`
	Total         decimal.Decimal    `json:"total"`
	RequestedDate openapi_types.Date `json:"requestedDate"`
	Notes         string             `json:"notes,omitempty"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type Order struct {
	Id            uuid.UUID          `json:"id"`
	CustomerId    uuid.UUID          `json:"customerId"`
	Status        string             `json:"status"`
	Total         decimal.Decimal    `json:"total"`
	RequestedDate openapi_types.Date `json:"requestedDate"`
	Notes         string             `json:"notes,omitempty"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

type StatusTotal struct {
	Status  string          `json:"status"`
	Orders  int             `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

type SalesSummary struct {
	Orders   int             `json:"orders"`
	Revenue  decimal.Decimal `json:"revenue"`
	ByStatus []StatusTotal   `json:"byStatus"`
}

func fromCustomer(c *salesdomain.Customer) Customer {
	return Customer{
		Id:           c.ID,
		Name:         c.Name,
		Phone:        c.Phone,
		Email:        c.Email,
		Address:      c.Address,
		Neighborhood: c.Neighborhood,
		City:         c.City,
		CreatedAt:    c.CreatedAt,
	}
}

func fromOrder(o *salesdomain.Order) Order {
	return Order{
		Id:            o.ID,
		CustomerId:    o.CustomerID,
		Status:        string(o.Status),
		Total:         o.Total,
		RequestedDate: openapi_types.Date{Time: o.RequestedDate},
		Notes:         o.Notes,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

func fromSummary(s *salesports.Summary) SalesSummary {
	out := SalesSummary{Orders: s.Orders, Revenue: s.Revenue, ByStatus: make([]StatusTotal, 0, len(s.ByStatus))}
	for _, t := range s.ByStatus {
		out.ByStatus = append(out.ByStatus, StatusTotal{Status: string(t.Status), Orders: t.Orders, Revenue: t.Revenue})
	}
	return out
}
