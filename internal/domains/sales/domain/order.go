package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status enumerates order progression.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusInRoute   Status = "in_route"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// Statuses lists every order status in lifecycle order.
var Statuses = []Status{
	StatusPending,
	StatusConfirmed,
	StatusPreparing,
	StatusReady,
	StatusInRoute,
	StatusDelivered,
	StatusCancelled,
}

var (
	ErrMissingCustomer   = errors.New("customer id is required")
	ErrNegativeTotal     = errors.New("order total must not be negative")
	ErrInvalidStatus     = errors.New("order status is invalid")
	ErrInvalidTransition = errors.New("order status transition is not allowed")
)

// manualTransitions are the moves a person may make by hand. Preparing, InRoute and
// Delivered belong to the route lifecycle and are only reached through SetFulfillmentStatus.
var manualTransitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusReady, StatusCancelled},
	StatusReady:     {StatusConfirmed, StatusCancelled},
}

// Order models a customer purchase order.
type Order struct {
	ID            uuid.UUID
	CustomerID    uuid.UUID
	Status        Status
	Total         decimal.Decimal
	RequestedDate time.Time
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewOrder validates and constructs a pending order.
func NewOrder(customerID uuid.UUID, total decimal.Decimal, requestedDate time.Time, notes string) (*Order, error) {
	order := &Order{
		ID:            uuid.New(),
		CustomerID:    customerID,
		Status:        StatusPending,
		Total:         total,
		RequestedDate: requestedDate,
		Notes:         strings.TrimSpace(notes),
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	return order, nil
}

// Validate enforces invariants on the aggregate.
func (o *Order) Validate() error {
	if o.CustomerID == uuid.Nil {
		return ErrMissingCustomer
	}
	if o.Total.IsNegative() {
		return ErrNegativeTotal
	}
	if !IsValidStatus(o.Status) {
		return ErrInvalidStatus
	}
	return nil
}

// Transition applies a manual status change.
func (o *Order) Transition(to Status) error {
	if !IsValidStatus(to) {
		return ErrInvalidStatus
	}
	for _, allowed := range manualTransitions[o.Status] {
		if allowed == to {
			o.Status = to
			return nil
		}
	}
	return ErrInvalidTransition
}

// SetFulfillmentStatus is used by the route lifecycle, which owns its own transition rules.
func (o *Order) SetFulfillmentStatus(status Status) error {
	if !IsValidStatus(status) {
		return ErrInvalidStatus
	}
	o.Status = status
	return nil
}

// Routable reports whether the status allows the order to be put on a delivery route.
func (s Status) Routable() bool {
	return s == StatusReady || s == StatusConfirmed
}

// ParseStatus accepts the wire value of a status.
func ParseStatus(raw string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !IsValidStatus(status) {
		return "", ErrInvalidStatus
	}
	return status, nil
}

func IsValidStatus(status Status) bool {
	for _, s := range Statuses {
		if s == status {
			return true
		}
	}
	return false
}
