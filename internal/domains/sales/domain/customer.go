package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrEmptyCustomerName = errors.New("customer name is required")

// Customer is a buyer the farm delivers to.
type Customer struct {
	ID           uuid.UUID
	Name         string
	Phone        string
	Email        string
	Address      string
	Neighborhood string
	City         string
	CreatedAt    time.Time
}

// NewCustomer trims the contact fields and requires a name.
func NewCustomer(name, phone, email, address, neighborhood, city string) (*Customer, error) {
	c := &Customer{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(name),
		Phone:        strings.TrimSpace(phone),
		Email:        strings.TrimSpace(email),
		Address:      strings.TrimSpace(address),
		Neighborhood: strings.TrimSpace(neighborhood),
		City:         strings.TrimSpace(city),
	}
	if c.Name == "" {
		return nil, ErrEmptyCustomerName
	}
	return c, nil
}
