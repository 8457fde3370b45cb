package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrEmptyDriverName = errors.New("driver name is required")

// Driver delivers routes. Routes reference drivers but never own them.
type Driver struct {
	ID           uuid.UUID
	Name         string
	Phone        string
	Email        string
	VehiclePlate string
	Regions      []string
	Active       bool
	CreatedAt    time.Time
}

// NewDriver builds an active driver, dropping blank and repeated regions.
func NewDriver(name, phone, email, vehiclePlate string, regions []string) (*Driver, error) {
	d := &Driver{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(name),
		Phone:        strings.TrimSpace(phone),
		Email:        strings.TrimSpace(email),
		VehiclePlate: strings.ToUpper(strings.TrimSpace(vehiclePlate)),
		Active:       true,
	}
	if d.Name == "" {
		return nil, ErrEmptyDriverName
	}
	seen := map[string]struct{}{}
	for _, region := range regions {
		region = strings.TrimSpace(region)
		if region == "" {
			continue
		}
		if _, ok := seen[region]; ok {
			continue
		}
		seen[region] = struct{}{}
		d.Regions = append(d.Regions, region)
	}
	return d, nil
}

// Serves reports whether the driver covers region. A driver without regions covers everything.
func (d *Driver) Serves(region string) bool {
	if len(d.Regions) == 0 {
		return true
	}
	for _, r := range d.Regions {
		if strings.EqualFold(r, region) {
			return true
		}
	}
	return false
}
