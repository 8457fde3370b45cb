package shroomserver

import (
	"time"

	"github.com/google/uuid"

	logisticsdomain "github.com/shroombros/shroom-api/internal/domains/logistics/domain"
)

type CreateDriverRequest struct {
	Name         string   `json:"name"`
	Phone        string   `json:"phone,omitempty"`
	Email        string   `json:"email,omitempty"`
	VehiclePlate string   `json:"vehiclePlate,omitempty"`
	Regions      []string `json:"regions,omitempty"`
}

type Driver struct {
	Id           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone,omitempty"`
	Email        string    `json:"email,omitempty"`
	VehiclePlate string    `json:"vehiclePlate,omitempty"`
	Regions      []string  `json:"regions"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
}

func fromDriver(d *logisticsdomain.Driver) Driver {
	regions := append([]string{}, d.Regions...)
	return Driver{
		Id:           d.ID,
		Name:         d.Name,
		Phone:        d.Phone,
		Email:        d.Email,
		VehiclePlate: d.VehiclePlate,
		Regions:      regions,
		Active:       d.Active,
		CreatedAt:    d.CreatedAt,
	}
}
