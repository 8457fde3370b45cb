package shroomserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	logisticsports "github.com/shroombros/shroom-api/internal/domains/logistics/ports"
)

// DriverAPI exposes driver management.
type DriverAPI struct {
	service logisticsports.Service
}

func NewDriverAPI(service logisticsports.Service) DriverAPI {
	return DriverAPI{service: service}
}

// Get /v1/drivers
func (api *DriverAPI) ListDrivers(c *gin.Context) {
	drivers, err := api.service.ListDrivers(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	out := make([]Driver, 0, len(drivers))
	for _, d := range drivers {
		out = append(out, fromDriver(d))
	}
	c.JSON(http.StatusOK, out)
}

// Post /v1/drivers
func (api *DriverAPI) CreateDriver(c *gin.Context) {
	var payload CreateDriverRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	driver, err := api.service.CreateDriver(c.Request.Context(), logisticsports.CreateDriverInput{
		Name:         payload.Name,
		Phone:        payload.Phone,
		Email:        payload.Email,
		VehiclePlate: payload.VehiclePlate,
		Regions:      payload.Regions,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, fromDriver(driver))
}

// Get /v1/drivers/:driverId
func (api *DriverAPI) GetDriver(c *gin.Context) {
	id, ok := parseUUIDParam(c, "driverId")
	if !ok {
		return
	}
	driver, err := api.service.GetDriver(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromDriver(driver))
}
