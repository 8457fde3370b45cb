package shroomserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	monitoringports "github.com/shroombros/shroom-api/internal/domains/monitoring/ports"
)

// MonitoringAPI exposes the catalog, sensor ingestion and lot risk.
type MonitoringAPI struct {
	service monitoringports.Service
}

func NewMonitoringAPI(service monitoringports.Service) MonitoringAPI {
	return MonitoringAPI{service: service}
}

// Get /v1/products
func (api *MonitoringAPI) ListProducts(c *gin.Context) {
	products, err := api.service.ListProducts(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	out := make([]Product, 0, len(products))
	for _, p := range products {
		out = append(out, fromProduct(p))
	}
	c.JSON(http.StatusOK, out)
}

// Post /v1/products
func (api *MonitoringAPI) CreateProduct(c *gin.Context) {
	var payload CreateProductRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	product, err := api.service.CreateProduct(c.Request.Context(), monitoringports.CreateProductInput{
		Name:  payload.Name,
		Range: toIdealRange(payload.Ideal),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, fromProduct(product))
}

// Get /v1/lots
func (api *MonitoringAPI) ListLots(c *gin.Context) {
	lots, err := api.service.ListLots(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	out := make([]Lot, 0, len(lots))
	for _, l := range lots {
		out = append(out, fromLot(l))
	}
	c.JSON(http.StatusOK, out)
}

// Post /v1/lots
func (api *MonitoringAPI) CreateLot(c *gin.Context) {
	var payload CreateLotRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	input := monitoringports.CreateLotInput{Code: payload.Code, ProductID: payload.ProductId, Notes: payload.Notes}
	if payload.StartedOn != nil {
		input.StartedOn = payload.StartedOn.Time
	}
	lot, err := api.service.CreateLot(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, fromLot(lot))
}

// Post /v1/sensors/readings
// Normalises and stores one raw sensor reading
func (api *MonitoringAPI) IngestReading(c *gin.Context) {
	var payload SensorReadingRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	reading, err := api.service.IngestReading(c.Request.Context(), payload.toRawReading())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, fromReading(reading))
}

// Get /v1/lots/:lotId/risk
func (api *MonitoringAPI) LotRisk(c *gin.Context) {
	id, ok := parseUUIDParam(c, "lotId")
	if !ok {
		return
	}
	risk, err := api.service.AssessLot(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromLotRisk(*risk))
}

// Get /v1/lots/risk
// Scores every lot; lots without readings report hasReading=false and score 0
func (api *MonitoringAPI) RiskDashboard(c *gin.Context) {
	risks, err := api.service.AssessAll(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	out := make([]LotRisk, 0, len(risks))
	for _, r := range risks {
		out = append(out, fromLotRisk(r))
	}
	c.JSON(http.StatusOK, out)
}
