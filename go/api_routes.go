package shroomserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	logisticsdomain "github.com/shroombros/shroom-api/internal/domains/logistics/domain"
	logisticsports "github.com/shroombros/shroom-api/internal/domains/logistics/ports"
	apierrors "github.com/shroombros/shroom-api/internal/shared/errors"
)

const idempotencyKeyHeader = "Idempotency-Key"

// RouteAPI wires HTTP transport with the logistics service and route provisioning workflows.
type RouteAPI struct {
	service   logisticsports.Service
	workflows logisticsports.WorkflowOrchestrator
}

// NewRouteAPI creates a RouteAPI. A nil orchestrator creates routes through the service directly.
func NewRouteAPI(service logisticsports.Service, workflows logisticsports.WorkflowOrchestrator) RouteAPI {
	return RouteAPI{service: service, workflows: workflows}
}

// Get /v1/routes
// Lists routes, newest first, optionally filtered by status and driver
func (api *RouteAPI) ListRoutes(c *gin.Context) {
	var filter logisticsports.RouteFilter
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status, err := logisticsdomain.ParseRouteStatus(raw)
		if err != nil {
			respondProblem(c, apierrors.ErrValidation.WithDetail(err.Error()))
			return
		}
		filter.Status = &status
	}
	if raw := strings.TrimSpace(c.Query("driverId")); raw != "" {
		driverID, err := uuid.Parse(raw)
		if err != nil {
			respondBadRequest(c, err)
			return
		}
		filter.DriverID = &driverID
	}
	routes, err := api.service.ListRoutes(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromRoutes(routes))
}

// Get /v1/routes/suggestions
// Groups ready and confirmed orders into one draft route per region
func (api *RouteAPI) SuggestRoutes(c *gin.Context) {
	suggestions, err := api.service.Suggest(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromSuggestions(suggestions))
}

// Get /v1/routes/:routeId
func (api *RouteAPI) GetRoute(c *gin.Context) {
	id, ok := parseUUIDParam(c, "routeId")
	if !ok {
		return
	}
	route, err := api.service.GetRoute(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromRoute(route))
}

// Post /v1/routes
// Creates a pending route with one stop per order. Retries sharing an Idempotency-Key header replay
// the first route.
func (api *RouteAPI) CreateRoute(c *gin.Context) {
	var payload CreateRouteRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	input := logisticsports.CreateRouteInput{
		Name:           payload.Name,
		DriverID:       payload.DriverId,
		ScheduledDate:  payload.ScheduledDate.Time,
		OrderIDs:       payload.OrderIds,
		Notes:          payload.Notes,
		IdempotencyKey: strings.TrimSpace(c.GetHeader(idempotencyKeyHeader)),
	}
	route, err := api.createRoute(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, fromRoute(route))
}

func (api *RouteAPI) createRoute(ctx context.Context, input logisticsports.CreateRouteInput) (*logisticsdomain.Route, error) {
	if api.workflows != nil {
		return api.workflows.CreateRoute(ctx, input)
	}
	return api.service.CreateRoute(ctx, input)
}

// Patch /v1/routes/:routeId/start
func (api *RouteAPI) StartRoute(c *gin.Context) {
	id, ok := parseUUIDParam(c, "routeId")
	if !ok {
		return
	}
	route, err := api.service.StartRoute(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromRoute(route))
}

// Patch /v1/routes/:routeId/finish
// Completes the route and reports how many stops were left undelivered
func (api *RouteAPI) FinishRoute(c *gin.Context) {
	id, ok := parseUUIDParam(c, "routeId")
	if !ok {
		return
	}
	result, err := api.service.FinishRoute(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, FinishRouteResponse{RouteResponse: fromRoute(result.Route), UndeliveredStops: result.Undelivered})
}

// Patch /v1/routes/:routeId/cancel
// Cancels a pending route and releases its orders
func (api *RouteAPI) CancelRoute(c *gin.Context) {
	id, ok := parseUUIDParam(c, "routeId")
	if !ok {
		return
	}
	var payload CancelRouteRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			respondBadRequest(c, err)
			return
		}
	}
	route, err := api.service.CancelRoute(c.Request.Context(), id, payload.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromRoute(route))
}

// Patch /v1/routes/:routeId/stops/:stopId
// Marks a stop in transit or delivered
func (api *RouteAPI) UpdateStop(c *gin.Context) {
	routeID, ok := parseUUIDParam(c, "routeId")
	if !ok {
		return
	}
	stopID, ok := parseUUIDParam(c, "stopId")
	if !ok {
		return
	}
	var payload UpdateStopRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	status, err := logisticsdomain.ParseStopStatus(payload.Status)
	if err != nil {
		respondProblem(c, apierrors.ErrValidation.WithDetail(err.Error()))
		return
	}
	route, err := api.service.UpdateStop(c.Request.Context(), routeID, stopID, status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromRoute(route))
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(name+" must be a UUID"))
		return uuid.Nil, false
	}
	return id, true
}
