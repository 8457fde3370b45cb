package shroomserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	salesdomain "github.com/shroombros/shroom-api/internal/domains/sales/domain"
	salesports "github.com/shroombros/shroom-api/internal/domains/sales/ports"
	apierrors "github.com/shroombros/shroom-api/internal/shared/errors"
)

// SalesAPI exposes customers, orders and the sales summary.
type SalesAPI struct {
	service salesports.Service
}

func NewSalesAPI(service salesports.Service) SalesAPI {
	return SalesAPI{service: service}
}

// Get /v1/customers
func (api *SalesAPI) ListCustomers(c *gin.Context) {
	customers, err := api.service.ListCustomers(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	out := make([]Customer, 0, len(customers))
	for _, customer := range customers {
		out = append(out, fromCustomer(customer))
	}
	c.JSON(http.StatusOK, out)
}

// Post /v1/customers
func (api *SalesAPI) CreateCustomer(c *gin.Context) {
	var payload CreateCustomerRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	customer, err := api.service.CreateCustomer(c.Request.Context(), salesports.CreateCustomerInput{
		Name:         payload.Name,
		Phone:        payload.Phone,
		Email:        payload.Email,
		Address:      payload.Address,
		Neighborhood: payload.Neighborhood,
		City:         payload.City,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, fromCustomer(customer))
}

// Get /v1/orders
func (api *SalesAPI) ListOrders(c *gin.Context) {
	var filter salesports.OrderFilter
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status, err := salesdomain.ParseStatus(raw)
		if err != nil {
			respondProblem(c, apierrors.ErrValidation.WithDetail(err.Error()))
			return
		}
		filter.Status = &status
	}
	orders, err := api.service.ListOrders(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	out := make([]Order, 0, len(orders))
	for _, order := range orders {
		out = append(out, fromOrder(order))
	}
	c.JSON(http.StatusOK, out)
}

// Post /v1/orders
func (api *SalesAPI) PlaceOrder(c *gin.Context) {
	var payload PlaceOrderRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	order, err := api.service.PlaceOrder(c.Request.Context(), salesports.PlaceOrderInput{
		CustomerID:    payload.CustomerId,
		Total:         payload.Total,
		RequestedDate: payload.RequestedDate.Time,
		Notes:         payload.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, fromOrder(order))
}

// Get /v1/orders/:orderId
func (api *SalesAPI) GetOrder(c *gin.Context) {
	id, ok := parseUUIDParam(c, "orderId")
	if !ok {
		return
	}
	order, err := api.service.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromOrder(order))
}

// Patch /v1/orders/:orderId/status
// Applies a manual status change; route-owned statuses are rejected
func (api *SalesAPI) UpdateOrderStatus(c *gin.Context) {
	id, ok := parseUUIDParam(c, "orderId")
	if !ok {
		return
	}
	var payload UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	status, err := salesdomain.ParseStatus(payload.Status)
	if err != nil {
		respondProblem(c, apierrors.ErrValidation.WithDetail(err.Error()))
		return
	}
	order, err := api.service.UpdateOrderStatus(c.Request.Context(), id, status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromOrder(order))
}

// Get /v1/orders/summary
func (api *SalesAPI) Summary(c *gin.Context) {
	summary, err := api.service.Summary(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromSummary(summary))
}
