package shroomserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
	// Public routes skip bearer authentication.
	Public bool
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions)
}

// NewRouterWithGinEngine adds routes to an existing gin engine. Non-public routes run behind
// handleFunctions.Auth when it is set.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		chain := []gin.HandlerFunc{route.HandlerFunc}
		if !route.Public && handleFunctions.Auth != nil {
			chain = append([]gin.HandlerFunc{handleFunctions.Auth}, chain...)
		}
		router.Handle(route.Method, route.Pattern, chain...)
	}
	return router
}

// DefaultHandleFunc answers routes whose handler is not wired.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

type ApiHandleFunctions struct {
	// Auth guards every non-public route.
	Auth gin.HandlerFunc

	HealthAPI     HealthAPI
	AuthAPI       AuthAPI
	RouteAPI      RouteAPI
	DriverAPI     DriverAPI
	SalesAPI      SalesAPI
	MonitoringAPI MonitoringAPI
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	return []Route{
		{"Healthz", http.MethodGet, "/healthz", handleFunctions.HealthAPI.Healthz, true},

		{"Login", http.MethodPost, "/v1/auth/login", handleFunctions.AuthAPI.Login, true},
		{"Logout", http.MethodPost, "/v1/auth/logout", handleFunctions.AuthAPI.Logout, false},
		{"Me", http.MethodGet, "/v1/auth/me", handleFunctions.AuthAPI.Me, false},

		{"ListRoutes", http.MethodGet, "/v1/routes", handleFunctions.RouteAPI.ListRoutes, false},
		{"SuggestRoutes", http.MethodGet, "/v1/routes/suggestions", handleFunctions.RouteAPI.SuggestRoutes, false},
		{"GetRoute", http.MethodGet, "/v1/routes/:routeId", handleFunctions.RouteAPI.GetRoute, false},
		{"CreateRoute", http.MethodPost, "/v1/routes", handleFunctions.RouteAPI.CreateRoute, false},
		{"StartRoute", http.MethodPatch, "/v1/routes/:routeId/start", handleFunctions.RouteAPI.StartRoute, false},
		{"FinishRoute", http.MethodPatch, "/v1/routes/:routeId/finish", handleFunctions.RouteAPI.FinishRoute, false},
		{"CancelRoute", http.MethodPatch, "/v1/routes/:routeId/cancel", handleFunctions.RouteAPI.CancelRoute, false},
		{"UpdateStop", http.MethodPatch, "/v1/routes/:routeId/stops/:stopId", handleFunctions.RouteAPI.UpdateStop, false},

		{"ListDrivers", http.MethodGet, "/v1/drivers", handleFunctions.DriverAPI.ListDrivers, false},
		{"CreateDriver", http.MethodPost, "/v1/drivers", handleFunctions.DriverAPI.CreateDriver, false},
		{"GetDriver", http.MethodGet, "/v1/drivers/:driverId", handleFunctions.DriverAPI.GetDriver, false},

		{"ListCustomers", http.MethodGet, "/v1/customers", handleFunctions.SalesAPI.ListCustomers, false},
		{"CreateCustomer", http.MethodPost, "/v1/customers", handleFunctions.SalesAPI.CreateCustomer, false},
		{"ListOrders", http.MethodGet, "/v1/orders", handleFunctions.SalesAPI.ListOrders, false},
		{"PlaceOrder", http.MethodPost, "/v1/orders", handleFunctions.SalesAPI.PlaceOrder, false},
		{"SalesSummary", http.MethodGet, "/v1/orders/summary", handleFunctions.SalesAPI.Summary, false},
		{"GetOrder", http.MethodGet, "/v1/orders/:orderId", handleFunctions.SalesAPI.GetOrder, false},
		{"UpdateOrderStatus", http.MethodPatch, "/v1/orders/:orderId/status", handleFunctions.SalesAPI.UpdateOrderStatus, false},

		{"ListProducts", http.MethodGet, "/v1/products", handleFunctions.MonitoringAPI.ListProducts, false},
		{"CreateProduct", http.MethodPost, "/v1/products", handleFunctions.MonitoringAPI.CreateProduct, false},
		{"ListLots", http.MethodGet, "/v1/lots", handleFunctions.MonitoringAPI.ListLots, false},
		{"CreateLot", http.MethodPost, "/v1/lots", handleFunctions.MonitoringAPI.CreateLot, false},
		{"RiskDashboard", http.MethodGet, "/v1/lots/risk", handleFunctions.MonitoringAPI.RiskDashboard, false},
		{"LotRisk", http.MethodGet, "/v1/lots/:lotId/risk", handleFunctions.MonitoringAPI.LotRisk, false},
		{"IngestReading", http.MethodPost, "/v1/sensors/readings", handleFunctions.MonitoringAPI.IngestReading, false},
	}
}
