package shroomserver

import (
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"

	logisticsdomain "github.com/shroombros/shroom-api/internal/domains/logistics/domain"
)

type CreateRouteRequest struct {
	Name          string             `json:"name"`
	DriverId      uuid.UUID          `json:"driverId"`
	ScheduledDate openapi_types.Date `json:"scheduledDate"`
	OrderIds      []uuid.UUID        `json:"orderIds"`
	Notes         string             `json:"notes,omitempty"`
}

type CancelRouteRequest struct {
	Reason string `json:"reason"`
}

type UpdateStopRequest struct {
	Status string `json:"status" binding:"required"`
}

type Stop struct {
	Id          uuid.UUID  `json:"id"`
	OrderId     uuid.UUID  `json:"orderId"`
	Position    int        `json:"position"`
	Status      string     `json:"status"`
	DeliveredAt *time.Time `json:"deliveredAt,omitempty"`
}

type RouteResponse struct {
	Id            uuid.UUID          `json:"id"`
	Code          string             `json:"code"`
	Name          string             `json:"name"`
	DriverId      uuid.UUID          `json:"driverId"`
	ScheduledDate openapi_types.Date `json:"scheduledDate"`
	Status        string             `json:"status"`
	Notes         string             `json:"notes,omitempty"`
	StartedAt     *time.Time         `json:"startedAt,omitempty"`
	FinishedAt    *time.Time         `json:"finishedAt,omitempty"`
	CreatedAt     time.Time          `json:"createdAt"`
	Stops         []Stop             `json:"stops"`
}

type FinishRouteResponse struct {
	RouteResponse
	UndeliveredStops int `json:"undeliveredStops"`
}

type SuggestedOrder struct {
	Id            uuid.UUID          `json:"id"`
	CustomerId    uuid.UUID          `json:"customerId"`
	CustomerName  string             `json:"customerName"`
	Status        string             `json:"status"`
	Total         decimal.Decimal    `json:"total"`
	RequestedDate openapi_types.Date `json:"requestedDate"`
}

type RouteSuggestion struct {
	Name             string           `json:"name"`
	Region           string           `json:"region"`
	Orders           []SuggestedOrder `json:"orders"`
	TotalOrders      int              `json:"totalOrders"`
	EstimatedMinutes int              `json:"estimatedMinutes"`
}

func fromRoute(r *logisticsdomain.Route) RouteResponse {
	out := RouteResponse{
		Id:            r.ID,
		Code:          r.Code,
		Name:          r.Name,
		DriverId:      r.DriverID,
		ScheduledDate: openapi_types.Date{Time: r.ScheduledDate},
		Status:        string(r.Status),
		Notes:         r.Notes,
		StartedAt:     r.StartedAt,
		FinishedAt:    r.FinishedAt,
		CreatedAt:     r.CreatedAt,
		Stops:         make([]Stop, 0, len(r.Stops)),
	}
	for _, s := range r.Stops {
		out.Stops = append(out.Stops, Stop{
			Id:          s.ID,
			OrderId:     s.OrderID,
			Position:    s.Position,
			Status:      string(s.Status),
			DeliveredAt: s.DeliveredAt,
		})
	}
	return out
}

func fromRoutes(routes []*logisticsdomain.Route) []RouteResponse {
	out := make([]RouteResponse, 0, len(routes))
	for _, r := range routes {
		out = append(out, fromRoute(r))
	}
	return out
}

func fromSuggestions(suggestions []logisticsdomain.Suggestion) []RouteSuggestion {
	out := make([]RouteSuggestion, 0, len(suggestions))
	for _, s := range suggestions {
		orders := make([]SuggestedOrder, 0, len(s.Orders))
		for _, o := range s.Orders {
			orders = append(orders, SuggestedOrder{
				Id:            o.ID,
				CustomerId:    o.CustomerID,
				CustomerName:  o.CustomerName,
				Status:        string(o.Status),
				Total:         o.Total,
				RequestedDate: openapi_types.Date{Time: o.RequestedDate},
			})
		}
		out = append(out, RouteSuggestion{
			Name:             s.Name,
			Region:           s.Region,
			Orders:           orders,
			TotalOrders:      s.TotalOrders,
			EstimatedMinutes: s.EstimatedMinutes,
		})
	}
	return out
}
