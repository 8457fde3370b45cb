package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RouteStatus enumerates route progression.
type RouteStatus string

const (
	RouteStatusPending    RouteStatus = "pending"
	RouteStatusInProgress RouteStatus = "in_progress"
	RouteStatusCompleted  RouteStatus = "completed"
	RouteStatusCancelled  RouteStatus = "cancelled"
)

// StopStatus enumerates the delivery state of a single stop.
type StopStatus string

const (
	StopStatusPending   StopStatus = "pending"
	StopStatusInTransit StopStatus = "in_transit"
	StopStatusDelivered StopStatus = "delivered"
)

var (
	ErrEmptyRouteName         = errors.New("route name is required")
	ErrMissingDriver          = errors.New("driver id is required")
	ErrMissingScheduledDate   = errors.New("scheduled date is required")
	ErrNoOrders               = errors.New("at least one order is required")
	ErrDuplicateOrder         = errors.New("order appears more than once")
	ErrInvalidRouteStatus     = errors.New("route status is invalid")
	ErrInvalidStopStatus      = errors.New("stop status is invalid")
	ErrInvalidRouteTransition = errors.New("route status transition is not allowed")
	ErrInvalidStopTransition  = errors.New("stop status transition is not allowed")
	ErrStopNotOnRoute         = errors.New("stop does not belong to route")
)

// Stop is a single delivery within a route, bound to one order.
type Stop struct {
	ID          uuid.UUID
	RouteID     uuid.UUID
	OrderID     uuid.UUID
	Position    int
	Status      StopStatus
	DeliveredAt *time.Time
}

// Route is a planned sequence of deliveries assigned to one driver for one day.
type Route struct {
	ID            uuid.UUID
	Code          string
	Name          string
	DriverID      uuid.UUID
	ScheduledDate time.Time
	Status        RouteStatus
	Notes         string
	StartedAt     *time.Time
	FinishedAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Stops         []Stop
}

// NewRoute builds a pending route with one stop per order, positioned 1..N in input order.
func NewRoute(code, name string, driverID uuid.UUID, scheduledDate time.Time, orderIDs []uuid.UUID, notes string, now time.Time) (*Route, error) {
	if err := ValidateDraft(name, driverID, scheduledDate, orderIDs); err != nil {
		return nil, err
	}
	route := &Route{
		ID:            uuid.New(),
		Code:          code,
		Name:          strings.TrimSpace(name),
		DriverID:      driverID,
		ScheduledDate: scheduledDate,
		Status:        RouteStatusPending,
		Notes:         strings.TrimSpace(notes),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	route.Stops = make([]Stop, 0, len(orderIDs))
	for i, orderID := range orderIDs {
		route.Stops = append(route.Stops, Stop{
			ID:       uuid.New(),
			RouteID:  route.ID,
			OrderID:  orderID,
			Position: i + 1,
			Status:   StopStatusPending,
		})
	}
	return route, nil
}

// ValidateDraft checks the caller supplied fields of a new route.
func ValidateDraft(name string, driverID uuid.UUID, scheduledDate time.Time, orderIDs []uuid.UUID) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyRouteName
	}
	if driverID == uuid.Nil {
		return ErrMissingDriver
	}
	if scheduledDate.IsZero() {
		return ErrMissingScheduledDate
	}
	if len(orderIDs) == 0 {
		return ErrNoOrders
	}
	seen := make(map[uuid.UUID]struct{}, len(orderIDs))
	for _, id := range orderIDs {
		if _, dup := seen[id]; dup {
			return ErrDuplicateOrder
		}
		seen[id] = struct{}{}
	}
	return nil
}

// Active reports whether the route still holds its orders.
func (s RouteStatus) Active() bool {
	return s == RouteStatusPending || s == RouteStatusInProgress
}

// Start moves a pending route into progress.
func (r *Route) Start(now time.Time) error {
	if r.Status != RouteStatusPending {
		return ErrInvalidRouteTransition
	}
	r.Status = RouteStatusInProgress
	r.StartedAt = &now
	r.UpdatedAt = now
	return nil
}

// Finish completes an in-progress route and returns how many stops were never delivered.
func (r *Route) Finish(now time.Time) (int, error) {
	if r.Status != RouteStatusInProgress {
		return 0, ErrInvalidRouteTransition
	}
	r.Status = RouteStatusCompleted
	r.FinishedAt = &now
	r.UpdatedAt = now
	return len(r.UndeliveredStops()), nil
}

// Cancel abandons a pending route, keeping the reason in the notes.
func (r *Route) Cancel(reason string, now time.Time) error {
	if r.Status != RouteStatusPending {
		return ErrInvalidRouteTransition
	}
	r.Status = RouteStatusCancelled
	if reason = strings.TrimSpace(reason); reason != "" {
		r.Notes = reason
	}
	r.UpdatedAt = now
	return nil
}

// DeliverStop marks a stop delivered. Deliveries are only recorded while the route is running.
func (r *Route) DeliverStop(stopID uuid.UUID, now time.Time) (*Stop, error) {
	stop, err := r.stop(stopID)
	if err != nil {
		return nil, err
	}
	if r.Status != RouteStatusInProgress {
		return nil, ErrInvalidRouteTransition
	}
	if stop.Status == StopStatusDelivered {
		return nil, ErrInvalidStopTransition
	}
	stop.Status = StopStatusDelivered
	stop.DeliveredAt = &now
	r.UpdatedAt = now
	return stop, nil
}

// MarkStopInTransit flags a pending stop as the driver's next delivery.
func (r *Route) MarkStopInTransit(stopID uuid.UUID, now time.Time) (*Stop, error) {
	stop, err := r.stop(stopID)
	if err != nil {
		return nil, err
	}
	if r.Status != RouteStatusInProgress {
		return nil, ErrInvalidRouteTransition
	}
	if stop.Status != StopStatusPending {
		return nil, ErrInvalidStopTransition
	}
	stop.Status = StopStatusInTransit
	r.UpdatedAt = now
	return stop, nil
}

// OrderIDs lists the orders on the route in stop order.
func (r *Route) OrderIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(r.Stops))
	for _, stop := range r.Stops {
		ids = append(ids, stop.OrderID)
	}
	return ids
}

// UndeliveredStops returns the stops that have not reached Delivered.
func (r *Route) UndeliveredStops() []Stop {
	var out []Stop
	for _, stop := range r.Stops {
		if stop.Status != StopStatusDelivered {
			out = append(out, stop)
		}
	}
	return out
}

// Clone returns a deep copy safe to hand across adapter boundaries.
func (r *Route) Clone() *Route {
	if r == nil {
		return nil
	}
	clone := *r
	clone.StartedAt = copyTime(r.StartedAt)
	clone.FinishedAt = copyTime(r.FinishedAt)
	clone.Stops = make([]Stop, len(r.Stops))
	for i, stop := range r.Stops {
		stop.DeliveredAt = copyTime(stop.DeliveredAt)
		clone.Stops[i] = stop
	}
	return &clone
}

func (r *Route) stop(stopID uuid.UUID) (*Stop, error) {
	for i := range r.Stops {
		if r.Stops[i].ID == stopID {
			return &r.Stops[i], nil
		}
	}
	return nil, ErrStopNotOnRoute
}

// ParseRouteStatus accepts the wire value of a route status.
func ParseRouteStatus(raw string) (RouteStatus, error) {
	switch status := RouteStatus(strings.ToLower(strings.TrimSpace(raw))); status {
	case RouteStatusPending, RouteStatusInProgress, RouteStatusCompleted, RouteStatusCancelled:
		return status, nil
	}
	return "", ErrInvalidRouteStatus
}

// ParseStopStatus accepts the wire value of a stop status.
func ParseStopStatus(raw string) (StopStatus, error) {
	switch status := StopStatus(strings.ToLower(strings.TrimSpace(raw))); status {
	case StopStatusPending, StopStatusInTransit, StopStatusDelivered:
		return status, nil
	}
	return "", ErrInvalidStopStatus
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
