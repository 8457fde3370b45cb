package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType names a route lifecycle event.
type EventType string

const (
	EventRouteCreated   EventType = "route.created"
	EventRouteStarted   EventType = "route.started"
	EventStopDelivered  EventType = "route.stop_delivered"
	EventRouteCompleted EventType = "route.completed"
	EventRouteCancelled EventType = "route.cancelled"
	EventDriverNotified EventType = "route.driver_notified"
)

// RouteEvent is emitted after a lifecycle change has been committed.
type RouteEvent struct {
	Type        EventType
	RouteID     uuid.UUID
	RouteCode   string
	DriverID    uuid.UUID
	Status      RouteStatus
	StopID      *uuid.UUID
	OrderID     *uuid.UUID
	Undelivered int
	Reason      string
	OccurredAt  time.Time
}

// NewRouteEvent snapshots the route for an event of the given type.
func NewRouteEvent(eventType EventType, route *Route, at time.Time) RouteEvent {
	return RouteEvent{
		Type:       eventType,
		RouteID:    route.ID,
		RouteCode:  route.Code,
		DriverID:   route.DriverID,
		Status:     route.Status,
		OccurredAt: at,
	}
}
