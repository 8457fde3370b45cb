package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	natsgo "github.com/nats-io/nats.go"

	"github.com/shroombros/shroom-api/internal/domains/logistics/domain"
	"github.com/shroombros/shroom-api/internal/domains/logistics/ports"
)

// SubjectPrefix is prepended to the event type to build the NATS subject, e.g. shroom.route.started.
const SubjectPrefix = "shroom."

// MsgPublisher is the subset of *nats.Conn the publisher needs.
type MsgPublisher interface {
	PublishMsg(msg *natsgo.Msg) error
}

var _ ports.EventPublisher = (*NATSPublisher)(nil)

// NATSPublisher sends route lifecycle events as JSON messages.
type NATSPublisher struct {
	conn MsgPublisher
}

func NewNATSPublisher(conn MsgPublisher) *NATSPublisher {
	return &NATSPublisher{conn: conn}
}

// NewPublisher returns a NATS publisher when conn is set and a no-op publisher otherwise.
func NewPublisher(conn *natsgo.Conn) ports.EventPublisher {
	if conn == nil {
		return ports.NoopPublisher{}
	}
	return NewNATSPublisher(conn)
}

func (p *NATSPublisher) Publish(ctx context.Context, event domain.RouteEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := encodeEvent(event)
	if err != nil {
		return err
	}
	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish %s: %w", msg.Subject, err)
	}
	return nil
}

// eventPayload is the wire shape of a route event.
type eventPayload struct {
	Type        string     `json:"type"`
	RouteID     uuid.UUID  `json:"routeId"`
	RouteCode   string     `json:"routeCode"`
	DriverID    uuid.UUID  `json:"driverId"`
	Status      string     `json:"status"`
	StopID      *uuid.UUID `json:"stopId,omitempty"`
	OrderID     *uuid.UUID `json:"orderId,omitempty"`
	Undelivered int        `json:"undelivered,omitempty"`
	Reason      string     `json:"reason,omitempty"`
	OccurredAt  time.Time  `json:"occurredAt"`
}

func encodeEvent(event domain.RouteEvent) (*natsgo.Msg, error) {
	data, err := json.Marshal(eventPayload{
		Type:        string(event.Type),
		RouteID:     event.RouteID,
		RouteCode:   event.RouteCode,
		DriverID:    event.DriverID,
		Status:      string(event.Status),
		StopID:      event.StopID,
		OrderID:     event.OrderID,
		Undelivered: event.Undelivered,
		Reason:      event.Reason,
		OccurredAt:  event.OccurredAt.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("encode route event: %w", err)
	}
	msg := natsgo.NewMsg(SubjectPrefix + string(event.Type))
	msg.Data = data
	msg.Header.Set("Content-Type", "application/json")
	msg.Header.Set(natsgo.MsgIdHdr, fmt.Sprintf("%s:%s:%d", event.Type, event.RouteID, event.OccurredAt.UnixNano()))
	return msg, nil
}
