package ports

import (
	"context"

	"github.com/shroombros/shroom-api/internal/domains/logistics/domain"
)

// EventPublisher broadcasts committed route lifecycle changes.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.RouteEvent) error
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, domain.RouteEvent) error { return nil }
