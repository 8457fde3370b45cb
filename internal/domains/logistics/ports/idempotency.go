package ports

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrIdempotencyConflict indicates the same key was used with a different route request.
var ErrIdempotencyConflict = errors.New("idempotency key reused with a different request")

// IdempotencyRecord associates a client-supplied key with the route it created.
type IdempotencyRecord struct {
	Key         string
	RequestHash string
	RouteID     uuid.UUID
	CreatedAt   time.Time
}

// IdempotencyStore persists route creation keys so retried requests replay the original route.
type IdempotencyStore interface {
	// Get returns the stored record for the key, or nil when unknown.
	Get(ctx context.Context, key string) (*IdempotencyRecord, error)
	// Save persists the record. When the key already exists the stored record is returned, together
	// with ErrIdempotencyConflict if it points at a different request or route.
	Save(ctx context.Context, record IdempotencyRecord) (*IdempotencyRecord, error)
}
