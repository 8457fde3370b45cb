package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shroombros/shroom-api/internal/domains/logistics/ports"
)

func TestIdempotencyStore_SaveKeepsFirstRecord(t *testing.T) {
	ctx := context.Background()
	store := NewIdempotencyStore()
	stamp := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return stamp }
	routeID := uuid.New()

	saved, err := store.Save(ctx, ports.IdempotencyRecord{Key: "k", RequestHash: "h", RouteID: routeID})
	require.NoError(t, err)
	assert.Equal(t, stamp, saved.CreatedAt)

	again, err := store.Save(ctx, ports.IdempotencyRecord{Key: "k", RequestHash: "h", RouteID: routeID})
	require.NoError(t, err)
	assert.Equal(t, saved, again)

	existing, err := store.Save(ctx, ports.IdempotencyRecord{Key: "k", RequestHash: "other", RouteID: uuid.New()})
	assert.ErrorIs(t, err, ports.ErrIdempotencyConflict)
	assert.Equal(t, routeID, existing.RouteID)

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "h", got.RequestHash)
	missing, err := store.Get(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
