package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shroombros/shroom-api/internal/domains/auth/domain"
	"github.com/shroombros/shroom-api/internal/domains/auth/ports"
)

func TestSessionStore_PurgeExpired(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()
	now := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)

	expired := domain.NewSession(uuid.New(), now.Add(-2*time.Hour), time.Hour)
	live := domain.NewSession(uuid.New(), now, time.Hour)
	require.NoError(t, store.Save(ctx, expired))
	require.NoError(t, store.Save(ctx, live))

	purged, err := store.PurgeExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	_, err = store.Get(ctx, expired.ID)
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)
	got, err := store.Get(ctx, live.ID)
	require.NoError(t, err)
	assert.Equal(t, live.UserID, got.UserID)
}

func TestUserRepository_UniqueEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	ana, err := domain.NewUser("ana@shroombros.com", "Ana", domain.RoleAdmin, "mycelium42")
	require.NoError(t, err)
	_, err = repo.Save(ctx, ana)
	require.NoError(t, err)

	impostor, err := domain.NewUser("ANA@shroombros.com", "Other", domain.RoleStaff, "mycelium42")
	require.NoError(t, err)
	_, err = repo.Save(ctx, impostor)
	assert.ErrorIs(t, err, ports.ErrDuplicateEmail)

	got, err := repo.GetByEmail(ctx, " Ana@ShroomBros.com")
	require.NoError(t, err)
	assert.Equal(t, ana.ID, got.ID)

	ana.Email = "ana.b@shroombros.com"
	_, err = repo.Save(ctx, ana)
	require.NoError(t, err)
	_, err = repo.GetByEmail(ctx, "ana@shroombros.com")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}
