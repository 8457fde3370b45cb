//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shroombros/shroom-api/internal/domains/auth/domain"
	"github.com/shroombros/shroom-api/internal/domains/auth/ports"
	"github.com/shroombros/shroom-api/internal/platform/postgres/pgtest"
)

func TestUserRepository_SaveAndLookup(t *testing.T) {
	db := pgtest.Start(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user, err := domain.NewUser("Grower@ShroomBros.com", "Grower", domain.RoleStaff, "mycelium42")
	require.NoError(t, err)
	user.CreatedAt = time.Now().UTC()
	_, err = repo.Save(ctx, user)
	require.NoError(t, err)

	fetched, err := repo.GetByEmail(ctx, "grower@shroombros.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, fetched.ID)
	assert.True(t, fetched.CheckPassword("mycelium42"))
	assert.True(t, fetched.Active)

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStaff, byID.Role)

	clash, err := domain.NewUser("grower@shroombros.com", "Other", domain.RoleAdmin, "different1")
	require.NoError(t, err)
	_, err = repo.Save(ctx, clash)
	assert.ErrorIs(t, err, ports.ErrDuplicateEmail)

	_, err = repo.GetByEmail(ctx, "nobody@shroombros.com")
	assert.ErrorIs(t, err, ports.ErrNotFound)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSessionStore_PurgeExpired(t *testing.T) {
	db := pgtest.Start(t)
	users := NewUserRepository(db)
	sessions := NewSessionStore(db)
	ctx := context.Background()

	user, err := domain.NewUser("ops@shroombros.com", "Ops", domain.RoleAdmin, "mycelium42")
	require.NoError(t, err)
	_, err = users.Save(ctx, user)
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Second)
	expired := domain.NewSession(user.ID, now.Add(-2*time.Hour), time.Hour)
	live := domain.NewSession(user.ID, now, time.Hour)
	require.NoError(t, sessions.Save(ctx, expired))
	require.NoError(t, sessions.Save(ctx, live))

	purged, err := sessions.PurgeExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	_, err = sessions.Get(ctx, expired.ID)
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)
	fetched, err := sessions.Get(ctx, live.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, fetched.UserID)

	require.NoError(t, sessions.Delete(ctx, live.ID))
	_, err = sessions.Get(ctx, live.ID)
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)
}

func TestSessionStore_RequiresKnownUser(t *testing.T) {
	sessions := NewSessionStore(pgtest.Start(t))
	err := sessions.Save(context.Background(), domain.NewSession(uuid.New(), time.Now(), time.Hour))
	assert.Error(t, err)
}
