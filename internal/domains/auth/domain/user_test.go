package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser_HashesPassword(t *testing.T) {
	u, err := NewUser("  Ana@ShroomBros.com ", "Ana", "", "mycelium42")
	require.NoError(t, err)
	assert.Equal(t, "ana@shroombros.com", u.Email)
	assert.Equal(t, RoleStaff, u.Role)
	assert.True(t, u.Active)
	assert.NotContains(t, string(u.PasswordHash), "mycelium42")
	assert.True(t, u.CheckPassword("mycelium42"))
	assert.False(t, u.CheckPassword("mycelium43"))
	assert.False(t, u.CheckPassword(""))
}

func TestNewUser_Validation(t *testing.T) {
	cases := []struct {
		name     string
		email    string
		userName string
		role     Role
		password string
		want     error
	}{
		{"bad email", "ana", "Ana", RoleStaff, "mycelium42", ErrInvalidEmail},
		{"blank name", "ana@x.com", " ", RoleStaff, "mycelium42", ErrEmptyName},
		{"unknown role", "ana@x.com", "Ana", Role("owner"), "mycelium42", ErrInvalidRole},
		{"blank password", "ana@x.com", "Ana", RoleAdmin, "   ", ErrEmptyPassword},
		{"short password", "ana@x.com", "Ana", RoleAdmin, "spore", ErrWeakPassword},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewUser(tc.email, tc.userName, tc.role, tc.password)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestSession_Expired(t *testing.T) {
	now := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)
	s := NewSession(uuid.New(), now, time.Hour)
	assert.False(t, s.Expired(now))
	assert.False(t, s.Expired(now.Add(59*time.Minute)))
	assert.True(t, s.Expired(now.Add(time.Hour)))
}
