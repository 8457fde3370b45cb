package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shroombros/shroom-api/internal/domains/auth/domain"
	"github.com/shroombros/shroom-api/internal/domains/auth/ports"
)

func TestJWTIssuer_RoundTrip(t *testing.T) {
	now := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)
	issuer, err := NewJWTIssuer("test-secret")
	require.NoError(t, err)
	issuer.WithClock(func() time.Time { return now.Add(time.Minute) })

	session := domain.NewSession(uuid.New(), now, time.Hour)
	raw, err := issuer.Issue(session)
	require.NoError(t, err)

	claims, err := issuer.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, session.ID, claims.SessionID)
	assert.Equal(t, session.UserID, claims.UserID)
	assert.True(t, claims.ExpiresAt.Equal(session.ExpiresAt))
}

func TestJWTIssuer_RejectsExpired(t *testing.T) {
	now := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)
	issuer, err := NewJWTIssuer("test-secret")
	require.NoError(t, err)
	issuer.WithClock(func() time.Time { return now.Add(2 * time.Hour) })

	raw, err := issuer.Issue(domain.NewSession(uuid.New(), now, time.Hour))
	require.NoError(t, err)

	_, err = issuer.Verify(raw)
	assert.ErrorIs(t, err, ports.ErrInvalidToken)
}

func TestJWTIssuer_RejectsForeignSignature(t *testing.T) {
	now := time.Now()
	issuer, err := NewJWTIssuer("test-secret")
	require.NoError(t, err)
	other, err := NewJWTIssuer("another-secret")
	require.NoError(t, err)

	raw, err := other.Issue(domain.NewSession(uuid.New(), now, time.Hour))
	require.NoError(t, err)
	_, err = issuer.Verify(raw)
	assert.ErrorIs(t, err, ports.ErrInvalidToken)
}

func TestJWTIssuer_RejectsUnsignedAndGarbage(t *testing.T) {
	issuer, err := NewJWTIssuer("test-secret")
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   uuid.NewString(),
		Issuer:    Issuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for _, raw := range []string{unsigned, "", "not-a-token"} {
		_, err := issuer.Verify(raw)
		assert.ErrorIs(t, err, ports.ErrInvalidToken)
	}
}

func TestNewJWTIssuer_RequiresSecret(t *testing.T) {
	_, err := NewJWTIssuer("")
	assert.ErrorIs(t, err, ErrEmptySecret)
}
