package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session backs one issued bearer token. Deleting it revokes the token.
type Session struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	CreatedAt time.Time
	ExpiresAt time.Time
}

func NewSession(userID uuid.UUID, now time.Time, ttl time.Duration) *Session {
	return &Session{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// Expired reports whether the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
