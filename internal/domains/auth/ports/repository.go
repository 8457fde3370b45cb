package ports

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/shroombros/shroom-api/internal/domains/auth/domain"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrSessionNotFound    = errors.New("session not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

type UserRepository interface {
	Save(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
}

// SessionStore abstracts session persistence.
type SessionStore interface {
	Save(ctx context.Context, session *domain.Session) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// PurgeExpired removes sessions expired at now and reports how many were removed.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// Claims is what a verified token asserts.
type Claims struct {
	SessionID uuid.UUID
	UserID    uuid.UUID
	ExpiresAt time.Time
}

// TokenIssuer signs and verifies bearer tokens.
type TokenIssuer interface {
	Issue(session *domain.Session) (string, error)
	Verify(token string) (*Claims, error)
}
