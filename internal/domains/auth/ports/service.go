package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/shroombros/shroom-api/internal/domains/auth/domain"
)

type CreateUserInput struct {
	Email    string
	Name     string
	Role     domain.Role
	Password string
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// Principal is the caller resolved from a bearer token.
type Principal struct {
	User      *domain.User
	SessionID uuid.UUID
}

// Service exposes the auth use cases to adapters.
type Service interface {
	CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Authenticate(ctx context.Context, token string) (*Principal, error)
	Logout(ctx context.Context, sessionID uuid.UUID) error
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}
