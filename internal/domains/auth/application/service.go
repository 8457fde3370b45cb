package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shroombros/shroom-api/internal/domains/auth/domain"
	"github.com/shroombros/shroom-api/internal/domains/auth/ports"
)

// DefaultSessionTTL applies when no TTL is configured.
const DefaultSessionTTL = 12 * time.Hour

// Service implements login, token verification and session housekeeping.
type Service struct {
	users      ports.UserRepository
	sessions   ports.SessionStore
	tokens     ports.TokenIssuer
	sessionTTL time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

type Option func(*Service)

func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(users ports.UserRepository, sessions ports.SessionStore, tokens ports.TokenIssuer, opts ...Option) *Service {
	s := &Service{
		users:      users,
		sessions:   sessions,
		tokens:     tokens,
		sessionTTL: DefaultSessionTTL,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Service) CreateUser(ctx context.Context, input ports.CreateUserInput) (*domain.User, error) {
	user, err := domain.NewUser(input.Email, input.Name, input.Role, input.Password)
	if err != nil {
		return nil, mapError(err)
	}
	if _, err := s.users.GetByEmail(ctx, user.Email); err == nil {
		return nil, mapError(ports.ErrDuplicateEmail)
	} else if !errors.Is(err, ports.ErrNotFound) {
		return nil, err
	}
	user.CreatedAt = s.now()
	saved, err := s.users.Save(ctx, user)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.users.List(ctx)
}

// Login checks credentials and opens a session. Unknown emails and wrong passwords fail alike.
func (s *Service) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, mapError(ports.ErrInvalidCredentials)
		}
		return nil, err
	}
	if !user.Active || !user.CheckPassword(password) {
		return nil, mapError(ports.ErrInvalidCredentials)
	}
	session := domain.NewSession(user.ID, s.now(), s.sessionTTL)
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	token, err := s.tokens.Issue(session)
	if err != nil {
		return nil, err
	}
	return &ports.LoginResult{Token: token, ExpiresAt: session.ExpiresAt, User: user}, nil
}

// Authenticate resolves a bearer token to its user. The session must still exist and be unexpired.
func (s *Service) Authenticate(ctx context.Context, token string) (*ports.Principal, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, mapError(ports.ErrInvalidToken)
	}
	session, err := s.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, ports.ErrSessionNotFound) {
			return nil, mapError(ports.ErrInvalidToken)
		}
		return nil, err
	}
	if session.UserID != claims.UserID {
		return nil, mapError(ports.ErrInvalidToken)
	}
	if session.Expired(s.now()) {
		if err := s.sessions.Delete(ctx, session.ID); err != nil {
			s.logger.LogAttrs(ctx, slog.LevelWarn, "expired session not removed",
				slog.String("session.id", session.ID.String()), slog.String("error", err.Error()))
		}
		return nil, mapError(ports.ErrInvalidToken)
	}
	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, mapError(ports.ErrInvalidToken)
		}
		return nil, err
	}
	if !user.Active {
		return nil, mapError(ports.ErrInvalidToken)
	}
	return &ports.Principal{User: user, SessionID: session.ID}, nil
}

// Logout revokes a session. Unknown sessions are ignored.
func (s *Service) Logout(ctx context.Context, sessionID uuid.UUID) error {
	if sessionID == uuid.Nil {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil && !errors.Is(err, ports.ErrSessionNotFound) {
		return err
	}
	return nil
}

func (s *Service) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.sessions.PurgeExpired(ctx, s.now())
}

var _ ports.Service = (*Service)(nil)
