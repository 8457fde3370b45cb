package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	authapp "github.com/shroombros/shroom-api/internal/domains/auth/application"
	authdomain "github.com/shroombros/shroom-api/internal/domains/auth/domain"
	authports "github.com/shroombros/shroom-api/internal/domains/auth/ports"
)

const tracerName = "github.com/shroombros/shroom-api/internal/domains/auth/adapters/observability/service"

// Service decorates the auth service with tracing, logging, and metrics.
type Service struct {
	inner   authports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

func New(inner authports.Service, opts ...Option) authports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) CreateUser(ctx context.Context, input authports.CreateUserInput) (*authdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.CreateUser", trace.WithAttributes(attribute.String("user.role", string(input.Role))))
	defer span.End()

	result, err := s.inner.CreateUser(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create user")
	}
	s.logInfo(ctx, "user created", slog.String("user.id", result.ID.String()), slog.String("user.role", string(result.Role)))
	return result, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]*authdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.ListUsers")
	defer span.End()

	result, err := s.inner.ListUsers(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list users")
	}
	span.SetAttributes(attribute.Int("users.count", len(result)))
	return result, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*authports.LoginResult, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.Login")
	defer span.End()

	result, err := s.inner.Login(ctx, email, password)
	if err != nil {
		s.metrics.recordLogin(ctx, false)
		if errors.Is(err, authapp.ErrUnauthorized) {
			span.SetStatus(codes.Error, "invalid credentials")
			s.logWarn(ctx, "login rejected")
			return nil, err
		}
		return nil, s.handleError(ctx, span, err, "failed to log in")
	}
	s.metrics.recordLogin(ctx, true)
	span.SetAttributes(attribute.String("user.id", result.User.ID.String()))
	s.logInfo(ctx, "user logged in", slog.String("user.id", result.User.ID.String()))
	return result, nil
}

// Authenticate runs on every request, so it only traces failures that are not plain rejections.
func (s *Service) Authenticate(ctx context.Context, token string) (*authports.Principal, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.Authenticate")
	defer span.End()

	result, err := s.inner.Authenticate(ctx, token)
	if err != nil {
		if errors.Is(err, authapp.ErrUnauthorized) {
			span.SetStatus(codes.Error, "unauthorized")
			return nil, err
		}
		return nil, s.handleError(ctx, span, err, "failed to authenticate")
	}
	span.SetAttributes(attribute.String("user.id", result.User.ID.String()))
	return result, nil
}

func (s *Service) Logout(ctx context.Context, sessionID uuid.UUID) error {
	ctx, span := s.tracer.Start(ctx, "AuthService.Logout", trace.WithAttributes(attribute.String("session.id", sessionID.String())))
	defer span.End()

	if err := s.inner.Logout(ctx, sessionID); err != nil {
		return s.handleError(ctx, span, err, "failed to log out", slog.String("session.id", sessionID.String()))
	}
	s.logInfo(ctx, "session revoked", slog.String("session.id", sessionID.String()))
	return nil
}

func (s *Service) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.PurgeExpiredSessions")
	defer span.End()

	purged, err := s.inner.PurgeExpiredSessions(ctx)
	if err != nil {
		return 0, s.handleError(ctx, span, err, "failed to purge sessions")
	}
	span.SetAttributes(attribute.Int64("sessions.purged", purged))
	s.logInfo(ctx, "expired sessions purged", slog.Int64("sessions.purged", purged))
	return purged, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logWarn(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelWarn, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

type serviceMetrics struct {
	logins metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	logins, _ := m.Int64Counter("auth.service.logins", metric.WithDescription("Login attempts by outcome"))
	return serviceMetrics{logins: logins}
}

func (m serviceMetrics) recordLogin(ctx context.Context, ok bool) {
	if m.logins != nil {
		m.logins.Add(ctx, 1, metric.WithAttributes(attribute.Bool("login.success", ok)))
	}
}

var _ authports.Service = (*Service)(nil)
