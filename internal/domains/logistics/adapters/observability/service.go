package observability

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	logisticsdomain "github.com/shroombros/shroom-api/internal/domains/logistics/domain"
	logisticsports "github.com/shroombros/shroom-api/internal/domains/logistics/ports"
)

const tracerName = "github.com/shroombros/shroom-api/internal/domains/logistics/adapters/observability/service"

// Service decorates the logistics service with tracing, logging, and metrics.
type Service struct {
	inner   logisticsports.Service
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

// New wraps the core logistics service.
func New(inner logisticsports.Service, opts ...Option) logisticsports.Service {
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

func (s *Service) Suggest(ctx context.Context) ([]logisticsdomain.Suggestion, error) {
	ctx, span := s.tracer.Start(ctx, "LogisticsService.Suggest")
	defer span.End()

	result, err := s.inner.Suggest(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to suggest routes")
	}
	span.SetAttributes(attribute.Int("suggestions.count", len(result)))
	return result, nil
}

func (s *Service) CreateRoute(ctx context.Context, input logisticsports.CreateRouteInput) (*logisticsdomain.Route, error) {
	ctx, span := s.tracer.Start(ctx, "LogisticsService.CreateRoute",
		trace.WithAttributes(
			attribute.String("driver.id", input.DriverID.String()),
			attribute.Int("route.orders", len(input.OrderIDs)),
			attribute.Bool("route.idempotent", input.IdempotencyKey != ""),
		))
	defer span.End()

	s.logInfo(ctx, "creating route", slog.String("driver.id", input.DriverID.String()), slog.Int("route.orders", len(input.OrderIDs)))
	result, err := s.inner.CreateRoute(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create route", slog.String("driver.id", input.DriverID.String()))
	}
	span.SetAttributes(attribute.String("route.code", result.Code))
	s.metrics.recordTransition(ctx, s.metrics.routesCreated)
	s.logInfo(ctx, "route created", slog.String("route.id", result.ID.String()), slog.String("route.code", result.Code))
	return result, nil
}

func (s *Service) GetRoute(ctx context.Context, id uuid.UUID) (*logisticsdomain.Route, error) {
	ctx, span := s.tracer.Start(ctx, "LogisticsService.GetRoute", trace.WithAttributes(attribute.String("route.id", id.String())))
	defer span.End()

	result, err := s.inner.GetRoute(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load route", slog.String("route.id", id.String()))
	}
	return result, nil
}

func (s *Service) ListRoutes(ctx context.Context, filter logisticsports.RouteFilter) ([]*logisticsdomain.Route, error) {
	ctx, span := s.tracer.Start(ctx, "LogisticsService.ListRoutes")
	defer span.End()

	if filter.Status != nil {
		span.SetAttributes(attribute.String("route.status", string(*filter.Status)))
	}
	if filter.DriverID != nil {
		span.SetAttributes(attribute.String("driver.id", filter.DriverID.String()))
	}
	result, err := s.inner.ListRoutes(ctx, filter)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list routes")
	}
	span.SetAttributes(attribute.Int("routes.count", len(result)))
	return result, nil
}

func (s *Service) StartRoute(ctx context.Context, id uuid.UUID) (*logisticsdomain.Route, error) {
	ctx, span := s.tracer.Start(ctx, "LogisticsService.StartRoute", trace.WithAttributes(attribute.String("route.id", id.String())))
	defer span.End()

	result, err := s.inner.StartRoute(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to start route", slog.String("route.id", id.String()))
	}
	s.metrics.recordTransition(ctx, s.metrics.routesStarted)
	s.logInfo(ctx, "route started", slog.String("route.code", result.Code), slog.Int("route.stops", len(result.Stops)))
	return result, nil
}

func (s *Service) FinishRoute(ctx context.Context, id uuid.UUID) (*logisticsports.FinishResult, error) {
	ctx, span := s.tracer.Start(ctx, "LogisticsService.FinishRoute", trace.WithAttributes(attribute.String("route.id", id.String())))
	defer span.End()

	result, err := s.inner.FinishRoute(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to finish route", slog.String("route.id", id.String()))
	}
	span.SetAttributes(attribute.Int("stops.undelivered", result.Undelivered))
	s.metrics.recordTransition(ctx, s.metrics.routesCompleted)
	s.logInfo(ctx, "route completed", slog.String("route.code", result.Route.Code), slog.Int("stops.undelivered", result.Undelivered))
	return result, nil
}

func (s *Service) CancelRoute(ctx context.Context, id uuid.UUID, reason string) (*logisticsdomain.Route, error) {
	ctx, span := s.tracer.Start(ctx, "LogisticsService.CancelRoute", trace.WithAttributes(attribute.String("route.id", id.String())))
	defer span.End()

	result, err := s.inner.CancelRoute(ctx, id, reason)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to cancel route", slog.String("route.id", id.String()))
	}
	s.metrics.recordTransition(ctx, s.metrics.routesCancelled)
	s.logInfo(ctx, "route cancelled", slog.String("route.code", result.Code), slog.String("reason", reason))
	return result, nil
}

func (s *Service) UpdateStop(ctx context.Context, routeID, stopID uuid.UUID, status logisticsdomain.StopStatus) (*logisticsdomain.Route, error) {
	ctx, span := s.tracer.Start(ctx, "LogisticsService.UpdateStop",
		trace.WithAttributes(
			attribute.String("route.id", routeID.String()),
			attribute.String("stop.id", stopID.String()),
			attribute.String("stop.status", string(status)),
		))
	defer span.End()

	result, err := s.inner.UpdateStop(ctx, routeID, stopID, status)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update stop",
			slog.String("route.id", routeID.String()), slog.String("stop.id", stopID.String()))
	}
	if status == logisticsdomain.StopStatusDelivered {
		s.metrics.recordTransition(ctx, s.metrics.stopsDelivered)
	}
	s.logInfo(ctx, "stop updated", slog.String("route.code", result.Code), slog.String("stop.id", stopID.String()), slog.String("stop.status", string(status)))
	return result, nil
}

func (s *Service) NotifyDriver(ctx context.Context, routeID uuid.UUID) error {
	ctx, span := s.tracer.Start(ctx, "LogisticsService.NotifyDriver", trace.WithAttributes(attribute.String("route.id", routeID.String())))
	defer span.End()

	if err := s.inner.NotifyDriver(ctx, routeID); err != nil {
		return s.handleError(ctx, span, err, "failed to notify driver", slog.String("route.id", routeID.String()))
	}
	s.logInfo(ctx, "driver notified", slog.String("route.id", routeID.String()))
	return nil
}

func (s *Service) CreateDriver(ctx context.Context, input logisticsports.CreateDriverInput) (*logisticsdomain.Driver, error) {
	ctx, span := s.tracer.Start(ctx, "LogisticsService.CreateDriver")
	defer span.End()

	result, err := s.inner.CreateDriver(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create driver", slog.String("driver.name", input.Name))
	}
	s.logInfo(ctx, "driver created", slog.String("driver.id", result.ID.String()))
	return result, nil
}

func (s *Service) GetDriver(ctx context.Context, id uuid.UUID) (*logisticsdomain.Driver, error) {
	ctx, span := s.tracer.Start(ctx, "LogisticsService.GetDriver", trace.WithAttributes(attribute.String("driver.id", id.String())))
	defer span.End()

	result, err := s.inner.GetDriver(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load driver", slog.String("driver.id", id.String()))
	}
	return result, nil
}

func (s *Service) ListDrivers(ctx context.Context) ([]*logisticsdomain.Driver, error) {
	ctx, span := s.tracer.Start(ctx, "LogisticsService.ListDrivers")
	defer span.End()

	result, err := s.inner.ListDrivers(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list drivers")
	}
	span.SetAttributes(attribute.Int("drivers.count", len(result)))
	return result, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
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
	routesCreated   metric.Int64Counter
	routesStarted   metric.Int64Counter
	routesCompleted metric.Int64Counter
	routesCancelled metric.Int64Counter
	stopsDelivered  metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	created, _ := m.Int64Counter("logistics.service.routes_created", metric.WithDescription("Number of routes created"))
	started, _ := m.Int64Counter("logistics.service.routes_started", metric.WithDescription("Number of routes started"))
	completed, _ := m.Int64Counter("logistics.service.routes_completed", metric.WithDescription("Number of routes completed"))
	cancelled, _ := m.Int64Counter("logistics.service.routes_cancelled", metric.WithDescription("Number of routes cancelled"))
	delivered, _ := m.Int64Counter("logistics.service.stops_delivered", metric.WithDescription("Number of stops delivered"))
	return serviceMetrics{
		routesCreated:   created,
		routesStarted:   started,
		routesCompleted: completed,
		routesCancelled: cancelled,
		stopsDelivered:  delivered,
	}
}

func (m serviceMetrics) recordTransition(ctx context.Context, counter metric.Int64Counter) {
	if counter != nil {
		counter.Add(ctx, 1)
	}
}

var _ logisticsports.Service = (*Service)(nil)
