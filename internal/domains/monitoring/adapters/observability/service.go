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

	monitoringdomain "github.com/shroombros/shroom-api/internal/domains/monitoring/domain"
	monitoringports "github.com/shroombros/shroom-api/internal/domains/monitoring/ports"
)

const tracerName = "github.com/shroombros/shroom-api/internal/domains/monitoring/adapters/observability/service"

// Service decorates the monitoring service with tracing, logging, and metrics.
type Service struct {
	inner   monitoringports.Service
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

func New(inner monitoringports.Service, opts ...Option) monitoringports.Service {
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

func (s *Service) CreateProduct(ctx context.Context, input monitoringports.CreateProductInput) (*monitoringdomain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "MonitoringService.CreateProduct",
		trace.WithAttributes(attribute.String("product.name", input.Name)))
	defer span.End()

	result, err := s.inner.CreateProduct(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create product", slog.String("product.name", input.Name))
	}
	s.logInfo(ctx, "product created", slog.String("product.id", result.ID.String()))
	return result, nil
}

func (s *Service) ListProducts(ctx context.Context) ([]*monitoringdomain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "MonitoringService.ListProducts")
	defer span.End()

	result, err := s.inner.ListProducts(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list products")
	}
	span.SetAttributes(attribute.Int("products.count", len(result)))
	return result, nil
}

func (s *Service) CreateLot(ctx context.Context, input monitoringports.CreateLotInput) (*monitoringdomain.Lot, error) {
	ctx, span := s.tracer.Start(ctx, "MonitoringService.CreateLot",
		trace.WithAttributes(attribute.String("lot.code", input.Code), attribute.String("product.id", input.ProductID.String())))
	defer span.End()

	result, err := s.inner.CreateLot(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create lot", slog.String("lot.code", input.Code))
	}
	s.logInfo(ctx, "lot created", slog.String("lot.id", result.ID.String()), slog.String("lot.code", result.Code))
	return result, nil
}

func (s *Service) ListLots(ctx context.Context) ([]*monitoringdomain.Lot, error) {
	ctx, span := s.tracer.Start(ctx, "MonitoringService.ListLots")
	defer span.End()

	result, err := s.inner.ListLots(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list lots")
	}
	span.SetAttributes(attribute.Int("lots.count", len(result)))
	return result, nil
}

func (s *Service) IngestReading(ctx context.Context, raw monitoringdomain.RawReading) (*monitoringdomain.SensorReading, error) {
	ctx, span := s.tracer.Start(ctx, "MonitoringService.IngestReading")
	defer span.End()

	result, err := s.inner.IngestReading(ctx, raw)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to ingest reading")
	}
	span.SetAttributes(attribute.String("lot.id", result.LotID.String()))
	s.metrics.recordIngested(ctx)
	return result, nil
}

func (s *Service) AssessLot(ctx context.Context, lotID uuid.UUID) (*monitoringports.LotRisk, error) {
	ctx, span := s.tracer.Start(ctx, "MonitoringService.AssessLot", trace.WithAttributes(attribute.String("lot.id", lotID.String())))
	defer span.End()

	result, err := s.inner.AssessLot(ctx, lotID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to assess lot", slog.String("lot.id", lotID.String()))
	}
	span.SetAttributes(attribute.Int("risk.score", result.Assessment.Score))
	s.metrics.recordAssessed(ctx, 1)
	return result, nil
}

func (s *Service) AssessAll(ctx context.Context) ([]monitoringports.LotRisk, error) {
	ctx, span := s.tracer.Start(ctx, "MonitoringService.AssessAll")
	defer span.End()

	result, err := s.inner.AssessAll(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to assess lots")
	}
	span.SetAttributes(attribute.Int("lots.count", len(result)))
	s.metrics.recordAssessed(ctx, len(result))
	return result, nil
}

func (s *Service) ImportCatalog(ctx context.Context, entries []monitoringports.CatalogEntry) (*monitoringports.ImportResult, error) {
	ctx, span := s.tracer.Start(ctx, "MonitoringService.ImportCatalog", trace.WithAttributes(attribute.Int("catalog.entries", len(entries))))
	defer span.End()

	result, err := s.inner.ImportCatalog(ctx, entries)
	if err != nil {
		return result, s.handleError(ctx, span, err, "failed to import catalog")
	}
	s.logInfo(ctx, "catalog imported",
		slog.Int("products.created", result.ProductsCreated),
		slog.Int("products.skipped", result.ProductsSkipped),
		slog.Int("lots.created", result.LotsCreated),
		slog.Int("lots.skipped", result.LotsSkipped))
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
	readingsIngested metric.Int64Counter
	riskAssessed     metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	ingested, _ := m.Int64Counter("monitoring.service.readings_ingested", metric.WithDescription("Sensor readings accepted"))
	assessed, _ := m.Int64Counter("monitoring.service.risk_assessed", metric.WithDescription("Lot risk assessments computed"))
	return serviceMetrics{readingsIngested: ingested, riskAssessed: assessed}
}

func (m serviceMetrics) recordIngested(ctx context.Context) {
	if m.readingsIngested != nil {
		m.readingsIngested.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordAssessed(ctx context.Context, n int) {
	if m.riskAssessed != nil && n > 0 {
		m.riskAssessed.Add(ctx, int64(n))
	}
}

var _ monitoringports.Service = (*Service)(nil)
