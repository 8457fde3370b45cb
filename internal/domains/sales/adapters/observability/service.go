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

	salesdomain "github.com/shroombros/shroom-api/internal/domains/sales/domain"
	salesports "github.com/shroombros/shroom-api/internal/domains/sales/ports"
)

const tracerName = "github.com/shroombros/shroom-api/internal/domains/sales/adapters/observability/service"

// Service decorates the sales service with tracing, logging, and metrics.
type Service struct {
	inner   salesports.Service
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

// New wraps the core sales service.
func New(inner salesports.Service, opts ...Option) salesports.Service {
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

func (s *Service) CreateCustomer(ctx context.Context, input salesports.CreateCustomerInput) (*salesdomain.Customer, error) {
	ctx, span := s.tracer.Start(ctx, "SalesService.CreateCustomer",
		trace.WithAttributes(attribute.String("customer.city", input.City)))
	defer span.End()

	result, err := s.inner.CreateCustomer(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create customer", slog.String("customer.name", input.Name))
	}
	s.logInfo(ctx, "customer created", slog.String("customer.id", result.ID.String()))
	return result, nil
}

func (s *Service) ListCustomers(ctx context.Context) ([]*salesdomain.Customer, error) {
	ctx, span := s.tracer.Start(ctx, "SalesService.ListCustomers")
	defer span.End()

	result, err := s.inner.ListCustomers(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list customers")
	}
	span.SetAttributes(attribute.Int("customers.count", len(result)))
	return result, nil
}

func (s *Service) PlaceOrder(ctx context.Context, input salesports.PlaceOrderInput) (*salesdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "SalesService.PlaceOrder",
		trace.WithAttributes(attribute.String("customer.id", input.CustomerID.String())))
	defer span.End()

	s.logInfo(ctx, "placing order", slog.String("customer.id", input.CustomerID.String()), slog.String("order.total", input.Total.StringFixed(2)))
	result, err := s.inner.PlaceOrder(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to place order", slog.String("customer.id", input.CustomerID.String()))
	}
	s.metrics.recordPlaced(ctx)
	s.logInfo(ctx, "order placed", slog.String("order.id", result.ID.String()))
	return result, nil
}

func (s *Service) GetOrder(ctx context.Context, id uuid.UUID) (*salesdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "SalesService.GetOrder", trace.WithAttributes(attribute.String("order.id", id.String())))
	defer span.End()

	result, err := s.inner.GetOrder(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order", slog.String("order.id", id.String()))
	}
	return result, nil
}

func (s *Service) ListOrders(ctx context.Context, filter salesports.OrderFilter) ([]*salesdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "SalesService.ListOrders")
	defer span.End()

	if filter.Status != nil {
		span.SetAttributes(attribute.String("order.status", string(*filter.Status)))
	}
	result, err := s.inner.ListOrders(ctx, filter)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list orders")
	}
	span.SetAttributes(attribute.Int("orders.count", len(result)))
	return result, nil
}

func (s *Service) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status salesdomain.Status) (*salesdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "SalesService.UpdateOrderStatus",
		trace.WithAttributes(attribute.String("order.id", id.String()), attribute.String("order.status", string(status))))
	defer span.End()

	result, err := s.inner.UpdateOrderStatus(ctx, id, status)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update order status",
			slog.String("order.id", id.String()), slog.String("order.status", string(status)))
	}
	s.metrics.recordTransition(ctx, result.Status)
	s.logInfo(ctx, "order status updated", slog.String("order.id", id.String()), slog.String("order.status", string(result.Status)))
	return result, nil
}

func (s *Service) Summary(ctx context.Context) (*salesports.Summary, error) {
	ctx, span := s.tracer.Start(ctx, "SalesService.Summary")
	defer span.End()

	result, err := s.inner.Summary(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to summarise sales")
	}
	span.SetAttributes(attribute.Int("orders.count", result.Orders))
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
	ordersPlaced     metric.Int64Counter
	orderTransitions metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	ordersPlaced, _ := m.Int64Counter("sales.service.orders_placed", metric.WithDescription("Number of orders placed"))
	transitions, _ := m.Int64Counter("sales.service.order_transitions", metric.WithDescription("Manual order status changes"))
	return serviceMetrics{ordersPlaced: ordersPlaced, orderTransitions: transitions}
}

func (m serviceMetrics) recordPlaced(ctx context.Context) {
	if m.ordersPlaced != nil {
		m.ordersPlaced.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordTransition(ctx context.Context, status salesdomain.Status) {
	if m.orderTransitions != nil {
		m.orderTransitions.Add(ctx, 1, metric.WithAttributes(attribute.String("order.status", string(status))))
	}
}

var _ salesports.Service = (*Service)(nil)
