package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shroombros/shroom-api/internal/domains/monitoring/domain"
	"github.com/shroombros/shroom-api/internal/domains/monitoring/ports"
)

// Service implements catalog, ingestion and risk use cases.
type Service struct {
	repo   ports.Repository
	cache  ports.LatestReadingCache
	logger *slog.Logger
	now    func() time.Time
}

type Option func(*Service)

// WithCache puts a latest-reading cache in front of the repository.
func WithCache(cache ports.LatestReadingCache) Option {
	return func(s *Service) {
		if cache != nil {
			s.cache = cache
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

func NewService(repo ports.Repository, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		cache:  ports.NoopCache{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Service) CreateProduct(ctx context.Context, input ports.CreateProductInput) (*domain.Product, error) {
	product, err := domain.NewProduct(input.Name, input.Range)
	if err != nil {
		return nil, mapError(err)
	}
	product.CreatedAt = s.now()
	return s.repo.SaveProduct(ctx, product)
}

func (s *Service) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *Service) CreateLot(ctx context.Context, input ports.CreateLotInput) (*domain.Lot, error) {
	lot, err := domain.NewLot(input.Code, input.ProductID, input.StartedOn, input.Notes)
	if err != nil {
		return nil, mapError(err)
	}
	if _, err := s.repo.GetProduct(ctx, input.ProductID); err != nil {
		return nil, err
	}
	lot.CreatedAt = s.now()
	saved, err := s.repo.SaveLot(ctx, lot)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

func (s *Service) ListLots(ctx context.Context) ([]*domain.Lot, error) {
	return s.repo.ListLots(ctx)
}

// IngestReading normalises a raw sensor payload, appends it and refreshes the cache.
func (s *Service) IngestReading(ctx context.Context, raw domain.RawReading) (*domain.SensorReading, error) {
	reading, err := raw.Normalize(s.now())
	if err != nil {
		return nil, mapError(err)
	}
	if _, err := s.repo.GetLot(ctx, reading.LotID); err != nil {
		return nil, err
	}
	if err := s.repo.AppendReading(ctx, reading); err != nil {
		return nil, err
	}
	if err := s.cache.Put(ctx, reading); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "latest reading cache not updated",
			slog.String("lot.id", reading.LotID.String()), slog.String("error", err.Error()))
	}
	return reading, nil
}

// AssessLot scores the latest reading of one lot against its product range.
func (s *Service) AssessLot(ctx context.Context, lotID uuid.UUID) (*ports.LotRisk, error) {
	lot, err := s.repo.GetLot(ctx, lotID)
	if err != nil {
		return nil, err
	}
	products := map[uuid.UUID]*domain.Product{}
	risk, err := s.assess(ctx, lot, products)
	if err != nil {
		return nil, err
	}
	return &risk, nil
}

// AssessAll scores every lot. Lots without readings score zero.
func (s *Service) AssessAll(ctx context.Context) ([]ports.LotRisk, error) {
	lots, err := s.repo.ListLots(ctx)
	if err != nil {
		return nil, err
	}
	products := map[uuid.UUID]*domain.Product{}
	out := make([]ports.LotRisk, 0, len(lots))
	for _, lot := range lots {
		risk, err := s.assess(ctx, lot, products)
		if err != nil {
			return nil, err
		}
		out = append(out, risk)
	}
	return out, nil
}

// ImportCatalog creates the products and lots of a seed file, skipping ones that already exist.
func (s *Service) ImportCatalog(ctx context.Context, entries []ports.CatalogEntry) (*ports.ImportResult, error) {
	result := &ports.ImportResult{}
	for _, entry := range entries {
		product, err := s.repo.FindProductByName(ctx, entry.Product.Name)
		switch {
		case err == nil:
			result.ProductsSkipped++
		case errors.Is(err, ports.ErrProductNotFound):
			product, err = s.CreateProduct(ctx, entry.Product)
			if err != nil {
				return result, err
			}
			result.ProductsCreated++
		default:
			return result, err
		}
		for _, lotInput := range entry.Lots {
			lotInput.ProductID = product.ID
			if _, err := s.CreateLot(ctx, lotInput); err != nil {
				if errors.Is(err, ports.ErrDuplicateLot) {
					result.LotsSkipped++
					continue
				}
				return result, err
			}
			result.LotsCreated++
		}
	}
	return result, nil
}

func (s *Service) assess(ctx context.Context, lot *domain.Lot, products map[uuid.UUID]*domain.Product) (ports.LotRisk, error) {
	product, ok := products[lot.ProductID]
	if !ok {
		p, err := s.repo.GetProduct(ctx, lot.ProductID)
		if err != nil && !errors.Is(err, ports.ErrProductNotFound) {
			return ports.LotRisk{}, err
		}
		product = p
		products[lot.ProductID] = p
	}
	latest, err := s.latestReading(ctx, lot.ID)
	if err != nil {
		return ports.LotRisk{}, err
	}
	return ports.LotRisk{Lot: lot, Product: product, Assessment: domain.Assess(lot.ID, latest, product)}, nil
}

func (s *Service) latestReading(ctx context.Context, lotID uuid.UUID) (*domain.SensorReading, error) {
	cached, err := s.cache.Get(ctx, lotID)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "latest reading cache unavailable",
			slog.String("lot.id", lotID.String()), slog.String("error", err.Error()))
	}
	if cached != nil {
		return cached, nil
	}
	latest, err := s.repo.LatestReading(ctx, lotID)
	if err != nil || latest == nil {
		return latest, err
	}
	if err := s.cache.Put(ctx, latest); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "latest reading cache not warmed",
			slog.String("lot.id", lotID.String()), slog.String("error", err.Error()))
	}
	return latest, nil
}

var _ ports.Service = (*Service)(nil)
