package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/shroombros/shroom-api/internal/domains/monitoring/domain"
)

type CreateProductInput struct {
	Name  string
	Range *domain.IdealRange
}

type CreateLotInput struct {
	Code      string
	ProductID uuid.UUID
	StartedOn time.Time
	Notes     string
}

// LotRisk pairs a lot with its current assessment for the dashboard.
type LotRisk struct {
	Lot        *domain.Lot
	Product    *domain.Product
	Assessment domain.RiskAssessment
}

// CatalogEntry is one product of a seed file together with its lots.
type CatalogEntry struct {
	Product CreateProductInput
	Lots    []CreateLotInput
}

// ImportResult counts what a catalog import created.
type ImportResult struct {
	ProductsCreated int
	ProductsSkipped int
	LotsCreated     int
	LotsSkipped     int
}

// Service exposes the monitoring use cases.
type Service interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]*domain.Product, error)
	CreateLot(ctx context.Context, input CreateLotInput) (*domain.Lot, error)
	ListLots(ctx context.Context) ([]*domain.Lot, error)
	IngestReading(ctx context.Context, raw domain.RawReading) (*domain.SensorReading, error)
	AssessLot(ctx context.Context, lotID uuid.UUID) (*LotRisk, error)
	AssessAll(ctx context.Context) ([]LotRisk, error)
	ImportCatalog(ctx context.Context, entries []CatalogEntry) (*ImportResult, error)
}
