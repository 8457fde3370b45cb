package ports

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/shroombros/shroom-api/internal/domains/monitoring/domain"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrLotNotFound     = errors.New("lot not found")
	ErrDuplicateLot    = errors.New("lot code already exists")
)

// Repository persists the catalog and the append-only reading log.
type Repository interface {
	SaveProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	FindProductByName(ctx context.Context, name string) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]*domain.Product, error)

	SaveLot(ctx context.Context, lot *domain.Lot) (*domain.Lot, error)
	GetLot(ctx context.Context, id uuid.UUID) (*domain.Lot, error)
	ListLots(ctx context.Context) ([]*domain.Lot, error)

	AppendReading(ctx context.Context, reading *domain.SensorReading) error
	// LatestReading returns nil without error when the lot has no readings.
	LatestReading(ctx context.Context, lotID uuid.UUID) (*domain.SensorReading, error)
}

// LatestReadingCache keeps the newest reading per lot close at hand.
type LatestReadingCache interface {
	// Get returns nil without error on a miss.
	Get(ctx context.Context, lotID uuid.UUID) (*domain.SensorReading, error)
	// Put stores the reading unless a newer one is already cached.
	Put(ctx context.Context, reading *domain.SensorReading) error
}

// NoopCache never hits.
type NoopCache struct{}

func (NoopCache) Get(context.Context, uuid.UUID) (*domain.SensorReading, error) { return nil, nil }
func (NoopCache) Put(context.Context, *domain.SensorReading) error              { return nil }
