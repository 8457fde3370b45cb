package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shroombros/shroom-api/internal/domains/monitoring/adapters/memory"
	"github.com/shroombros/shroom-api/internal/domains/monitoring/domain"
	"github.com/shroombros/shroom-api/internal/domains/monitoring/ports"
)

type mapCache struct {
	mu       sync.Mutex
	readings map[uuid.UUID]domain.SensorReading
	gets     int
	hits     int
	failGet  bool
}

func newMapCache() *mapCache {
	return &mapCache{readings: map[uuid.UUID]domain.SensorReading{}}
}

func (c *mapCache) Get(_ context.Context, lotID uuid.UUID) (*domain.SensorReading, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.failGet {
		return nil, errors.New("cache down")
	}
	r, ok := c.readings[lotID]
	if !ok {
		return nil, nil
	}
	c.hits++
	return &r, nil
}

func (c *mapCache) Put(_ context.Context, reading *domain.SensorReading) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	current, ok := c.readings[reading.LotID]
	if ok && !reading.NewerThan(&current) {
		return nil
	}
	c.readings[reading.LotID] = *reading
	return nil
}

var testNow = time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, opts ...Option) (*Service, *memory.Repository, *domain.Lot) {
	t.Helper()
	repo := memory.NewRepository()
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	svc := NewService(repo, opts...)
	product, err := svc.CreateProduct(context.Background(), ports.CreateProductInput{Name: "Shiitake"})
	require.NoError(t, err)
	lot, err := svc.CreateLot(context.Background(), ports.CreateLotInput{Code: "shi-001", ProductID: product.ID})
	require.NoError(t, err)
	return svc, repo, lot
}

func TestCreateLot_NormalisesCodeAndRejectsDuplicates(t *testing.T) {
	svc, _, lot := newTestService(t)
	assert.Equal(t, "SHI-001", lot.Code)
	assert.Equal(t, testNow, lot.CreatedAt)

	_, err := svc.CreateLot(context.Background(), ports.CreateLotInput{Code: "SHI-001", ProductID: lot.ProductID})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflict)
	assert.ErrorIs(t, err, ports.ErrDuplicateLot)
}

func TestCreateLot_UnknownProduct(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.CreateLot(context.Background(), ports.CreateLotInput{Code: "X-1", ProductID: uuid.New()})
	assert.ErrorIs(t, err, ports.ErrProductNotFound)
}

func TestCreateProduct_InvalidRange(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.CreateProduct(context.Background(), ports.CreateProductInput{
		Name:  "Enoki",
		Range: &domain.IdealRange{TempMin: 30, TempMax: 10, HumidMin: 80, HumidMax: 90},
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, domain.ErrInvalidRange)
}

func TestIngestThenAssess_ScoresLatestReading(t *testing.T) {
	svc, _, lot := newTestService(t)
	ctx := context.Background()

	_, err := svc.IngestReading(ctx, domain.RawReading{
		LotID: lot.ID, Temperature: 22.0, Humidity: 85.0, CO2: 800.0, Timestamp: int64(1709632800),
	})
	require.NoError(t, err)
	reading, err := svc.IngestReading(ctx, domain.RawReading{
		LotID: lot.ID, Temperature: "18", Humidity: "85", CO2: "1600", Timestamp: int64(1709636400000),
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 5, 11, 0, 0, 0, time.UTC), reading.RecordedAt)
	assert.Equal(t, testNow, reading.ReceivedAt)

	risk, err := svc.AssessLot(ctx, lot.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, risk.Assessment.Score)
	assert.Equal(t, []string{"Temperature below ideal (18°C)", "CO2 elevated (1600 ppm)"}, risk.Assessment.Alerts)
	require.NotNil(t, risk.Assessment.Reading)
	assert.Equal(t, reading.ID, risk.Assessment.Reading.ID)
}

func TestIngestReading_OutOfOrderKeepsNewest(t *testing.T) {
	svc, _, lot := newTestService(t)
	ctx := context.Background()

	_, err := svc.IngestReading(ctx, domain.RawReading{LotID: lot.ID, Temperature: 30.0, Humidity: 85.0, CO2: 800.0, Timestamp: "2024-03-05T11:00:00Z"})
	require.NoError(t, err)
	_, err = svc.IngestReading(ctx, domain.RawReading{LotID: lot.ID, Temperature: 22.0, Humidity: 85.0, CO2: 800.0, Timestamp: "2024-03-05T10:00:00Z"})
	require.NoError(t, err)

	risk, err := svc.AssessLot(ctx, lot.ID)
	require.NoError(t, err)
	assert.Equal(t, 25, risk.Assessment.Score)
}

func TestIngestReading_Rejections(t *testing.T) {
	svc, _, lot := newTestService(t)
	ctx := context.Background()

	_, err := svc.IngestReading(ctx, domain.RawReading{LotID: lot.ID, Temperature: "warm", Humidity: 85.0, CO2: 800.0})
	assert.ErrorIs(t, err, ErrInvalidInput)
	var parseErr *domain.ParseError
	assert.ErrorAs(t, err, &parseErr)

	_, err = svc.IngestReading(ctx, domain.RawReading{Temperature: 20.0, Humidity: 85.0, CO2: 800.0})
	assert.ErrorIs(t, err, domain.ErrMissingLot)

	_, err = svc.IngestReading(ctx, domain.RawReading{LotID: uuid.New(), Temperature: 20.0, Humidity: 85.0, CO2: 800.0})
	assert.ErrorIs(t, err, ports.ErrLotNotFound)
}

func TestAssessAll_LotWithoutReadingsScoresZero(t *testing.T) {
	svc, _, lot := newTestService(t)
	ctx := context.Background()
	quiet, err := svc.CreateLot(ctx, ports.CreateLotInput{Code: "SHI-002", ProductID: lot.ProductID})
	require.NoError(t, err)
	_, err = svc.IngestReading(ctx, domain.RawReading{LotID: lot.ID, Temperature: 27.0, Humidity: 95.0, CO2: 2500.0})
	require.NoError(t, err)

	risks, err := svc.AssessAll(ctx)
	require.NoError(t, err)
	require.Len(t, risks, 2)
	assert.Equal(t, lot.ID, risks[0].Lot.ID)
	assert.Equal(t, 80, risks[0].Assessment.Score)
	assert.Equal(t, quiet.ID, risks[1].Lot.ID)
	assert.Equal(t, 0, risks[1].Assessment.Score)
	assert.Empty(t, risks[1].Assessment.Alerts)
	assert.Nil(t, risks[1].Assessment.Reading)
}

func TestAssessLot_UsesProductRange(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	product, err := svc.CreateProduct(ctx, ports.CreateProductInput{
		Name:  "Enoki",
		Range: &domain.IdealRange{TempMin: 10, TempMax: 15, HumidMin: 85, HumidMax: 95},
	})
	require.NoError(t, err)
	lot, err := svc.CreateLot(ctx, ports.CreateLotInput{Code: "ENO-1", ProductID: product.ID})
	require.NoError(t, err)
	_, err = svc.IngestReading(ctx, domain.RawReading{LotID: lot.ID, Temperature: 12.0, Humidity: 90.0, CO2: 900.0})
	require.NoError(t, err)

	risk, err := svc.AssessLot(ctx, lot.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, risk.Assessment.Score)
}

func TestAssessLot_CacheHitAndWarmup(t *testing.T) {
	cache := newMapCache()
	svc, repo, lot := newTestService(t, WithCache(cache))
	ctx := context.Background()

	require.NoError(t, repo.AppendReading(ctx, &domain.SensorReading{
		ID: uuid.New(), LotID: lot.ID, Temperature: 22, Humidity: 85, CO2: 1300,
		RecordedAt: testNow.Add(-time.Hour), ReceivedAt: testNow,
	}))

	first, err := svc.AssessLot(ctx, lot.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, first.Assessment.Score)
	assert.Equal(t, 0, cache.hits)

	second, err := svc.AssessLot(ctx, lot.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, second.Assessment.Score)
	assert.Equal(t, 1, cache.hits)
}

func TestAssessLot_CacheFailureFallsBackToRepository(t *testing.T) {
	cache := newMapCache()
	cache.failGet = true
	svc, _, lot := newTestService(t, WithCache(cache))
	ctx := context.Background()

	_, err := svc.IngestReading(ctx, domain.RawReading{LotID: lot.ID, Temperature: 22.0, Humidity: 70.0, CO2: 900.0})
	require.NoError(t, err)

	risk, err := svc.AssessLot(ctx, lot.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, risk.Assessment.Score)
}

func TestImportCatalog_SkipsExisting(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	entries := []ports.CatalogEntry{
		{
			Product: ports.CreateProductInput{Name: "shiitake"},
			Lots:    []ports.CreateLotInput{{Code: "SHI-001"}, {Code: "SHI-003"}},
		},
		{
			Product: ports.CreateProductInput{Name: "Oyster", Range: &domain.IdealRange{TempMin: 18, TempMax: 24, HumidMin: 85, HumidMax: 95}},
			Lots:    []ports.CreateLotInput{{Code: "OYS-001", StartedOn: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)}},
		},
	}

	result, err := svc.ImportCatalog(ctx, entries)
	require.NoError(t, err)
	assert.Equal(t, ports.ImportResult{ProductsCreated: 1, ProductsSkipped: 1, LotsCreated: 2, LotsSkipped: 1}, *result)

	again, err := svc.ImportCatalog(ctx, entries)
	require.NoError(t, err)
	assert.Equal(t, ports.ImportResult{ProductsSkipped: 2, LotsSkipped: 3}, *again)

	lots, err := svc.ListLots(ctx)
	require.NoError(t, err)
	assert.Len(t, lots, 3)
}

func TestImportCatalog_StopsOnInvalidLot(t *testing.T) {
	svc, _, _ := newTestService(t)
	result, err := svc.ImportCatalog(context.Background(), []ports.CatalogEntry{
		{Product: ports.CreateProductInput{Name: "Lion's Mane"}, Lots: []ports.CreateLotInput{{Code: "  "}}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, 1, result.ProductsCreated)
}
