//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shroombros/shroom-api/internal/domains/monitoring/domain"
	"github.com/shroombros/shroom-api/internal/domains/monitoring/ports"
	"github.com/shroombros/shroom-api/internal/platform/postgres/pgtest"
)

func seedLot(t *testing.T, repo *Repository, code string) *domain.Lot {
	t.Helper()
	ctx := context.Background()
	product, err := repo.FindProductByName(ctx, "Shiitake")
	if err != nil {
		require.ErrorIs(t, err, ports.ErrProductNotFound)
		product, err = domain.NewProduct("Shiitake", &domain.IdealRange{TempMin: 18, TempMax: 24, HumidMin: 80, HumidMax: 90})
		require.NoError(t, err)
		_, err = repo.SaveProduct(ctx, product)
		require.NoError(t, err)
	}
	lot, err := domain.NewLot(code, product.ID, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), "")
	require.NoError(t, err)
	_, err = repo.SaveLot(ctx, lot)
	require.NoError(t, err)
	return lot
}

func TestRepository_ProductsAndLots(t *testing.T) {
	repo := NewRepository(pgtest.Start(t))
	ctx := context.Background()
	lot := seedLot(t, repo, "shi-001")

	product, err := repo.FindProductByName(ctx, "SHIITAKE")
	require.NoError(t, err)
	require.NotNil(t, product.Range)
	assert.Equal(t, 24.0, product.Range.TempMax)

	fetched, err := repo.GetLot(ctx, lot.ID)
	require.NoError(t, err)
	assert.Equal(t, "SHI-001", fetched.Code)
	assert.Equal(t, product.ID, fetched.ProductID)
	assert.Equal(t, "2024-02-10", fetched.StartedOn.Format("2006-01-02"))

	duplicate, err := domain.NewLot("SHI-001", product.ID, time.Time{}, "")
	require.NoError(t, err)
	_, err = repo.SaveLot(ctx, duplicate)
	assert.ErrorIs(t, err, ports.ErrDuplicateLot)

	_, err = repo.GetProduct(ctx, uuid.New())
	assert.ErrorIs(t, err, ports.ErrProductNotFound)
	_, err = repo.GetLot(ctx, uuid.New())
	assert.ErrorIs(t, err, ports.ErrLotNotFound)
}

func TestRepository_LatestReadingByRecordedTime(t *testing.T) {
	repo := NewRepository(pgtest.Start(t))
	ctx := context.Background()
	lot := seedLot(t, repo, "SHI-002")

	latest, err := repo.LatestReading(ctx, lot.ID)
	require.NoError(t, err)
	assert.Nil(t, latest)

	base := time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC)
	newest := &domain.SensorReading{ID: uuid.New(), LotID: lot.ID, Temperature: 27, Humidity: 95, CO2: 2500,
		RecordedAt: base.Add(time.Hour), ReceivedAt: base.Add(time.Hour)}
	late := &domain.SensorReading{ID: uuid.New(), LotID: lot.ID, Temperature: 21, Humidity: 85, CO2: 800,
		RecordedAt: base, ReceivedAt: base.Add(2 * time.Hour)}
	require.NoError(t, repo.AppendReading(ctx, newest))
	require.NoError(t, repo.AppendReading(ctx, late))

	latest, err = repo.LatestReading(ctx, lot.ID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, newest.ID, latest.ID)
	assert.Equal(t, 2500.0, latest.CO2)
}

func TestRepository_ReadingForUnknownLot(t *testing.T) {
	repo := NewRepository(pgtest.Start(t))
	err := repo.AppendReading(context.Background(), &domain.SensorReading{
		LotID: uuid.New(), Temperature: 20, Humidity: 85, CO2: 900, RecordedAt: time.Now(), ReceivedAt: time.Now(),
	})
	assert.ErrorIs(t, err, ports.ErrLotNotFound)
}
