package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shroombros/shroom-api/internal/domains/monitoring/domain"
	"github.com/shroombros/shroom-api/internal/domains/monitoring/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists products, lots and sensor readings in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle and migrations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ProductRecord stores a product. A NULL range means the default ideal range applies.
type ProductRecord struct {
	ID        uuid.UUID `gorm:"primaryKey;type:uuid;column:id"`
	Name      string    `gorm:"column:name;not null;uniqueIndex"`
	TempMin   *float64  `gorm:"column:temp_min"`
	TempMax   *float64  `gorm:"column:temp_max"`
	HumidMin  *float64  `gorm:"column:humid_min"`
	HumidMax  *float64  `gorm:"column:humid_max"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (ProductRecord) TableName() string { return "products" }

type LotRecord struct {
	ID        uuid.UUID `gorm:"primaryKey;type:uuid;column:id"`
	Code      string    `gorm:"column:code;not null;uniqueIndex"`
	ProductID uuid.UUID `gorm:"type:uuid;column:product_id;not null;index"`
	StartedOn time.Time `gorm:"column:started_on;type:date"`
	Notes     string    `gorm:"column:notes"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (LotRecord) TableName() string { return "lots" }

type SensorReadingRecord struct {
	ID          uuid.UUID `gorm:"primaryKey;type:uuid;column:id"`
	LotID       uuid.UUID `gorm:"type:uuid;column:lot_id;not null;index:idx_sensor_readings_lot_recorded,priority:1"`
	Temperature float64   `gorm:"column:temperature"`
	Humidity    float64   `gorm:"column:humidity"`
	CO2         float64   `gorm:"column:co2"`
	RecordedAt  time.Time `gorm:"column:recorded_at;index:idx_sensor_readings_lot_recorded,priority:2,sort:desc"`
	ReceivedAt  time.Time `gorm:"column:received_at"`
}

func (SensorReadingRecord) TableName() string { return "sensor_readings" }

func (r *Repository) SaveProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if product == nil {
		return nil, errors.New("product is nil")
	}
	record := productToRecord(product)
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "temp_min", "temp_max", "humid_min", "humid_max"}),
		}).Create(&record).Error; err != nil {
		return nil, err
	}
	return r.GetProduct(ctx, record.ID)
}

func (r *Repository) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record ProductRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrProductNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) FindProductByName(ctx context.Context, name string) (*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record ProductRecord
	if err := r.db.WithContext(ctx).First(&record, "LOWER(name) = LOWER(?)", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrProductNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []ProductRecord
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	products := make([]*domain.Product, 0, len(records))
	for i := range records {
		products = append(products, records[i].toDomain())
	}
	return products, nil
}

func (r *Repository) SaveLot(ctx context.Context, lot *domain.Lot) (*domain.Lot, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, errors.New("lot is nil")
	}
	record := lotToRecord(lot)
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"code", "product_id", "started_on", "notes"}),
		}).Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ports.ErrDuplicateLot
		}
		return nil, err
	}
	return r.GetLot(ctx, record.ID)
}

func (r *Repository) GetLot(ctx context.Context, id uuid.UUID) (*domain.Lot, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record LotRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrLotNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) ListLots(ctx context.Context) ([]*domain.Lot, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []LotRecord
	if err := r.db.WithContext(ctx).Order("code ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	lots := make([]*domain.Lot, 0, len(records))
	for i := range records {
		lots = append(lots, records[i].toDomain())
	}
	return lots, nil
}

func (r *Repository) AppendReading(ctx context.Context, reading *domain.SensorReading) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	if reading == nil {
		return errors.New("reading is nil")
	}
	record := SensorReadingRecord{
		ID:          reading.ID,
		LotID:       reading.LotID,
		Temperature: reading.Temperature,
		Humidity:    reading.Humidity,
		CO2:         reading.CO2,
		RecordedAt:  reading.RecordedAt,
		ReceivedAt:  reading.ReceivedAt,
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return ports.ErrLotNotFound
		}
		return err
	}
	return nil
}

func (r *Repository) LatestReading(ctx context.Context, lotID uuid.UUID) (*domain.SensorReading, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []SensorReadingRecord
	if err := r.db.WithContext(ctx).
		Where("lot_id = ?", lotID).
		Order("recorded_at DESC, received_at DESC").
		Limit(1).
		Find(&records).Error; err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	rec := records[0]
	return &domain.SensorReading{
		ID:          rec.ID,
		LotID:       rec.LotID,
		Temperature: rec.Temperature,
		Humidity:    rec.Humidity,
		CO2:         rec.CO2,
		RecordedAt:  rec.RecordedAt,
		ReceivedAt:  rec.ReceivedAt,
	}, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres monitoring repository not configured")
	}
	return nil
}

func productToRecord(p *domain.Product) ProductRecord {
	record := ProductRecord{ID: p.ID, Name: p.Name, CreatedAt: p.CreatedAt}
	if p.Range != nil {
		r := *p.Range
		record.TempMin, record.TempMax = &r.TempMin, &r.TempMax
		record.HumidMin, record.HumidMax = &r.HumidMin, &r.HumidMax
	}
	return record
}

func (r ProductRecord) toDomain() *domain.Product {
	p := &domain.Product{ID: r.ID, Name: r.Name, CreatedAt: r.CreatedAt}
	if r.TempMin != nil && r.TempMax != nil && r.HumidMin != nil && r.HumidMax != nil {
		p.Range = &domain.IdealRange{TempMin: *r.TempMin, TempMax: *r.TempMax, HumidMin: *r.HumidMin, HumidMax: *r.HumidMax}
	}
	return p
}

func lotToRecord(l *domain.Lot) LotRecord {
	return LotRecord{
		ID:        l.ID,
		Code:      l.Code,
		ProductID: l.ProductID,
		StartedOn: l.StartedOn,
		Notes:     l.Notes,
		CreatedAt: l.CreatedAt,
	}
}

func (r LotRecord) toDomain() *domain.Lot {
	return &domain.Lot{
		ID:        r.ID,
		Code:      r.Code,
		ProductID: r.ProductID,
		StartedOn: r.StartedOn,
		Notes:     r.Notes,
		CreatedAt: r.CreatedAt,
	}
}
