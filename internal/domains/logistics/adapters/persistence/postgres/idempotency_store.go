package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shroombros/shroom-api/internal/domains/logistics/ports"
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore persists route creation keys in PostgreSQL.
type IdempotencyStore struct {
	db *gorm.DB
}

func NewIdempotencyStore(db *gorm.DB) *IdempotencyStore {
	return &IdempotencyStore{db: db}
}

// IdempotencyRecord maps a route creation key.
type IdempotencyRecord struct {
	Key         string    `gorm:"primaryKey;column:key;size:255"`
	RequestHash string    `gorm:"column:request_hash;size:128;not null"`
	RouteID     uuid.UUID `gorm:"type:uuid;column:route_id;not null"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (IdempotencyRecord) TableName() string { return "route_idempotency_keys" }

func (s *IdempotencyStore) Get(ctx context.Context, key string) (*ports.IdempotencyRecord, error) {
	var record IdempotencyRecord
	if err := s.db.WithContext(ctx).First(&record, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toPortIdempotencyRecord(record), nil
}

// Save inserts the record. On a duplicate key the stored record is returned, with
// ErrIdempotencyConflict when it belongs to a different request.
func (s *IdempotencyStore) Save(ctx context.Context, record ports.IdempotencyRecord) (*ports.IdempotencyRecord, error) {
	row := IdempotencyRecord{
		Key:         record.Key,
		RequestHash: record.RequestHash,
		RouteID:     record.RouteID,
		CreatedAt:   record.CreatedAt,
	}
	err := s.db.WithContext(ctx).Create(&row).Error
	if err == nil {
		return toPortIdempotencyRecord(row), nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, err
	}
	existing, getErr := s.Get(ctx, record.Key)
	if getErr != nil {
		return nil, getErr
	}
	if existing == nil {
		return nil, err
	}
	if existing.RequestHash != record.RequestHash || existing.RouteID != record.RouteID {
		return existing, ports.ErrIdempotencyConflict
	}
	return existing, nil
}

func toPortIdempotencyRecord(row IdempotencyRecord) *ports.IdempotencyRecord {
	return &ports.IdempotencyRecord{
		Key:         row.Key,
		RequestHash: row.RequestHash,
		RouteID:     row.RouteID,
		CreatedAt:   row.CreatedAt,
	}
}
