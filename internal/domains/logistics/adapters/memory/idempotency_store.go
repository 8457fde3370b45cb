package memory

import (
	"context"
	"sync"
	"time"

	"github.com/shroombros/shroom-api/internal/domains/logistics/ports"
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore keeps route creation keys in memory for development and tests.
type IdempotencyStore struct {
	mu      sync.RWMutex
	records map[string]ports.IdempotencyRecord
	now     func() time.Time
}

func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{
		records: map[string]ports.IdempotencyRecord{},
		now:     time.Now,
	}
}

// Get returns the stored record for the key, or nil when absent.
func (s *IdempotencyStore) Get(_ context.Context, key string) (*ports.IdempotencyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[key]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

// Save stores the record unless the key is taken, in which case the existing record wins.
func (s *IdempotencyStore) Save(_ context.Context, record ports.IdempotencyRecord) (*ports.IdempotencyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.records[record.Key]; ok {
		if existing.RequestHash != record.RequestHash || existing.RouteID != record.RouteID {
			return &existing, ports.ErrIdempotencyConflict
		}
		return &existing, nil
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = s.now()
	}
	s.records[record.Key] = record
	return &record, nil
}
