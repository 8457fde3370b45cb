package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/shroombros/shroom-api/internal/domains/monitoring/domain"
	"github.com/shroombros/shroom-api/internal/domains/monitoring/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory catalog and reading log.
type Repository struct {
	mu       sync.RWMutex
	products map[uuid.UUID]*domain.Product
	lots     map[uuid.UUID]*domain.Lot
	readings map[uuid.UUID][]domain.SensorReading
}

func NewRepository() *Repository {
	return &Repository{
		products: map[uuid.UUID]*domain.Product{},
		lots:     map[uuid.UUID]*domain.Lot{},
		readings: map[uuid.UUID][]domain.SensorReading{},
	}
}

func (r *Repository) SaveProduct(_ context.Context, product *domain.Product) (*domain.Product, error) {
	if product == nil {
		return nil, errors.New("product is nil")
	}
	clone := cloneProduct(product)
	if clone.ID == uuid.Nil {
		clone.ID = uuid.New()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[clone.ID] = clone
	return cloneProduct(clone), nil
}

func (r *Repository) GetProduct(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	product, ok := r.products[id]
	if !ok {
		return nil, ports.ErrProductNotFound
	}
	return cloneProduct(product), nil
}

func (r *Repository) FindProductByName(_ context.Context, name string) (*domain.Product, error) {
	name = strings.TrimSpace(name)
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, product := range r.products {
		if strings.EqualFold(product.Name, name) {
			return cloneProduct(product), nil
		}
	}
	return nil, ports.ErrProductNotFound
}

func (r *Repository) ListProducts(_ context.Context) ([]*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Product, 0, len(r.products))
	for _, product := range r.products {
		list = append(list, cloneProduct(product))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

func (r *Repository) SaveLot(_ context.Context, lot *domain.Lot) (*domain.Lot, error) {
	if lot == nil {
		return nil, errors.New("lot is nil")
	}
	clone := *lot
	if clone.ID == uuid.Nil {
		clone.ID = uuid.New()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, existing := range r.lots {
		if id != clone.ID && existing.Code == clone.Code {
			return nil, ports.ErrDuplicateLot
		}
	}
	r.lots[clone.ID] = &clone
	saved := clone
	return &saved, nil
}

func (r *Repository) GetLot(_ context.Context, id uuid.UUID) (*domain.Lot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	lot, ok := r.lots[id]
	if !ok {
		return nil, ports.ErrLotNotFound
	}
	clone := *lot
	return &clone, nil
}

func (r *Repository) ListLots(_ context.Context) ([]*domain.Lot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Lot, 0, len(r.lots))
	for _, lot := range r.lots {
		clone := *lot
		list = append(list, &clone)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return list, nil
}

func (r *Repository) AppendReading(_ context.Context, reading *domain.SensorReading) error {
	if reading == nil {
		return errors.New("reading is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.lots[reading.LotID]; !ok {
		return ports.ErrLotNotFound
	}
	r.readings[reading.LotID] = append(r.readings[reading.LotID], *reading)
	return nil
}

func (r *Repository) LatestReading(_ context.Context, lotID uuid.UUID) (*domain.SensorReading, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var latest *domain.SensorReading
	for i := range r.readings[lotID] {
		candidate := r.readings[lotID][i]
		if candidate.NewerThan(latest) {
			latest = &candidate
		}
	}
	return latest, nil
}

func cloneProduct(p *domain.Product) *domain.Product {
	clone := *p
	if p.Range != nil {
		r := *p.Range
		clone.Range = &r
	}
	return &clone
}
