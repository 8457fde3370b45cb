package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyProductName = errors.New("product name is required")
	ErrInvalidRange     = errors.New("ideal range minimum must not exceed maximum")
	ErrEmptyLotCode     = errors.New("lot code is required")
	ErrMissingProduct   = errors.New("product id is required")
)

// IdealRange is the environment a product grows best in.
type IdealRange struct {
	TempMin  float64
	TempMax  float64
	HumidMin float64
	HumidMax float64
}

// DefaultIdealRange applies to products without a configured range.
var DefaultIdealRange = IdealRange{TempMin: 20, TempMax: 26, HumidMin: 80, HumidMax: 90}

func (r IdealRange) Validate() error {
	if r.TempMin > r.TempMax || r.HumidMin > r.HumidMax {
		return ErrInvalidRange
	}
	return nil
}

// Product is a mushroom variety the farm cultivates.
type Product struct {
	ID        uuid.UUID
	Name      string
	Range     *IdealRange
	CreatedAt time.Time
}

func NewProduct(name string, idealRange *IdealRange) (*Product, error) {
	p := &Product{ID: uuid.New(), Name: strings.TrimSpace(name)}
	if p.Name == "" {
		return nil, ErrEmptyProductName
	}
	if idealRange != nil {
		if err := idealRange.Validate(); err != nil {
			return nil, err
		}
		r := *idealRange
		p.Range = &r
	}
	return p, nil
}

// EffectiveRange returns the configured range or the default one.
func (p *Product) EffectiveRange() IdealRange {
	if p == nil || p.Range == nil {
		return DefaultIdealRange
	}
	return *p.Range
}

// Lot is a batch of cultivated mushrooms tracked from inoculation through harvest.
type Lot struct {
	ID        uuid.UUID
	Code      string
	ProductID uuid.UUID
	StartedOn time.Time
	Notes     string
	CreatedAt time.Time
}

func NewLot(code string, productID uuid.UUID, startedOn time.Time, notes string) (*Lot, error) {
	l := &Lot{
		ID:        uuid.New(),
		Code:      strings.ToUpper(strings.TrimSpace(code)),
		ProductID: productID,
		StartedOn: startedOn,
		Notes:     strings.TrimSpace(notes),
	}
	if l.Code == "" {
		return nil, ErrEmptyLotCode
	}
	if productID == uuid.Nil {
		return nil, ErrMissingProduct
	}
	return l, nil
}
