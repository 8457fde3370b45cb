package shroomserver

import (
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	monitoringdomain "github.com/shroombros/shroom-api/internal/domains/monitoring/domain"
	monitoringports "github.com/shroombros/shroom-api/internal/domains/monitoring/ports"
)

type IdealRange struct {
	TempMin  float64 `json:"tempMin"`
	TempMax  float64 `json:"tempMax"`
	HumidMin float64 `json:"humidMin"`
	HumidMax float64 `json:"humidMax"`
}

type CreateProductRequest struct {
	Name  string      `json:"name"`
	Ideal *IdealRange `json:"ideal,omitempty"`
}

type Product struct {
	Id        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	Ideal     *IdealRange `json:"ideal,omitempty"`
	Effective IdealRange  `json:"effectiveIdeal"`
	CreatedAt time.Time   `json:"createdAt"`
}

type CreateLotRequest struct {
	Code      string              `json:"code"`
	ProductId uuid.UUID           `json:"productId"`
	StartedOn *openapi_types.Date `json:"startedOn,omitempty"`
	Notes     string              `json:"notes,omitempty"`
}

type Lot struct {
	Id        uuid.UUID           `json:"id"`
	Code      string              `json:"code"`
	ProductId uuid.UUID           `json:"productId"`
	StartedOn *openapi_types.Date `json:"startedOn,omitempty"`
	Notes     string              `json:"notes,omitempty"`
	CreatedAt time.Time           `json:"createdAt"`
}

// SensorReadingRequest accepts numbers or numeric strings for every measurement and epoch
// seconds, epoch milliseconds or text for the timestamp.
type SensorReadingRequest struct {
	LotId       uuid.UUID `json:"lotId"`
	Temperature any       `json:"temperature"`
	Humidity    any       `json:"humidity"`
	CO2         any       `json:"co2"`
	Timestamp   any       `json:"timestamp,omitempty"`
}

type SensorReading struct {
	Id          uuid.UUID `json:"id"`
	LotId       uuid.UUID `json:"lotId"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	CO2         float64   `json:"co2"`
	RecordedAt  time.Time `json:"recordedAt"`
	ReceivedAt  time.Time `json:"receivedAt"`
}

type LotRisk struct {
	LotId       uuid.UUID      `json:"lotId"`
	LotCode     string         `json:"lotCode"`
	ProductName string         `json:"productName,omitempty"`
	Score       int            `json:"score"`
	Alerts      []string       `json:"alerts"`
	HasReading  bool           `json:"hasReading"`
	Reading     *SensorReading `json:"reading,omitempty"`
}

func toIdealRange(r *IdealRange) *monitoringdomain.IdealRange {
	if r == nil {
		return nil
	}
	return &monitoringdomain.IdealRange{TempMin: r.TempMin, TempMax: r.TempMax, HumidMin: r.HumidMin, HumidMax: r.HumidMax}
}

func fromIdealRange(r monitoringdomain.IdealRange) IdealRange {
	return IdealRange{TempMin: r.TempMin, TempMax: r.TempMax, HumidMin: r.HumidMin, HumidMax: r.HumidMax}
}

func fromProduct(p *monitoringdomain.Product) Product {
	out := Product{Id: p.ID, Name: p.Name, Effective: fromIdealRange(p.EffectiveRange()), CreatedAt: p.CreatedAt}
	if p.Range != nil {
		r := fromIdealRange(*p.Range)
		out.Ideal = &r
	}
	return out
}

func fromLot(l *monitoringdomain.Lot) Lot {
	out := Lot{Id: l.ID, Code: l.Code, ProductId: l.ProductID, Notes: l.Notes, CreatedAt: l.CreatedAt}
	if !l.StartedOn.IsZero() {
		out.StartedOn = &openapi_types.Date{Time: l.StartedOn}
	}
	return out
}

func fromReading(r *monitoringdomain.SensorReading) *SensorReading {
	if r == nil {
		return nil
	}
	return &SensorReading{
		Id:          r.ID,
		LotId:       r.LotID,
		Temperature: r.Temperature,
		Humidity:    r.Humidity,
		CO2:         r.CO2,
		RecordedAt:  r.RecordedAt,
		ReceivedAt:  r.ReceivedAt,
	}
}

func fromLotRisk(r monitoringports.LotRisk) LotRisk {
	out := LotRisk{
		LotId:      r.Assessment.LotID,
		Score:      r.Assessment.Score,
		Alerts:     append([]string{}, r.Assessment.Alerts...),
		HasReading: r.Assessment.Reading != nil,
		Reading:    fromReading(r.Assessment.Reading),
	}
	if r.Lot != nil {
		out.LotCode = r.Lot.Code
	}
	if r.Product != nil {
		out.ProductName = r.Product.Name
	}
	return out
}

func (r SensorReadingRequest) toRawReading() monitoringdomain.RawReading {
	return monitoringdomain.RawReading{
		LotID:       r.LotId,
		Temperature: r.Temperature,
		Humidity:    r.Humidity,
		CO2:         r.CO2,
		Timestamp:   r.Timestamp,
	}
}
