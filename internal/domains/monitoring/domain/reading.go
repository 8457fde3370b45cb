package domain

import (
	"time"

	"github.com/google/uuid"
)

// SensorReading is an append-only environment sample for a lot.
type SensorReading struct {
	ID          uuid.UUID
	LotID       uuid.UUID
	Temperature float64
	Humidity    float64
	CO2         float64
	RecordedAt  time.Time
	ReceivedAt  time.Time
}

func (r *SensorReading) Measurements() Measurements {
	return Measurements{Temperature: r.Temperature, Humidity: r.Humidity, CO2: r.CO2}
}

// NewerThan orders readings by recording time, then by arrival.
func (r *SensorReading) NewerThan(other *SensorReading) bool {
	if other == nil {
		return true
	}
	if !r.RecordedAt.Equal(other.RecordedAt) {
		return r.RecordedAt.After(other.RecordedAt)
	}
	return r.ReceivedAt.After(other.ReceivedAt)
}
