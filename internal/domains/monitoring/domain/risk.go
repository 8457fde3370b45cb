package domain

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

const (
	pointsTemperature = 25
	pointsHumidity    = 20

	co2Critical  = 2000.0
	co2Elevated  = 1500.0
	co2Attention = 1200.0

	pointsCO2Critical  = 35
	pointsCO2Elevated  = 25
	pointsCO2Attention = 10

	MaxScore = 100
)

// Measurements are the values the scorer looks at.
type Measurements struct {
	Temperature float64
	Humidity    float64
	CO2         float64
}

// RiskAssessment is derived on every read and never stored.
type RiskAssessment struct {
	LotID   uuid.UUID
	Score   int
	Alerts  []string
	Reading *SensorReading
}

// Score adds points for every measurement outside the ideal range. Values on a boundary are fine.
// Only the highest matching CO2 threshold counts. The result is clamped to [0, MaxScore].
func Score(m Measurements, r IdealRange) (int, []string) {
	score := 0
	alerts := []string{}
	switch {
	case m.Temperature < r.TempMin:
		score += pointsTemperature
		alerts = append(alerts, fmt.Sprintf("Temperature below ideal (%s°C)", formatValue(m.Temperature)))
	case m.Temperature > r.TempMax:
		score += pointsTemperature
		alerts = append(alerts, fmt.Sprintf("Temperature above ideal (%s°C)", formatValue(m.Temperature)))
	}
	switch {
	case m.Humidity < r.HumidMin:
		score += pointsHumidity
		alerts = append(alerts, fmt.Sprintf("Humidity below ideal (%s%%)", formatValue(m.Humidity)))
	case m.Humidity > r.HumidMax:
		score += pointsHumidity
		alerts = append(alerts, fmt.Sprintf("Humidity above ideal (%s%%)", formatValue(m.Humidity)))
	}
	switch {
	case m.CO2 > co2Critical:
		score += pointsCO2Critical
		alerts = append(alerts, fmt.Sprintf("CO2 critical (%s ppm)", formatValue(m.CO2)))
	case m.CO2 > co2Elevated:
		score += pointsCO2Elevated
		alerts = append(alerts, fmt.Sprintf("CO2 elevated (%s ppm)", formatValue(m.CO2)))
	case m.CO2 > co2Attention:
		score += pointsCO2Attention
		alerts = append(alerts, fmt.Sprintf("CO2 needs attention (%s ppm)", formatValue(m.CO2)))
	}
	return clamp(score), alerts
}

// Assess scores the latest reading of a lot. A lot without readings scores zero.
func Assess(lotID uuid.UUID, latest *SensorReading, product *Product) RiskAssessment {
	assessment := RiskAssessment{LotID: lotID, Alerts: []string{}}
	if latest == nil {
		return assessment
	}
	assessment.Reading = latest
	assessment.Score, assessment.Alerts = Score(latest.Measurements(), product.EffectiveRange())
	return assessment
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
