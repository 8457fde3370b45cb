package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var farmRange = IdealRange{TempMin: 20, TempMax: 26, HumidMin: 80, HumidMax: 90}

func TestScore_LowTemperatureAndElevatedCO2(t *testing.T) {
	score, alerts := Score(Measurements{Temperature: 18, Humidity: 85, CO2: 1600}, farmRange)
	assert.Equal(t, 50, score)
	require.Len(t, alerts, 2)
	assert.Equal(t, "Temperature below ideal (18°C)", alerts[0])
	assert.Equal(t, "CO2 elevated (1600 ppm)", alerts[1])
}

func TestScore_BoundariesAreNotFlagged(t *testing.T) {
	for _, m := range []Measurements{
		{Temperature: 20, Humidity: 80, CO2: 1200},
		{Temperature: 26, Humidity: 90, CO2: 0},
	} {
		score, alerts := Score(m, farmRange)
		assert.Zero(t, score)
		assert.Empty(t, alerts)
		assert.NotNil(t, alerts)
	}
}

func TestScore_CO2UsesHighestThresholdOnly(t *testing.T) {
	cases := []struct {
		co2  float64
		want int
	}{
		{1200, 0},
		{1200.5, 10},
		{1500, 10},
		{1501, 25},
		{2000, 25},
		{2001, 35},
		{9000, 35},
	}
	for _, tc := range cases {
		score, alerts := Score(Measurements{Temperature: 22, Humidity: 85, CO2: tc.co2}, farmRange)
		assert.Equal(t, tc.want, score, "co2=%v", tc.co2)
		if tc.want == 0 {
			assert.Empty(t, alerts)
		} else {
			assert.Len(t, alerts, 1)
		}
	}
}

func TestScore_EverythingWrongStaysWithinBounds(t *testing.T) {
	score, alerts := Score(Measurements{Temperature: 35, Humidity: 40, CO2: 5000}, farmRange)
	assert.Equal(t, 80, score)
	assert.Len(t, alerts, 3)
	assert.Contains(t, alerts, "Temperature above ideal (35°C)")
	assert.Contains(t, alerts, "Humidity below ideal (40%)")
	assert.LessOrEqual(t, score, MaxScore)
}

func TestScore_MonotonicAsInputsDrift(t *testing.T) {
	base := Measurements{Temperature: 23, Humidity: 85, CO2: 800}
	drifts := []func(m *Measurements, step float64){
		func(m *Measurements, step float64) { m.Temperature = 23 + step },
		func(m *Measurements, step float64) { m.Temperature = 23 - step },
		func(m *Measurements, step float64) { m.Humidity = 85 + step },
		func(m *Measurements, step float64) { m.Humidity = 85 - step },
		func(m *Measurements, step float64) { m.CO2 = 800 + step*40 },
	}
	for i, drift := range drifts {
		previous := -1
		for step := 0.0; step <= 60; step += 0.5 {
			m := base
			drift(&m, step)
			score, _ := Score(m, farmRange)
			assert.GreaterOrEqual(t, score, previous, "drift %d step %v", i, step)
			assert.GreaterOrEqual(t, score, 0)
			assert.LessOrEqual(t, score, MaxScore)
			previous = score
		}
	}
}

func TestAssess_UsesProductRangeOrDefault(t *testing.T) {
	lotID := uuid.New()
	reading := &SensorReading{LotID: lotID, Temperature: 18, Humidity: 85, CO2: 1600, RecordedAt: time.Now()}

	withDefault := Assess(lotID, reading, &Product{Name: "Shiitake"})
	assert.Equal(t, 50, withDefault.Score)

	cool := &Product{Name: "Enoki", Range: &IdealRange{TempMin: 10, TempMax: 18, HumidMin: 80, HumidMax: 95}}
	assessment := Assess(lotID, reading, cool)
	assert.Equal(t, 25, assessment.Score)
	assert.Equal(t, reading, assessment.Reading)

	empty := Assess(lotID, nil, cool)
	assert.Zero(t, empty.Score)
	assert.Nil(t, empty.Reading)
	assert.NotNil(t, empty.Alerts)
}

func TestNewProduct_ValidatesRange(t *testing.T) {
	_, err := NewProduct("", nil)
	require.ErrorIs(t, err, ErrEmptyProductName)
	_, err = NewProduct("Oyster", &IdealRange{TempMin: 30, TempMax: 20, HumidMin: 80, HumidMax: 90})
	require.ErrorIs(t, err, ErrInvalidRange)

	product, err := NewProduct(" Oyster ", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultIdealRange, product.EffectiveRange())
}

func TestNewLot(t *testing.T) {
	_, err := NewLot(" ", uuid.New(), time.Now(), "")
	require.ErrorIs(t, err, ErrEmptyLotCode)
	_, err = NewLot("L-01", uuid.Nil, time.Now(), "")
	require.ErrorIs(t, err, ErrMissingProduct)

	lot, err := NewLot(" l-01 ", uuid.New(), time.Now(), "")
	require.NoError(t, err)
	assert.Equal(t, "L-01", lot.Code)
}
