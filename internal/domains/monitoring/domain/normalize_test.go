package domain

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTimestamp(t *testing.T) {
	received := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)
	want := time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC)

	cases := map[string]struct {
		raw  any
		want time.Time
	}{
		"nil":                 {raw: nil, want: received},
		"blank":               {raw: "  ", want: received},
		"epoch seconds":       {raw: float64(want.Unix()), want: want},
		"epoch seconds int":   {raw: want.Unix(), want: want},
		"epoch millis":        {raw: float64(want.UnixMilli()), want: want},
		"epoch millis string": {raw: "1709634600000", want: want},
		"epoch json number":   {raw: json.Number("1709634600"), want: want},
		"rfc3339":             {raw: "2024-03-05T10:30:00Z", want: want},
		"rfc3339 offset":      {raw: "2024-03-05T07:30:00-03:00", want: want},
		"space separated":     {raw: "2024-03-05 10:30:00", want: want},
		"no zone":             {raw: "2024-03-05T10:30:00", want: want},
		"fractional seconds":  {raw: 1709634600.5, want: want.Add(500 * time.Millisecond)},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := NormalizeTimestamp(tc.raw, received)
			require.NoError(t, err)
			assert.True(t, tc.want.Equal(got), "want %s got %s", tc.want, got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestNormalizeTimestamp_Rejects(t *testing.T) {
	for _, raw := range []any{"yesterday", "05/03/2024", true, -5.0, 1e30, "1e30", float64(math.MaxInt64), map[string]any{}} {
		_, err := NormalizeTimestamp(raw, time.Now())
		var parseErr *ParseError
		require.True(t, errors.As(err, &parseErr), "%v", raw)
		assert.Equal(t, "timestamp", parseErr.Field)
	}
}

func TestRawReading_Normalize(t *testing.T) {
	received := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)
	lotID := uuid.New()

	reading, err := RawReading{LotID: lotID, Temperature: "21.5", Humidity: 84.0, CO2: json.Number("950"), Timestamp: nil}.Normalize(received)
	require.NoError(t, err)
	assert.Equal(t, 21.5, reading.Temperature)
	assert.Equal(t, 84.0, reading.Humidity)
	assert.Equal(t, 950.0, reading.CO2)
	assert.Equal(t, received, reading.RecordedAt)

	_, err = RawReading{Temperature: 1, Humidity: 1, CO2: 1}.Normalize(received)
	require.ErrorIs(t, err, ErrMissingLot)

	_, err = RawReading{LotID: lotID, Temperature: "warm", Humidity: 1, CO2: 1}.Normalize(received)
	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "temperature", parseErr.Field)

	_, err = RawReading{LotID: lotID, Temperature: 1, Humidity: nil, CO2: 1}.Normalize(received)
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "humidity", parseErr.Field)
}

func TestNormalizeTimestamp_LatestEpoch(t *testing.T) {
	last := time.Date(9999, 12, 31, 23, 59, 59, 999e6, time.UTC)
	got, err := NormalizeTimestamp(float64(last.UnixMilli()), time.Now())
	require.NoError(t, err)
	assert.Equal(t, last, got)

	_, err = NormalizeTimestamp(float64(last.UnixMilli()+1), time.Now())
	assert.ErrorContains(t, err, "epoch out of range")
}
