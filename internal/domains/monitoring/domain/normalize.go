package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// millisThreshold separates epoch seconds from epoch milliseconds. 1e12 ms is September 2001,
// while 1e12 s lies tens of thousands of years ahead.
const millisThreshold = 1e12

// maxEpochMillis is 10000-01-01T00:00:00Z, the first instant RFC 3339 cannot write.
const maxEpochMillis = 253402300800000

var ErrMissingLot = errors.New("lot id is required")

// timestampLayouts are tried in order for textual timestamps.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
}

// ParseError reports a raw sensor value that could not be normalised.
type ParseError struct {
	Field string
	Value any
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot parse %s %v: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("cannot parse %s %v", e.Field, e.Value)
}

func (e *ParseError) Unwrap() error { return e.Err }

// RawReading is a reading as sensors send it: numbers may arrive as strings and the timestamp as
// epoch seconds, epoch milliseconds or text.
type RawReading struct {
	LotID       uuid.UUID
	Temperature any
	Humidity    any
	CO2         any
	Timestamp   any
}

// NormalizeTimestamp converts a raw timestamp to UTC. Missing values fall back to receivedAt.
func NormalizeTimestamp(raw any, receivedAt time.Time) (time.Time, error) {
	switch v := raw.(type) {
	case nil:
		return receivedAt.UTC(), nil
	case time.Time:
		return v.UTC(), nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return receivedAt.UTC(), nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return fromEpoch(f, raw)
		}
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), nil
			}
		}
		return time.Time{}, &ParseError{Field: "timestamp", Value: raw, Err: errors.New("unrecognised time format")}
	}
	f, ok := toFloat(raw)
	if !ok {
		return time.Time{}, &ParseError{Field: "timestamp", Value: raw, Err: fmt.Errorf("unsupported type %T", raw)}
	}
	return fromEpoch(f, raw)
}

func fromEpoch(f float64, raw any) (time.Time, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f >= maxEpochMillis {
		return time.Time{}, &ParseError{Field: "timestamp", Value: raw, Err: errors.New("epoch out of range")}
	}
	if f >= millisThreshold {
		return time.UnixMilli(int64(f)).UTC(), nil
	}
	sec, frac := math.Modf(f)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC(), nil
}

// NormalizeMeasurement accepts a JSON number or a numeric string.
func NormalizeMeasurement(field string, raw any) (float64, error) {
	if s, ok := raw.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, &ParseError{Field: field, Value: raw, Err: err}
		}
		return checkFinite(field, raw, f)
	}
	if raw == nil {
		return 0, &ParseError{Field: field, Value: raw, Err: errors.New("value is required")}
	}
	f, ok := toFloat(raw)
	if !ok {
		return 0, &ParseError{Field: field, Value: raw, Err: fmt.Errorf("unsupported type %T", raw)}
	}
	return checkFinite(field, raw, f)
}

// Normalize turns a raw reading into a SensorReading received at receivedAt.
func (r RawReading) Normalize(receivedAt time.Time) (*SensorReading, error) {
	if r.LotID == uuid.Nil {
		return nil, ErrMissingLot
	}
	temperature, err := NormalizeMeasurement("temperature", r.Temperature)
	if err != nil {
		return nil, err
	}
	humidity, err := NormalizeMeasurement("humidity", r.Humidity)
	if err != nil {
		return nil, err
	}
	co2, err := NormalizeMeasurement("co2", r.CO2)
	if err != nil {
		return nil, err
	}
	recordedAt, err := NormalizeTimestamp(r.Timestamp, receivedAt)
	if err != nil {
		return nil, err
	}
	return &SensorReading{
		ID:          uuid.New(),
		LotID:       r.LotID,
		Temperature: temperature,
		Humidity:    humidity,
		CO2:         co2,
		RecordedAt:  recordedAt,
		ReceivedAt:  receivedAt.UTC(),
	}, nil
}

func checkFinite(field string, raw any, f float64) (float64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &ParseError{Field: field, Value: raw, Err: errors.New("value is not finite")}
	}
	return f, nil
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}
