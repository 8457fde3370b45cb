package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/shroombros/shroom-api/internal/domains/monitoring/domain"
	"github.com/shroombros/shroom-api/internal/domains/monitoring/ports"
)

const keyPrefix = "shroom:lot:latest:"

// putIfNewer replaces the cached reading only when the incoming one was recorded later.
var putIfNewer = redis.NewScript(`
local current = redis.call("HGET", KEYS[1], "recorded_at")
if current and tonumber(current) > tonumber(ARGV[1]) then
  return 0
end
redis.call("HSET", KEYS[1], "recorded_at", ARGV[1], "payload", ARGV[2])
if tonumber(ARGV[3]) > 0 then
  redis.call("PEXPIRE", KEYS[1], ARGV[3])
end
return 1
`)

var _ ports.LatestReadingCache = (*RedisLatestReadings)(nil)

// RedisLatestReadings caches the newest reading of each lot in a redis hash.
type RedisLatestReadings struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisLatestReadings(client redis.UniversalClient, ttl time.Duration) *RedisLatestReadings {
	return &RedisLatestReadings{client: client, ttl: ttl}
}

// NewLatestReadings returns a redis cache when client is set and a no-op cache otherwise.
func NewLatestReadings(client redis.UniversalClient, ttl time.Duration) ports.LatestReadingCache {
	if client == nil {
		return ports.NoopCache{}
	}
	return NewRedisLatestReadings(client, ttl)
}

type cachedReading struct {
	ID          uuid.UUID `json:"id"`
	LotID       uuid.UUID `json:"lotId"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	CO2         float64   `json:"co2"`
	RecordedAt  time.Time `json:"recordedAt"`
	ReceivedAt  time.Time `json:"receivedAt"`
}

func (c *RedisLatestReadings) Get(ctx context.Context, lotID uuid.UUID) (*domain.SensorReading, error) {
	payload, err := c.client.HGet(ctx, key(lotID), "payload").Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cached reading: %w", err)
	}
	var cached cachedReading
	if err := json.Unmarshal([]byte(payload), &cached); err != nil {
		return nil, fmt.Errorf("decode cached reading: %w", err)
	}
	return &domain.SensorReading{
		ID:          cached.ID,
		LotID:       cached.LotID,
		Temperature: cached.Temperature,
		Humidity:    cached.Humidity,
		CO2:         cached.CO2,
		RecordedAt:  cached.RecordedAt,
		ReceivedAt:  cached.ReceivedAt,
	}, nil
}

func (c *RedisLatestReadings) Put(ctx context.Context, reading *domain.SensorReading) error {
	if reading == nil {
		return errors.New("reading is nil")
	}
	payload, err := json.Marshal(cachedReading{
		ID:          reading.ID,
		LotID:       reading.LotID,
		Temperature: reading.Temperature,
		Humidity:    reading.Humidity,
		CO2:         reading.CO2,
		RecordedAt:  reading.RecordedAt.UTC(),
		ReceivedAt:  reading.ReceivedAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode cached reading: %w", err)
	}
	args := []any{reading.RecordedAt.UnixMicro(), string(payload), c.ttl.Milliseconds()}
	if err := putIfNewer.Run(ctx, c.client, []string{key(reading.LotID)}, args...).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("write cached reading: %w", err)
	}
	return nil
}

func key(lotID uuid.UUID) string {
	return keyPrefix + lotID.String()
}
