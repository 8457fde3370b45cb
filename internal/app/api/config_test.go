package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "secret")
	t.Setenv("PORT", "")
	t.Setenv("SESSION_TTL_HOURS", "")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "")
	t.Setenv("SESSION_PURGE_INTERVAL_MINUTES", "")
	t.Setenv("REDIS_DB", "")
	t.Setenv("TEMPORAL_DISABLED", "")
	t.Setenv("FARM_TIMEZONE", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 12*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Zero(t, cfg.SessionPurgeInterval)
	assert.Zero(t, cfg.RedisDB)
	assert.False(t, cfg.TemporalDisabled)
	assert.Equal(t, time.Local, cfg.Location)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "secret")
	t.Setenv("PORT", "9090")
	t.Setenv("SESSION_TTL_HOURS", "2")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "30")
	t.Setenv("SESSION_PURGE_INTERVAL_MINUTES", "5")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("TEMPORAL_DISABLED", "true")
	t.Setenv("FARM_TIMEZONE", "America/Sao_Paulo")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 5*time.Minute, cfg.SessionPurgeInterval)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.True(t, cfg.TemporalDisabled)
	assert.Equal(t, "America/Sao_Paulo", cfg.Location.String())
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"missing secret": {"AUTH_JWT_SECRET": ""},
		"zero ttl":       {"SESSION_TTL_HOURS": "0"},
		"text timeout":   {"REQUEST_TIMEOUT_SECONDS": "soon"},
		"negative purge": {"SESSION_PURGE_INTERVAL_MINUTES": "-1"},
		"negative db":    {"REDIS_DB": "-2"},
		"unknown zone":   {"FARM_TIMEZONE": "Mars/Olympus"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("AUTH_JWT_SECRET", "secret")
			for key, value := range env {
				t.Setenv(key, value)
			}
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
