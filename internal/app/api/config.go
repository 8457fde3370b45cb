package api

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"
)

const (
	defaultRequestTimeout = 15 * time.Second
	defaultSessionTTL     = 12 * time.Hour
	defaultReadingTTL     = 24 * time.Hour
)

// Config carries environment-driven settings for the API process.
type Config struct {
	Port              string
	Environment       string
	LogLevel          string
	PostgresDSN       string
	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	ReadingCacheTTL   time.Duration
	NATSURL           string
	JWTSecret         string
	SessionTTL        time.Duration
	RequestTimeout    time.Duration
	// Location numbers routes per farm calendar day.
	Location *time.Location
	// BootstrapEmail and BootstrapPassword create the first admin when both are set.
	BootstrapEmail    string
	BootstrapPassword string
	// SessionPurgeInterval of zero disables the in-process purge loop.
	SessionPurgeInterval time.Duration
}

// LoadDotEnv loads .env from the working directory when present. Existing variables win.
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// LoadConfig reads environment variables, applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:              envDefault("PORT", "8080"),
		Environment:       envDefault("APP_ENV", "local"),
		LogLevel:          envDefault("LOG_LEVEL", "info"),
		PostgresDSN:       strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		TemporalAddress:   envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace: envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:  isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		RedisAddr:         strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		ReadingCacheTTL:   defaultReadingTTL,
		NATSURL:           strings.TrimSpace(os.Getenv("NATS_URL")),
		JWTSecret:         strings.TrimSpace(os.Getenv("AUTH_JWT_SECRET")),
		SessionTTL:        defaultSessionTTL,
		RequestTimeout:    defaultRequestTimeout,
		Location:          time.Local,
		BootstrapEmail:    strings.TrimSpace(os.Getenv("AUTH_BOOTSTRAP_EMAIL")),
		BootstrapPassword: os.Getenv("AUTH_BOOTSTRAP_PASSWORD"),
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("AUTH_JWT_SECRET is required")
	}
	if tz := strings.TrimSpace(os.Getenv("FARM_TIMEZONE")); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return Config{}, fmt.Errorf("FARM_TIMEZONE: %w", err)
		}
		cfg.Location = loc
	}
	var err error
	if cfg.RedisDB, err = nonNegativeInt("REDIS_DB"); err != nil {
		return Config{}, err
	}
	if hours, err := positiveInt("SESSION_TTL_HOURS"); err != nil {
		return Config{}, err
	} else if hours > 0 {
		cfg.SessionTTL = time.Duration(hours) * time.Hour
	}
	if seconds, err := positiveInt("REQUEST_TIMEOUT_SECONDS"); err != nil {
		return Config{}, err
	} else if seconds > 0 {
		cfg.RequestTimeout = time.Duration(seconds) * time.Second
	}
	if minutes, err := positiveInt("SESSION_PURGE_INTERVAL_MINUTES"); err != nil {
		return Config{}, err
	} else if minutes > 0 {
		cfg.SessionPurgeInterval = time.Duration(minutes) * time.Minute
	}
	return cfg, nil
}

// positiveInt returns 0 when key is unset.
func positiveInt(key string) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", key)
	}
	return n, nil
}

func nonNegativeInt(key string) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", key)
	}
	return n, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
