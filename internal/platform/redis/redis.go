package redis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Options selects the Redis endpoint used for caches.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// Connect builds a client and verifies it answers PING.
func Connect(ctx context.Context, opts Options) (*goredis.Client, error) {
	if strings.TrimSpace(opts.Addr) == "" {
		return nil, fmt.Errorf("redis address is empty")
	}
	client := goredis.NewClient(&goredis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opts.Addr, err)
	}
	return client, nil
}

// Open is Connect with logging and a nil client when Redis is unavailable.
func Open(ctx context.Context, opts Options, logger *slog.Logger) (*goredis.Client, func()) {
	if strings.TrimSpace(opts.Addr) == "" {
		if logger != nil {
			logger.Info("REDIS_ADDR not set, latest-reading cache disabled")
		}
		return nil, func() {}
	}
	client, err := Connect(ctx, opts)
	if err != nil {
		if logger != nil {
			logger.Warn("redis unavailable, latest-reading cache disabled", slog.String("error", err.Error()))
		}
		return nil, func() {}
	}
	if logger != nil {
		logger.Info("redis connection established", slog.String("addr", opts.Addr))
	}
	return client, func() { _ = client.Close() }
}
