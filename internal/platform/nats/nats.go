package nats

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	natsgo "github.com/nats-io/nats.go"
)

// Connect dials NATS with reconnect settings suited to a long-running API process.
func Connect(url, clientName string, logger *slog.Logger) (*natsgo.Conn, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("nats url is empty")
	}
	opts := []natsgo.Option{
		natsgo.Name(clientName),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.MaxReconnects(60),
		natsgo.Timeout(5 * time.Second),
	}
	if logger != nil {
		opts = append(opts,
			natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
				if err != nil {
					logger.Warn("nats disconnected", slog.String("error", err.Error()))
				}
			}),
			natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
				logger.Info("nats reconnected", slog.String("url", nc.ConnectedUrl()))
			}),
		)
	}
	conn, err := natsgo.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return conn, nil
}

// Open is Connect with a nil connection and a no-op cleanup when NATS is unavailable.
func Open(url, clientName string, logger *slog.Logger) (*natsgo.Conn, func()) {
	if strings.TrimSpace(url) == "" {
		if logger != nil {
			logger.Info("NATS_URL not set, route events will not be published")
		}
		return nil, func() {}
	}
	conn, err := Connect(url, clientName, logger)
	if err != nil {
		if logger != nil {
			logger.Warn("nats unavailable, route events will not be published", slog.String("error", err.Error()))
		}
		return nil, func() {}
	}
	return conn, func() { _ = conn.Drain() }
}
