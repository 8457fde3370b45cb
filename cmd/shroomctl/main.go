// Command shroomctl is the operator CLI for the Shroom Bros API: schema migrations, catalog
// seeding, user administration, session cleanup and offline risk scoring.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/shroombros/shroom-api/internal/app/api"
	platformobservability "github.com/shroombros/shroom-api/internal/platform/observability"
	platformpostgres "github.com/shroombros/shroom-api/internal/platform/postgres"
)

// backend is what commands that touch stored data run against.
type backend struct {
	db       *gorm.DB
	services *api.Services
}

// connectFunc opens a backend. The returned cleanup is always non-nil on success.
type connectFunc func(ctx context.Context) (*backend, func(), error)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd(os.Stdout, connectPostgres).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer, connect connectFunc) *cobra.Command {
	root := &cobra.Command{
		Use:          "shroomctl",
		Short:        "Operate the Shroom Bros API",
		SilenceUsage: true,
	}
	root.SetOut(out)
	root.SetErr(out)
	root.AddCommand(
		newMigrateCmd(connect),
		newSeedCmd(connect),
		newUsersCmd(connect),
		newSessionsCmd(connect),
		newRiskCmd(connect),
	)
	return root
}

// connectPostgres builds services over the configured database. The CLI has no in-memory mode.
func connectPostgres(ctx context.Context) (*backend, func(), error) {
	if err := api.LoadDotEnv(); err != nil {
		return nil, nil, err
	}
	cfg, err := api.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	db, err := platformpostgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	instruments := &platformobservability.Instruments{Logger: platformobservability.NewLogger(os.Stderr, cfg.LogLevel)}
	services, err := api.BuildServices(cfg, api.Infrastructure{DB: db}, instruments)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return &backend{db: db, services: services}, cleanup, nil
}

// withBackend runs fn against a freshly connected backend.
func withBackend(cmd *cobra.Command, connect connectFunc, fn func(ctx context.Context, b *backend) error) error {
	ctx := cmd.Context()
	b, cleanup, err := connect(ctx)
	if err != nil {
		return err
	}
	defer cleanup()
	return fn(ctx, b)
}
