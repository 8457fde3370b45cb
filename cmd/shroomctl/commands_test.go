package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shroombros/shroom-api/internal/app/api"
	platformobservability "github.com/shroombros/shroom-api/internal/platform/observability"
)

// memoryConnect hands every command the same in-memory services.
func memoryConnect(t *testing.T) connectFunc {
	t.Helper()
	cfg := api.Config{JWTSecret: "cli-secret", SessionTTL: time.Hour, Location: time.UTC, ReadingCacheTTL: time.Minute}
	instruments := &platformobservability.Instruments{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	services, err := api.BuildServices(cfg, api.Infrastructure{}, instruments)
	require.NoError(t, err)
	b := &backend{services: services}
	return func(context.Context) (*backend, func(), error) { return b, func() {}, nil }
}

func execute(t *testing.T, connect connectFunc, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out, connect)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRiskScore(t *testing.T) {
	out, err := execute(t, nil, "risk", "score", "--temperature", "18", "--humidity", "85", "--co2", "1600")
	require.NoError(t, err)
	assert.Equal(t, "score: 50\n- Temperature below ideal (18°C)\n- CO2 elevated (1600 ppm)\n", out)
}

func TestRiskScoreCustomRange(t *testing.T) {
	out, err := execute(t, nil, "risk", "score", "--temperature", "18", "--humidity", "85", "--co2", "400",
		"--temp-min", "15", "--temp-max", "19")
	require.NoError(t, err)
	assert.Equal(t, "score: 0\n", out)
}

func TestRiskScoreRejectsBadInput(t *testing.T) {
	_, err := execute(t, nil, "risk", "score", "--temperature", "warm", "--humidity", "85", "--co2", "400")
	assert.Error(t, err)

	_, err = execute(t, nil, "risk", "score", "--temperature", "20", "--humidity", "85", "--co2", "400",
		"--temp-min", "30", "--temp-max", "10")
	assert.Error(t, err)

	_, err = execute(t, nil, "risk", "score", "--temperature", "20")
	assert.Error(t, err, "humidity and co2 are required")
}

func TestSeedCatalogIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
products:
  - name: Shiitake
    lots:
      - code: SHI-001
        startedOn: 2024-02-10
  - name: Oyster
`), 0o600))
	connect := memoryConnect(t)

	out, err := execute(t, connect, "seed", "catalog", path)
	require.NoError(t, err)
	assert.Equal(t, "products: 2 created, 0 skipped\nlots: 1 created, 0 skipped\n", out)

	out, err = execute(t, connect, "seed", "catalog", path)
	require.NoError(t, err)
	assert.Equal(t, "products: 0 created, 2 skipped\nlots: 0 created, 1 skipped\n", out)

	out, err = execute(t, connect, "risk", "lots")
	require.NoError(t, err)
	assert.Equal(t, "SHI-001\t-\tno readings\n", out)
}

func TestSeedCatalogMissingFile(t *testing.T) {
	_, err := execute(t, memoryConnect(t), "seed", "catalog", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestUsersCreateAndList(t *testing.T) {
	connect := memoryConnect(t)
	t.Setenv(passwordEnv, "from-the-env")

	out, err := execute(t, connect, "users", "create", "--email", "Grower@ShroomBros.com", "--name", "Grower")
	require.NoError(t, err)
	assert.Contains(t, out, "created staff user grower@shroombros.com")

	_, err = execute(t, connect, "users", "create", "--email", "grower@shroombros.com", "--name", "Again", "--password", "different-pass")
	assert.Error(t, err, "duplicate email")

	_, err = execute(t, connect, "users", "create", "--email", "boss@shroombros.com", "--name", "Boss", "--role", "owner", "--password", "long-enough")
	assert.Error(t, err, "unknown role")

	out, err = execute(t, connect, "users", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "grower@shroombros.com\tstaff\tactive")
	assert.NotContains(t, out, "boss@shroombros.com")
}

func TestSessionsPurge(t *testing.T) {
	out, err := execute(t, memoryConnect(t), "sessions", "purge")
	require.NoError(t, err)
	assert.Equal(t, "purged 0 expired sessions\n", out)
}

func TestMigrateRequiresDatabase(t *testing.T) {
	_, err := execute(t, memoryConnect(t), "migrate")
	assert.Error(t, err)
}
