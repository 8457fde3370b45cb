//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "shroom-api"
	ConsumerName = "sensor-gateway"

	StateOperatorExists = "operator ops@shroombros.com exists"
	StateLotExists      = "lot SHI-001 exists"
	StateLotAtRisk      = "lot SHI-001 has a reading of 18C, 85% and 1600 ppm"
	StateLotMissing     = "no lot with the missing id"
)

const (
	OperatorEmail    = "ops@shroombros.com"
	OperatorPassword = "mycelium42"

	// ContractToken stands in for a real bearer token. The provider swaps it for a live session.
	ContractToken = "pact-contract-token"

	ExistingLotID = "7f0c1b9e-3c4d-4f6a-9b1e-2a3b4c5d6e7f"
	MissingLotID  = "00000000-0000-4000-8000-000000000404"
	ExistingLot   = "SHI-001"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the sensor gateway consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleReadingPayload is the raw reading the gateway forwards. Values arrive as strings and the
// timestamp as epoch milliseconds, the way the field sensors send them.
func ExampleReadingPayload() map[string]any {
	return map[string]any{
		"lotId":       ExistingLotID,
		"temperature": "18",
		"humidity":    85,
		"co2":         "1600",
		"timestamp":   1709631000000,
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
