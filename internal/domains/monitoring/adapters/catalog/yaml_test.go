package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
products:
  - name: Shiitake
    ideal:
      tempMin: 18
      tempMax: 24
      humidMin: 80
      humidMax: 90
    lots:
      - code: shi-001
        startedOn: 2024-02-10
        notes: north room
      - code: SHI-002
  - name: Oyster
`

func TestLoad_ParsesProductsAndLots(t *testing.T) {
	entries, err := Load(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	shiitake := entries[0]
	assert.Equal(t, "Shiitake", shiitake.Product.Name)
	require.NotNil(t, shiitake.Product.Range)
	assert.Equal(t, 18.0, shiitake.Product.Range.TempMin)
	assert.Equal(t, 90.0, shiitake.Product.Range.HumidMax)
	require.Len(t, shiitake.Lots, 2)
	assert.Equal(t, "shi-001", shiitake.Lots[0].Code)
	assert.Equal(t, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), shiitake.Lots[0].StartedOn)
	assert.Equal(t, "north room", shiitake.Lots[0].Notes)
	assert.True(t, shiitake.Lots[1].StartedOn.IsZero())

	oyster := entries[1]
	assert.Nil(t, oyster.Product.Range)
	assert.Empty(t, oyster.Lots)
}

func TestLoad_EmptyDocument(t *testing.T) {
	entries, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLoad_RejectsUnknownFields(t *testing.T) {
	_, err := Load(strings.NewReader("products:\n  - name: Enoki\n    colour: white\n"))
	require.Error(t, err)
}

func TestLoad_RejectsBadDate(t *testing.T) {
	_, err := Load(strings.NewReader("products:\n  - name: Enoki\n    lots:\n      - code: E-1\n        startedOn: 10/02/2024\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "startedOn")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	entries, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
