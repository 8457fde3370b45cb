// Package catalog reads product and lot seed files.
package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/shroombros/shroom-api/internal/domains/monitoring/domain"
	"github.com/shroombros/shroom-api/internal/domains/monitoring/ports"
)

const dateLayout = "2006-01-02"

type file struct {
	Products []productEntry `yaml:"products"`
}

type productEntry struct {
	Name  string      `yaml:"name"`
	Ideal *idealRange `yaml:"ideal"`
	Lots  []lotEntry  `yaml:"lots"`
}

type idealRange struct {
	TempMin  float64 `yaml:"tempMin"`
	TempMax  float64 `yaml:"tempMax"`
	HumidMin float64 `yaml:"humidMin"`
	HumidMax float64 `yaml:"humidMax"`
}

type lotEntry struct {
	Code      string `yaml:"code"`
	StartedOn string `yaml:"startedOn"`
	Notes     string `yaml:"notes"`
}

// LoadFile parses the seed file at path.
func LoadFile(path string) ([]ports.CatalogEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Load parses a YAML catalog into import entries.
func Load(r io.Reader) ([]ports.CatalogEntry, error) {
	var doc file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return []ports.CatalogEntry{}, nil
		}
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	entries := make([]ports.CatalogEntry, 0, len(doc.Products))
	for i, p := range doc.Products {
		entry := ports.CatalogEntry{Product: ports.CreateProductInput{Name: p.Name}}
		if p.Ideal != nil {
			entry.Product.Range = &domain.IdealRange{
				TempMin:  p.Ideal.TempMin,
				TempMax:  p.Ideal.TempMax,
				HumidMin: p.Ideal.HumidMin,
				HumidMax: p.Ideal.HumidMax,
			}
		}
		for _, l := range p.Lots {
			lot := ports.CreateLotInput{Code: l.Code, Notes: l.Notes}
			if l.StartedOn != "" {
				startedOn, err := time.Parse(dateLayout, l.StartedOn)
				if err != nil {
					return nil, fmt.Errorf("products[%d] lot %q: invalid startedOn %q", i, l.Code, l.StartedOn)
				}
				lot.StartedOn = startedOn
			}
			entry.Lots = append(entry.Lots, lot)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
