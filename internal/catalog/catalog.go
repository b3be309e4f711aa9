package catalog

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/i474232898/plant-care/internal/plants"
)

// Entry is one species in the YAML catalog. Omitted ideals stay unset.
type Entry struct {
	Name                      string   `yaml:"name"`
	IdealUV                   *float64 `yaml:"ideal_uv"`
	IdealHumidityPercent      *float64 `yaml:"ideal_humidity"`
	IdealPrecipitationPercent *float64 `yaml:"ideal_precipitation"`
	IdealSunlightHours        *float64 `yaml:"ideal_sunlight_hours"`
	IdealWaterMlPerDay        *float64 `yaml:"ideal_water_ml_per_day"`
}

type file struct {
	Plants []Entry `yaml:"plants"`
}

// Upserter stores species reference data.
type Upserter interface {
	UpsertConditions(ctx context.Context, c *plants.Conditions) error
}

// Parse decodes a catalog document.
func Parse(data []byte) ([]plants.Conditions, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	seen := make(map[string]bool, len(f.Plants))
	out := make([]plants.Conditions, 0, len(f.Plants))
	for i, e := range f.Plants {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return nil, fmt.Errorf("catalog entry %d: name is required", i)
		}
		key := strings.ToLower(name)
		if seen[key] {
			return nil, fmt.Errorf("catalog entry %d: duplicate name %q", i, name)
		}
		seen[key] = true

		out = append(out, plants.Conditions{
			Name:                      name,
			IdealUV:                   e.IdealUV,
			IdealHumidityPercent:      e.IdealHumidityPercent,
			IdealPrecipitationPercent: e.IdealPrecipitationPercent,
			IdealSunlightHours:        e.IdealSunlightHours,
			IdealWaterMlPerDay:        e.IdealWaterMlPerDay,
		})
	}
	return out, nil
}

// LoadFile reads and parses the catalog at path.
func LoadFile(path string) ([]plants.Conditions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Seed upserts every entry and returns how many were written.
func Seed(ctx context.Context, dst Upserter, entries []plants.Conditions) (int, error) {
	for i := range entries {
		if err := dst.UpsertConditions(ctx, &entries[i]); err != nil {
			return i, fmt.Errorf("upsert %q: %w", entries[i].Name, err)
		}
	}
	log.Printf("INFO: seeded %d plant conditions", len(entries))
	return len(entries), nil
}
