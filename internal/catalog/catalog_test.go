package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/plant-care/internal/store"
)

func TestParse(t *testing.T) {
	doc := []byte(`
plants:
  - name: " Cactus "
    ideal_uv: 9
    ideal_water_ml_per_day: 50
  - name: Pothos
    ideal_humidity: 60
`)

	entries, err := Parse(doc)

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Cactus", entries[0].Name)
	require.NotNil(t, entries[0].IdealUV)
	assert.Equal(t, 9.0, *entries[0].IdealUV)
	assert.Nil(t, entries[0].IdealHumidityPercent)
	assert.Nil(t, entries[1].IdealWaterMlPerDay)
}

func TestParseRejectsBadEntries(t *testing.T) {
	tests := map[string]string{
		"missing name":   "plants:\n  - ideal_uv: 3\n",
		"duplicate name": "plants:\n  - name: Fern\n  - name: fern\n",
		"not yaml":       "plants: [\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestBundledCatalogSeedsIdempotently(t *testing.T) {
	entries, err := LoadFile("../../data/plant_conditions.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	s := store.NewMemoryStore()
	ctx := context.Background()

	n, err := Seed(ctx, s, entries)
	require.NoError(t, err)
	assert.Equal(t, len(entries), n)

	// Reloading upserts by name instead of duplicating.
	again, err := LoadFile("../../data/plant_conditions.yaml")
	require.NoError(t, err)
	_, err = Seed(ctx, s, again)
	require.NoError(t, err)

	list, err := s.ListConditions(ctx)
	require.NoError(t, err)
	assert.Len(t, list, len(entries))
}
