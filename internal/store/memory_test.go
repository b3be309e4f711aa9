package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/plant-care/internal/plants"
)

func seedPlant(t *testing.T, s *MemoryStore, userID uuid.UUID) plants.Plant {
	t.Helper()
	ctx := context.Background()

	c := plants.Conditions{Name: "Fern"}
	require.NoError(t, s.UpsertConditions(ctx, &c))

	p := plants.Plant{UserID: userID, ConditionsID: c.ID, SoilType: plants.SoilPeaty, Conditions: c}
	require.NoError(t, s.CreatePlant(ctx, &p))
	return p
}

func TestMemoryStoreConditionsUpsertByName(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	first := plants.Conditions{Name: "Basil"}
	require.NoError(t, s.UpsertConditions(ctx, &first))

	water := 450.0
	again := plants.Conditions{Name: "basil", IdealWaterMlPerDay: &water}
	require.NoError(t, s.UpsertConditions(ctx, &again))
	assert.Equal(t, first.ID, again.ID)

	aloe := plants.Conditions{Name: "Aloe Vera"}
	require.NoError(t, s.UpsertConditions(ctx, &aloe))

	list, err := s.ListConditions(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Aloe Vera", list[0].Name)
	require.NotNil(t, list[1].IdealWaterMlPerDay)
	assert.Equal(t, 450.0, *list[1].IdealWaterMlPerDay)

	_, err = s.GetConditions(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStorePlantsAreScopedByUser(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	owner, other := uuid.New(), uuid.New()

	p := seedPlant(t, s, owner)

	got, err := s.GetPlant(ctx, owner, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Fern", got.Conditions.Name)

	_, err = s.GetPlant(ctx, other, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := s.ListPlants(ctx, other)
	require.NoError(t, err)
	assert.Empty(t, list)

	err = s.CreateWateringLog(ctx, &plants.WateringLog{PlantID: p.ID, UserID: other, WaterGivenMl: 10})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreLatestWateringLog(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	userID := uuid.New()
	p := seedPlant(t, s, userID)

	latest, err := s.LatestWateringLog(ctx, userID, p.ID)
	require.NoError(t, err)
	assert.Nil(t, latest)

	day := func(d int) time.Time { return time.Date(2026, time.March, d, 0, 0, 0, 0, time.UTC) }
	created := time.Date(2026, time.March, 20, 12, 0, 0, 0, time.UTC)

	logs := []plants.WateringLog{
		{PlantID: p.ID, UserID: userID, LogDate: day(5), WaterGivenMl: 1, CreatedAt: created.Add(time.Hour)},
		{PlantID: p.ID, UserID: userID, LogDate: day(7), WaterGivenMl: 2, CreatedAt: created},
		{PlantID: p.ID, UserID: userID, LogDate: day(7), WaterGivenMl: 3, CreatedAt: created.Add(time.Minute)},
	}
	for i := range logs {
		require.NoError(t, s.CreateWateringLog(ctx, &logs[i]))
	}

	latest, err = s.LatestWateringLog(ctx, userID, p.ID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 3.0, latest.WaterGivenMl)
}

func TestMemoryStoreRecommendations(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	userID := uuid.New()
	p := seedPlant(t, s, userID)

	base := time.Date(2026, time.April, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		rec := plants.Recommendation{
			PlantID:            p.ID,
			UserID:             userID,
			Type:               plants.RecommendationTypeWater,
			RecommendedWaterMl: 100 + i,
			DateGenerated:      base.Add(time.Duration(i) * 24 * time.Hour),
			GenerationKey:      base.Add(time.Duration(i)*24*time.Hour).Format("2006-01-02") + "|none",
		}
		require.NoError(t, s.InsertRecommendation(ctx, &rec))
	}

	recs, err := s.ListRecommendations(ctx, userID, p.ID, 3)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, 104, recs[0].RecommendedWaterMl)
	assert.Equal(t, 102, recs[2].RecommendedWaterMl)

	latest, err := s.LatestRecommendation(ctx, userID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 104, latest.RecommendedWaterMl)

	none, err := s.LatestRecommendation(ctx, uuid.New(), p.ID)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestMemoryStoreGenerationGuard(t *testing.T) {
	ctx := context.Background()
	rec := func(plantID uuid.UUID) *plants.Recommendation {
		return &plants.Recommendation{PlantID: plantID, GenerationKey: "2026-04-01|none", DateGenerated: time.Now()}
	}

	guarded := NewMemoryStore()
	plantID := uuid.New()
	require.NoError(t, guarded.InsertRecommendation(ctx, rec(plantID)))
	assert.ErrorIs(t, guarded.InsertRecommendation(ctx, rec(plantID)), ErrDuplicate)
	// Same key on another plant is fine.
	assert.NoError(t, guarded.InsertRecommendation(ctx, rec(uuid.New())))

	unguarded := NewMemoryStore(WithoutGenerationGuard())
	require.NoError(t, unguarded.InsertRecommendation(ctx, rec(plantID)))
	assert.NoError(t, unguarded.InsertRecommendation(ctx, rec(plantID)))
}

func TestMemoryStoreProfiles(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	userID := uuid.New()

	_, err := s.GetProfile(ctx, userID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.SaveProfile(ctx, &plants.Profile{UserID: userID, City: "Portland", State: "OR"}))
	require.NoError(t, s.SaveProfile(ctx, &plants.Profile{UserID: userID, City: "Boise", State: "ID"}))

	p, err := s.GetProfile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "Boise", p.City)
	assert.False(t, p.UpdatedAt.IsZero())
}
