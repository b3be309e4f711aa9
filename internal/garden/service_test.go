package garden

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/plant-care/internal/plants"
	"github.com/i474232898/plant-care/internal/recommendation"
	"github.com/i474232898/plant-care/internal/store"
)

type mockEvaluator struct {
	mock.Mock
}

func (m *mockEvaluator) Evaluate(ctx context.Context, plant plants.Plant, userID uuid.UUID) recommendation.Outcome {
	args := m.Called(ctx, plant, userID)
	return args.Get(0).(recommendation.Outcome)
}

var fixedNow = time.Date(2026, time.September, 15, 10, 30, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *store.MemoryStore, *mockEvaluator, plants.Conditions) {
	t.Helper()
	s := store.NewMemoryStore()
	c := plants.Conditions{Name: "Tomato"}
	require.NoError(t, s.UpsertConditions(context.Background(), &c))

	ev := new(mockEvaluator)
	svc := NewService(s, ev, 2, time.UTC)
	svc.now = func() time.Time { return fixedNow }
	return svc, s, ev, c
}

func TestAddPlant(t *testing.T) {
	svc, _, _, c := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.AddPlant(ctx, userID, NewPlant{ConditionsID: c.ID, SoilType: "Moon Dust"})
	assert.ErrorIs(t, err, ErrInvalidSoilType)

	_, err = svc.AddPlant(ctx, userID, NewPlant{ConditionsID: uuid.New(), SoilType: plants.SoilLoamy})
	assert.ErrorIs(t, err, ErrUnknownConditions)

	p, err := svc.AddPlant(ctx, userID, NewPlant{ConditionsID: c.ID, SoilType: plants.SoilLoamy, Nickname: "  Tom "})
	require.NoError(t, err)
	assert.Equal(t, "Tom", p.Nickname)
	assert.Equal(t, "Tomato", p.Conditions.Name)
	assert.Equal(t, fixedNow, p.CreatedAt)
}

func TestListPlantsIncludesLastWatered(t *testing.T) {
	svc, _, _, c := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	watered, err := svc.AddPlant(ctx, userID, NewPlant{ConditionsID: c.ID, SoilType: plants.SoilSandy})
	require.NoError(t, err)
	_, err = svc.AddPlant(ctx, userID, NewPlant{ConditionsID: c.ID, SoilType: plants.SoilClay})
	require.NoError(t, err)

	_, err = svc.LogWatering(ctx, userID, watered.ID, NewWateringLog{WaterGivenMl: 200})
	require.NoError(t, err)

	list, err := svc.ListPlants(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 2)

	byID := map[uuid.UUID]PlantSummary{}
	for _, s := range list {
		byID[s.ID] = s
	}
	require.NotNil(t, byID[watered.ID].LastWatered)
	assert.Equal(t, time.Date(2026, time.September, 15, 0, 0, 0, 0, time.UTC), *byID[watered.ID].LastWatered)
	for id, s := range byID {
		if id != watered.ID {
			assert.Nil(t, s.LastWatered)
		}
	}
}

func TestLogWatering(t *testing.T) {
	svc, _, _, c := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	p, err := svc.AddPlant(ctx, userID, NewPlant{ConditionsID: c.ID, SoilType: plants.SoilRed})
	require.NoError(t, err)

	_, err = svc.LogWatering(ctx, userID, p.ID, NewWateringLog{WaterGivenMl: 0})
	assert.ErrorIs(t, err, ErrInvalidWaterAmount)

	_, err = svc.LogWatering(ctx, userID, p.ID, NewWateringLog{WaterGivenMl: 50, LogDate: fixedNow.Add(48 * time.Hour)})
	assert.ErrorIs(t, err, ErrFutureLogDate)

	_, err = svc.LogWatering(ctx, uuid.New(), p.ID, NewWateringLog{WaterGivenMl: 50})
	assert.ErrorIs(t, err, store.ErrNotFound)

	entry, err := svc.LogWatering(ctx, userID, p.ID, NewWateringLog{
		WaterGivenMl: 125,
		Notes:        " morning ",
		LogDate:      time.Date(2026, time.September, 13, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.September, 13, 0, 0, 0, 0, time.UTC), entry.LogDate)
	require.NotNil(t, entry.Notes)
	assert.Equal(t, "morning", *entry.Notes)
	assert.Equal(t, fixedNow, entry.CreatedAt)
}

func TestPlantDetailRunsEvaluation(t *testing.T) {
	svc, s, ev, c := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	p, err := svc.AddPlant(ctx, userID, NewPlant{ConditionsID: c.ID, SoilType: plants.SoilBlack})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, s.InsertRecommendation(ctx, &plants.Recommendation{
			PlantID:       p.ID,
			UserID:        userID,
			DateGenerated: fixedNow.Add(-time.Duration(i+1) * 24 * time.Hour),
			GenerationKey: uuid.NewString(),
		}))
	}

	ev.On("Evaluate", mock.Anything, mock.MatchedBy(func(pl plants.Plant) bool { return pl.ID == p.ID }), userID).
		Return(recommendation.Skipped(recommendation.ReasonNotStale)).Once()

	detail, err := svc.PlantDetail(ctx, userID, p.ID)

	require.NoError(t, err)
	assert.Equal(t, recommendation.Skipped(recommendation.ReasonNotStale), detail.Evaluation)
	assert.Len(t, detail.Recommendations, 2)
	assert.Equal(t, "Tomato", detail.Plant.Conditions.Name)
	ev.AssertExpectations(t)
}

func TestPlantDetailToleratesFailedEvaluation(t *testing.T) {
	svc, _, ev, c := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	p, err := svc.AddPlant(ctx, userID, NewPlant{ConditionsID: c.ID, SoilType: plants.SoilSilty})
	require.NoError(t, err)

	ev.On("Evaluate", mock.Anything, mock.Anything, userID).
		Return(recommendation.Failed(errors.New("db down")))

	detail, err := svc.PlantDetail(ctx, userID, p.ID)

	require.NoError(t, err)
	assert.Equal(t, recommendation.StatusFailed, detail.Evaluation.Status)
	assert.Empty(t, detail.Recommendations)
}

func TestPlantDetailUnknownPlant(t *testing.T) {
	svc, _, ev, _ := newTestService(t)

	_, err := svc.PlantDetail(context.Background(), uuid.New(), uuid.New())

	assert.ErrorIs(t, err, store.ErrNotFound)
	ev.AssertNotCalled(t, "Evaluate", mock.Anything, mock.Anything, mock.Anything)
}

func TestProfileDefaultsToEmpty(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	p, err := svc.Profile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, userID, p.UserID)
	assert.False(t, p.HasLocation())

	_, err = svc.UpdateProfile(ctx, plants.Profile{UserID: userID, City: " Tucson ", State: "AZ"})
	require.NoError(t, err)

	p, err = svc.Profile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "Tucson", p.City)
	assert.True(t, p.HasLocation())
}
