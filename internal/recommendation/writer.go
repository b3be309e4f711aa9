package recommendation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/plant-care/internal/common"
	"github.com/i474232898/plant-care/internal/environment"
	"github.com/i474232898/plant-care/internal/plants"
	"github.com/i474232898/plant-care/internal/store"
)

var (
	ErrStorageRead  = errors.New("recommendation storage read failed")
	ErrStorageWrite = errors.New("recommendation storage write failed")
)

// EnvironmentSource produces a reading for a location; errors mean the data is unavailable.
type EnvironmentSource interface {
	Reading(ctx context.Context, loc environment.Location) (environment.Reading, error)
}

// Store is the subset of storage the writer reads and writes.
type Store interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*plants.Profile, error)
	LatestRecommendation(ctx context.Context, userID, plantID uuid.UUID) (*plants.Recommendation, error)
	LatestWateringLog(ctx context.Context, userID, plantID uuid.UUID) (*plants.WateringLog, error)
	InsertRecommendation(ctx context.Context, rec *plants.Recommendation) error
}

// Writer evaluates a plant and persists at most one new recommendation per call.
// Evaluations are not serialized; concurrent duplicates are rejected by the store's
// generation-key uniqueness.
type Writer struct {
	store    Store
	env      EnvironmentSource
	fallback *environment.Location
	tz       *time.Location
	now      func() time.Time
}

// Option configures a Writer.
type Option func(*Writer)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(w *Writer) { w.now = now }
}

// WithTimezone sets the zone that defines calendar-day boundaries.
func WithTimezone(tz *time.Location) Option {
	return func(w *Writer) {
		if tz != nil {
			w.tz = tz
		}
	}
}

// WithFallbackLocation is used for users whose profile has no location.
func WithFallbackLocation(loc environment.Location) Option {
	return func(w *Writer) { w.fallback = &loc }
}

// NewWriter creates a new Writer.
func NewWriter(s Store, env EnvironmentSource, opts ...Option) *Writer {
	w := &Writer{
		store: s,
		env:   env,
		tz:    time.Local,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Evaluate runs one recommendation cycle for plant on behalf of userID.
func (w *Writer) Evaluate(ctx context.Context, plant plants.Plant, userID uuid.UUID) Outcome {
	loc, ok, err := w.location(ctx, userID)
	if err != nil {
		return Failed(fmt.Errorf("%w: profile: %v", ErrStorageRead, err))
	}
	if !ok {
		log.Printf("INFO: no location for user %s; skipping plant %s", userID, plant.ID)
		return Skipped(ReasonLocationUnknown)
	}

	reading, err := w.env.Reading(ctx, loc)
	if err != nil {
		log.Printf("INFO: environmental data unavailable for plant %s: %v", plant.ID, err)
		return Skipped(ReasonDataUnavailable)
	}

	lastRec, err := w.store.LatestRecommendation(ctx, userID, plant.ID)
	if err != nil {
		return Failed(fmt.Errorf("%w: latest recommendation: %v", ErrStorageRead, err))
	}
	lastLog, err := w.store.LatestWateringLog(ctx, userID, plant.ID)
	if err != nil {
		return Failed(fmt.Errorf("%w: latest watering log: %v", ErrStorageRead, err))
	}

	now := w.now().In(w.tz)

	var recAt, waterAt *time.Time
	if lastRec != nil {
		t := lastRec.DateGenerated.In(w.tz)
		recAt = &t
	}
	if lastLog != nil {
		t := lastLog.Timestamp(w.tz)
		waterAt = &t
	}

	if !ShouldGenerate(recAt, waterAt, now) {
		return Skipped(ReasonNotStale)
	}

	result := Compute(plant.Conditions, reading)
	rec := &plants.Recommendation{
		ID:                 uuid.New(),
		PlantID:            plant.ID,
		UserID:             userID,
		Type:               plants.RecommendationTypeWater,
		Text:               result.Rationale,
		RecommendedWaterMl: result.WaterMl,
		DateGenerated:      now.UTC(),
		GenerationKey:      generationKey(now, lastLog),
	}

	if err := w.store.InsertRecommendation(ctx, rec); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			log.Printf("INFO: recommendation for plant %s already generated (%s)", plant.ID, rec.GenerationKey)
			return Skipped(ReasonAlreadyGenerated)
		}
		log.Printf("ERROR: failed to store recommendation for plant %s: %v", plant.ID, err)
		return Failed(fmt.Errorf("%w: %v", ErrStorageWrite, err))
	}

	log.Printf("INFO: recommended %dml for plant %s (%s)", rec.RecommendedWaterMl, plant.ID, rec.Text)
	return Written(rec)
}

func (w *Writer) location(ctx context.Context, userID uuid.UUID) (environment.Location, bool, error) {
	profile, err := w.store.GetProfile(ctx, userID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return environment.Location{}, false, err
	}
	if profile.HasLocation() {
		return environment.Location{
			City:  profile.City,
			State: profile.State,
			Lat:   profile.Latitude,
			Lon:   profile.Longitude,
		}, true, nil
	}
	if w.fallback != nil {
		return *w.fallback, true, nil
	}
	return environment.Location{}, false, nil
}

// generationKey names the state a recommendation is derived from: the calendar day and
// the latest watering log. Equal keys mean the recommendations would be redundant.
func generationKey(now time.Time, lastLog *plants.WateringLog) string {
	basis := "none"
	if lastLog != nil {
		basis = lastLog.ID.String()
	}
	return common.DayKey(now) + "|" + basis
}
