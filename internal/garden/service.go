package garden

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/plant-care/internal/plants"
	"github.com/i474232898/plant-care/internal/recommendation"
	"github.com/i474232898/plant-care/internal/store"
)

var (
	ErrInvalidSoilType    = errors.New("invalid soil type")
	ErrUnknownConditions  = errors.New("unknown plant type")
	ErrInvalidWaterAmount = errors.New("water amount must be greater than zero")
	ErrFutureLogDate      = errors.New("log date cannot be in the future")
)

// Evaluator runs one recommendation cycle for a plant.
type Evaluator interface {
	Evaluate(ctx context.Context, plant plants.Plant, userID uuid.UUID) recommendation.Outcome
}

// Service orchestrates the garden use cases on top of the store.
type Service struct {
	store        store.Store
	evaluator    Evaluator
	historyLimit int
	tz           *time.Location
	now          func() time.Time
}

// NewService creates a new Service. historyLimit is how many recommendations the
// detail view returns.
func NewService(s store.Store, evaluator Evaluator, historyLimit int, tz *time.Location) *Service {
	if historyLimit <= 0 {
		historyLimit = 5
	}
	if tz == nil {
		tz = time.Local
	}
	return &Service{
		store:        s,
		evaluator:    evaluator,
		historyLimit: historyLimit,
		tz:           tz,
		now:          time.Now,
	}
}

// PlantSummary is a plant plus the date it was last watered.
type PlantSummary struct {
	plants.Plant
	LastWatered *time.Time `json:"lastWatered"`
}

// PlantDetail is the plant detail view: the plant, this visit's evaluation, and history.
type PlantDetail struct {
	Plant           plants.Plant            `json:"plant"`
	Evaluation      recommendation.Outcome  `json:"evaluation"`
	Recommendations []plants.Recommendation `json:"recommendations"`
}

// NewPlant is the input for AddPlant.
type NewPlant struct {
	ConditionsID uuid.UUID
	SoilType     plants.SoilType
	Nickname     string
	DatePlanted  time.Time
}

// NewWateringLog is the input for LogWatering. A zero LogDate means today.
type NewWateringLog struct {
	WaterGivenMl float64
	Notes        string
	LogDate      time.Time
}

func (s *Service) Catalog(ctx context.Context) ([]plants.Conditions, error) {
	return s.store.ListConditions(ctx)
}

func (s *Service) AddPlant(ctx context.Context, userID uuid.UUID, in NewPlant) (plants.Plant, error) {
	if !in.SoilType.Valid() {
		return plants.Plant{}, fmt.Errorf("%w: %q", ErrInvalidSoilType, in.SoilType)
	}
	conditions, err := s.store.GetConditions(ctx, in.ConditionsID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return plants.Plant{}, ErrUnknownConditions
		}
		return plants.Plant{}, err
	}

	p := plants.Plant{
		ID:           uuid.New(),
		UserID:       userID,
		ConditionsID: conditions.ID,
		SoilType:     in.SoilType,
		Nickname:     strings.TrimSpace(in.Nickname),
		DatePlanted:  in.DatePlanted,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.CreatePlant(ctx, &p); err != nil {
		return plants.Plant{}, err
	}
	p.Conditions = conditions
	log.Printf("INFO: user %s added plant %s (%s)", userID, p.ID, conditions.Name)
	return p, nil
}

func (s *Service) ListPlants(ctx context.Context, userID uuid.UUID) ([]PlantSummary, error) {
	list, err := s.store.ListPlants(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]PlantSummary, 0, len(list))
	for _, p := range list {
		last, err := s.store.LatestWateringLog(ctx, userID, p.ID)
		if err != nil {
			return nil, err
		}
		summary := PlantSummary{Plant: p}
		if last != nil {
			d := last.LogDate
			summary.LastWatered = &d
		}
		out = append(out, summary)
	}
	return out, nil
}

func (s *Service) LogWatering(ctx context.Context, userID, plantID uuid.UUID, in NewWateringLog) (plants.WateringLog, error) {
	if in.WaterGivenMl <= 0 {
		return plants.WateringLog{}, ErrInvalidWaterAmount
	}

	now := s.now().In(s.tz)
	day := in.LogDate
	if day.IsZero() {
		day = now
	}
	y, m, d := day.Date()
	logDate := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	ny, nm, nd := now.Date()
	if logDate.After(time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)) {
		return plants.WateringLog{}, ErrFutureLogDate
	}

	entry := plants.WateringLog{
		ID:           uuid.New(),
		PlantID:      plantID,
		UserID:       userID,
		LogDate:      logDate,
		WaterGivenMl: in.WaterGivenMl,
		CreatedAt:    now.UTC(),
	}
	if notes := strings.TrimSpace(in.Notes); notes != "" {
		entry.Notes = &notes
	}
	if err := s.store.CreateWateringLog(ctx, &entry); err != nil {
		return plants.WateringLog{}, err
	}
	return entry, nil
}

// PlantDetail loads the plant, runs the recommendation cycle, then reads the latest
// recommendations. A skipped or failed evaluation does not fail the view.
func (s *Service) PlantDetail(ctx context.Context, userID, plantID uuid.UUID) (PlantDetail, error) {
	p, err := s.store.GetPlant(ctx, userID, plantID)
	if err != nil {
		return PlantDetail{}, err
	}

	outcome := s.evaluator.Evaluate(ctx, p, userID)
	if outcome.Status == recommendation.StatusFailed {
		log.Printf("ERROR: recommendation evaluation failed for plant %s: %v", plantID, outcome.Err)
	}

	recs, err := s.store.ListRecommendations(ctx, userID, plantID, s.historyLimit)
	if err != nil {
		return PlantDetail{}, err
	}

	return PlantDetail{
		Plant:           p,
		Evaluation:      outcome,
		Recommendations: recs,
	}, nil
}

func (s *Service) Recommendations(ctx context.Context, userID, plantID uuid.UUID, limit int) ([]plants.Recommendation, error) {
	if _, err := s.store.GetPlant(ctx, userID, plantID); err != nil {
		return nil, err
	}
	return s.store.ListRecommendations(ctx, userID, plantID, limit)
}

// Profile returns the user's profile, or an empty one if none was saved yet.
func (s *Service) Profile(ctx context.Context, userID uuid.UUID) (plants.Profile, error) {
	p, err := s.store.GetProfile(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return plants.Profile{UserID: userID}, nil
	}
	if err != nil {
		return plants.Profile{}, err
	}
	return *p, nil
}

func (s *Service) UpdateProfile(ctx context.Context, p plants.Profile) (plants.Profile, error) {
	p.City = strings.TrimSpace(p.City)
	p.State = strings.TrimSpace(p.State)
	if err := s.store.SaveProfile(ctx, &p); err != nil {
		return plants.Profile{}, err
	}
	return p, nil
}
