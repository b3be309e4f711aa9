package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/plant-care/internal/plants"
)

// MemoryStore is a concurrency-safe in-memory implementation of Store.
type MemoryStore struct {
	mu sync.RWMutex

	conditions map[uuid.UUID]plants.Conditions
	plants     map[uuid.UUID]plants.Plant

	// key: plant id, value: append-ordered history
	logs            map[uuid.UUID][]plants.WateringLog
	recommendations map[uuid.UUID][]plants.Recommendation

	profiles map[uuid.UUID]plants.Profile

	// generationGuard enforces (plant, generation key) uniqueness like the postgres index.
	generationGuard bool
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithoutGenerationGuard disables the recommendation uniqueness check.
func WithoutGenerationGuard() MemoryOption {
	return func(s *MemoryStore) { s.generationGuard = false }
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		conditions:      make(map[uuid.UUID]plants.Conditions),
		plants:          make(map[uuid.UUID]plants.Plant),
		logs:            make(map[uuid.UUID][]plants.WateringLog),
		recommendations: make(map[uuid.UUID][]plants.Recommendation),
		profiles:        make(map[uuid.UUID]plants.Profile),
		generationGuard: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) ListConditions(_ context.Context) ([]plants.Conditions, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]plants.Conditions, 0, len(s.conditions))
	for _, c := range s.conditions {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) GetConditions(_ context.Context, id uuid.UUID) (plants.Conditions, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.conditions[id]
	if !ok {
		return plants.Conditions{}, ErrNotFound
	}
	return c, nil
}

// UpsertConditions matches existing entries by name, case-insensitively.
func (s *MemoryStore) UpsertConditions(_ context.Context, c *plants.Conditions) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, existing := range s.conditions {
		if strings.EqualFold(existing.Name, c.Name) {
			c.ID = id
			break
		}
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	s.conditions[c.ID] = *c
	return nil
}

func (s *MemoryStore) CreatePlant(_ context.Context, p *plants.Plant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if _, exists := s.plants[p.ID]; exists {
		return ErrDuplicate
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	stored := *p
	stored.Conditions = plants.Conditions{}
	s.plants[p.ID] = stored
	return nil
}

func (s *MemoryStore) GetPlant(_ context.Context, userID, plantID uuid.UUID) (plants.Plant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.plants[plantID]
	if !ok || p.UserID != userID {
		return plants.Plant{}, ErrNotFound
	}
	p.Conditions = s.conditions[p.ConditionsID]
	return p, nil
}

func (s *MemoryStore) ListPlants(_ context.Context, userID uuid.UUID) ([]plants.Plant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []plants.Plant
	for _, p := range s.plants {
		if p.UserID != userID {
			continue
		}
		p.Conditions = s.conditions[p.ConditionsID]
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) CreateWateringLog(_ context.Context, l *plants.WateringLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.plants[l.PlantID]; !ok || p.UserID != l.UserID {
		return ErrNotFound
	}
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	s.logs[l.PlantID] = append(s.logs[l.PlantID], *l)
	return nil
}

// LatestWateringLog orders by log date, then creation time, newest first.
func (s *MemoryStore) LatestWateringLog(_ context.Context, userID, plantID uuid.UUID) (*plants.WateringLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *plants.WateringLog
	for i := range s.logs[plantID] {
		l := s.logs[plantID][i]
		if l.UserID != userID {
			continue
		}
		if latest == nil || l.LogDate.After(latest.LogDate) ||
			(l.LogDate.Equal(latest.LogDate) && l.CreatedAt.After(latest.CreatedAt)) {
			cp := l
			latest = &cp
		}
	}
	return latest, nil
}

func (s *MemoryStore) InsertRecommendation(_ context.Context, rec *plants.Recommendation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generationGuard {
		for _, existing := range s.recommendations[rec.PlantID] {
			if existing.GenerationKey == rec.GenerationKey {
				return ErrDuplicate
			}
		}
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	s.recommendations[rec.PlantID] = append(s.recommendations[rec.PlantID], *rec)
	return nil
}

func (s *MemoryStore) LatestRecommendation(ctx context.Context, userID, plantID uuid.UUID) (*plants.Recommendation, error) {
	recs, err := s.ListRecommendations(ctx, userID, plantID, 1)
	if err != nil || len(recs) == 0 {
		return nil, err
	}
	return &recs[0], nil
}

// ListRecommendations returns up to limit records, newest first. limit <= 0 means all.
func (s *MemoryStore) ListRecommendations(_ context.Context, userID, plantID uuid.UUID, limit int) ([]plants.Recommendation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []plants.Recommendation
	for _, r := range s.recommendations[plantID] {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DateGenerated.After(out[j].DateGenerated) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) GetProfile(_ context.Context, userID uuid.UUID) (*plants.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *MemoryStore) SaveProfile(_ context.Context, p *plants.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.UpdatedAt = time.Now().UTC()
	s.profiles[p.UserID] = *p
	return nil
}
