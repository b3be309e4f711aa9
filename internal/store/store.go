package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/i474232898/plant-care/internal/plants"
)

var (
	// ErrNotFound is returned when a requested record does not exist for the user.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when an insert violates a uniqueness constraint.
	ErrDuplicate = errors.New("duplicate record")
)

// Store is the contract the in-memory store and the postgres store both satisfy.
// Every user-owned query is scoped by userID. Latest* methods return (nil, nil) when
// there is no matching record.
type Store interface {
	ListConditions(ctx context.Context) ([]plants.Conditions, error)
	GetConditions(ctx context.Context, id uuid.UUID) (plants.Conditions, error)
	UpsertConditions(ctx context.Context, c *plants.Conditions) error

	CreatePlant(ctx context.Context, p *plants.Plant) error
	GetPlant(ctx context.Context, userID, plantID uuid.UUID) (plants.Plant, error)
	ListPlants(ctx context.Context, userID uuid.UUID) ([]plants.Plant, error)

	CreateWateringLog(ctx context.Context, l *plants.WateringLog) error
	LatestWateringLog(ctx context.Context, userID, plantID uuid.UUID) (*plants.WateringLog, error)

	InsertRecommendation(ctx context.Context, rec *plants.Recommendation) error
	LatestRecommendation(ctx context.Context, userID, plantID uuid.UUID) (*plants.Recommendation, error)
	ListRecommendations(ctx context.Context, userID, plantID uuid.UUID, limit int) ([]plants.Recommendation, error)

	GetProfile(ctx context.Context, userID uuid.UUID) (*plants.Profile, error)
	SaveProfile(ctx context.Context, p *plants.Profile) error
}
