package httpapi

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/i474232898/plant-care/internal/environment"
	"github.com/i474232898/plant-care/internal/garden"
	"github.com/i474232898/plant-care/internal/plants"
	"github.com/i474232898/plant-care/internal/store"
)

var validate = validator.New()

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 50
)

// EnvironmentPreviewer fetches current conditions for a location.
type EnvironmentPreviewer interface {
	Snapshot(ctx context.Context, loc environment.Location) (environment.Snapshot, error)
}

// RegisterRoutes wires the HTTP handlers into the Fiber app. Every /api/v1 route
// except the catalog listings requires auth.
func RegisterRoutes(app *fiber.App, svc *garden.Service, env EnvironmentPreviewer, auth fiber.Handler) {
	v1 := app.Group("/api/v1")

	v1.Get("/plant-conditions", func(c *fiber.Ctx) error {
		list, err := svc.Catalog(c.UserContext())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to load plant catalog")
		}
		return c.JSON(list)
	})

	v1.Get("/soil-types", func(c *fiber.Ctx) error {
		return c.JSON(plants.SoilTypes)
	})

	secured := v1.Group("", auth)

	secured.Get("/environment", func(c *fiber.Ctx) error {
		q := locationQuery{City: c.Query("city"), State: c.Query("state")}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		snap, err := env.Snapshot(c.UserContext(), environment.Location{City: q.City, State: q.State})
		if err != nil {
			if errors.Is(err, environment.ErrDataUnavailable) {
				return fiber.NewError(fiber.StatusServiceUnavailable, "environmental data unavailable")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch environmental data")
		}
		return c.JSON(fiber.Map{
			"snapshot": snap,
			"reading":  snap.Reading(),
		})
	})

	secured.Post("/plants", func(c *fiber.Ctx) error {
		userID, err := userIDFrom(c)
		if err != nil {
			return err
		}
		var req createPlantRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		in, err := req.toNewPlant()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		p, err := svc.AddPlant(c.UserContext(), userID, in)
		if err != nil {
			return serviceError(err, "failed to add plant")
		}
		return c.Status(fiber.StatusCreated).JSON(p)
	})

	secured.Get("/plants", func(c *fiber.Ctx) error {
		userID, err := userIDFrom(c)
		if err != nil {
			return err
		}
		list, err := svc.ListPlants(c.UserContext(), userID)
		if err != nil {
			return serviceError(err, "failed to list plants")
		}
		return c.JSON(list)
	})

	secured.Get("/plants/:id", func(c *fiber.Ctx) error {
		userID, plantID, err := plantParams(c)
		if err != nil {
			return err
		}
		detail, err := svc.PlantDetail(c.UserContext(), userID, plantID)
		if err != nil {
			return serviceError(err, "failed to load plant")
		}
		return c.JSON(detail)
	})

	secured.Post("/plants/:id/logs", func(c *fiber.Ctx) error {
		userID, plantID, err := plantParams(c)
		if err != nil {
			return err
		}
		var req wateringLogRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		in, err := req.toNewWateringLog()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		entry, err := svc.LogWatering(c.UserContext(), userID, plantID, in)
		if err != nil {
			return serviceError(err, "failed to log watering")
		}
		return c.Status(fiber.StatusCreated).JSON(entry)
	})

	secured.Get("/plants/:id/recommendations", func(c *fiber.Ctx) error {
		userID, plantID, err := plantParams(c)
		if err != nil {
			return err
		}
		limit, err := parseLimit(c.Query("limit"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		recs, err := svc.Recommendations(c.UserContext(), userID, plantID, limit)
		if err != nil {
			return serviceError(err, "failed to load recommendations")
		}
		return c.JSON(recs)
	})

	secured.Get("/profile", func(c *fiber.Ctx) error {
		userID, err := userIDFrom(c)
		if err != nil {
			return err
		}
		p, err := svc.Profile(c.UserContext(), userID)
		if err != nil {
			return serviceError(err, "failed to load profile")
		}
		return c.JSON(p)
	})

	secured.Put("/profile", func(c *fiber.Ctx) error {
		userID, err := userIDFrom(c)
		if err != nil {
			return err
		}
		var req profileRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := req.checkCoordinates(); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		p, err := svc.UpdateProfile(c.UserContext(), plants.Profile{
			UserID:    userID,
			City:      req.City,
			State:     req.State,
			Latitude:  req.Latitude,
			Longitude: req.Longitude,
		})
		if err != nil {
			return serviceError(err, "failed to save profile")
		}
		return c.JSON(p)
	})
}

// serviceError maps domain errors onto HTTP status codes.
func serviceError(err error, fallback string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "plant not found")
	case errors.Is(err, garden.ErrInvalidSoilType),
		errors.Is(err, garden.ErrUnknownConditions),
		errors.Is(err, garden.ErrInvalidWaterAmount),
		errors.Is(err, garden.ErrFutureLogDate):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, fallback)
	}
}

func plantParams(c *fiber.Ctx) (uuid.UUID, uuid.UUID, error) {
	userID, err := userIDFrom(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	plantID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid plant id")
	}
	return userID, plantID, nil
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return defaultHistoryLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > maxHistoryLimit {
		return 0, errors.New("limit must be an integer between 1 and 50")
	}
	return limit, nil
}

// locationQuery holds query parameters for identifying a location.
type locationQuery struct {
	City  string `validate:"required"`
	State string `validate:"required,min=2"`
}

type createPlantRequest struct {
	ConditionsID string `json:"conditionsId" validate:"required,uuid"`
	SoilType     string `json:"soilType" validate:"required"`
	Nickname     string `json:"nickname" validate:"max=100"`
	DatePlanted  string `json:"datePlanted"`
}

func (r createPlantRequest) toNewPlant() (garden.NewPlant, error) {
	conditionsID, err := uuid.Parse(r.ConditionsID)
	if err != nil {
		return garden.NewPlant{}, errors.New("invalid conditionsId")
	}
	in := garden.NewPlant{
		ConditionsID: conditionsID,
		SoilType:     plants.SoilType(r.SoilType),
		Nickname:     r.Nickname,
	}
	if r.DatePlanted != "" {
		d, err := parseDate(r.DatePlanted)
		if err != nil {
			return garden.NewPlant{}, err
		}
		in.DatePlanted = d
	}
	return in, nil
}

type wateringLogRequest struct {
	WaterGivenMl float64 `json:"waterGivenMl" validate:"required,gt=0"`
	Notes        string  `json:"notes" validate:"max=500"`
	LogDate      string  `json:"logDate"`
}

func (r wateringLogRequest) toNewWateringLog() (garden.NewWateringLog, error) {
	in := garden.NewWateringLog{WaterGivenMl: r.WaterGivenMl, Notes: r.Notes}
	if r.LogDate != "" {
		d, err := parseDate(r.LogDate)
		if err != nil {
			return garden.NewWateringLog{}, err
		}
		in.LogDate = d
	}
	return in, nil
}

type profileRequest struct {
	City      string   `json:"city" validate:"required"`
	State     string   `json:"state" validate:"required,min=2"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude" validate:"omitempty,longitude"`
}

func (r profileRequest) checkCoordinates() error {
	if (r.Latitude == nil) != (r.Longitude == nil) {
		return errors.New("latitude and longitude must be provided together")
	}
	return nil
}

// parseDate accepts a calendar date (2006-01-02) or RFC3339.
func parseDate(s string) (time.Time, error) {
	if d, err := time.Parse(time.DateOnly, s); err == nil {
		return d, nil
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	return time.Time{}, errors.New("invalid date format; use YYYY-MM-DD or RFC3339")
}
