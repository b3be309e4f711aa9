package environment

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Adapter merges one UV fetch and one weather fetch into a single reading.
// It never returns a partial result.
type Adapter struct {
	uv       UVSource
	weather  WeatherSource
	geocoder Geocoder
	now      func() time.Time
}

// NewAdapter creates a new Adapter. geocoder may be nil.
func NewAdapter(uv UVSource, weather WeatherSource, geocoder Geocoder) *Adapter {
	return &Adapter{
		uv:       uv,
		weather:  weather,
		geocoder: geocoder,
		now:      time.Now,
	}
}

// Reading returns the normalized reading for loc, or an error wrapping ErrDataUnavailable.
func (a *Adapter) Reading(ctx context.Context, loc Location) (Reading, error) {
	snap, err := a.Snapshot(ctx, loc)
	if err != nil {
		return Reading{}, err
	}
	return snap.Reading(), nil
}

// Snapshot fetches UV then weather for loc. The weather request uses the location's
// coordinates, else the coordinates reported by the UV source, else the geocoder.
func (a *Adapter) Snapshot(ctx context.Context, loc Location) (Snapshot, error) {
	if a.uv == nil || a.weather == nil {
		return Snapshot{}, fmt.Errorf("%w: sources not configured", ErrDataUnavailable)
	}

	uv, err := a.uv.FetchUV(ctx, loc)
	if err != nil {
		log.Printf("provider %s uv fetch failed for %s: %v", a.uv.Name(), loc.Key(), err)
		return Snapshot{}, fmt.Errorf("%w: uv: %v", ErrDataUnavailable, err)
	}

	at, err := a.coordinates(ctx, loc, uv)
	if err != nil {
		log.Printf("no coordinates for %s: %v", loc.Key(), err)
		return Snapshot{}, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}

	entries, err := a.weather.FetchForecast(ctx, at)
	if err != nil {
		log.Printf("provider %s forecast failed for %s: %v", a.weather.Name(), loc.Key(), err)
		return Snapshot{}, fmt.Errorf("%w: weather: %v", ErrDataUnavailable, err)
	}

	now := a.now()
	summary, ok := SummarizeForecast(entries, now)
	if !ok {
		log.Printf("provider %s returned no forecast entries for %s", a.weather.Name(), loc.Key())
		return Snapshot{}, fmt.Errorf("%w: weather: %v", ErrDataUnavailable, ErrNoData)
	}
	summary.ProviderName = a.weather.Name()
	if uv.ProviderName == "" {
		uv.ProviderName = a.uv.Name()
	}

	return Snapshot{
		Location:  loc,
		UV:        uv,
		Weather:   summary,
		FetchedAt: now.UTC(),
	}, nil
}

func (a *Adapter) coordinates(ctx context.Context, loc Location, uv UVForecast) (Coordinates, error) {
	if c, ok := loc.Coordinates(); ok {
		return c, nil
	}
	if c := (Coordinates{Lat: uv.Latitude, Lon: uv.Longitude}); !c.IsZero() {
		return c, nil
	}
	if a.geocoder == nil {
		return Coordinates{}, fmt.Errorf("location has no coordinates and no geocoder is configured")
	}
	return a.geocoder.Geocode(ctx, loc)
}
