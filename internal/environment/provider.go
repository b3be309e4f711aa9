package environment

import (
	"context"
	"errors"
)

var (
	// ErrDataUnavailable means a reading could not be assembled from both sources.
	ErrDataUnavailable = errors.New("environmental data unavailable")

	// ErrNoData is returned by sources that answered successfully with an empty result.
	ErrNoData = errors.New("provider returned no data")
)

// UVSource abstracts a UV-forecast provider (e.g. EPA Envirofacts, Open-Meteo).
type UVSource interface {
	Name() string
	FetchUV(ctx context.Context, loc Location) (UVForecast, error)
}

// WeatherSource abstracts a weather-forecast provider (e.g. OpenWeatherMap, WeatherAPI).
type WeatherSource interface {
	Name() string
	FetchForecast(ctx context.Context, at Coordinates) ([]ForecastEntry, error)
}

// Geocoder resolves a city/state to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, loc Location) (Coordinates, error)
}
