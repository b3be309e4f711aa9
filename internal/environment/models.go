package environment

import (
	"fmt"
	"strings"
	"time"
)

// Location identifies the place conditions are read for. City/State are required by
// city-keyed sources; coordinates are used where available.
type Location struct {
	City  string   `json:"city"`
	State string   `json:"state"`
	Lat   *float64 `json:"latitude,omitempty"`
	Lon   *float64 `json:"longitude,omitempty"`
}

// Key returns a canonical string key for logging and indexing this location.
func (l Location) Key() string {
	if l.City == "" && l.Lat != nil && l.Lon != nil {
		return fmt.Sprintf("%.4f,%.4f", *l.Lat, *l.Lon)
	}
	return strings.TrimSpace(l.City) + ":" + strings.ToUpper(strings.TrimSpace(l.State))
}

// Coordinates returns the location's coordinates if both are set.
func (l Location) Coordinates() (Coordinates, bool) {
	if l.Lat == nil || l.Lon == nil {
		return Coordinates{}, false
	}
	return Coordinates{Lat: *l.Lat, Lon: *l.Lon}, true
}

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// IsZero reports whether c is the unset origin.
func (c Coordinates) IsZero() bool {
	return c.Lat == 0 && c.Lon == 0
}

// Reading is the normalized environmental snapshot the calculator consumes.
type Reading struct {
	UVIndex              float64 `json:"uvIndex"`
	HumidityPercent      float64 `json:"humidityPercent"`
	PrecipitationPercent float64 `json:"precipitationPercent"`
}

// UVForecast is a single UV-source response.
type UVForecast struct {
	ProviderName string  `json:"provider"`
	UVIndex      float64 `json:"uvIndex"`
	AlertLevel   int     `json:"alertLevel"`
	Ozone        float64 `json:"ozone,omitempty"`
	Latitude     float64 `json:"latitude,omitempty"`
	Longitude    float64 `json:"longitude,omitempty"`
	ForecastDate string  `json:"forecastDate"`
}

// ForecastEntry is one hourly or 3-hourly weather forecast point.
type ForecastEntry struct {
	Timestamp    time.Time
	TemperatureC float64
	HumidityPct  float64
	// PrecipProbability is in [0,1].
	PrecipProbability float64
	RainMm            float64
}

// DailySummary averages forecast entries over the evaluation window.
type DailySummary struct {
	ProviderName         string  `json:"provider"`
	TemperatureC         float64 `json:"temperatureC"`
	HumidityPercent      float64 `json:"humidityPercent"`
	PrecipitationPercent float64 `json:"precipitationPercent"`
	RainMm               float64 `json:"rainMm"`
	Entries              int     `json:"entries"`
}

// Snapshot is the merged result of one UV and one weather fetch.
type Snapshot struct {
	Location  Location     `json:"location"`
	UV        UVForecast   `json:"uv"`
	Weather   DailySummary `json:"weather"`
	FetchedAt time.Time    `json:"fetchedAt"`
}

// Reading projects the snapshot onto the calculator's input shape.
func (s Snapshot) Reading() Reading {
	return Reading{
		UVIndex:              s.UV.UVIndex,
		HumidityPercent:      s.Weather.HumidityPercent,
		PrecipitationPercent: s.Weather.PrecipitationPercent,
	}
}
