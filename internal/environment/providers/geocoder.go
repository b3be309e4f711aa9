package providers

import (
	"context"
	"fmt"
	"sync"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/plant-care/internal/environment"
)

// GoogleGeocoder resolves city/state pairs through the Google Geocoding API.
type GoogleGeocoder struct {
	apiKey  string
	country string
}

// The geocoder package keeps its API key in a package variable.
var geocoderMu sync.Mutex

// NewGoogleGeocoder returns nil when apiKey is empty so callers can skip geocoding.
func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	if apiKey == "" {
		return nil
	}
	return &GoogleGeocoder{apiKey: apiKey, country: "United States"}
}

func (g *GoogleGeocoder) Geocode(ctx context.Context, loc environment.Location) (environment.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return environment.Coordinates{}, err
	}
	if loc.City == "" && loc.State == "" {
		return environment.Coordinates{}, fmt.Errorf("geocode: empty location")
	}

	geocoderMu.Lock()
	defer geocoderMu.Unlock()

	geocoder.ApiKey = g.apiKey
	res, err := geocoder.Geocoding(geocoder.Address{
		City:    loc.City,
		State:   loc.State,
		Country: g.country,
	})
	if err != nil {
		return environment.Coordinates{}, fmt.Errorf("geocode %s: %w", loc.Key(), err)
	}

	at := environment.Coordinates{Lat: res.Latitude, Lon: res.Longitude}
	if at.IsZero() {
		return environment.Coordinates{}, fmt.Errorf("geocode %s: %w", loc.Key(), environment.ErrNoData)
	}
	return at, nil
}
