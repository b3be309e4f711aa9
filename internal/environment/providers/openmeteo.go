package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/i474232898/plant-care/internal/environment"
)

// OpenMeteoUVProvider implements environment.UVSource using Open-Meteo's daily uv_index_max.
// Open-Meteo is keyed by coordinates, so city-only locations go through the geocoder.
type OpenMeteoUVProvider struct {
	breaker
	name     string
	baseURL  string
	httpCfg  HTTPClientConfig
	geocoder environment.Geocoder
}

func NewOpenMeteoUVProvider(client *http.Client, geocoder environment.Geocoder) *OpenMeteoUVProvider {
	return &OpenMeteoUVProvider{
		breaker:  breaker{circuit: newBreaker("openmeteo")},
		name:     "openmeteo",
		baseURL:  "https://api.open-meteo.com/v1/forecast",
		httpCfg:  defaultHTTPConfig(client),
		geocoder: geocoder,
	}
}

func (p *OpenMeteoUVProvider) Name() string {
	return p.name
}

func (p *OpenMeteoUVProvider) FetchUV(ctx context.Context, loc environment.Location) (environment.UVForecast, error) {
	at, ok := loc.Coordinates()
	if !ok {
		if p.geocoder == nil {
			return environment.UVForecast{}, fmt.Errorf("openmeteo requires latitude and longitude")
		}
		var err error
		at, err = p.geocoder.Geocode(ctx, loc)
		if err != nil {
			return environment.UVForecast{}, fmt.Errorf("geocode %s: %w", loc.Key(), err)
		}
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%f", at.Lat))
		values.Set("longitude", fmt.Sprintf("%f", at.Lon))
		values.Set("daily", "uv_index_max")
		values.Set("forecast_days", "1")
		values.Set("timezone", "auto")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return environment.UVForecast{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Daily     struct {
			Time       []string   `json:"time"`
			UVIndexMax []*float64 `json:"uv_index_max"`
		} `json:"daily"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return environment.UVForecast{}, err
	}
	if len(payload.Daily.UVIndexMax) == 0 || payload.Daily.UVIndexMax[0] == nil {
		return environment.UVForecast{}, fmt.Errorf("%w: no uv_index_max for %s", environment.ErrNoData, loc.Key())
	}

	var date string
	if len(payload.Daily.Time) > 0 {
		date = payload.Daily.Time[0]
	}

	uv := *payload.Daily.UVIndexMax[0]
	return environment.UVForecast{
		ProviderName: p.name,
		UVIndex:      uv,
		AlertLevel:   uvAlertLevel(uv),
		Latitude:     at.Lat,
		Longitude:    at.Lon,
		ForecastDate: date,
	}, nil
}

// uvAlertLevel flags an alert for "very high" and above on the WHO scale.
func uvAlertLevel(uv float64) int {
	if uv >= 8 {
		return 1
	}
	return 0
}
