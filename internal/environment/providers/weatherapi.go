package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/i474232898/plant-care/internal/environment"
)

// WeatherAPIProvider implements environment.WeatherSource on the WeatherAPI.com hourly forecast.
type WeatherAPIProvider struct {
	breaker
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
}

func NewWeatherAPIProvider(client *http.Client, apiKey string) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		breaker: breaker{circuit: newBreaker("weatherapi")},
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: "https://api.weatherapi.com/v1/forecast.json",
		httpCfg: defaultHTTPConfig(client),
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

func (p *WeatherAPIProvider) FetchForecast(ctx context.Context, at environment.Coordinates) ([]environment.ForecastEntry, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("weatherapi api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("key", p.apiKey)
		// WeatherAPI accepts "lat,lon" in q.
		values.Set("q", fmt.Sprintf("%f,%f", at.Lat, at.Lon))
		// Two days so a full 24h window is available late in the day.
		values.Set("days", "2")
		values.Set("aqi", "no")
		values.Set("alerts", "no")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		Forecast struct {
			ForecastDay []struct {
				Hour []struct {
					TimeEpoch    int64   `json:"time_epoch"`
					TempC        float64 `json:"temp_c"`
					Humidity     float64 `json:"humidity"`
					ChanceOfRain float64 `json:"chance_of_rain"`
					PrecipMm     float64 `json:"precip_mm"`
				} `json:"hour"`
			} `json:"forecastday"`
		} `json:"forecast"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	var entries []environment.ForecastEntry
	for _, day := range payload.Forecast.ForecastDay {
		for _, h := range day.Hour {
			entries = append(entries, environment.ForecastEntry{
				Timestamp:         time.Unix(h.TimeEpoch, 0).UTC(),
				TemperatureC:      h.TempC,
				HumidityPct:       h.Humidity,
				PrecipProbability: h.ChanceOfRain / 100,
				RainMm:            h.PrecipMm,
			})
		}
	}
	if len(entries) == 0 {
		return nil, environment.ErrNoData
	}
	return entries, nil
}
