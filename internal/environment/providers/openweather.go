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

// OpenWeatherProvider implements environment.WeatherSource on the OpenWeatherMap
// 5-day / 3-hour forecast.
type OpenWeatherProvider struct {
	breaker
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
}

func NewOpenWeatherProvider(client *http.Client, apiKey string) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		breaker: breaker{circuit: newBreaker("openweather")},
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/data/2.5/forecast",
		httpCfg: defaultHTTPConfig(client),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

func (p *OpenWeatherProvider) FetchForecast(ctx context.Context, at environment.Coordinates) ([]environment.ForecastEntry, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("openweather api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("appid", p.apiKey)
		values.Set("units", "metric")
		values.Set("lat", fmt.Sprintf("%f", at.Lat))
		values.Set("lon", fmt.Sprintf("%f", at.Lon))

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		List []struct {
			Dt   int64 `json:"dt"`
			Main struct {
				Temp     float64 `json:"temp"`
				Humidity float64 `json:"humidity"`
			} `json:"main"`
			Pop  float64 `json:"pop"`
			Rain struct {
				ThreeH float64 `json:"3h"`
			} `json:"rain"`
		} `json:"list"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	if len(payload.List) == 0 {
		return nil, environment.ErrNoData
	}

	entries := make([]environment.ForecastEntry, 0, len(payload.List))
	for _, item := range payload.List {
		entries = append(entries, environment.ForecastEntry{
			Timestamp:         time.Unix(item.Dt, 0).UTC(),
			TemperatureC:      item.Main.Temp,
			HumidityPct:       item.Main.Humidity,
			PrecipProbability: item.Pop,
			RainMm:            item.Rain.ThreeH,
		})
	}
	return entries, nil
}
