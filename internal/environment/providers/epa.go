package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/i474232898/plant-care/internal/environment"
)

// EPAUVProvider implements environment.UVSource on the EPA Envirofacts daily UV feed.
type EPAUVProvider struct {
	breaker
	name    string
	baseURL string
	httpCfg HTTPClientConfig
}

func NewEPAUVProvider(client *http.Client) *EPAUVProvider {
	return &EPAUVProvider{
		breaker: breaker{circuit: newBreaker("epa-uv")},
		name:    "epa-envirofacts",
		baseURL: "https://data.epa.gov/efservice/getEnvirofactsUVDAILY",
		httpCfg: defaultHTTPConfig(client),
	}
}

func (p *EPAUVProvider) Name() string {
	return p.name
}

func (p *EPAUVProvider) FetchUV(ctx context.Context, loc environment.Location) (environment.UVForecast, error) {
	city := strings.TrimSpace(loc.City)
	state := strings.TrimSpace(loc.State)
	if city == "" || state == "" {
		return environment.UVForecast{}, fmt.Errorf("epa uv requires city and state")
	}

	buildRequest := func() (*http.Request, error) {
		u := fmt.Sprintf("%s/CITY/%s/STATE/%s/JSON", p.baseURL, url.PathEscape(city), url.PathEscape(state))
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return environment.UVForecast{}, err
	}
	defer resp.Body.Close()

	var payload []struct {
		UVIndex      flexFloat `json:"UV_INDEX"`
		UVAlert      flexFloat `json:"UV_ALERT"`
		Ozone        flexFloat `json:"OZONE"`
		Latitude     flexFloat `json:"LATITUDE"`
		Longitude    flexFloat `json:"LONGITUDE"`
		Date         string    `json:"DATE"`
		DateForecast string    `json:"DATE_FORECAST"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return environment.UVForecast{}, err
	}
	if len(payload) == 0 {
		return environment.UVForecast{}, fmt.Errorf("%w: no uv forecast for %s, %s", environment.ErrNoData, city, state)
	}

	// The first entry is the most recent forecast (today or tomorrow).
	f := payload[0]
	date := f.DateForecast
	if date == "" {
		date = f.Date
	}

	return environment.UVForecast{
		ProviderName: p.name,
		UVIndex:      float64(f.UVIndex),
		AlertLevel:   int(f.UVAlert),
		Ozone:        float64(f.Ozone),
		Latitude:     float64(f.Latitude),
		Longitude:    float64(f.Longitude),
		ForecastDate: date,
	}, nil
}
