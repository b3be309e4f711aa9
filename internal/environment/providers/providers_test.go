package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/plant-care/internal/environment"
)

var fastBackoff = BackoffConfig{
	MaxRetries:      2,
	InitialInterval: time.Millisecond,
	MaxInterval:     2 * time.Millisecond,
}

func TestEPAUVProviderParsesStringNumbers(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		_, _ = w.Write([]byte(`[{"CITY":"SEATTLE","STATE":"WA","UV_INDEX":"7","UV_ALERT":"0","ZIP":"","DATE":"AUG/01/2026"}]`))
	}))
	defer srv.Close()

	p := NewEPAUVProvider(srv.Client())
	p.baseURL = srv.URL

	got, err := p.FetchUV(context.Background(), environment.Location{City: "San Jose", State: "CA"})

	require.NoError(t, err)
	assert.Equal(t, "/CITY/San%20Jose/STATE/CA/JSON", gotPath)
	assert.Equal(t, 7.0, got.UVIndex)
	assert.Equal(t, 0, got.AlertLevel)
	assert.Equal(t, "AUG/01/2026", got.ForecastDate)
	assert.Equal(t, "epa-envirofacts", got.ProviderName)
}

func TestEPAUVProviderEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	p := NewEPAUVProvider(srv.Client())
	p.baseURL = srv.URL

	_, err := p.FetchUV(context.Background(), environment.Location{City: "Nowhere", State: "ZZ"})
	assert.ErrorIs(t, err, environment.ErrNoData)
}

func TestEPAUVProviderRequiresCityAndState(t *testing.T) {
	p := NewEPAUVProvider(http.DefaultClient)
	_, err := p.FetchUV(context.Background(), environment.Location{City: "Seattle"})
	assert.Error(t, err)
}

func TestOpenWeatherProviderParsesForecast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))
		assert.Equal(t, "47.600000", r.URL.Query().Get("lat"))
		_, _ = w.Write([]byte(`{"list":[
			{"dt":1785571200,"main":{"temp":18.5,"humidity":72},"pop":0.35,"rain":{"3h":0.4}},
			{"dt":1785582000,"main":{"temp":21,"humidity":60},"pop":0}
		]}`))
	}))
	defer srv.Close()

	p := NewOpenWeatherProvider(srv.Client(), "test-key")
	p.baseURL = srv.URL

	entries, err := p.FetchForecast(context.Background(), environment.Coordinates{Lat: 47.6, Lon: -122.3})

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, time.Unix(1785571200, 0).UTC(), entries[0].Timestamp)
	assert.Equal(t, 72.0, entries[0].HumidityPct)
	assert.Equal(t, 0.35, entries[0].PrecipProbability)
	assert.Equal(t, 0.4, entries[0].RainMm)
	assert.Equal(t, 0.0, entries[1].RainMm)
}

func TestOpenWeatherProviderRequiresKey(t *testing.T) {
	p := NewOpenWeatherProvider(http.DefaultClient, "")
	_, err := p.FetchForecast(context.Background(), environment.Coordinates{Lat: 1, Lon: 1})
	assert.Error(t, err)
}

func TestWeatherAPIProviderParsesHours(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("days"))
		_, _ = w.Write([]byte(`{"forecast":{"forecastday":[
			{"hour":[{"time_epoch":100,"temp_c":10,"humidity":80,"chance_of_rain":90,"precip_mm":2.5}]},
			{"hour":[{"time_epoch":200,"temp_c":12,"humidity":70,"chance_of_rain":0,"precip_mm":0}]}
		]}}`))
	}))
	defer srv.Close()

	p := NewWeatherAPIProvider(srv.Client(), "k")
	p.baseURL = srv.URL

	entries, err := p.FetchForecast(context.Background(), environment.Coordinates{Lat: 1, Lon: 2})

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 0.9, entries[0].PrecipProbability)
	assert.Equal(t, 2.5, entries[0].RainMm)
	assert.Equal(t, int64(200), entries[1].Timestamp.Unix())
}

type staticGeocoder struct {
	coords environment.Coordinates
	calls  int
}

func (g *staticGeocoder) Geocode(_ context.Context, _ environment.Location) (environment.Coordinates, error) {
	g.calls++
	return g.coords, nil
}

func TestOpenMeteoUVProviderUsesGeocoder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "uv_index_max", r.URL.Query().Get("daily"))
		assert.Equal(t, "39.700000", r.URL.Query().Get("latitude"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"daily": map[string]any{"time": []string{"2026-08-01"}, "uv_index_max": []float64{8.4}},
		})
	}))
	defer srv.Close()

	geo := &staticGeocoder{coords: environment.Coordinates{Lat: 39.7, Lon: -105}}
	p := NewOpenMeteoUVProvider(srv.Client(), geo)
	p.baseURL = srv.URL

	got, err := p.FetchUV(context.Background(), environment.Location{City: "Denver", State: "CO"})

	require.NoError(t, err)
	assert.Equal(t, 1, geo.calls)
	assert.Equal(t, 8.4, got.UVIndex)
	assert.Equal(t, 1, got.AlertLevel)
	assert.Equal(t, 39.7, got.Latitude)
}

func TestOpenMeteoUVProviderWithoutCoordinates(t *testing.T) {
	p := NewOpenMeteoUVProvider(http.DefaultClient, nil)
	_, err := p.FetchUV(context.Background(), environment.Location{City: "Denver", State: "CO"})
	assert.Error(t, err)
}

func TestDoRequestWithResilienceRetriesServerErrors(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"list":[{"dt":1,"main":{"humidity":50}}]}`))
	}))
	defer srv.Close()

	p := NewOpenWeatherProvider(srv.Client(), "k")
	p.baseURL = srv.URL
	p.httpCfg.Backoff = fastBackoff

	entries, err := p.FetchForecast(context.Background(), environment.Coordinates{Lat: 1, Lon: 1})

	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestDoRequestWithResilienceGivesUp(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewOpenWeatherProvider(srv.Client(), "k")
	p.baseURL = srv.URL
	p.httpCfg.Backoff = fastBackoff

	_, err := p.FetchForecast(context.Background(), environment.Coordinates{Lat: 1, Lon: 1})

	assert.ErrorIs(t, err, errRateLimited)
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestDoRequestWithResilienceDoesNotRetryClientErrors(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := NewOpenWeatherProvider(srv.Client(), "bad-key")
	p.baseURL = srv.URL
	p.httpCfg.Backoff = fastBackoff

	_, err := p.FetchForecast(context.Background(), environment.Coordinates{Lat: 1, Lon: 1})

	var statusErr *statusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusUnauthorized, statusErr.code)
	assert.ErrorIs(t, err, errUnexpected)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	assert.Equal(t, "closed", p.BreakerState())
}

func TestFlexFloat(t *testing.T) {
	var v struct {
		A flexFloat `json:"a"`
		B flexFloat `json:"b"`
		C flexFloat `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"3.5","b":4,"c":""}`), &v))
	assert.Equal(t, flexFloat(3.5), v.A)
	assert.Equal(t, flexFloat(4), v.B)
	assert.Equal(t, flexFloat(0), v.C)

	assert.Error(t, json.Unmarshal([]byte(`{"a":"n/a"}`), &v))
}
