package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/plant-care/internal/environment"
	"github.com/i474232898/plant-care/internal/store"
)

type AppConfig struct {
	Port        string
	HTTPTimeout time.Duration

	OpenWeatherAPIKey string
	WeatherAPIKey     string
	GeocoderAPIKey    string

	// UVProvider is "epa" or "openmeteo"; WeatherProvider is "openweather" or "weatherapi".
	UVProvider      string
	WeatherProvider string

	// Store is "memory" or "postgres".
	Store       string
	DB          store.DBConfig
	CatalogFile string

	JWTSecret string

	RedisURL        string
	RateLimitMax    int
	RateLimitWindow time.Duration

	// Timezone defines calendar-day boundaries for recommendation freshness.
	Timezone *time.Location
	// HistoryLimit is how many recommendations the plant view shows.
	HistoryLimit int
	// DefaultLocation is used for users without a profile location; nil means skip them.
	DefaultLocation *environment.Location

	MonitorInterval time.Duration
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.WeatherAPIKey = os.Getenv("WEATHERAPI_API_KEY")
	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}

	cfg.UVProvider = strings.ToLower(getenvDefault("UV_PROVIDER", "epa"))
	if cfg.UVProvider != "epa" && cfg.UVProvider != "openmeteo" {
		return nil, fmt.Errorf("invalid UV_PROVIDER %q: want epa or openmeteo", cfg.UVProvider)
	}
	cfg.WeatherProvider = strings.ToLower(getenvDefault("WEATHER_PROVIDER", "openweather"))
	if cfg.WeatherProvider != "openweather" && cfg.WeatherProvider != "weatherapi" {
		return nil, fmt.Errorf("invalid WEATHER_PROVIDER %q: want openweather or weatherapi", cfg.WeatherProvider)
	}

	cfg.Store = strings.ToLower(getenvDefault("STORE", "memory"))
	if cfg.Store != "memory" && cfg.Store != "postgres" {
		return nil, fmt.Errorf("invalid STORE %q: want memory or postgres", cfg.Store)
	}
	cfg.DB = Database()
	cfg.CatalogFile = getenvDefault("CATALOG_FILE", "data/plant_conditions.yaml")

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	cfg.RedisURL = os.Getenv("REDIS_URL")
	cfg.RateLimitMax = getenvInt("RATE_LIMIT_MAX", 60)
	if cfg.RateLimitWindow, err = getenvDuration("RATE_LIMIT_WINDOW", "1m"); err != nil {
		return nil, err
	}

	tzName := getenvDefault("RECOMMENDATION_TIMEZONE", "Local")
	if cfg.Timezone, err = time.LoadLocation(tzName); err != nil {
		return nil, fmt.Errorf("invalid RECOMMENDATION_TIMEZONE: %w", err)
	}
	cfg.HistoryLimit = getenvInt("RECOMMENDATION_HISTORY_LIMIT", 5)

	cfg.DefaultLocation, err = loadDefaultLocation()
	if err != nil {
		return nil, err
	}

	if cfg.MonitorInterval, err = getenvDuration("MONITOR_INTERVAL", "5m"); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Database reads the postgres connection settings. It does not load .env.
func Database() store.DBConfig {
	return store.DBConfig{
		Host:     getenvDefault("DB_HOST", "localhost"),
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		Name:     getenvDefault("DB_NAME", "plantcare"),
		Port:     getenvDefault("DB_PORT", "5432"),
		SSLMode:  getenvDefault("DB_SSLMODE", "disable"),
	}
}

func loadDefaultLocation() (*environment.Location, error) {
	city := strings.TrimSpace(os.Getenv("DEFAULT_LOCATION_CITY"))
	state := strings.TrimSpace(os.Getenv("DEFAULT_LOCATION_STATE"))
	if city == "" && state == "" {
		return nil, nil
	}
	if city == "" || state == "" {
		return nil, fmt.Errorf("DEFAULT_LOCATION_CITY and DEFAULT_LOCATION_STATE must be set together")
	}
	return &environment.Location{City: city, State: state}, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
