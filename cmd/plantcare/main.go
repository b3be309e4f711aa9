package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/plant-care/internal/api/http"
	"github.com/i474232898/plant-care/internal/cache"
	"github.com/i474232898/plant-care/internal/catalog"
	"github.com/i474232898/plant-care/internal/config"
	"github.com/i474232898/plant-care/internal/environment"
	"github.com/i474232898/plant-care/internal/environment/providers"
	"github.com/i474232898/plant-care/internal/garden"
	"github.com/i474232898/plant-care/internal/recommendation"
	"github.com/i474232898/plant-care/internal/scheduler"
	"github.com/i474232898/plant-care/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	var geo environment.Geocoder
	if g := providers.NewGoogleGeocoder(cfg.GeocoderAPIKey); g != nil {
		geo = g
	}

	// Providers with resilience (backoff + circuit breaker).
	var monitored []scheduler.BreakerReporter

	var uvSource environment.UVSource
	switch cfg.UVProvider {
	case "openmeteo":
		p := providers.NewOpenMeteoUVProvider(httpClient, geo)
		uvSource, monitored = p, append(monitored, p)
	default:
		p := providers.NewEPAUVProvider(httpClient)
		uvSource, monitored = p, append(monitored, p)
	}

	var weatherSource environment.WeatherSource
	switch cfg.WeatherProvider {
	case "weatherapi":
		p := providers.NewWeatherAPIProvider(httpClient, cfg.WeatherAPIKey)
		weatherSource, monitored = p, append(monitored, p)
	default:
		p := providers.NewOpenWeatherProvider(httpClient, cfg.OpenWeatherAPIKey)
		weatherSource, monitored = p, append(monitored, p)
	}

	adapter := environment.NewAdapter(uvSource, weatherSource, geo)

	jobs := []scheduler.Job{scheduler.BreakerMonitor(monitored...)}

	var st store.Store
	switch cfg.Store {
	case "postgres":
		db, err := store.Connect(cfg.DB)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		if err := store.Migrate(db); err != nil {
			log.Fatalf("failed to migrate database: %v", err)
		}
		st = store.NewPostgresStore(db)
		jobs = append(jobs, scheduler.PoolMonitor(db, 20))
	default:
		mem := store.NewMemoryStore()
		entries, err := catalog.LoadFile(cfg.CatalogFile)
		if err != nil {
			log.Printf("ERROR: failed to load plant catalog %s: %v", cfg.CatalogFile, err)
		} else if n, err := catalog.Seed(context.Background(), mem, entries); err != nil {
			log.Printf("ERROR: failed to seed plant catalog: %v", err)
		} else {
			log.Printf("INFO: loaded %d plant types into memory store", n)
		}
		st = mem
	}

	writerOpts := []recommendation.Option{recommendation.WithTimezone(cfg.Timezone)}
	if cfg.DefaultLocation != nil {
		writerOpts = append(writerOpts, recommendation.WithFallbackLocation(*cfg.DefaultLocation))
	}
	writer := recommendation.NewWriter(st, adapter, writerOpts...)

	service := garden.NewService(st, writer, cfg.HistoryLimit, cfg.Timezone)

	// Maintenance monitors only; recommendations are generated on plant views.
	sched := scheduler.New(cfg.MonitorInterval, jobs...)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "plant-care",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		// Plant views wait on two provider calls with retries.
		WriteTimeout: 30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	limiterCfg := limiter.Config{
		Max:        cfg.RateLimitMax,
		Expiration: cfg.RateLimitWindow,
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/health"
		},
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "too many requests")
		},
	}
	if cfg.RedisURL != "" {
		storage, err := cache.NewRedisStorage(cfg.RedisURL, "plantcare:limiter:")
		if err != nil {
			log.Printf("ERROR: redis unavailable, using in-process rate limiting: %v", err)
		} else {
			defer storage.Close()
			limiterCfg.Storage = storage
		}
	}

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(limiter.New(limiterCfg))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "plant-care",
			"store":   cfg.Store,
		})
	})

	httpapi.RegisterRoutes(app, service, adapter, httpapi.NewAuthMiddleware(cfg.JWTSecret))

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
