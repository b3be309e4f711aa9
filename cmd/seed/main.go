package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/plant-care/internal/catalog"
	"github.com/i474232898/plant-care/internal/config"
	"github.com/i474232898/plant-care/internal/store"
)

func init() {
	if err := godotenv.Load(); err != nil {
		// Running from cmd/seed/
		if err := godotenv.Load("../../.env"); err != nil {
			log.Printf("INFO: No .env file found: %v", err)
		}
	}
}

func main() {
	path := flag.String("file", "data/plant_conditions.yaml", "YAML plant catalog to load")
	migrate := flag.Bool("migrate", true, "run schema migrations before seeding")
	dryRun := flag.Bool("dry-run", false, "parse and validate the catalog without writing")
	flag.Parse()

	entries, err := catalog.LoadFile(*path)
	if err != nil {
		log.Fatalf("failed to load catalog: %v", err)
	}
	log.Printf("INFO: %s contains %d plant types", *path, len(entries))
	if *dryRun {
		for _, e := range entries {
			log.Printf("  %s", e.Name)
		}
		return
	}

	cfg := config.Database()
	log.Printf("DB_HOST: %s DB_PORT: %s DB_NAME: %s", cfg.Host, cfg.Port, cfg.Name)

	db, err := store.Connect(cfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if *migrate {
		if err := store.Migrate(db); err != nil {
			log.Fatalf("failed to migrate database: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := catalog.Seed(ctx, store.NewPostgresStore(db), entries)
	if err != nil {
		log.Fatalf("seeding stopped after %d entries: %v", n, err)
	}
	log.Printf("INFO: seed complete")
}
