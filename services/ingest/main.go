package main

import (
	"context"
	"log"
	"time"

	"github.com/occiviz/garona/internal/config"
	"github.com/occiviz/garona/internal/dataset"
	"github.com/occiviz/garona/internal/db"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("ingest failed: %v", err)
	}
}

func run() error {
	cfg, err := config.LoadIngest()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	water, droppedWater, err := dataset.LoadWaterLevels(cfg.WaterCSVPath, cfg.MaxWaterHeightMM)
	if err != nil {
		return err
	}
	log.Printf("parsed %d water level readings (%d dropped)", len(water), droppedWater)

	rain, droppedRain, err := dataset.LoadRainfall(cfg.RainCSVPath)
	if err != nil {
		return err
	}
	log.Printf("parsed %d rainfall readings (%d dropped)", len(rain), droppedRain)

	if cfg.DryRun {
		log.Printf("dry-run: skipping upsert of %d water level and %d rainfall readings", len(water), len(rain))
		return nil
	}

	store, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}

	if err := store.InsertWaterLevels(ctx, water); err != nil {
		return err
	}
	if err := store.InsertRainfall(ctx, rain); err != nil {
		return err
	}

	log.Printf("upserted %d water level and %d rainfall readings", len(water), len(rain))
	return nil
}
