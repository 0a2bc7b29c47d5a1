package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/occiviz/garona/internal/config"
	"github.com/occiviz/garona/internal/dataset"
	"github.com/occiviz/garona/internal/db"
	"github.com/occiviz/garona/internal/engine"
	httpserver "github.com/occiviz/garona/internal/http"
	"github.com/occiviz/garona/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	start := time.Now()
	water, rain, err := loadReadings(ctx, cfg)
	if err != nil {
		log.Fatalf("load error: %v", err)
	}

	handle, err := engine.Load(water, rain)
	if err != nil {
		log.Fatalf("aggregation error: %v", err)
	}

	metrics := observability.NewMetrics()
	nWater, nRain := handle.Size()
	metrics.DatasetReadings.WithLabelValues("water_levels").Set(float64(nWater))
	metrics.DatasetReadings.WithLabelValues("rainfall").Set(float64(nRain))
	metrics.DatasetLoadSeconds.Set(time.Since(start).Seconds())

	r := handle.FullDataRange()
	log.Printf("loaded %d water level and %d rainfall readings (%s to %s)",
		nWater, nRain, r.Start.Format(time.RFC3339), r.End.Format(time.RFC3339))

	srv := httpserver.New(cfg, handle, metrics)
	log.Printf("REST API listening on %s", cfg.ListenAddr())

	if err := srv.Run(ctx); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// loadReadings pulls both datasets from the configured backend.
func loadReadings(ctx context.Context, cfg config.Config) ([]engine.WaterLevelReading, []engine.RainfallReading, error) {
	if cfg.DataBackend == config.BackendPostgres {
		store, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("db connection: %w", err)
		}
		defer store.Close()

		water, err := store.FetchWaterLevels(ctx)
		if err != nil {
			return nil, nil, err
		}
		rain, err := store.FetchRainfall(ctx)
		if err != nil {
			return nil, nil, err
		}
		return water, rain, nil
	}

	water, droppedWater, err := dataset.LoadWaterLevels(cfg.WaterCSVPath, cfg.MaxWaterHeightMM)
	if err != nil {
		return nil, nil, err
	}
	if droppedWater > 0 {
		log.Printf("dropped %d implausible water level rows", droppedWater)
	}

	rain, droppedRain, err := dataset.LoadRainfall(cfg.RainCSVPath)
	if err != nil {
		return nil, nil, err
	}
	if droppedRain > 0 {
		log.Printf("dropped %d implausible rainfall rows", droppedRain)
	}

	return water, rain, nil
}
