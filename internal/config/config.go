package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Data backends the API can load readings from.
const (
	BackendCSV      = "csv"
	BackendPostgres = "postgres"
)

const (
	defaultWaterCSVPath     = "data/water_levels.csv"
	defaultRainCSVPath      = "data/rainfall.csv"
	defaultPort             = 8080
	defaultTopN             = 50
	defaultRateLimitBurst   = 20
	defaultMaxWaterHeightMM = 10000
)

// Config holds environment-driven settings for the REST API.
type Config struct {
	DataBackend      string
	WaterCSVPath     string
	RainCSVPath      string
	DatabaseURL      string
	Port             int
	BearerToken      string
	DefaultTopN      int
	RateLimitRPS     float64
	RateLimitBurst   int
	MaxWaterHeightMM float64
}

// Load reads configuration from environment variables (optionally .env).
func Load() (Config, error) {
	_ = godotenv.Load() // ignore missing file

	cfg := Config{
		DataBackend:      BackendCSV,
		WaterCSVPath:     defaultWaterCSVPath,
		RainCSVPath:      defaultRainCSVPath,
		Port:             defaultPort,
		DefaultTopN:      defaultTopN,
		RateLimitBurst:   defaultRateLimitBurst,
		MaxWaterHeightMM: defaultMaxWaterHeightMM,
	}

	if backend := strings.TrimSpace(os.Getenv("DATA_BACKEND")); backend != "" {
		switch strings.ToLower(backend) {
		case BackendCSV, BackendPostgres:
			cfg.DataBackend = strings.ToLower(backend)
		default:
			return cfg, fmt.Errorf("invalid DATA_BACKEND: %s", backend)
		}
	}

	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if cfg.DataBackend == BackendPostgres && cfg.DatabaseURL == "" {
		return cfg, errors.New("DATABASE_URL is required when DATA_BACKEND=postgres")
	}

	if path := strings.TrimSpace(os.Getenv("WATER_CSV_PATH")); path != "" {
		cfg.WaterCSVPath = path
	}
	if path := strings.TrimSpace(os.Getenv("RAIN_CSV_PATH")); path != "" {
		cfg.RainCSVPath = path
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			cfg.Port = port
		} else {
			return cfg, fmt.Errorf("invalid PORT: %s", portStr)
		}
	} else if portStr := os.Getenv("API_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			cfg.Port = port
		} else {
			return cfg, fmt.Errorf("invalid API_PORT: %s", portStr)
		}
	}

	if topStr := os.Getenv("API_DEFAULT_TOP"); topStr != "" {
		if top, err := strconv.Atoi(topStr); err == nil && top > 0 {
			cfg.DefaultTopN = top
		} else {
			return cfg, fmt.Errorf("invalid API_DEFAULT_TOP: %s", topStr)
		}
	}

	if rpsStr := os.Getenv("RATE_LIMIT_RPS"); rpsStr != "" {
		if rps, err := strconv.ParseFloat(rpsStr, 64); err == nil && rps >= 0 {
			cfg.RateLimitRPS = rps
		} else {
			return cfg, fmt.Errorf("invalid RATE_LIMIT_RPS: %s", rpsStr)
		}
	}

	if burstStr := os.Getenv("RATE_LIMIT_BURST"); burstStr != "" {
		if burst, err := strconv.Atoi(burstStr); err == nil && burst > 0 {
			cfg.RateLimitBurst = burst
		} else {
			return cfg, fmt.Errorf("invalid RATE_LIMIT_BURST: %s", burstStr)
		}
	}

	if heightStr := os.Getenv("MAX_WATER_HEIGHT_MM"); heightStr != "" {
		if height, err := strconv.ParseFloat(heightStr, 64); err == nil && height >= 0 {
			cfg.MaxWaterHeightMM = height
		} else {
			return cfg, fmt.Errorf("invalid MAX_WATER_HEIGHT_MM: %s", heightStr)
		}
	}

	cfg.BearerToken = os.Getenv("API_BEARER_TOKEN")

	return cfg, nil
}

// ListenAddr returns the host:port string for the HTTP server.
func (c Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// IngestConfig holds runtime configuration for the ingest service.
type IngestConfig struct {
	DatabaseURL      string
	WaterCSVPath     string
	RainCSVPath      string
	MaxWaterHeightMM float64
	DryRun           bool
}

// LoadIngest reads ingest configuration from environment variables
// (optionally .env). The ingest always writes to Postgres, so DATABASE_URL
// is required.
func LoadIngest() (IngestConfig, error) {
	_ = godotenv.Load()

	cfg := IngestConfig{
		WaterCSVPath:     defaultWaterCSVPath,
		RainCSVPath:      defaultRainCSVPath,
		MaxWaterHeightMM: defaultMaxWaterHeightMM,
	}

	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if cfg.DatabaseURL == "" {
		return cfg, errors.New("DATABASE_URL is required")
	}

	if path := strings.TrimSpace(os.Getenv("WATER_CSV_PATH")); path != "" {
		cfg.WaterCSVPath = path
	}
	if path := strings.TrimSpace(os.Getenv("RAIN_CSV_PATH")); path != "" {
		cfg.RainCSVPath = path
	}

	if heightStr := os.Getenv("MAX_WATER_HEIGHT_MM"); heightStr != "" {
		if height, err := strconv.ParseFloat(heightStr, 64); err == nil && height >= 0 {
			cfg.MaxWaterHeightMM = height
		} else {
			return cfg, fmt.Errorf("invalid MAX_WATER_HEIGHT_MM: %s", heightStr)
		}
	}

	dryRun := strings.TrimSpace(os.Getenv("DRY_RUN"))
	cfg.DryRun = dryRun == "1" || strings.EqualFold(dryRun, "true")

	return cfg, nil
}
