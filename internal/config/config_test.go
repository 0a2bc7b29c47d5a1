package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendCSV, cfg.DataBackend)
	assert.Equal(t, "data/water_levels.csv", cfg.WaterCSVPath)
	assert.Equal(t, "data/rainfall.csv", cfg.RainCSVPath)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 50, cfg.DefaultTopN)
	assert.Equal(t, 0.0, cfg.RateLimitRPS)
	assert.Equal(t, 20, cfg.RateLimitBurst)
	assert.Equal(t, 10000.0, cfg.MaxWaterHeightMM)
	assert.Empty(t, cfg.BearerToken)
	assert.Equal(t, ":8080", cfg.ListenAddr())
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("DATA_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/garona")
	t.Setenv("WATER_CSV_PATH", "/srv/data/water.csv")
	t.Setenv("RAIN_CSV_PATH", "/srv/data/rain.csv")
	t.Setenv("PORT", "9090")
	t.Setenv("API_BEARER_TOKEN", "secret")
	t.Setenv("API_DEFAULT_TOP", "25")
	t.Setenv("RATE_LIMIT_RPS", "12.5")
	t.Setenv("RATE_LIMIT_BURST", "40")
	t.Setenv("MAX_WATER_HEIGHT_MM", "12000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendPostgres, cfg.DataBackend)
	assert.Equal(t, "postgres://localhost:5432/garona", cfg.DatabaseURL)
	assert.Equal(t, "/srv/data/water.csv", cfg.WaterCSVPath)
	assert.Equal(t, "/srv/data/rain.csv", cfg.RainCSVPath)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "secret", cfg.BearerToken)
	assert.Equal(t, 25, cfg.DefaultTopN)
	assert.Equal(t, 12.5, cfg.RateLimitRPS)
	assert.Equal(t, 40, cfg.RateLimitBurst)
	assert.Equal(t, 12000.0, cfg.MaxWaterHeightMM)
}

func TestLoad_APIPortFallback(t *testing.T) {
	t.Setenv("API_PORT", "8888")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8888, cfg.Port)
}

func TestLoad_PostgresRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATA_BACKEND", "postgres")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoad_CSVBackendNeedsNoDatabaseURL(t *testing.T) {
	t.Setenv("DATA_BACKEND", "csv")

	_, err := Load()
	require.NoError(t, err)
}

func TestLoad_InvalidBackend(t *testing.T) {
	t.Setenv("DATA_BACKEND", "sqlite")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATA_BACKEND")
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("PORT", "-1")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT")
}

func TestLoad_InvalidTop(t *testing.T) {
	t.Setenv("API_DEFAULT_TOP", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API_DEFAULT_TOP")
}

func TestLoad_InvalidRateLimit(t *testing.T) {
	t.Setenv("RATE_LIMIT_RPS", "-3")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RATE_LIMIT_RPS")
}

func TestLoadIngest_RequiresDatabaseURL(t *testing.T) {
	_, err := LoadIngest()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoadIngest_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/garona")

	cfg, err := LoadIngest()
	require.NoError(t, err)
	assert.Equal(t, "data/water_levels.csv", cfg.WaterCSVPath)
	assert.Equal(t, "data/rainfall.csv", cfg.RainCSVPath)
	assert.Equal(t, 10000.0, cfg.MaxWaterHeightMM)
	assert.False(t, cfg.DryRun)
}

func TestLoadIngest_DryRun(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/garona")
	t.Setenv("DRY_RUN", "true")

	cfg, err := LoadIngest()
	require.NoError(t, err)
	assert.True(t, cfg.DryRun)
}
