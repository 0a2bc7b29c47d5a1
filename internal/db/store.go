// Package db reads and writes the observation tables in Postgres. The API
// uses the fetch side when DATA_BACKEND=postgres; the ingest service owns the
// write side.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/occiviz/garona/internal/engine"
)

// Store wraps database access helpers.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store backed by a pgx pool.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// Close releases the pool resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

var schemaStatements = []string{
	`CREATE SCHEMA IF NOT EXISTS garona`,
	`CREATE TABLE IF NOT EXISTS garona.water_levels (
		station_id text NOT NULL,
		ts timestamptz NOT NULL,
		height_mm double precision NOT NULL,
		PRIMARY KEY (station_id, ts)
	)`,
	`CREATE TABLE IF NOT EXISTS garona.rainfall (
		station_id text NOT NULL,
		ts timestamptz NOT NULL,
		latitude double precision NOT NULL,
		longitude double precision NOT NULL,
		precipitation_mm double precision NOT NULL,
		PRIMARY KEY (station_id, ts)
	)`,
}

// EnsureSchema creates the garona schema and observation tables if missing.
// Statements run one at a time; pgx's default protocol rejects multi-statement
// strings.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

const fetchWaterLevelsSQL = `
    SELECT station_id, ts, height_mm
    FROM garona.water_levels
    ORDER BY station_id, ts
`

// FetchWaterLevels returns every water level reading, ordered by station and
// timestamp.
func (s *Store) FetchWaterLevels(ctx context.Context) ([]engine.WaterLevelReading, error) {
	rows, err := s.pool.Query(ctx, fetchWaterLevelsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	readings := make([]engine.WaterLevelReading, 0)
	for rows.Next() {
		var r engine.WaterLevelReading
		if err := rows.Scan(&r.StationID, &r.Timestamp, &r.Height); err != nil {
			return nil, err
		}
		r.Timestamp = r.Timestamp.UTC()
		readings = append(readings, r)
	}
	return readings, rows.Err()
}

const fetchRainfallSQL = `
    SELECT station_id, ts, latitude, longitude, precipitation_mm
    FROM garona.rainfall
    ORDER BY station_id, ts
`

// FetchRainfall returns every rainfall reading, ordered by station and
// timestamp.
func (s *Store) FetchRainfall(ctx context.Context) ([]engine.RainfallReading, error) {
	rows, err := s.pool.Query(ctx, fetchRainfallSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	readings := make([]engine.RainfallReading, 0)
	for rows.Next() {
		var r engine.RainfallReading
		if err := rows.Scan(&r.StationID, &r.Timestamp, &r.Latitude, &r.Longitude, &r.Precipitation); err != nil {
			return nil, err
		}
		r.Timestamp = r.Timestamp.UTC()
		readings = append(readings, r)
	}
	return readings, rows.Err()
}

const insertWaterLevelSQL = `INSERT INTO garona.water_levels (station_id, ts, height_mm)
VALUES ($1,$2,$3)
ON CONFLICT (station_id, ts) DO UPDATE
SET height_mm = EXCLUDED.height_mm`

// InsertWaterLevels upserts water level readings keyed on (station_id, ts),
// so re-running the ingest is idempotent.
func (s *Store) InsertWaterLevels(ctx context.Context, readings []engine.WaterLevelReading) error {
	if len(readings) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, r := range readings {
		batch.Queue(insertWaterLevelSQL, r.StationID, r.Timestamp, r.Height)
	}

	res := s.pool.SendBatch(ctx, batch)
	defer res.Close()

	for range readings {
		if _, err := res.Exec(); err != nil {
			return err
		}
	}
	return nil
}

const insertRainfallSQL = `INSERT INTO garona.rainfall (station_id, ts, latitude, longitude, precipitation_mm)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (station_id, ts) DO UPDATE
SET latitude = EXCLUDED.latitude,
    longitude = EXCLUDED.longitude,
    precipitation_mm = EXCLUDED.precipitation_mm`

// InsertRainfall upserts rainfall readings keyed on (station_id, ts).
func (s *Store) InsertRainfall(ctx context.Context, readings []engine.RainfallReading) error {
	if len(readings) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, r := range readings {
		batch.Queue(insertRainfallSQL, r.StationID, r.Timestamp, r.Latitude, r.Longitude, r.Precipitation)
	}

	res := s.pool.SendBatch(ctx, batch)
	defer res.Close()

	for range readings {
		if _, err := res.Exec(); err != nil {
			return err
		}
	}
	return nil
}
