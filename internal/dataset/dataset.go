// Package dataset parses the two pre-prepared observation files the
// dashboard serves: daily river water levels and daily station rainfall.
// Format errors abort the load; implausible sensor values are dropped and
// counted so the caller can log them.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/occiviz/garona/internal/engine"
)

// Column names expected in the source files. Position does not matter;
// lookup is case-insensitive.
const (
	colStation   = "station_id"
	colDate      = "date_observation"
	colHeight    = "water_height_mm"
	colLatitude  = "latitude"
	colLongitude = "longitude"
	colPrecip    = "precipitation_mm"
)

// LoadWaterLevels parses the water level file at path. Heights at or above
// maxHeightMM are sensor glitches in the source data and are dropped; the
// dropped count is returned for logging. maxHeightMM <= 0 disables the
// filter.
func LoadWaterLevels(path string, maxHeightMM float64) ([]engine.WaterLevelReading, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open water level file: %w", err)
	}
	defer f.Close()
	return ParseWaterLevels(f, maxHeightMM)
}

// ParseWaterLevels reads water level rows from r.
func ParseWaterLevels(r io.Reader, maxHeightMM float64) ([]engine.WaterLevelReading, int, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	cols, err := readHeader(reader, colStation, colDate, colHeight)
	if err != nil {
		return nil, 0, fmt.Errorf("water level header: %w", err)
	}

	readings := make([]engine.WaterLevelReading, 0)
	dropped := 0
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("water level file: %w", err)
		}
		line++

		station := strings.TrimSpace(record[cols[colStation]])
		if station == "" {
			return nil, 0, fmt.Errorf("water level line %d: empty station_id", line)
		}
		ts, err := parseDate(record[cols[colDate]])
		if err != nil {
			return nil, 0, fmt.Errorf("water level line %d: %w", line, err)
		}
		height, err := strconv.ParseFloat(strings.TrimSpace(record[cols[colHeight]]), 64)
		if err != nil {
			return nil, 0, fmt.Errorf("water level line %d: invalid height: %w", line, err)
		}

		if maxHeightMM > 0 && height >= maxHeightMM {
			dropped++
			continue
		}

		readings = append(readings, engine.WaterLevelReading{
			StationID: station,
			Timestamp: ts,
			Height:    height,
		})
	}
	return readings, dropped, nil
}

// LoadRainfall parses the rainfall file at path. Negative precipitation
// values are sensor sentinels and are dropped; the dropped count is returned
// for logging.
func LoadRainfall(path string) ([]engine.RainfallReading, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open rainfall file: %w", err)
	}
	defer f.Close()
	return ParseRainfall(f)
}

// ParseRainfall reads rainfall rows from r.
func ParseRainfall(r io.Reader) ([]engine.RainfallReading, int, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	cols, err := readHeader(reader, colStation, colDate, colLatitude, colLongitude, colPrecip)
	if err != nil {
		return nil, 0, fmt.Errorf("rainfall header: %w", err)
	}

	readings := make([]engine.RainfallReading, 0)
	dropped := 0
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("rainfall file: %w", err)
		}
		line++

		station := strings.TrimSpace(record[cols[colStation]])
		if station == "" {
			return nil, 0, fmt.Errorf("rainfall line %d: empty station_id", line)
		}
		ts, err := parseDate(record[cols[colDate]])
		if err != nil {
			return nil, 0, fmt.Errorf("rainfall line %d: %w", line, err)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(record[cols[colLatitude]]), 64)
		if err != nil {
			return nil, 0, fmt.Errorf("rainfall line %d: invalid latitude: %w", line, err)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(record[cols[colLongitude]]), 64)
		if err != nil {
			return nil, 0, fmt.Errorf("rainfall line %d: invalid longitude: %w", line, err)
		}
		precip, err := strconv.ParseFloat(strings.TrimSpace(record[cols[colPrecip]]), 64)
		if err != nil {
			return nil, 0, fmt.Errorf("rainfall line %d: invalid precipitation: %w", line, err)
		}

		if precip < 0 {
			dropped++
			continue
		}

		readings = append(readings, engine.RainfallReading{
			StationID:     station,
			Timestamp:     ts,
			Latitude:      lat,
			Longitude:     lon,
			Precipitation: precip,
		})
	}
	return readings, dropped, nil
}

// readHeader consumes the header row and maps the required columns to their
// positions.
func readHeader(reader *csv.Reader, required ...string) (map[string]int, error) {
	header, err := reader.Read()
	if err != nil {
		return nil, err
	}
	header[0] = strings.TrimPrefix(header[0], "\uFEFF")

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range required {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}
	return index, nil
}

// parseDate accepts RFC3339 timestamps or plain 2006-01-02 dates; the source
// files carry daily observations as plain dates, read as midnight UTC.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return t, nil
}
