package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/occiviz/garona/internal/engine"
)

// handleV1Range returns the full timestamp span of the loaded datasets
// GET /api/v1/range
func (s *Server) handleV1Range(c *gin.Context) {
	r := s.handle.FullDataRange()
	c.JSON(http.StatusOK, gin.H{"data": r})
}

// handleV1WaterStations returns the station ids of the water level dataset
// GET /api/v1/water/stations
func (s *Server) handleV1WaterStations(c *gin.Context) {
	stations := s.handle.WaterStations()
	c.JSON(http.StatusOK, gin.H{
		"data": stations,
		"meta": gin.H{"count": len(stations)},
	})
}

// handleV1WaterSeries returns one station's level series with derived motion
// GET /api/v1/water/stations/:id/series?start=...&end=...&last_n_days=N
func (s *Server) handleV1WaterSeries(c *gin.Context) {
	stationID := c.Param("id")
	if stationID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "station id is required"})
		return
	}

	r, ok := s.parseRange(c)
	if !ok {
		return
	}

	series, err := s.handle.WaterLevelSeries(stationID, r)
	if err != nil {
		writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"station_id":               series.StationID,
			"points":                   series.Points,
			"deltas":                   series.Deltas(),
			"accelerations":            series.Accelerations,
			"normalized_accelerations": series.NormalizedAccelerations(),
		},
		"meta": gin.H{
			"count": len(series.Points),
			"start": r.Start.Format(time.RFC3339),
			"end":   r.End.Format(time.RFC3339),
		},
	})
}

// handleV1AggregatedSeries collapses all stations into one citywide series
// GET /api/v1/water/series?method=median&start=...&end=...
func (s *Server) handleV1AggregatedSeries(c *gin.Context) {
	method := engine.MethodMedian
	if m := c.Query("method"); m != "" {
		method = engine.AggregationMethod(m)
	}

	r, ok := s.parseRange(c)
	if !ok {
		return
	}

	series, err := s.handle.AggregatedWaterLevelSeries(r, method)
	if err != nil {
		writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"method":                   string(method),
			"points":                   series.Points,
			"deltas":                   series.Deltas(),
			"accelerations":            series.Accelerations,
			"normalized_accelerations": series.NormalizedAccelerations(),
		},
		"meta": gin.H{
			"count": len(series.Points),
			"start": r.Start.Format(time.RFC3339),
			"end":   r.End.Format(time.RFC3339),
		},
	})
}

// parseRange resolves start, end and last_n_days query parameters against the
// loaded data span. Responds with 400 and returns false on a bad parameter.
func (s *Server) parseRange(c *gin.Context) (engine.DateRange, bool) {
	r := s.handle.FullDataRange()

	if daysStr := c.Query("last_n_days"); daysStr != "" {
		days, err := strconv.Atoi(daysStr)
		if err != nil || days <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid last_n_days"})
			return engine.DateRange{}, false
		}
		now := s.clock.Now().UTC()
		r = engine.DateRange{Start: now.Add(-time.Duration(days) * 24 * time.Hour), End: now}
	}

	if startStr := c.Query("start"); startStr != "" {
		t, err := parseTimeParam(startStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start timestamp"})
			return engine.DateRange{}, false
		}
		r.Start = t
	}

	if endStr := c.Query("end"); endStr != "" {
		t, err := parseTimeParam(endStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end timestamp"})
			return engine.DateRange{}, false
		}
		r.End = t
	}

	return r, true
}

// parseTimeParam accepts RFC3339 timestamps or plain dates read as midnight UTC.
func parseTimeParam(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	return time.Parse("2006-01-02", value)
}

// writeEngineError maps engine sentinel errors onto HTTP statuses.
func writeEngineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, engine.ErrUnknownStation):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, engine.ErrInvalidParameter):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
