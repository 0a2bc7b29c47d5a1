package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/occiviz/garona/internal/engine"
)

// rainSummaryResponse extends a station summary with the map color scale.
type rainSummaryResponse struct {
	engine.StationRainfallSummary
	VariationIndex float64 `json:"variation_index"`
}

// handleV1RainStations returns rainfall station metadata for the map layer
// GET /api/v1/rain/stations
func (s *Server) handleV1RainStations(c *gin.Context) {
	stations := s.handle.RainfallStations()
	c.JSON(http.StatusOK, gin.H{
		"data": stations,
		"meta": gin.H{"count": len(stations)},
	})
}

// handleV1RainSummaries returns the top stations ranked by total precipitation
// GET /api/v1/rain/summaries?start=...&end=...&top=N
func (s *Server) handleV1RainSummaries(c *gin.Context) {
	top := s.cfg.DefaultTopN
	if topStr := c.Query("top"); topStr != "" {
		parsed, err := strconv.Atoi(topStr)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid top"})
			return
		}
		top = parsed
	}

	r, ok := s.parseRange(c)
	if !ok {
		return
	}

	summaries, err := s.handle.RainfallSummaries(r)
	if err != nil {
		writeEngineError(c, err)
		return
	}

	ranked := engine.TopN(summaries, top)
	index := engine.VariationIndex(ranked)

	data := make([]rainSummaryResponse, 0, len(ranked))
	for i, summary := range ranked {
		data = append(data, rainSummaryResponse{
			StationRainfallSummary: summary,
			VariationIndex:         index[i],
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"data": data,
		"meta": gin.H{
			"count":    len(data),
			"top":      top,
			"stations": len(summaries),
			"start":    r.Start.Format(time.RFC3339),
			"end":      r.End.Format(time.RFC3339),
		},
	})
}
