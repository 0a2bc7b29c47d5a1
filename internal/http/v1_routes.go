package http

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// registerV1Routes sets up the versioned API structure
// Groups: /api/v1/water, /api/v1/rain
func (s *Server) registerV1Routes() {
	v1 := s.engine.Group("/api/v1")
	v1.Use(apiVersionMiddleware())
	if s.cfg.RateLimitRPS > 0 {
		v1.Use(rateLimitMiddleware(rate.NewLimiter(rate.Limit(s.cfg.RateLimitRPS), s.cfg.RateLimitBurst)))
	}
	if s.cfg.BearerToken != "" {
		v1.Use(bearerAuthMiddleware(s.cfg.BearerToken))
	}

	v1.GET("/range", s.handleV1Range)

	water := v1.Group("/water")
	{
		water.GET("/stations", s.handleV1WaterStations)
		water.GET("/stations/:id/series", s.handleV1WaterSeries)
		water.GET("/series", s.handleV1AggregatedSeries)
	}

	rain := v1.Group("/rain")
	{
		rain.GET("/stations", s.handleV1RainStations)
		rain.GET("/summaries", s.handleV1RainSummaries)
	}
}

func apiVersionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-API-Version", "v1")
		c.Next()
	}
}
