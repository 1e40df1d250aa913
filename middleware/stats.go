package middleware

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/seo-insights/backend/logging"
)

// saveEvery is how many requests pass between asynchronous statistics
// flushes.
const saveEvery = 100

// UsageTracking records the visitor behind every request and
// periodically persists the statistics. What each endpoint did
// (analysis, research, errors) is recorded by its handler, which knows
// the real target URL or seed.
func UsageTracking(usage *logging.Statistics) gin.HandlerFunc {
	return func(c *gin.Context) {
		total := usage.TrackRequest(c.ClientIP())

		if total%saveEvery == 0 {
			go func() {
				if err := usage.Save(); err != nil {
					slog.Warn("failed to persist usage statistics", "error", err)
				}
			}()
		}

		c.Next()
	}
}
