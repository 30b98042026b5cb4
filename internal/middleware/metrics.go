package middleware

import (
	"time"

	"github.com/GunarsK-portfolio/notes-service/internal/metrics"
	"github.com/gin-gonic/gin"
)

// Metrics returns middleware that records request counts and latency.
// The route label uses the matched route template, not the raw path, to
// keep label cardinality bounded.
func Metrics(collector *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		collector.RecordRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
