package rest

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oshokin/range-monitor/internal/logger"
	"github.com/oshokin/range-monitor/internal/metrics"
)

// RequestLoggingMiddleware logs every request and counts it by route.
func RequestLoggingMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		status := c.Writer.Status()
		m.HTTPRequestServed(c.Request.Method, route, status)

		logger.DebugKV(c.Request.Context(), "HTTP request served",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", time.Since(start),
		)
	}
}
