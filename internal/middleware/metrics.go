package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/cp-ladders/backend/internal/infrastructure"
)

// MetricsMiddleware creates a middleware that records HTTP metrics.
// Scrapes of the metrics endpoint itself are not recorded.
func MetricsMiddleware(metrics *infrastructure.TelemetryMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath() // route pattern, not the actual path
		if route == "/metrics" {
			c.Next()
			return
		}
		if route == "" {
			route = "unknown"
		}

		start := time.Now()
		c.Next()
		duration := time.Since(start).Seconds()

		attrs := []attribute.KeyValue{
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", c.Writer.Status()),
		}

		metrics.HTTPRequestDuration.Record(c.Request.Context(), duration,
			metric.WithAttributes(attrs...),
		)
		metrics.HTTPRequestCount.Add(c.Request.Context(), 1,
			metric.WithAttributes(attrs...),
		)
	}
}
