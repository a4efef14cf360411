package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/openship/backend/internal/infrastructure/telemetry"
)

// Profiling attaches route and method pprof labels to the rest of the chain.
// Disabled returns a pass-through.
func Profiling(enabled bool) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		labels := map[string]string{
			telemetry.ProfilingLabelRoute: route,
			"method":                      c.Request.Method,
		}
		telemetry.WithProfilingLabels(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}
