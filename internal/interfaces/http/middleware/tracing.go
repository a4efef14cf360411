package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/openship/backend/internal/infrastructure/telemetry"
)

// Tracing opens an otelgin server span per request
func Tracing(serviceName string, enabled bool) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return otelgin.Middleware(serviceName)
}

// SpanEnricher must run inside Tracing. It adds request, user, shop and
// channel ids to the active span and marks 5xx responses as errors.
func SpanEnricher() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}
		if id := c.GetString("request_id"); id != "" {
			telemetry.SetAttributes(span, "request_id", id)
		}
		if id, ok := ActorID(c); ok {
			telemetry.SetAttributes(span, "user_id", id.String())
		}
		if id := c.Param("shopId"); id != "" {
			telemetry.SetAttributes(span, telemetry.SpanAttrShopID, id)
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(c.Writer.Status()))
		}
	}
}
