package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	// ServiceName is the name of the service for trace identification.
	ServiceName string
	// Enabled controls whether tracing is active.
	Enabled bool
}

// DefaultTracingConfig returns default tracing configuration.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName: "foodbank-backend",
		Enabled:     true,
	}
}

// TracingWithConfig returns OpenTelemetry tracing middleware.
// It wraps otelgin, so span names follow the matched route and incoming
// trace context is honored.
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	return otelgin.Middleware(cfg.ServiceName)
}

// SpanErrorMarker tags the request span with request_id and actor and
// marks it failed for 4xx responses; otelgin already fails 5xx. Place it after
// TracingWithConfig, RequestID and Actor.
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			if requestID := GetRequestID(c); requestID != "" {
				span.SetAttributes(attribute.String("request_id", requestID))
			}
			if actor := GetActor(c); actor != "" {
				span.SetAttributes(attribute.String("actor", actor))
			}
		}

		c.Next()

		if !span.IsRecording() {
			return
		}

		status := c.Writer.Status()
		if status < http.StatusBadRequest || status >= http.StatusInternalServerError {
			return
		}
		message := "Client Error"
		switch {
		case status == http.StatusConflict:
			message = "Conflict"
		case status == http.StatusNotFound:
			message = "Not Found"
		case status == http.StatusUnprocessableEntity:
			message = "Unprocessable Entity"
		}
		span.SetStatus(codes.Error, message)
		span.SetAttributes(attribute.Int("http.status_code", status))
	}
}
