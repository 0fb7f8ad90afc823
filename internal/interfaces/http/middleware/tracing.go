package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/missionpuck/logprinter/internal/infrastructure/logger"
)

// MaxRequestIDLength bounds request IDs copied from headers into spans
const MaxRequestIDLength = 128

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
		ServiceName: "logprinter",
		Enabled:     true,
	}
}

// Tracing returns the otelgin middleware. Span names follow "METHOD route",
// e.g. "GET /api/v1/print-jobs/:id".
func Tracing(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	return otelgin.Middleware(cfg.ServiceName)
}

// SpanAttributes tags the server span with the request ID and job ID and marks
// 4xx/5xx responses as errors. It must be placed after Tracing and
// logger.RequestID; the span is still open when the chain returns here.
func SpanAttributes() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}
		if id := requestID(c); id != "" {
			span.SetAttributes(attribute.String("request_id", id))
		}
		if jobID := c.GetString(JobIDKey); jobID != "" {
			span.SetAttributes(attribute.String("job.id", jobID))
		}

		status := c.Writer.Status()
		if status >= http.StatusBadRequest {
			span.SetAttributes(attribute.Int("http.status_code", status))
			if status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, "Internal Server Error")
			} else {
				span.SetStatus(codes.Error, http.StatusText(status))
			}
		}
	}
}

// JobIDKey is the gin context key handlers set to the print job they touched
const JobIDKey = "job_id"

// requestID retrieves the request ID set by logger.RequestID, falling back to
// a truncated header value
func requestID(c *gin.Context) string {
	if id := c.GetString(string(logger.RequestIDKey)); id != "" {
		return id
	}
	headerID := c.GetHeader(logger.RequestIDHeader)
	if len(headerID) > MaxRequestIDLength {
		return headerID[:MaxRequestIDLength]
	}
	return headerID
}
