package middleware

import (
	"net/http"
	"strconv"
	"time"

	"waconsole/internal/httputil"
	"waconsole/internal/metrics"
	"waconsole/internal/tracing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// Log field names shared between middleware and handlers.
const (
	LogFieldRequestID = "request_id"
	LogFieldTraceID   = "trace_id"
	LogFieldMethod    = "method"
	LogFieldPath      = "path"
	LogFieldStatus    = "status"
	LogFieldRemoteIP  = "remote_ip"
	LogFieldDuration  = "duration_ms"
)

type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWrapper) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// Observability wraps a handler with tracing, request logging and metrics.
func Observability(logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracing.StartSpan(r.Context(), "http_request")
			defer span.End()

			requestID := uuid.NewString()
			start := time.Now()
			r = r.WithContext(ctx)

			tracing.AddSpanAttributes(ctx,
				attribute.String("http.method", r.Method),
				attribute.String("http.route", r.URL.Path),
				attribute.String("client.address", httputil.GetClientIP(r)),
				attribute.String("request.id", requestID),
			)

			logger.WithFields(logrus.Fields{
				LogFieldRequestID: requestID,
				LogFieldTraceID:   tracing.TraceID(ctx),
				LogFieldMethod:    r.Method,
				LogFieldPath:      r.URL.Path,
				LogFieldRemoteIP:  httputil.GetClientIP(r),
			}).Debug("HTTP request started")

			metrics.IncrementCounter("http_requests_total", map[string]string{
				"method":   r.Method,
				"endpoint": r.URL.Path,
			}, "Total HTTP requests")

			wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapper, r)

			duration := time.Since(start)
			metrics.RecordTimer("http_request_duration", duration, map[string]string{
				"method":   r.Method,
				"endpoint": r.URL.Path,
			})
			metrics.IncrementCounter("http_responses_total", map[string]string{
				"status": strconv.Itoa(wrapper.statusCode),
			}, "Total HTTP responses by status")

			tracing.AddSpanAttributes(ctx,
				attribute.Int("http.status_code", wrapper.statusCode),
			)

			logger.WithFields(logrus.Fields{
				LogFieldRequestID: requestID,
				LogFieldTraceID:   tracing.TraceID(ctx),
				LogFieldMethod:    r.Method,
				LogFieldPath:      r.URL.Path,
				LogFieldStatus:    wrapper.statusCode,
				LogFieldDuration:  duration.Milliseconds(),
			}).Info("HTTP request completed")
		})
	}
}
