package middleware

import (
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name for husk servers.
const defaultTracerName = "husk"

// OTelConfig configures the OpenTelemetry middleware.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "husk").
	TracerName string

	// Filter determines which requests to trace.
	// Return true to trace the request, false to skip.
	// If nil, all requests are traced.
	Filter func(r *http.Request) bool

	// tracer is the resolved tracer instance.
	tracer trace.Tracer
}

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithRequestFilter sets a filter function for requests.
func WithRequestFilter(filter func(r *http.Request) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

func defaultOTelConfig() OTelConfig {
	return OTelConfig{
		TracerName: defaultTracerName,
	}
}

// OpenTelemetry creates middleware that opens a server span per request.
//
// The span carries the HTTP method, path, and response status, and the
// request context is replaced so downstream handlers join the trace. The
// tracer comes from the global provider; configure it in main() before the
// server starts.
func OpenTelemetry(opts ...OTelOption) func(http.Handler) http.Handler {
	config := defaultOTelConfig()
	for _, opt := range opts {
		opt(&config)
	}

	config.tracer = otel.Tracer(config.TracerName)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if config.Filter != nil && !config.Filter(r) {
				next.ServeHTTP(w, r)
				return
			}

			ctx, span := config.tracer.Start(r.Context(),
				fmt.Sprintf("%s %s", r.Method, r.URL.Path),
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.method", r.Method),
					attribute.String("http.target", r.URL.Path),
				))
			defer span.End()

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r.WithContext(ctx))

			span.SetAttributes(attribute.Int("http.status_code", rec.status))
			if rec.status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(rec.status))
			} else {
				span.SetStatus(codes.Ok, "")
			}
		})
	}
}
