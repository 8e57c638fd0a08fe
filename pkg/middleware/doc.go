// Package middleware provides HTTP middleware for the husk dev server.
//
// Two middlewares are included:
//
//   - Metrics: Prometheus request counters and latency histograms
//   - OpenTelemetry: a server span per request with method, path, and status
//
// Both follow the functional-options pattern and compose with any
// http.Handler chain (chi, stdlib mux):
//
//	r := chi.NewRouter()
//	r.Use(middleware.Metrics(middleware.WithNamespace("husk")))
//	r.Use(middleware.OpenTelemetry(middleware.WithTracerName("husk/dev")))
package middleware
