package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestMetrics_CountsRequests(t *testing.T) {
	reg := prometheus.NewRegistry()

	handler := Metrics(WithRegistry(reg))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}

	found := false
	for _, fam := range families {
		if fam.GetName() != "husk_http_requests_total" {
			continue
		}
		found = true
		for _, m := range fam.GetMetric() {
			labels := map[string]string{}
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			if labels["method"] != http.MethodGet || labels["status"] != "404" {
				t.Errorf("labels = %v", labels)
			}
			if m.GetCounter().GetValue() != 1 {
				t.Errorf("counter = %v", m.GetCounter().GetValue())
			}
		}
	}
	if !found {
		t.Error("husk_http_requests_total not registered")
	}
}

func TestMetrics_DefaultStatusOK(t *testing.T) {
	reg := prometheus.NewRegistry()

	handler := Metrics(WithRegistry(reg), WithNamespace("test"))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// No explicit WriteHeader.
			w.Write([]byte("ok"))
		}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	for _, fam := range families {
		if fam.GetName() != "test_http_requests_total" {
			continue
		}
		for _, m := range fam.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "status" && l.GetValue() != "200" {
					t.Errorf("status label = %s, want 200", l.GetValue())
				}
			}
		}
	}
}

func TestOpenTelemetry_PassesThrough(t *testing.T) {
	called := false
	handler := OpenTelemetry()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusAccepted)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/build", nil))

	if !called {
		t.Error("next handler not called")
	}
	if rec.Code != http.StatusAccepted {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestOpenTelemetry_Filter(t *testing.T) {
	handler := OpenTelemetry(
		WithRequestFilter(func(r *http.Request) bool {
			return r.URL.Path != "/metrics"
		}),
	)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	// Filtered request still reaches the handler.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}
