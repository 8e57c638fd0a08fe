package dev

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// serverMetrics holds the dev server's own Prometheus metrics. Each server
// carries its own registry so repeated starts never collide on registration.
type serverMetrics struct {
	registry        *prometheus.Registry
	rebuildsTotal   *prometheus.CounterVec
	rebuildDuration prometheus.Histogram
	reloadsTotal    prometheus.Counter
}

func newServerMetrics(clientCount func() int) *serverMetrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	m := &serverMetrics{
		registry: registry,
		rebuildsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "husk",
			Subsystem: "dev",
			Name:      "rebuilds_total",
			Help:      "Total number of rebuilds triggered by file changes",
		}, []string{"status"}),
		rebuildDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "husk",
			Subsystem: "dev",
			Name:      "rebuild_duration_seconds",
			Help:      "Rebuild duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		reloadsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "husk",
			Subsystem: "dev",
			Name:      "reloads_total",
			Help:      "Total number of browser reload broadcasts",
		}),
	}

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "husk",
		Subsystem: "dev",
		Name:      "reload_clients",
		Help:      "Number of browsers connected to the reload socket",
	}, func() float64 {
		return float64(clientCount())
	})

	return m
}
