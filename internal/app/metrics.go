package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wisatakota_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wisatakota_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 15},
		},
		[]string{"method", "path"},
	)

	// outcome is one of ok, empty, error
	providerRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wisatakota_provider_requests_total",
			Help: "Places provider searches by outcome",
		},
		[]string{"outcome"},
	)

	cacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wisatakota_cache_entries",
			Help: "Number of search result sets held in memory",
		},
	)
)
