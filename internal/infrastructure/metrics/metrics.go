package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_http_requests_total",
			Help: "Total number of HTTP requests served (by route, method and status).",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// result = "stored" | "rejected" | "error"
	ContributionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_contributions_total",
			Help: "Contributions processed by market data type and result.",
		},
		[]string{"type", "result"},
	)

	// result = "found" | "not_found"
	LookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_lookups_total",
			Help: "Contribution lookups by result.",
		},
		[]string{"result"},
	)

	ValidationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_validation_duration_seconds",
			Help:    "Time spent waiting for a validation outcome.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms → ~4s
		},
		[]string{"validator"},
	)

	StoreEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gateway_store_entries",
			Help: "Number of contributions held in memory.",
		},
	)
)

// ObserveDuration records the time elapsed since start on a histogram.
func ObserveDuration(h *prometheus.HistogramVec, start time.Time, labels ...string) {
	h.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
}

func IncContribution(kind, result string) {
	ContributionsTotal.WithLabelValues(kind, result).Inc()
}

func IncLookup(result string) {
	LookupsTotal.WithLabelValues(result).Inc()
}

func AddStoreEntries(delta int) {
	StoreEntries.Add(float64(delta))
}
