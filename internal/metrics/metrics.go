// Package metrics exposes Prometheus collectors for the thanks page function.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Page outcomes.
const (
	PageOK    = "ok"
	PageError = "error"
)

// Screenshot lookup results.
const (
	LookupFound   = "found"
	LookupDefault = "default"
	LookupError   = "error"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests, labeled by method and code.",
		},
		[]string{"method", "code"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, labeled by method and route.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"method", "route"},
	)

	thanksPagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thanks_pages_total",
			Help: "Total number of thanks page invocations, labeled by outcome and status code.",
		},
		[]string{"outcome", "code"},
	)

	screenshotLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thanks_screenshot_lookups_total",
			Help: "Total number of screenshot lookups, labeled by result.",
		},
		[]string{"result"},
	)

	screenshotLookupDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "thanks_screenshot_lookup_duration_seconds",
			Help:    "Histogram of record store lookup latencies.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
	)
)

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObservePage records the outcome of one page invocation.
func ObservePage(outcome string, code int) {
	thanksPagesTotal.WithLabelValues(outcome, strconv.Itoa(code)).Inc()
}

// ObserveScreenshotLookup records a record store lookup and its latency.
func ObserveScreenshotLookup(result string, duration time.Duration) {
	screenshotLookupsTotal.WithLabelValues(result).Inc()
	screenshotLookupDurationSeconds.Observe(duration.Seconds())
}
