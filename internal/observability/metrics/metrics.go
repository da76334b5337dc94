// Package metrics provides Prometheus instrumentation for the SkyeMovie
// server. Handlers and services record into the package-level collectors;
// Handler exposes them for scraping at GET /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPRequests counts HTTP requests by method, route pattern, and status.
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "skyemovie_http_requests_total",
	Help: "Total HTTP requests handled.",
}, []string{"method", "path", "status"})

// HTTPDuration tracks HTTP latency by method and route pattern.
var HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "skyemovie_http_request_duration_seconds",
	Help:    "HTTP request latency.",
	Buckets: prometheus.DefBuckets,
}, []string{"method", "path"})

// CatalogFetches counts upstream catalog requests by endpoint and result.
var CatalogFetches = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "skyemovie_catalog_fetches_total",
	Help: "Upstream catalog fetches by endpoint and result.",
}, []string{"endpoint", "result"})

// DiscoverCacheHits counts discover cache lookups by outcome.
var DiscoverCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "skyemovie_discover_cache_total",
	Help: "Discover cache lookups by outcome (hit, miss, error).",
}, []string{"outcome"})

// FavoriteChanges counts favorite mutations by kind.
var FavoriteChanges = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "skyemovie_favorite_changes_total",
	Help: "Favorite additions and removals.",
}, []string{"kind"})

// FavoriteStreams is the number of open favorites SSE subscriptions.
var FavoriteStreams = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "skyemovie_favorite_streams_active",
	Help: "Open favorites change subscriptions.",
})

// AuthEvents counts auth events by type and result.
var AuthEvents = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "skyemovie_auth_events_total",
	Help: "Auth events by type (login, register, logout) and result.",
}, []string{"event", "result"})

// AccessAttempts counts access-code submissions by result.
var AccessAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "skyemovie_access_attempts_total",
	Help: "Access code submissions by result.",
}, []string{"result"})

// Handler returns the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveHTTP records one completed request.
func ObserveHTTP(method, path string, status int, elapsed time.Duration) {
	HTTPRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}
