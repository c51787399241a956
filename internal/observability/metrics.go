package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce         sync.Once
	httpRequestsTotal    *prometheus.CounterVec
	httpLatencySeconds   *prometheus.HistogramVec
	httpErrorsTotal      *prometheus.CounterVec
	ratingBuildsTotal    prometheus.Counter
	ratingBuildSeconds   prometheus.Histogram
	ratingCacheLookups   *prometheus.CounterVec
	eventsPublishedTotal *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors exported by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lc_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lc_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lc_http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		ratingBuildsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lc_rating_builds_total",
			Help: "Number of leaderboard snapshots computed from the database.",
		})

		ratingBuildSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "lc_rating_build_seconds",
			Help:    "Time spent computing a leaderboard snapshot.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		})

		ratingCacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lc_rating_cache_lookups_total",
			Help: "Leaderboard cache lookups by result.",
		}, []string{"result"})

		eventsPublishedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lc_events_published_total",
			Help: "Domain events published by subject.",
		}, []string{"subject"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			ratingBuildsTotal,
			ratingBuildSeconds,
			ratingCacheLookups,
			eventsPublishedTotal,
		)
	})
}

// HTTPRequests exposes the request counter.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the request latency histogram.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the error response counter.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// RatingBuilds counts leaderboard computations.
func RatingBuilds() prometheus.Counter {
	RegisterMetrics()
	return ratingBuildsTotal
}

// RatingBuildDuration observes leaderboard computation time.
func RatingBuildDuration() prometheus.Histogram {
	RegisterMetrics()
	return ratingBuildSeconds
}

// RatingCacheLookups counts cache lookups by result: hit, miss or error.
func RatingCacheLookups() *prometheus.CounterVec {
	RegisterMetrics()
	return ratingCacheLookups
}

// EventsPublished counts published domain events.
func EventsPublished() *prometheus.CounterVec {
	RegisterMetrics()
	return eventsPublishedTotal
}
