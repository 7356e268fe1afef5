// Package metrics provides the centralized Prometheus registry for the
// rating and prediction pipeline.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	RacesRatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "veloform",
		Name:      "races_rated_total",
		Help:      "Total number of races processed by the rating engine",
	})
	PairwiseUpdatesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "veloform",
		Name:      "pairwise_updates_total",
		Help:      "Total number of pairwise skill comparisons applied",
	})
	SubGroupBatchesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "veloform",
		Name:      "subgroup_batches_total",
		Help:      "Total number of large-field sub-group batches run",
	})
	PredictionsGeneratedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "veloform",
		Name:      "predictions_generated_total",
		Help:      "Total number of race predictions generated",
	})
	FeedPollsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "veloform",
		Name:      "feed_polls_total",
		Help:      "Total number of results feed polls",
	})
	FeedPollErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "veloform",
		Name:      "feed_poll_errors_total",
		Help:      "Total number of failed results feed polls",
	})
	DynamicsSweepsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "veloform",
		Name:      "dynamics_sweeps_total",
		Help:      "Total number of inactivity variance sweeps",
	})
)

// Gauge metrics
var (
	RidersRated = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "veloform",
		Name:      "riders_rated",
		Help:      "Number of riders with a persisted skill rating",
	})
	FormCacheEntries = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "veloform",
		Name:      "form_cache_entries",
		Help:      "Number of cached form scores",
	})
)

// Histogram metrics
var (
	RatingUpdateDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "veloform",
		Name:      "rating_update_duration_seconds",
		Help:      "Duration of rating engine race updates",
		Buckets:   prometheus.DefBuckets,
	})
	MonteCarloDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "veloform",
		Name:      "monte_carlo_duration_seconds",
		Help:      "Duration of shared Monte Carlo batches",
		Buckets:   prometheus.DefBuckets,
	})
	PredictionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "veloform",
		Name:      "prediction_duration_seconds",
		Help:      "End-to-end duration of race prediction generation",
		Buckets:   prometheus.DefBuckets,
	})
)

// Registry returns the process-wide registry, registering all collectors
// on first use.
func Registry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			RacesRatedTotal,
			PairwiseUpdatesTotal,
			SubGroupBatchesTotal,
			PredictionsGeneratedTotal,
			FeedPollsTotal,
			FeedPollErrorsTotal,
			DynamicsSweepsTotal,
			RidersRated,
			FormCacheEntries,
			RatingUpdateDuration,
			MonteCarloDuration,
			PredictionDuration,
		)
	})
	return registry
}

// Handler returns an HTTP handler serving the registry for /metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry(), promhttp.HandlerOpts{})
}
