// Package metrics holds the Prometheus instruments for the service. All
// metrics self-register through promauto and are served on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ingestion Metrics
var (
	// IngestRunsTotal tracks ingestion runs by source and result
	IngestRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_runs_total",
			Help: "Total ingestion runs by source (twitter/sample) and result (ok/error)",
		},
		[]string{"source", "result"},
	)

	// IngestDegradedRunsTotal tracks runs that fell back to synthetic data
	IngestDegradedRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ingest_degraded_runs_total",
			Help: "Total ingestion runs that wanted live data but fell back to the sample generator",
		},
	)

	// IngestRunDuration tracks full run latency from fetch to final insert
	IngestRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ingest_run_duration_seconds",
			Help:    "Ingestion run duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	// IngestTweetsTotal tracks per-tweet outcomes inside a run
	IngestTweetsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_tweets_total",
			Help: "Total tweets handled by outcome (stored/duplicate/skipped)",
		},
		[]string{"outcome"},
	)
)

// Classification Metrics
var (
	// ClassificationDuration tracks single classification latency by engine
	ClassificationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "classification_duration_seconds",
			Help:    "Single text classification duration in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		},
		[]string{"engine"},
	)

	// ClassificationResultsTotal tracks produced labels
	ClassificationResultsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classification_results_total",
			Help: "Total classifications by resulting sentiment label",
		},
		[]string{"sentiment"},
	)
)

// HTTP Metrics
var (
	// HTTPRequestsTotal tracks requests by method, route pattern and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by method, route and status code",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration tracks request latency by route pattern
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds by method and route",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"method", "route"},
	)
)

// Export Metrics
var (
	// ExportRowsTotal tracks CSV rows streamed to clients
	ExportRowsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "export_rows_total",
			Help: "Total CSV rows exported",
		},
	)
)
