package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RunsInQueue = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "collector_runs_in_queue",
			Help: "Current number of collection runs waiting in the queue.",
		},
	)

	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collector_runs_total",
			Help: "Total number of finished collection runs.",
		},
		[]string{"status", "stop_reason"},
	)

	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "collector_run_duration_seconds",
			Help:    "Duration of collection runs.",
			Buckets: []float64{5, 15, 30, 60, 120, 300, 600},
		},
	)

	// outcome: productive, stagnant, trigger_failed, scan_failed
	ScanPassesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collector_scan_passes_total",
			Help: "Total number of scan passes by outcome.",
		},
		[]string{"outcome"},
	)

	ProfilesCollectedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "collector_profiles_collected_total",
			Help: "Total number of distinct profile records collected.",
		},
	)

	TriggerFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "collector_trigger_failures_total",
			Help: "Total number of failed load-more triggers.",
		},
	)
)
