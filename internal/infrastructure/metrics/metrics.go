package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Conversation-API Metrics
var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jan",
			Subsystem: "conversation_api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "jan",
			Subsystem: "conversation_api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"method", "endpoint"},
	)

	// Title derivation job counters
	TitleJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jan",
			Subsystem: "conversation_api",
			Name:      "title_jobs_total",
			Help:      "Total title derivation jobs processed",
		},
		[]string{"status"},
	)

	// Title derivation duration histogram
	TitleJobDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "jan",
			Subsystem: "conversation_api",
			Name:      "title_job_duration_seconds",
			Help:      "Title derivation duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
	)

	// Title queue depth gauge
	TitleQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "jan",
			Subsystem: "conversation_api",
			Name:      "title_queue_depth",
			Help:      "Conversations waiting for title derivation",
		},
	)

	// Sequence conflict counter
	SequenceConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "jan",
			Subsystem: "conversation_api",
			Name:      "sequence_conflicts_total",
			Help:      "Message inserts that lost a sequence race and were retried",
		},
	)
)

// RecordRequest records an HTTP request
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(durationSec)
}

// RecordTitleJob records a title derivation attempt
func RecordTitleJob(status string, durationSec float64) {
	TitleJobsTotal.WithLabelValues(status).Inc()
	TitleJobDuration.Observe(durationSec)
}

// SetTitleQueueDepth sets the current title queue depth
func SetTitleQueueDepth(depth int64) {
	TitleQueueDepth.Set(float64(depth))
}

// RecordSequenceConflict records a lost sequence race
func RecordSequenceConflict() {
	SequenceConflictsTotal.Inc()
}
