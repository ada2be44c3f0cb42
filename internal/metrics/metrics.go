package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// scope: project, milestones, delays, task
	ProgressComputeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "progress_summary_duration_seconds",
			Help:    "Time spent loading a snapshot and computing progress analytics",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
		[]string{"scope"},
	)

	DelayedTasks = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tasks_delayed",
			Help: "Delayed task count of the most recently summarized project",
		},
		[]string{"project"},
	)

	TaskUpdatesRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "task_updates_recorded_total",
			Help: "Total number of task status updates recorded",
		},
		[]string{"status"},
	)
)

func RecordHTTPRequestDuration(method, path string, status int, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, strconv.Itoa(status)).Observe(duration.Seconds())
}

func RecordProgressCompute(scope string, duration time.Duration) {
	ProgressComputeDuration.WithLabelValues(scope).Observe(duration.Seconds())
}

func SetDelayedTasks(projectID uint64, delayed int) {
	DelayedTasks.WithLabelValues(strconv.FormatUint(projectID, 10)).Set(float64(delayed))
}

func IncrementTaskUpdates(status string) {
	TaskUpdatesRecorded.WithLabelValues(status).Inc()
}
