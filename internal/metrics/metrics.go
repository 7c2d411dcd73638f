package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Task metrics
	TasksSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskscheduler_tasks_submitted_total",
			Help: "Total number of tasks submitted",
		},
		[]string{"priority"},
	)

	TasksCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskscheduler_tasks_completed_total",
			Help: "Total number of tasks reaching a terminal state",
		},
		[]string{"status"},
	)

	TaskDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "taskscheduler_task_duration_seconds",
			Help:    "Task execution duration in seconds, from select to terminal state",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~16s
		},
		[]string{"algorithm"},
	)

	TaskRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskscheduler_task_retries_total",
			Help: "Total number of task retries (orphan recovery or timeout)",
		},
		[]string{"reason"},
	)

	TaskTimeouts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "taskscheduler_task_timeouts_total",
			Help: "Total number of tasks that hit their timeout",
		},
	)

	// Pool metrics
	PoolSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "taskscheduler_pool_size",
			Help: "Current number of tasks held in the pool, any status",
		},
	)

	PoolCapacity = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "taskscheduler_pool_capacity",
			Help: "Configured maximum pool size",
		},
	)

	QueueWaitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "taskscheduler_queue_wait_seconds",
			Help:    "Time a task spent pending before being selected",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
		},
	)

	SelectionsByAlgorithm = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskscheduler_selections_total",
			Help: "Total number of SelectNext calls that returned a task, by algorithm",
		},
		[]string{"algorithm"},
	)

	// Worker metrics
	ActiveWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "taskscheduler_active_workers",
			Help: "Current number of workers the supervisor considers live",
		},
	)

	WorkerRespawns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskscheduler_worker_respawns_total",
			Help: "Total number of times a worker was recovered and respawned",
		},
		[]string{"worker_id"},
	)

	WorkerBusyTime = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskscheduler_worker_busy_seconds_total",
			Help: "Total time workers spent executing tasks",
		},
		[]string{"worker_id"},
	)

	// Housekeeping metrics
	OrphansRecovered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "taskscheduler_orphans_recovered_total",
			Help: "Total number of RUNNING tasks reclaimed from a dead worker",
		},
	)

	TasksCompacted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "taskscheduler_tasks_compacted_total",
			Help: "Total number of aged-out terminal tasks dropped from the pool",
		},
	)

	TasksPromoted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "taskscheduler_tasks_promoted_total",
			Help: "Total number of MLFQ tasks promoted for aging past the starvation threshold",
		},
	)

	// HTTP metrics
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "taskscheduler_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskscheduler_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// Events metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskscheduler_events_published_total",
			Help: "Total number of lifecycle events published to Redis",
		},
		[]string{"event"},
	)

	EventPublishErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskscheduler_event_publish_errors_total",
			Help: "Total number of lifecycle event publish failures",
		},
		[]string{"event"},
	)

	// WebSocket metrics (control-plane snapshot stream)
	WebSocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "taskscheduler_websocket_connections",
			Help: "Current number of connected snapshot-stream clients",
		},
	)

	WebSocketMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskscheduler_websocket_messages_total",
			Help: "Total number of messages (snapshots and lifecycle events) sent to stream clients, by event type",
		},
		[]string{"type"},
	)
)

// RecordTaskSubmission records a task submission by priority.
func RecordTaskSubmission(priority string) {
	TasksSubmitted.WithLabelValues(priority).Inc()
}

// RecordTaskTerminal records a task reaching a terminal status, along with
// the wall-clock duration from selection to terminal state under the given
// algorithm.
func RecordTaskTerminal(status, algorithm string, durationSeconds float64) {
	TasksCompleted.WithLabelValues(status).Inc()
	TaskDuration.WithLabelValues(algorithm).Observe(durationSeconds)
}

// RecordTaskRetry records a retry, tagged with why it happened.
func RecordTaskRetry(reason string) {
	TaskRetries.WithLabelValues(reason).Inc()
}

// RecordTaskTimeout records a task hitting its configured timeout.
func RecordTaskTimeout() {
	TaskTimeouts.Inc()
}

// UpdatePoolSize sets the pool size and capacity gauges.
func UpdatePoolSize(size, capacity float64) {
	PoolSize.Set(size)
	PoolCapacity.Set(capacity)
}

// RecordQueueWait records how long a task sat PENDING before selection.
func RecordQueueWait(waitSeconds float64) {
	QueueWaitDuration.Observe(waitSeconds)
}

// RecordSelection records one successful SelectNext call under algorithm.
func RecordSelection(algorithm string) {
	SelectionsByAlgorithm.WithLabelValues(algorithm).Inc()
}

// SetActiveWorkers sets the active workers gauge.
func SetActiveWorkers(count float64) {
	ActiveWorkers.Set(count)
}

// RecordWorkerRespawn records a worker being recovered and respawned.
func RecordWorkerRespawn(workerID string) {
	WorkerRespawns.WithLabelValues(workerID).Inc()
}

// RecordWorkerBusyTime adds to a worker's cumulative busy time.
func RecordWorkerBusyTime(workerID string, duration float64) {
	WorkerBusyTime.WithLabelValues(workerID).Add(duration)
}

// RecordOrphansRecovered adds n to the orphan-recovery counter.
func RecordOrphansRecovered(n float64) {
	if n > 0 {
		OrphansRecovered.Add(n)
	}
}

// RecordTasksCompacted adds n to the compaction counter.
func RecordTasksCompacted(n float64) {
	if n > 0 {
		TasksCompacted.Add(n)
	}
}

// RecordTasksPromoted adds n to the MLFQ promotion counter.
func RecordTasksPromoted(n float64) {
	if n > 0 {
		TasksPromoted.Add(n)
	}
}

// RecordHTTPRequest records an HTTP request against the control API.
func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration)
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordEventPublished records a successful lifecycle event publish.
func RecordEventPublished(event string) {
	EventsPublished.WithLabelValues(event).Inc()
}

// RecordEventPublishError records a failed lifecycle event publish.
func RecordEventPublishError(event string) {
	EventPublishErrors.WithLabelValues(event).Inc()
}

// SetWebSocketConnections sets the snapshot-stream connection gauge.
func SetWebSocketConnections(count float64) {
	WebSocketConnections.Set(count)
}

// RecordWebSocketMessage records one message of msgType sent to a stream
// client.
func RecordWebSocketMessage(msgType string) {
	WebSocketMessages.WithLabelValues(msgType).Inc()
}
