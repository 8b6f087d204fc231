// Package metrics collects and exposes Prometheus metrics for a worker
// pool: submission/rejection/completion counters, a task-latency histogram,
// a panic counter, and a queue-depth gauge. Adapted from the job-queue
// Collector this system's teacher repo carries, but tracking task lifecycle
// events instead of job lifecycle events.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector collects Prometheus metrics for a pool.Pool. It implements
// pool.MetricsRecorder.
type Collector struct {
	tasksSubmitted prometheus.Counter
	tasksRejected  prometheus.Counter
	tasksCompleted prometheus.Counter
	tasksPanicked  prometheus.Counter

	taskLatency prometheus.Histogram
	queueDepth  prometheus.Gauge
}

// NewCollector creates and registers a new Collector against the default
// Prometheus registry.
func NewCollector() *Collector {
	c := &Collector{
		tasksSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "workerpool_tasks_submitted_total",
			Help: "Total number of tasks accepted by Submit.",
		}),
		tasksRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "workerpool_tasks_rejected_total",
			Help: "Total number of Submit calls rejected after shutdown.",
		}),
		tasksCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "workerpool_tasks_completed_total",
			Help: "Total number of tasks that finished executing.",
		}),
		tasksPanicked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "workerpool_tasks_panicked_total",
			Help: "Total number of task panics recovered by WithPanicRecovery.",
		}),
		taskLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "workerpool_task_latency_seconds",
			Help:    "Task execution latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "workerpool_queue_depth",
			Help: "Current number of queued plus in-flight tasks.",
		}),
	}

	prometheus.MustRegister(
		c.tasksSubmitted,
		c.tasksRejected,
		c.tasksCompleted,
		c.tasksPanicked,
		c.taskLatency,
		c.queueDepth,
	)

	return c
}

// TaskSubmitted records a successful Submit.
func (c *Collector) TaskSubmitted() {
	c.tasksSubmitted.Inc()
}

// TaskRejected records a Submit rejected after shutdown.
func (c *Collector) TaskRejected() {
	c.tasksRejected.Inc()
}

// TaskCompleted records a finished task and its execution latency.
func (c *Collector) TaskCompleted(latency time.Duration) {
	c.tasksCompleted.Inc()
	c.taskLatency.Observe(latency.Seconds())
}

// TaskPanicked records a task panic recovered by WithPanicRecovery.
func (c *Collector) TaskPanicked() {
	c.tasksPanicked.Inc()
}

// QueueDepth sets the current queued-plus-in-flight task count.
func (c *Collector) QueueDepth(n int) {
	c.queueDepth.Set(float64(n))
}

// StartServer starts the Prometheus metrics HTTP server on the given port.
// Blocks; callers run it in its own goroutine.
func StartServer(port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(fmt.Sprintf(":%d", port), mux)
}
