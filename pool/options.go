package pool

import (
	"log/slog"
	"time"
)

// MetricsRecorder is the ambient metrics hook a Pool reports through, kept
// as a narrow interface here so the core never imports Prometheus directly
// — internal/metrics.Collector implements it.
type MetricsRecorder interface {
	TaskSubmitted()
	TaskRejected()
	TaskCompleted(latency time.Duration)
	TaskPanicked()
	QueueDepth(n int)
}

type noopMetrics struct{}

func (noopMetrics) TaskSubmitted()              {}
func (noopMetrics) TaskRejected()                {}
func (noopMetrics) TaskCompleted(time.Duration) {}
func (noopMetrics) TaskPanicked()                {}
func (noopMetrics) QueueDepth(int)               {}

// Option configures optional, ambient behavior around the core engine.
// None of these change the documented lifecycle or error contract.
type Option func(*Pool)

// WithLogger attaches a structured logger for lifecycle events (worker
// start/stop, rejected submissions, recovered panics). A nil logger, or no
// WithLogger option at all, disables logging.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pool) {
		if logger != nil {
			p.log = logger
		}
	}
}

// WithMetrics attaches a MetricsRecorder (e.g. internal/metrics.Collector).
func WithMetrics(m MetricsRecorder) Option {
	return func(p *Pool) {
		if m != nil {
			p.metrics = m
		}
	}
}

// WithPanicRecovery wires the Design Notes §9 "panic-catch adapter": task
// panics are recovered, logged, and counted instead of crashing the worker
// goroutine. This is opt-in — the documented minimum contract (task panics
// are a programmer bug, not caught) is the default.
func WithPanicRecovery() Option {
	return func(p *Pool) {
		p.recoverPanics = true
	}
}

// withStartFailureAt is an unexported, test-only hook that makes the n-th
// (0-indexed) worker fail to start, so Create's rollback-on-partial-failure
// path (spec.md §4.3, property 8) is exercisable without relying on the
// runtime ever actually failing to schedule a goroutine.
func withStartFailureAt(n int) Option {
	return func(p *Pool) {
		p.startFailureAt = n
	}
}
