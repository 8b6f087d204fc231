// Package pool implements a fixed-size worker pool: N long-lived goroutines
// draining a shared, bounded-in-memory work queue of caller-supplied task
// closures, with a race-free create → submit* → shutdown → join → destroy
// lifecycle.
//
// The hard part lives one layer down, in internal/workqueue: the
// mutex/condvar protocol that lets producers and consumers wake each other
// without lost signals. Pool is the state machine built on top of it.
package pool

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chuliyu/workerpool/internal/workqueue"
)

// Task is a unit of work: a consumable, owned closure. It is invoked
// exactly once, on exactly one worker goroutine, for every Submit that
// returns nil. Whatever it captures must outlive its execution.
type Task = workqueue.Task

// Pool owns a WorkQueue and a fixed-size set of worker goroutines.
type Pool struct {
	queue *workqueue.Queue

	n             int // requested worker count
	actualWorkers int // workers actually started; see rollback in Create

	wg      sync.WaitGroup
	log     *slog.Logger
	metrics MetricsRecorder

	recoverPanics  bool
	startFailureAt int // test-only fault injection, see withStartFailureAt

	pending atomic.Int64 // queued + in-flight tasks, for QueueDepth

	shutdownOnce sync.Once
}

// Create constructs a Pool with n worker goroutines. n must be >= 1.
//
// Construction follows the original rollback discipline: if any step after
// the queue is created fails, every already-acquired resource is released,
// in reverse order, before the error is returned — nothing is leaked, and no
// half-constructed pool becomes visible to the caller. In Go the one
// construction-time failure mode is the startFailureAt test hook (real
// goroutine scheduling does not itself fail the way pthread_create can); the
// rollback ladder is preserved so a language or runtime boundary that *can*
// fail here is already wired into the right unwind path.
func Create(n int, opts ...Option) (*Pool, error) {
	if n < 1 {
		return nil, ErrInvalidArg
	}

	p := &Pool{
		queue:   workqueue.New(),
		n:       n,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: noopMetrics{},
	}
	p.startFailureAt = -1 // no injected failure unless withStartFailureAt sets one
	for _, opt := range opts {
		opt(p)
	}

	started := 0
	for i := 0; i < n; i++ {
		if i == p.startFailureAt {
			break
		}
		p.wg.Add(1)
		go p.workerLoop(i)
		started++
	}
	p.actualWorkers = started

	if started != n {
		// Rollback: stop accepting (wakes the started workers, who will
		// see an empty, stopped queue and terminate), join them, then
		// tear down. Never leak threads; never leave a half-built pool.
		p.queue.StopAccepting()
		p.wg.Wait()
		p.queue.Close()
		return nil, ErrSysFail
	}

	p.log.Info("pool started", "workers", p.actualWorkers)
	return p, nil
}

// Submit enqueues a task for execution by some worker. Returns ErrRejected
// if Shutdown has already been called; returns nil once the task is
// durably queued (it will execute exactly once unless the process ends
// abnormally).
func (p *Pool) Submit(task Task) error {
	if task == nil {
		return ErrInvalidArg
	}

	p.pending.Add(1)
	if err := p.queue.Push(task); err != nil {
		p.pending.Add(-1)
		p.metrics.TaskRejected()
		p.log.Debug("submission rejected")
		return ErrRejected
	}

	p.metrics.TaskSubmitted()
	p.metrics.QueueDepth(int(p.pending.Load()))
	return nil
}

// Shutdown stops the pool from accepting new work. It is idempotent and
// does not block: queued tasks still run to completion, but it does not
// wait for them — call Join for that. Repeated calls are safe and do not
// alter observable behavior.
func (p *Pool) Shutdown() {
	p.shutdownOnce.Do(func() {
		p.log.Info("pool shutdown requested")
		p.queue.StopAccepting()
	})
}

// Join blocks until every worker goroutine started by Create has returned.
// If the pool has not been shut down, this blocks indefinitely — documented
// contract, not a bug.
func (p *Pool) Join() error {
	p.wg.Wait()
	p.log.Info("pool joined", "workers", p.actualWorkers)
	return nil
}

// JoinThenDestroy joins every worker, then releases the pool's resources.
func (p *Pool) JoinThenDestroy() error {
	if err := p.Join(); err != nil {
		return err
	}
	p.Destroy()
	return nil
}

// Destroy releases the pool's resources. Precondition: every worker has
// already joined (i.e. called after Join/JoinThenDestroy, or after
// Shutdown+Join by hand); calling it earlier is a programming violation.
func (p *Pool) Destroy() {
	p.queue.Close()
	p.log.Info("pool destroyed")
}

// workerCount reports the number of goroutines actually started. Not part
// of the public lifecycle contract.
func (p *Pool) workerCount() int {
	return p.actualWorkers
}

// workerLoop is the consumer state machine: Idle -> Draining -> Terminated.
func (p *Pool) workerLoop(id int) {
	defer p.wg.Done()
	p.log.Debug("worker started", "worker", id)

	for {
		// Idle: sleep until there's work or the pool has shut down.
		p.queue.WaitWhileIdle()

		// Draining: keep popping without re-entering WaitWhileIdle as
		// long as work is immediately available.
		for {
			task, err := p.queue.Pop()
			if err != nil {
				if errors.Is(err, workqueue.ErrRejected) {
					p.log.Debug("worker terminated", "worker", id)
					return
				}
				// ErrUnderflow: spurious, go back to Idle.
				break
			}

			p.runTask(task)
		}
	}
}

// runTask executes a task outside the queue's lock and reports it to the
// ambient metrics/logging hooks. Panics propagate by default, per the
// documented minimum contract; WithPanicRecovery opts into the Design
// Notes §9 panic-catch adapter.
func (p *Pool) runTask(task Task) {
	start := time.Now()
	defer func() {
		p.pending.Add(-1)
		p.metrics.QueueDepth(int(p.pending.Load()))
	}()

	if p.recoverPanics {
		func() {
			defer func() {
				if r := recover(); r != nil {
					p.metrics.TaskPanicked()
					p.log.Error("recovered task panic", "panic", r)
				}
			}()
			task()
		}()
	} else {
		task()
	}

	p.metrics.TaskCompleted(time.Since(start))
}
