// Package workqueue wraps the unbounded task fifo with the mutex/condvar
// protocol a multi-producer, multi-consumer pool needs: a not-empty
// condition variable and a one-way "stopped accepting" flag. Every field of
// the underlying fifo is touched only while the queue's mutex is held.
package workqueue

import (
	"errors"
	"sync"

	"github.com/chuliyu/workerpool/internal/fifo"
)

// Task is the unit of work the queue stores: a closure capturing its own
// argument. Re-exported from fifo so callers never need to import it.
type Task = fifo.Task

var (
	// ErrRejected is returned by Push once StopAccepting has been called,
	// and by Pop when the queue is drained and stopped.
	ErrRejected = errors.New("workqueue: rejected, no longer accepting work")

	// ErrUnderflow is a transient signal from Pop meaning the queue is
	// momentarily empty but still accepting; the caller should wait.
	ErrUnderflow = errors.New("workqueue: underflow, queue is momentarily empty")
)

// Queue is a thread-safe, FIFO, shutdown-aware container of Tasks.
type Queue struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	fifo     *fifo.Fifo

	stoppedAccepting bool
}

// New allocates an empty, accepting Queue.
func New() *Queue {
	q := &Queue{fifo: fifo.New()}
	q.notEmpty = sync.NewCond(&q.mu)
	return q
}

// Push enqueues a task. Returns ErrRejected if the queue has stopped
// accepting work; otherwise wakes a waiting consumer if the queue was empty.
//
// Broadcast, not signal, because WaitWhileIdle is called speculatively by
// workers that may race each other and the producer for the same wakeup.
func (q *Queue) Push(t Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stoppedAccepting {
		return ErrRejected
	}

	wasEmpty := q.fifo.IsEmpty()
	q.fifo.Enqueue(t)

	if wasEmpty {
		q.notEmpty.Broadcast()
	}

	return nil
}

// Pop removes and returns the task at the head of the queue. It never
// blocks: a non-empty queue returns immediately, an empty-but-accepting
// queue returns ErrUnderflow (transient, the caller must call
// WaitWhileIdle and retry), and an empty, stopped queue returns ErrRejected
// (permanent, the terminal signal to a worker).
func (q *Queue) Pop() (Task, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.fifo.IsEmpty() {
		if q.stoppedAccepting {
			return nil, ErrRejected
		}
		return nil, ErrUnderflow
	}

	return q.fifo.Dequeue(), nil
}

// WaitWhileIdle blocks until the queue is either non-empty or has stopped
// accepting work. The wait loop re-checks both conditions under the mutex
// after every wakeup, so spurious wakeups are harmless and a caller that
// follows WaitWhileIdle with Pop will always see either work or the
// terminal ErrRejected.
func (q *Queue) WaitWhileIdle() {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.fifo.IsEmpty() && !q.stoppedAccepting {
		q.notEmpty.Wait()
	}
}

// StopAccepting marks the queue as no longer accepting new work and wakes
// every idle consumer so each can observe the terminal state. Idempotent:
// calling it again after the queue has already stopped is a no-op.
func (q *Queue) StopAccepting() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stoppedAccepting {
		return
	}

	q.stoppedAccepting = true
	q.notEmpty.Broadcast()
}

// IsEmpty reports whether the queue currently holds no tasks. Mostly useful
// for tests and metrics; ordinary consumers should use Pop/WaitWhileIdle.
func (q *Queue) IsEmpty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.fifo.IsEmpty()
}

// Close releases the queue's resources. Precondition: every consumer has
// already observed StopAccepting and returned (i.e. call only after the
// pool's workers have joined); calling it earlier is a programming
// violation, same as the original destroy(handle) contract. Go's garbage
// collector reclaims the queue's memory regardless of this call, but the
// lifecycle contract still needs a concrete destroy site: Close drops the
// queue's reference to its fifo, so any Pop/IsEmpty/WaitWhileIdle reaching a
// closed queue panics instead of silently operating on a queue nothing should
// still be touching. Push on a closed queue that has stopped accepting still
// returns ErrRejected, since it checks the flag before the fifo.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.fifo = nil
}
