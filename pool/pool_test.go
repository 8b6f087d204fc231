package pool

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// S1: empty lifecycle.
func TestEmptyLifecycle(t *testing.T) {
	p, err := Create(1)
	require.NoError(t, err)

	p.Shutdown()
	require.NoError(t, p.JoinThenDestroy())
}

// S2: serial FIFO — single worker, single producer, order preserved.
func TestSerialFIFO(t *testing.T) {
	p, err := Create(1)
	require.NoError(t, err)

	var mu sync.Mutex
	var order []int

	const n = 32
	for i := 0; i < n; i++ {
		i := i
		require.NoError(t, p.Submit(func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		}))
	}

	p.Shutdown()
	require.NoError(t, p.Join())

	want := make([]int, n)
	for i := range want {
		want[i] = i
	}
	assert.Equal(t, want, order)
}

// S3: parallel completion — all tasks run, order unconstrained.
func TestParallelCompletion(t *testing.T) {
	p, err := Create(8)
	require.NoError(t, err)

	const n = 8
	done := make([]atomic.Bool, n)
	for i := 0; i < n; i++ {
		i := i
		require.NoError(t, p.Submit(func() { done[i].Store(true) }))
	}

	p.Shutdown()
	require.NoError(t, p.Join())

	for i := range done {
		assert.True(t, done[i].Load(), "task %d did not run", i)
	}
}

// S4: reject after shutdown.
func TestRejectAfterShutdown(t *testing.T) {
	p, err := Create(8)
	require.NoError(t, err)

	p.Shutdown()

	err = p.Submit(func() {})
	assert.ErrorIs(t, err, ErrRejected)

	require.NoError(t, p.JoinThenDestroy())
}

// S7: bulk drain — every task's effect lands exactly once.
func TestBulkDrain(t *testing.T) {
	p, err := Create(8)
	require.NoError(t, err)

	const n = 1000
	const increment = 7
	counters := make([]int64, n)

	for i := 0; i < n; i++ {
		i := i
		require.NoError(t, p.Submit(func() {
			atomic.AddInt64(&counters[i], increment)
		}))
	}

	p.Shutdown()
	require.NoError(t, p.Join())

	for i, c := range counters {
		assert.Equal(t, int64(increment), c, "counter %d", i)
	}
}

// Property: idempotent shutdown.
func TestIdempotentShutdown(t *testing.T) {
	p, err := Create(2)
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		p.Shutdown()
		p.Shutdown()
		p.Shutdown()
	})

	require.NoError(t, p.JoinThenDestroy())
}

// Property: at-most-once and at-least-once execution under concurrent
// producers and a trailing shutdown — every successful Submit executes
// exactly once by the time Join returns.
func TestExactlyOnceUnderConcurrentSubmit(t *testing.T) {
	p, err := Create(4)
	require.NoError(t, err)

	const producers = 10
	const perProducer = 200
	var counts sync.Map // int -> *int64, index -> execution count
	var wg sync.WaitGroup
	wg.Add(producers)

	idx := int64(0)
	for i := 0; i < producers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				n := atomic.AddInt64(&idx, 1) - 1
				c := new(int64)
				counts.Store(n, c)
				err := p.Submit(func() { atomic.AddInt64(c, 1) })
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	p.Shutdown()
	require.NoError(t, p.Join())

	total := producers * perProducer
	seen := 0
	counts.Range(func(_, v interface{}) bool {
		seen++
		assert.Equal(t, int64(1), *v.(*int64))
		return true
	})
	assert.Equal(t, total, seen)
}

// Submit is permitted from inside a worker task (Design Notes §9 Open
// Question, resolved: no lock is held across task execution).
func TestSubmitFromWithinTask(t *testing.T) {
	p, err := Create(2)
	require.NoError(t, err)

	var ran atomic.Bool
	done := make(chan struct{})

	require.NoError(t, p.Submit(func() {
		_ = p.Submit(func() {
			ran.Store(true)
			close(done)
		})
	}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("nested submit never ran")
	}

	p.Shutdown()
	require.NoError(t, p.Join())
	assert.True(t, ran.Load())
}

// Property 8: partial-construction safety — a worker-start failure during
// Create rolls back cleanly and leaves no running goroutines.
func TestPartialConstructionRollsBack(t *testing.T) {
	p, err := Create(4, withStartFailureAt(2))
	assert.Nil(t, p)
	assert.ErrorIs(t, err, ErrSysFail)
}

func TestCreateRejectsInvalidWorkerCount(t *testing.T) {
	p, err := Create(0)
	assert.Nil(t, p)
	assert.ErrorIs(t, err, ErrInvalidArg)

	p, err = Create(-1)
	assert.Nil(t, p)
	assert.ErrorIs(t, err, ErrInvalidArg)
}

func TestSubmitRejectsNilTask(t *testing.T) {
	p, err := Create(1)
	require.NoError(t, err)
	defer func() {
		p.Shutdown()
		_ = p.JoinThenDestroy()
	}()

	assert.ErrorIs(t, p.Submit(nil), ErrInvalidArg)
}

// Destroy's documented precondition is "every worker has already joined";
// this exercises what Destroy actually does once that precondition holds —
// it releases the queue, so any further use of the queue is a programming
// violation rather than a silent no-op.
func TestDestroyReleasesQueue(t *testing.T) {
	p, err := Create(1)
	require.NoError(t, err)

	p.Shutdown()
	require.NoError(t, p.Join())
	p.Destroy()

	assert.Panics(t, func() { p.queue.IsEmpty() }, "Destroy must release the queue, not just log")
}
