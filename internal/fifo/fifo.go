// Package fifo implements the unbounded, single-threaded task container the
// work queue builds its synchronization on top of. It is deliberately dumb:
// create, is-empty, enqueue, dequeue, and nothing else. All mutual
// exclusion is the caller's responsibility.
package fifo

// node is one link in the backing singly-linked list, mirroring the
// original C fifo's head/tail/next node shape rather than a slice, so that
// Dequeue is O(1) without amortized-growth bookkeeping.
type node struct {
	value Task
	next  *node
}

// Task is the record type the fifo stores: a consumable, owned closure.
// The fifo never inspects or invokes it.
type Task func()

// Fifo is a strict first-in-first-out sequence of Tasks. Not safe for
// concurrent use — callers (the work queue) provide all synchronization.
type Fifo struct {
	head *node
	tail *node
}

// New creates an empty Fifo.
func New() *Fifo {
	return &Fifo{}
}

// IsEmpty reports whether the fifo holds no tasks.
func (f *Fifo) IsEmpty() bool {
	return f.head == nil
}

// Enqueue appends a task to the tail of the sequence.
func (f *Fifo) Enqueue(t Task) {
	n := &node{value: t}

	if f.head == nil {
		f.head = n
		f.tail = n
		return
	}

	f.tail.next = n
	f.tail = n
}

// Dequeue removes and returns the task at the head of the sequence.
// Precondition: the fifo is non-empty; callers must check IsEmpty first.
func (f *Fifo) Dequeue() Task {
	n := f.head

	if f.head == f.tail {
		f.head = nil
		f.tail = nil
	} else {
		f.head = f.head.next
	}

	n.next = nil
	return n.value
}
