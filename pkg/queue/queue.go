// Package queue implements an unbounded lock-free FIFO queue for
// multi-producer multi-consumer use.
package queue

import (
	"sync/atomic"
)

const cacheLineSize = 64

// node carries one enqueued item. The payload pointer is set by the
// producer before the node is published and cleared by the consumer
// that claims it, so a nil payload marks a node that is already spoken
// for.
type node[T any] struct {
	data atomic.Pointer[T]
	next atomic.Pointer[node[T]]
}

// Queue is an unbounded multi-producer multi-consumer FIFO queue backed
// by a singly linked list with a permanent dummy head node.
//
// Enqueue publishes in two steps: the new node is swapped into the tail,
// then linked from its predecessor. Between the two steps the item is not
// yet reachable from the head, so a concurrent Dequeue may briefly report
// an empty queue even though an Enqueue has begun. Dequeue never blocks:
// when the queue is empty, or the front item is being claimed by another
// consumer, it reports absence and returns.
//
// Unlinked nodes are reclaimed by the garbage collector once no goroutine
// holds a reference to them.
//
// A Queue must not be copied after first use.
type Queue[T any] struct {
	head atomic.Pointer[node[T]]
	//lint:ignore U1000 prevents false sharing
	hpad [cacheLineSize - 8]byte
	tail atomic.Pointer[node[T]]
}

// New creates a new empty queue.
func New[T any]() *Queue[T] {
	q := &Queue[T]{}
	dummy := &node[T]{}
	q.head.Store(dummy)
	q.tail.Store(dummy)
	return q
}

// Enqueue adds item to the tail of the queue. It always succeeds and
// never blocks.
func (q *Queue[T]) Enqueue(item T) {
	n := &node[T]{}
	n.data.Store(&item)
	prev := q.tail.Swap(n)
	prev.next.Store(n)
}

// Dequeue removes and returns the item at the head of the queue. It
// returns the zero value and false when the queue appears empty: no item
// is linked in, an enqueue is mid-publish, or a racing consumer claimed
// the front item first.
func (q *Queue[T]) Dequeue() (T, bool) {
	var zero T
	for {
		head := q.head.Load()
		next := head.next.Load()
		if next == nil {
			return zero, false
		}
		if next.data.Load() == nil {
			// Front item already claimed by a racing consumer.
			return zero, false
		}
		if q.head.CompareAndSwap(head, next) {
			// Winning the head race grants exclusive claim on next's
			// payload. next becomes the new dummy node.
			data := next.data.Swap(nil)
			return *data, true
		}
	}
}

// Empty reports whether the queue had no linked items at the moment of
// the call. The answer may be stale by the time it is observed.
func (q *Queue[T]) Empty() bool {
	return q.head.Load().next.Load() == nil
}

// Size walks the queue and counts items that have not been claimed. It
// is approximate: concurrent enqueues and dequeues can make the result
// out of date as soon as it is computed. Intended for diagnostics, not
// for synchronization decisions.
func (q *Queue[T]) Size() int {
	count := 0
	for n := q.head.Load().next.Load(); n != nil; n = n.next.Load() {
		if n.data.Load() != nil {
			count++
		}
	}
	return count
}
