// Package hashmap implements a lock-free hash map with a fixed number
// of buckets, each an independent lock-free singly linked list.
package hashmap

import (
	"hash/maphash"
	"sync/atomic"
)

// DefaultBuckets is the bucket count used by New.
const DefaultBuckets = 1024

const cacheLineSize = 64

// node is one key/value entry in a bucket list. Nodes move through
// three states: live, marked (logically deleted, invisible to lookups)
// and unlinked. Marking is the commit point of an erase; exactly one
// goroutine wins the false-to-true flip and only that goroutine may
// unlink the node. Unlinked nodes are reclaimed by the garbage
// collector.
type node[K comparable, V any] struct {
	key    K
	value  atomic.Pointer[V]
	next   atomic.Pointer[node[K, V]]
	marked atomic.Bool
}

// bucketHead holds one bucket's list head on its own cache line.
type bucketHead[K comparable, V any] struct {
	head atomic.Pointer[node[K, V]]
	//lint:ignore U1000 prevents false sharing
	pad [cacheLineSize - 8]byte
}

// Map is a lock-free hash map over a fixed bucket array. The bucket
// count never changes after construction, so long-lived maps should be
// sized for their expected population; chains simply grow past the
// intended load factor otherwise.
//
// All operations are lock-free. Erase marks a node before unlinking it,
// so lookups never observe a half-removed entry. Size is maintained as
// a single shared counter and can diverge transiently while racing
// inserts and erases are in flight.
//
// A Map must not be copied after first use.
type Map[K comparable, V any] struct {
	buckets []bucketHead[K, V]
	hasher  func(K) uint64
	size    atomic.Int64
}

// New creates a map with DefaultBuckets buckets and a seeded built-in
// hash function.
func New[K comparable, V any]() *Map[K, V] {
	return NewSized[K, V](DefaultBuckets)
}

// NewSized creates a map with the given bucket count. Counts less than
// one fall back to DefaultBuckets.
func NewSized[K comparable, V any](buckets int) *Map[K, V] {
	seed := maphash.MakeSeed()
	return NewHashed[K, V](buckets, func(key K) uint64 {
		return maphash.Comparable(seed, key)
	})
}

// NewHashed creates a map that distributes keys with the caller's hash
// function instead of the built-in one. The hasher must be consistent:
// equal keys must hash equally. It panics if hasher is nil.
func NewHashed[K comparable, V any](buckets int, hasher func(K) uint64) *Map[K, V] {
	if hasher == nil {
		panic("hashmap: nil hasher")
	}
	if buckets < 1 {
		buckets = DefaultBuckets
	}
	return &Map[K, V]{
		buckets: make([]bucketHead[K, V], buckets),
		hasher:  hasher,
	}
}

func (m *Map[K, V]) bucketFor(key K) *bucketHead[K, V] {
	return &m.buckets[m.hasher(key)%uint64(len(m.buckets))]
}

// findLive returns the first unmarked node for key, or nil. Marked
// nodes are skipped; an older duplicate behind one still counts.
func (b *bucketHead[K, V]) findLive(key K) *node[K, V] {
	for n := b.head.Load(); n != nil; n = n.next.Load() {
		if n.key == key && !n.marked.Load() {
			return n
		}
	}
	return nil
}

// Insert adds a key/value mapping. If a live mapping for key already
// exists its value is replaced and Insert returns false; otherwise a
// new entry is created and Insert returns true.
//
// When a push onto the bucket head loses its race, the bucket is
// searched again before retrying, so a racing insert of the same key
// becomes an update rather than a duplicate. Two inserts of the same
// new key that publish simultaneously can still each create an entry;
// lookups then resolve to the newest and Size counts both until the
// extras are erased.
func (m *Map[K, V]) Insert(key K, value V) bool {
	b := m.bucketFor(key)
	if n := b.findLive(key); n != nil {
		n.value.Store(&value)
		return false
	}
	n := &node[K, V]{key: key}
	n.value.Store(&value)
	for {
		head := b.head.Load()
		n.next.Store(head)
		if b.head.CompareAndSwap(head, n) {
			m.size.Add(1)
			return true
		}
		if existing := b.findLive(key); existing != nil {
			existing.value.Store(&value)
			return false
		}
	}
}

// Get returns the value mapped to key, or the zero value and false if
// no live mapping exists.
func (m *Map[K, V]) Get(key K) (V, bool) {
	var zero V
	n := m.bucketFor(key).findLive(key)
	if n == nil {
		return zero, false
	}
	v := n.value.Load()
	if v == nil {
		return zero, false
	}
	return *v, true
}

// Contains reports whether key currently has a live mapping.
func (m *Map[K, V]) Contains(key K) bool {
	return m.bucketFor(key).findLive(key) != nil
}

// Erase removes the mapping for key. It returns true if this call
// removed a live mapping, false if none existed. When several erasers
// race for the same key, the mark flip decides the single winner; the
// losers search again in case an older duplicate remains.
func (m *Map[K, V]) Erase(key K) bool {
	b := m.bucketFor(key)
	for {
		n := b.findLive(key)
		if n == nil {
			return false
		}
		if !n.marked.CompareAndSwap(false, true) {
			// Another eraser marked it first; look for another
			// live node with this key.
			continue
		}
		b.unlink(n)
		n.value.Store(nil)
		m.size.Add(-1)
		return true
	}
}

// unlink removes a marked node from the bucket list. Only the goroutine
// that won the mark may call it. Any failed compare-and-swap restarts
// the search from the bucket head: the list changed underneath us and
// the old predecessor cannot be trusted.
func (b *bucketHead[K, V]) unlink(target *node[K, V]) {
	for {
		head := b.head.Load()
		if head == target {
			if b.head.CompareAndSwap(target, target.next.Load()) {
				return
			}
			continue
		}
		prev := head
		for prev != nil && prev.next.Load() != target {
			prev = prev.next.Load()
		}
		if prev == nil {
			// No longer reachable from the head; nothing to unlink.
			return
		}
		if prev.next.CompareAndSwap(target, target.next.Load()) {
			return
		}
	}
}

// Size returns the number of live entries according to the shared
// counter. Concurrent operations can make the count transiently
// inexact; it converges once racing inserts and erases settle.
func (m *Map[K, V]) Size() int {
	return int(m.size.Load())
}

// Empty reports whether Size is zero.
func (m *Map[K, V]) Empty() bool {
	return m.size.Load() == 0
}
