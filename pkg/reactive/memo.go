package reactive

import (
	"sync"
	"sync/atomic"
)

// Memo is a lazily computed value derived from other signals and memos.
// It recomputes on the first read after one of the values it read last
// time changes, and it can itself be read and subscribed to like a
// signal.
type Memo[T any] struct {
	node    node
	sources sourceSet
	compute func() T

	mu    sync.RWMutex
	value T

	fresh     atomic.Bool
	computing atomic.Bool
	disposed  atomic.Bool
}

// NewMemo creates a memo. compute first runs on the first read.
func NewMemo[T any](compute func() T) *Memo[T] {
	return &Memo[T]{node: node{id: nextID()}, compute: compute}
}

// ID returns the memo's unique id.
func (m *Memo[T]) ID() uint64 {
	return m.node.id
}

// Get returns the value, recomputing it if stale, and subscribes the
// current listener.
func (m *Memo[T]) Get() T {
	m.node.track()
	return m.Peek()
}

// Peek returns the value without subscribing. A stale memo still
// recomputes.
func (m *Memo[T]) Peek() T {
	if !m.fresh.Load() && !m.disposed.Load() {
		m.recompute()
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.value
}

// MarkDirty marks the memo stale. Subscribers hear about it only on the
// transition from fresh to stale.
func (m *Memo[T]) MarkDirty() {
	if m.disposed.Load() {
		return
	}
	if m.fresh.CompareAndSwap(true, false) {
		m.node.notify()
	}
}

// Subscribe calls fn with the recomputed value after every
// invalidation. The memo is computed first so the next change reaches
// fn.
func (m *Memo[T]) Subscribe(fn func(T)) *Subscription {
	m.Peek()
	return newSubscription(&m.node, func() { fn(m.Peek()) })
}

// Dispose detaches the memo from its sources. It keeps its last value and
// its own subscribers.
func (m *Memo[T]) Dispose() {
	if m.disposed.Swap(true) {
		return
	}
	m.sources.release(m)
}

// Disposed reports whether Dispose was called.
func (m *Memo[T]) Disposed() bool {
	return m.disposed.Load()
}

func (m *Memo[T]) dependOn(n *node) {
	m.sources.add(n)
}

// recompute re-runs compute with the memo as the listener. A re-entrant
// read during compute (a cycle) returns the previous value. If compute
// panics the memo stays stale.
func (m *Memo[T]) recompute() {
	if m.computing.Swap(true) {
		return
	}
	defer m.computing.Store(false)

	m.sources.release(m)

	var next T
	WithListener(m, func() {
		next = m.compute()
	})

	m.mu.Lock()
	m.value = next
	m.mu.Unlock()
	m.fresh.Store(true)
}

var _ dependent = (*Memo[int])(nil)
