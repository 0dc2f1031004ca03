package reactive

import (
	"reflect"
	"sync"
)

// Signal is a writable reactive value. Reading it with Get while a
// listener is current subscribes that listener; Set notifies subscribers
// when the value changes.
type Signal[T any] struct {
	node node

	mu    sync.RWMutex
	value T
	equal func(a, b T) bool
}

// NewSignal creates a signal holding initial.
func NewSignal[T any](initial T) *Signal[T] {
	return &Signal[T]{node: node{id: nextID()}, value: initial}
}

// ID returns the signal's unique id.
func (s *Signal[T]) ID() uint64 {
	return s.node.id
}

// Get returns the value and subscribes the current listener.
func (s *Signal[T]) Get() T {
	v := s.Peek()
	s.node.track()
	return v
}

// Peek returns the value without subscribing.
func (s *Signal[T]) Peek() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set stores v. Subscribers are notified unless v equals the current
// value.
func (s *Signal[T]) Set(v T) {
	s.Update(func(T) T { return v })
}

// Update replaces the value with fn(current) under the write lock.
func (s *Signal[T]) Update(fn func(T) T) {
	s.mu.Lock()
	next := fn(s.value)
	changed := !s.same(s.value, next)
	if changed {
		s.value = next
	}
	s.mu.Unlock()

	if changed {
		s.node.notify()
	}
}

// Subscribe calls fn with the new value after every change, but not with
// the current one.
func (s *Signal[T]) Subscribe(fn func(T)) *Subscription {
	return newSubscription(&s.node, func() { fn(s.Peek()) })
}

// WithEquals replaces the change check and returns s.
func (s *Signal[T]) WithEquals(fn func(a, b T) bool) *Signal[T] {
	s.equal = fn
	return s
}

func (s *Signal[T]) same(a, b T) bool {
	if s.equal != nil {
		return s.equal(a, b)
	}
	return sameValue(a, b)
}

// sameValue compares scalars with == and everything else with
// reflect.DeepEqual. When T is an interface, values of different dynamic
// types differ.
func sameValue[T any](a, b T) bool {
	x, y := any(a), any(b)
	if reflect.TypeOf(x) != reflect.TypeOf(y) {
		return false
	}
	switch x.(type) {
	case bool, string, int, int64, uint64, float64:
		return x == y
	}
	return reflect.DeepEqual(x, y)
}
