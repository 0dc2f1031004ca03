package reactive

import "sync/atomic"

// Subscription runs a callback on every notification from one signal or
// memo. Unlike an Effect it never re-tracks.
type Subscription struct {
	id       uint64
	source   *node
	fn       func()
	disposed atomic.Bool
}

func newSubscription(source *node, fn func()) *Subscription {
	sub := &Subscription{id: nextID(), source: source, fn: fn}
	source.add(sub)
	if owner := currentOwner(); owner != nil {
		owner.OnCleanup(sub.Dispose)
	}
	return sub
}

// ID returns the subscription's unique id.
func (s *Subscription) ID() uint64 {
	return s.id
}

// MarkDirty runs the callback untracked.
func (s *Subscription) MarkDirty() {
	if !s.disposed.Load() {
		Untracked(s.fn)
	}
}

// Dispose detaches the subscription. Calling it again does nothing.
func (s *Subscription) Dispose() {
	if !s.disposed.Swap(true) {
		s.source.remove(s)
	}
}

// Disposed reports whether Dispose was called.
func (s *Subscription) Disposed() bool {
	return s.disposed.Load()
}
