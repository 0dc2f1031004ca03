package reactive

import (
	"sync"
	"sync/atomic"
)

// Listener is notified when a value it depends on changes. Memos,
// effects and subscriptions are listeners.
type Listener interface {
	// MarkDirty reacts to a change: memos invalidate, effects and
	// subscriptions run.
	MarkDirty()

	// ID identifies the listener for deduplication.
	ID() uint64
}

// Cleanup is returned by an effect body. It runs before the next run and
// on disposal.
type Cleanup func()

var lastID atomic.Uint64

func nextID() uint64 {
	return lastID.Add(1)
}

// node is the subscriber list shared by signals and memos.
type node struct {
	id uint64

	mu   sync.RWMutex
	subs []Listener
}

// add subscribes l unless it is subscribed already.
func (n *node) add(l Listener) {
	if l == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.indexOf(l.ID()) < 0 {
		n.subs = append(n.subs, l)
	}
}

// remove unsubscribes l and keeps the others in subscription order.
func (n *node) remove(l Listener) {
	if l == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if i := n.indexOf(l.ID()); i >= 0 {
		n.subs = append(n.subs[:i], n.subs[i+1:]...)
	}
}

// indexOf must be called with mu held.
func (n *node) indexOf(id uint64) int {
	for i, l := range n.subs {
		if l.ID() == id {
			return i
		}
	}
	return -1
}

func (n *node) len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subs)
}

// notify runs the subscribers, or queues them inside a batch. The list
// is copied so subscribers can unsubscribe while being notified.
func (n *node) notify() {
	n.mu.RLock()
	subs := append([]Listener(nil), n.subs...)
	n.mu.RUnlock()

	if sc := lookupScope(); sc != nil && sc.depth > 0 {
		sc.queue = append(sc.queue, subs...)
		return
	}
	for _, l := range subs {
		l.MarkDirty()
	}
}

// track subscribes the current listener and records n as its source.
func (n *node) track() {
	l := currentListener()
	if l == nil {
		return
	}
	n.add(l)
	if d, ok := l.(dependent); ok {
		d.dependOn(n)
	}
}

// dependent is a listener that re-tracks its sources on every run.
type dependent interface {
	Listener
	dependOn(n *node)
}

// sourceSet is the set of nodes a dependent read during its last run.
type sourceSet struct {
	mu    sync.Mutex
	nodes []*node
}

func (s *sourceSet) add(n *node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.nodes {
		if existing == n {
			return
		}
	}
	s.nodes = append(s.nodes, n)
}

// release unsubscribes l from every source and forgets them.
func (s *sourceSet) release(l Listener) {
	s.mu.Lock()
	nodes := s.nodes
	s.nodes = nil
	s.mu.Unlock()
	for _, n := range nodes {
		n.remove(l)
	}
}
