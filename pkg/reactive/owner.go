package reactive

import (
	"slices"
	"sync"
	"sync/atomic"
)

// Owner is a disposal scope. Effects and subscriptions created under
// WithOwner, child owners and OnCleanup functions are all released when
// the owner is disposed. A live session holds one owner per model.
type Owner struct {
	id     uint64
	parent *Owner

	mu       sync.Mutex
	children []*Owner
	effects  []*Effect
	cleanups []func()

	disposed atomic.Bool
}

// NewOwner creates an owner below parent, or a root owner when parent is
// nil.
func NewOwner(parent *Owner) *Owner {
	o := &Owner{id: nextID(), parent: parent}
	if parent != nil {
		parent.mu.Lock()
		parent.children = append(parent.children, o)
		parent.mu.Unlock()
	}
	return o
}

// ID returns the owner's unique id.
func (o *Owner) ID() uint64 {
	return o.id
}

// Parent returns the parent owner, or nil for a root.
func (o *Owner) Parent() *Owner {
	return o.parent
}

// IsDisposed reports whether Dispose was called.
func (o *Owner) IsDisposed() bool {
	return o.disposed.Load()
}

// adopt makes o dispose e. An effect created under a disposed owner is
// disposed at once.
func (o *Owner) adopt(e *Effect) {
	if o.disposed.Load() {
		e.Dispose()
		return
	}
	o.mu.Lock()
	o.effects = append(o.effects, e)
	o.mu.Unlock()
}

// OnCleanup registers fn to run on Dispose. On a disposed owner fn runs
// immediately.
func (o *Owner) OnCleanup(fn func()) {
	if o.disposed.Load() {
		fn()
		return
	}
	o.mu.Lock()
	o.cleanups = append(o.cleanups, fn)
	o.mu.Unlock()
}

// Dispose releases, in order, the children newest first, the effects,
// and the cleanups newest first. Only the first call has an effect.
func (o *Owner) Dispose() {
	if o.disposed.Swap(true) {
		return
	}
	if p := o.parent; p != nil {
		p.mu.Lock()
		if i := slices.Index(p.children, o); i >= 0 {
			p.children = slices.Delete(p.children, i, i+1)
		}
		p.mu.Unlock()
	}

	o.mu.Lock()
	children, effects, cleanups := o.children, o.effects, o.cleanups
	o.children, o.effects, o.cleanups = nil, nil, nil
	o.mu.Unlock()

	for _, child := range slices.Backward(children) {
		child.Dispose()
	}
	for _, e := range effects {
		e.Dispose()
	}
	for _, fn := range slices.Backward(cleanups) {
		fn()
	}
}
