package reactive

import "sync/atomic"

// Effect runs a function now and again, inline, whenever a value it read
// during its previous run changes.
type Effect struct {
	id      uint64
	fn      func() Cleanup
	cleanup Cleanup
	sources sourceSet

	// rerun is set by a notification that arrives while the body is
	// running; the body then runs again before run returns.
	running  atomic.Bool
	rerun    atomic.Bool
	disposed atomic.Bool
	runs     atomic.Int64
}

// CreateEffect runs fn and re-runs it on every change of what it reads.
// The effect joins the current owner, if any.
//
//	CreateEffect(func() Cleanup {
//	    fmt.Println("errors:", group.Errors())
//	    return nil
//	})
func CreateEffect(fn func() Cleanup) *Effect {
	e := &Effect{id: nextID(), fn: fn}
	if owner := currentOwner(); owner != nil {
		owner.adopt(e)
	}
	e.run()
	return e
}

// OnUpdate runs deps to collect dependencies and calls callback after
// each later change, not on the first run.
func OnUpdate(deps func(), callback func()) *Effect {
	initial := true
	return CreateEffect(func() Cleanup {
		deps()
		if initial {
			initial = false
		} else {
			Untracked(callback)
		}
		return nil
	})
}

// ID returns the effect's unique id.
func (e *Effect) ID() uint64 {
	return e.id
}

// Runs returns how many times the body has run.
func (e *Effect) Runs() int64 {
	return e.runs.Load()
}

// MarkDirty re-runs the effect.
func (e *Effect) MarkDirty() {
	if e.disposed.Load() {
		return
	}
	if e.running.Load() {
		e.rerun.Store(true)
		return
	}
	e.run()
}

func (e *Effect) run() {
	for !e.disposed.Load() {
		e.rerun.Store(false)
		e.running.Store(true)

		e.runCleanup()
		e.sources.release(e)
		e.body()
		e.runs.Add(1)

		if !e.rerun.Load() {
			return
		}
	}
}

func (e *Effect) body() {
	defer e.running.Store(false)
	WithListener(e, func() {
		e.cleanup = e.fn()
	})
}

func (e *Effect) runCleanup() {
	if c := e.cleanup; c != nil {
		e.cleanup = nil
		c()
	}
}

// Dispose runs the last cleanup and stops the effect.
func (e *Effect) Dispose() {
	if e.disposed.Swap(true) {
		return
	}
	e.runCleanup()
	e.sources.release(e)
}

func (e *Effect) dependOn(n *node) {
	e.sources.add(n)
}

var _ dependent = (*Effect)(nil)
