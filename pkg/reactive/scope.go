package reactive

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
)

// scope is the reactive state of one goroutine: the listener that reads
// subscribe, the owner that new effects join and the pending batch.
type scope struct {
	listener Listener
	owner    *Owner

	// depth counts nested Batch calls. While it is positive, notified
	// listeners are queued instead of run.
	depth int
	queue []Listener
}

var scopes sync.Map // goroutine id -> *scope

var goroutinePrefix = []byte("goroutine ")

// goid parses the current goroutine id out of the stack header
// "goroutine N [running]:".
func goid() uint64 {
	var buf [64]byte
	header := buf[:runtime.Stack(buf[:], false)]
	header = bytes.TrimPrefix(header, goroutinePrefix)
	if i := bytes.IndexByte(header, ' '); i >= 0 {
		header = header[:i]
	}
	id, _ := strconv.ParseUint(string(header), 10, 64)
	return id
}

// scopeFor returns the scope of the calling goroutine, creating it on
// first use. Callers that create it pair the call with release.
func scopeFor() *scope {
	id := goid()
	if sc, ok := scopes.Load(id); ok {
		return sc.(*scope)
	}
	sc, _ := scopes.LoadOrStore(id, &scope{})
	return sc.(*scope)
}

// lookupScope returns the scope of the calling goroutine, or nil when it
// has none. Reads outside WithListener, WithOwner and Batch never
// allocate one.
func lookupScope() *scope {
	if sc, ok := scopes.Load(goid()); ok {
		return sc.(*scope)
	}
	return nil
}

// release drops sc once it holds nothing, so goroutines that exit
// without calling CleanupGoroutine do not leave it behind.
func release(sc *scope) {
	if sc.listener == nil && sc.owner == nil && sc.depth == 0 && len(sc.queue) == 0 {
		scopes.CompareAndDelete(goid(), sc)
	}
}

// ScopeCount returns the number of goroutines currently holding reactive
// state.
func ScopeCount() int {
	n := 0
	scopes.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func currentListener() Listener {
	if sc := lookupScope(); sc != nil {
		return sc.listener
	}
	return nil
}

func currentOwner() *Owner {
	if sc := lookupScope(); sc != nil {
		return sc.owner
	}
	return nil
}

func batchDepth() int {
	if sc := lookupScope(); sc != nil {
		return sc.depth
	}
	return 0
}

// WithListener runs fn with l as the listener that reads subscribe.
// A nil l disables tracking for the duration of fn.
func WithListener(l Listener, fn func()) {
	sc := scopeFor()
	prev := sc.listener
	sc.listener = l
	defer func() {
		sc.listener = prev
		release(sc)
	}()
	fn()
}

// WithOwner runs fn with owner as the owner of the effects and
// subscriptions fn creates. Disposing owner disposes them.
//
//	owner := NewOwner(nil)
//	WithOwner(owner, func() {
//	    CreateEffect(push)
//	})
//	defer owner.Dispose()
func WithOwner(owner *Owner, fn func()) {
	sc := scopeFor()
	prev := sc.owner
	sc.owner = owner
	defer func() {
		sc.owner = prev
		release(sc)
	}()
	fn()
}

// Untracked runs fn without subscribing to anything it reads. Use Peek
// for a single value.
func Untracked(fn func()) {
	WithListener(nil, fn)
}

// CleanupGoroutine drops the scope of the calling goroutine. Worker
// goroutines that touched reactive values call it before they exit.
func CleanupGoroutine() {
	scopes.Delete(goid())
}
