// Package reactive provides the dependency-tracked cell graph that the
// validation engine is built on.
//
// Dependencies are tracked automatically at runtime: reading a Signal or
// Memo while a listener is current subscribes that listener to the value.
//
// # Core Types
//
// Signal[T] is a reactive value container:
//
//	count := NewSignal(0)
//	value := count.Get()  // Read (subscribes current listener)
//	count.Set(5)          // Write (notifies subscribers)
//	count.Update(func(n int) int { return n + 1 })
//
// Memo[T] is a cached derived computation:
//
//	doubled := NewMemo(func() int { return count.Get() * 2 })
//	value := doubled.Get()  // Recomputes only if dependencies changed
//
// Subscription calls a function after every change of one value:
//
//	sub := count.Subscribe(func(n int) { fmt.Println("now", n) })
//	defer sub.Dispose()
//
// Effect re-runs a function whenever anything it read changes:
//
//	CreateEffect(func() Cleanup {
//	    fmt.Println("Count is:", count.Get())
//	    return nil
//	})
//
// # Scheduling
//
// All recomputation is synchronous. Memos are lazy and recompute on the
// next read after invalidation; subscriptions and effects run inline in the
// call that changed their dependency, or once when the outermost Batch
// completes.
//
// # Thread Safety
//
// Primitives are safe to read from multiple goroutines, but the tracking
// context is per-goroutine. A graph of cells that changes together should
// be owned and written by a single goroutine.
package reactive
