package reactive

import (
	"testing"
)

func TestSignalBasic(t *testing.T) {
	count := NewSignal(0)

	if count.Get() != 0 {
		t.Errorf("expected initial value 0, got %d", count.Get())
	}

	count.Set(5)
	if count.Get() != 5 {
		t.Errorf("expected value 5, got %d", count.Get())
	}

	count.Update(func(n int) int { return n * 2 })
	if count.Get() != 10 {
		t.Errorf("expected value 10, got %d", count.Get())
	}
}

func TestSignalPeek(t *testing.T) {
	count := NewSignal(42)

	listener := newTestListener()
	WithListener(listener, func() {
		if value := count.Peek(); value != 42 {
			t.Errorf("expected 42, got %d", value)
		}
	})

	count.Set(100)
	if listener.getDirtyCount() != 0 {
		t.Errorf("Peek should not subscribe listener, got %d notifications", listener.getDirtyCount())
	}
}

func TestSignalSubscription(t *testing.T) {
	count := NewSignal(0)
	listener := newTestListener()

	WithListener(listener, func() {
		_ = count.Get()
	})

	count.Set(1)
	if listener.getDirtyCount() != 1 {
		t.Errorf("expected 1 notification, got %d", listener.getDirtyCount())
	}

	// Same value does not notify
	count.Set(1)
	if listener.getDirtyCount() != 1 {
		t.Errorf("expected still 1 notification, got %d", listener.getDirtyCount())
	}
}

func TestSignalDeduplicatesListener(t *testing.T) {
	count := NewSignal(0)
	listener := newTestListener()

	WithListener(listener, func() {
		_ = count.Get()
		_ = count.Get()
	})

	if n := count.node.len(); n != 1 {
		t.Errorf("expected 1 subscriber, got %d", n)
	}
}

func TestSignalAnyMixedTypes(t *testing.T) {
	cell := NewSignal[any](1)
	listener := newTestListener()
	WithListener(listener, func() {
		_ = cell.Get()
	})

	// Different dynamic type must not panic and must count as a change
	cell.Set("1")
	if listener.getDirtyCount() != 1 {
		t.Errorf("expected 1 notification, got %d", listener.getDirtyCount())
	}

	cell.Set(nil)
	if listener.getDirtyCount() != 2 {
		t.Errorf("expected 2 notifications, got %d", listener.getDirtyCount())
	}
}

func TestSignalWithEquals(t *testing.T) {
	always := NewSignal(0).WithEquals(func(a, b int) bool { return false })
	listener := newTestListener()
	WithListener(listener, func() {
		_ = always.Get()
	})

	always.Set(0)
	always.Set(0)
	if listener.getDirtyCount() != 2 {
		t.Errorf("expected 2 notifications, got %d", listener.getDirtyCount())
	}
}

func TestSignalSubscribe(t *testing.T) {
	name := NewSignal("a")
	var seen []string
	sub := name.Subscribe(func(v string) {
		seen = append(seen, v)
	})

	name.Set("b")
	name.Set("b")
	name.Set("c")

	if len(seen) != 2 || seen[0] != "b" || seen[1] != "c" {
		t.Errorf("unexpected values: %v", seen)
	}

	sub.Dispose()
	name.Set("d")
	if len(seen) != 2 {
		t.Errorf("expected no calls after Dispose, got %v", seen)
	}
	if !sub.Disposed() {
		t.Error("expected Disposed() to be true")
	}
	// Second dispose is a no-op
	sub.Dispose()
}

func TestSignalUnsubscribeKeepsOrder(t *testing.T) {
	s := NewSignal(0)
	var order []int
	subs := make([]*Subscription, 3)
	for i := range subs {
		i := i
		subs[i] = s.Subscribe(func(int) { order = append(order, i) })
	}
	subs[0].Dispose()

	s.Set(1)
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("expected notification order [1 2], got %v", order)
	}
}
