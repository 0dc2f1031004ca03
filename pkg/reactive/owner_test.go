package reactive

import "testing"

func TestOwnerDisposesEffects(t *testing.T) {
	owner := NewOwner(nil)
	count := NewSignal(0)
	runs := 0

	WithOwner(owner, func() {
		CreateEffect(func() Cleanup {
			_ = count.Get()
			runs++
			return nil
		})
	})

	owner.Dispose()
	count.Set(1)

	if runs != 1 {
		t.Errorf("expected effect to stop after owner dispose, got %d runs", runs)
	}
	if !owner.IsDisposed() {
		t.Error("expected owner to be disposed")
	}
}

func TestOwnerDisposesSubscriptions(t *testing.T) {
	owner := NewOwner(nil)
	count := NewSignal(0)
	calls := 0

	WithOwner(owner, func() {
		count.Subscribe(func(int) { calls++ })
	})

	owner.Dispose()
	count.Set(1)
	if calls != 0 {
		t.Errorf("expected subscription disposed with owner, got %d calls", calls)
	}
}

func TestOwnerChildrenAndCleanupOrder(t *testing.T) {
	root := NewOwner(nil)
	child := NewOwner(root)
	if child.Parent() != root {
		t.Error("expected parent link")
	}

	var order []string
	root.OnCleanup(func() { order = append(order, "root-1") })
	root.OnCleanup(func() { order = append(order, "root-2") })
	child.OnCleanup(func() { order = append(order, "child") })

	root.Dispose()

	want := []string{"child", "root-2", "root-1"}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %s, want %s", i, order[i], want[i])
		}
	}

	// Cleanup registered after dispose runs immediately
	ran := false
	root.OnCleanup(func() { ran = true })
	if !ran {
		t.Error("expected cleanup on a disposed owner to run immediately")
	}
}
