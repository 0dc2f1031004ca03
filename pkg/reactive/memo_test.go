package reactive

import "testing"

func TestMemoBasic(t *testing.T) {
	computations := 0
	count := NewSignal(5)

	doubled := NewMemo(func() int {
		computations++
		return count.Get() * 2
	})

	if doubled.Get() != 10 {
		t.Errorf("expected 10, got %d", doubled.Get())
	}
	if computations != 1 {
		t.Errorf("expected 1 computation, got %d", computations)
	}

	// Second read uses cache
	if doubled.Get() != 10 {
		t.Errorf("expected 10, got %d", doubled.Get())
	}
	if computations != 1 {
		t.Errorf("expected still 1 computation (cached), got %d", computations)
	}
}

func TestMemoRecomputation(t *testing.T) {
	computations := 0
	count := NewSignal(5)

	doubled := NewMemo(func() int {
		computations++
		return count.Get() * 2
	})

	_ = doubled.Get()
	count.Set(10)

	if doubled.Get() != 20 {
		t.Errorf("expected 20, got %d", doubled.Get())
	}
	if computations != 2 {
		t.Errorf("expected 2 computations, got %d", computations)
	}
}

func TestMemoLazy(t *testing.T) {
	computations := 0
	count := NewSignal(1)
	m := NewMemo(func() int {
		computations++
		return count.Get()
	})

	if computations != 0 {
		t.Errorf("expected memo to be lazy, got %d computations", computations)
	}

	_ = m.Get()
	count.Set(2)
	count.Set(3)
	count.Set(4)
	if computations != 1 {
		t.Errorf("expected no recomputation before read, got %d", computations)
	}

	if m.Get() != 4 {
		t.Errorf("expected 4, got %d", m.Get())
	}
	if computations != 2 {
		t.Errorf("expected 2 computations, got %d", computations)
	}
}

func TestMemoChain(t *testing.T) {
	count := NewSignal(1)
	doubled := NewMemo(func() int { return count.Get() * 2 })
	quadrupled := NewMemo(func() int { return doubled.Get() * 2 })

	if quadrupled.Get() != 4 {
		t.Errorf("expected 4, got %d", quadrupled.Get())
	}

	count.Set(3)
	if quadrupled.Get() != 12 {
		t.Errorf("expected 12, got %d", quadrupled.Get())
	}
}

func TestMemoDynamicDependencies(t *testing.T) {
	useA := NewSignal(true)
	a := NewSignal("a")
	b := NewSignal("b")
	computations := 0

	m := NewMemo(func() string {
		computations++
		if useA.Get() {
			return a.Get()
		}
		return b.Get()
	})

	_ = m.Get()
	useA.Set(false)
	if m.Get() != "b" {
		t.Errorf("expected b, got %s", m.Get())
	}

	// a is no longer a dependency
	before := computations
	a.Set("changed")
	_ = m.Get()
	if computations != before {
		t.Errorf("expected no recomputation after dropped dependency changed")
	}
}

func TestMemoPanicRestoresListener(t *testing.T) {
	boom := NewSignal(false)
	m := NewMemo(func() int {
		if boom.Get() {
			panic("boom")
		}
		return 1
	})
	_ = m.Get()
	boom.Set(true)

	func() {
		defer func() {
			if recover() == nil {
				t.Error("expected panic to propagate")
			}
		}()
		m.Get()
	}()

	if currentListener() != nil {
		t.Error("expected scope to be restored after panic")
	}

	boom.Set(false)
	if m.Get() != 1 {
		t.Errorf("expected memo to recover, got %d", m.Get())
	}
}

func TestMemoDispose(t *testing.T) {
	count := NewSignal(1)
	computations := 0
	m := NewMemo(func() int {
		computations++
		return count.Get()
	})
	_ = m.Get()

	m.Dispose()
	if !m.Disposed() {
		t.Error("expected Disposed() to be true")
	}
	if count.node.len() != 0 {
		t.Errorf("expected memo to unsubscribe, got %d subscribers", count.node.len())
	}

	count.Set(2)
	if m.Get() != 1 {
		t.Errorf("expected frozen value 1, got %d", m.Get())
	}
	if computations != 1 {
		t.Errorf("expected no recomputation after Dispose, got %d", computations)
	}
}

func TestMemoSubscribe(t *testing.T) {
	count := NewSignal(1)
	doubled := NewMemo(func() int { return count.Get() * 2 })

	var seen []int
	sub := doubled.Subscribe(func(v int) { seen = append(seen, v) })
	defer sub.Dispose()

	count.Set(2)
	count.Set(3)

	if len(seen) != 2 || seen[0] != 4 || seen[1] != 6 {
		t.Errorf("unexpected values: %v", seen)
	}
}
