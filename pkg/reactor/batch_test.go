package reactor

import "testing"

func TestBatchCoalescesEffectRuns(t *testing.T) {
	// An effect depending on two signals re-runs once per batch,
	// observing both final values.
	r := NewRoot()
	defer r.Dispose()

	a := CreateSignal(r, 0)
	b := CreateSignal(r, 0)

	runs := 0
	var lastA, lastB int
	CreateEffect(r, func() {
		runs++
		lastA = a.Get()
		lastB = b.Get()
	})

	r.Batch(func() {
		a.Set(1)
		b.Set(2)
	})

	if runs != 2 {
		t.Errorf("expected exactly one re-run for the batch, got %d total runs", runs)
	}
	if lastA != 1 || lastB != 2 {
		t.Errorf("effect observed partial state: a=%d b=%d", lastA, lastB)
	}
}

func TestBatchScenario(t *testing.T) {
	// a -> b=a*2 -> effect logging b, batched: both writes coalesce into
	// one effect run, so log == [2, 6].
	r := NewRoot()
	defer r.Dispose()

	a := CreateSignal(r, 1)
	b := CreateMemo(r, func() int { return a.Get() * 2 })

	var log []int
	CreateEffect(r, func() {
		log = append(log, b.Get())
	})

	r.Batch(func() {
		a.Set(2)
		a.Set(3)
	})

	want := []int{2, 6}
	if len(log) != len(want) {
		t.Fatalf("expected %v, got %v", want, log)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, log)
		}
	}
}

func TestBatchMemosStayFreshInside(t *testing.T) {
	// Memos recompute eagerly within the batch so same-pass reads see
	// fresh values; only effects are deferred.
	r := NewRoot()
	defer r.Dispose()

	a := CreateSignal(r, 1)
	doubled := CreateMemo(r, func() int { return a.Get() * 2 })

	r.Batch(func() {
		a.Set(10)
		if doubled.Get() != 20 {
			t.Errorf("expected fresh memo inside batch, got %d", doubled.Get())
		}
	})
}

func TestBatchNested(t *testing.T) {
	r := NewRoot()
	defer r.Dispose()

	a := CreateSignal(r, 0)
	runs := 0
	CreateEffect(r, func() {
		runs++
		_ = a.Get()
	})

	r.Batch(func() {
		a.Set(1)
		r.Batch(func() {
			a.Set(2)
		})
		// Inner batch end must not flush; still inside the outer one.
		if runs != 1 {
			t.Errorf("effect ran before outermost batch completed (%d runs)", runs)
		}
		a.Set(3)
	})

	if runs != 2 {
		t.Errorf("expected one flush after outermost batch, got %d runs", runs)
	}
	if a.Peek() != 3 {
		t.Errorf("expected final value 3, got %d", a.Peek())
	}
}

func TestBatchFreeFunctions(t *testing.T) {
	r := NewRoot()
	defer r.Dispose()

	a := CreateSignal(r, 0)
	runs := 0
	CreateEffect(r, func() {
		runs++
		_ = a.Get()
	})

	Batch(r, func() {
		a.Set(1)
		a.Set(2)
	})
	if runs != 2 {
		t.Errorf("expected 2 runs, got %d", runs)
	}

	Untracked(r, func() {
		_ = a.Get()
	})

	scope := r.CreateScope()
	ran := false
	scope.Run(func() {
		OnCleanup(r, func() { ran = true })
	})
	scope.Dispose()
	if !ran {
		t.Error("OnCleanup free function should register on the active scope")
	}
}
