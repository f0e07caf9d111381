package reactor

import (
	"testing"
	"time"
)

func TestPropagateTopologicalOrder(t *testing.T) {
	// In a chain a -> m1 -> m2, a single pass recomputes m1 before m2.
	r := NewRoot()
	defer r.Dispose()

	a := CreateSignal(r, 1)
	var order []string
	m1 := CreateMemo(r, func() int {
		order = append(order, "m1")
		return a.Get() + 1
	})
	_ = CreateMemo(r, func() int {
		order = append(order, "m2")
		return m1.Get() + 1
	})

	order = nil
	a.Set(10)

	if len(order) != 2 || order[0] != "m1" || order[1] != "m2" {
		t.Errorf("expected recompute order [m1 m2], got %v", order)
	}
}

func TestPropagateDeepChainConsistency(t *testing.T) {
	r := NewRoot()
	defer r.Dispose()

	source := CreateSignal(r, 0)
	tail := CreateMemo(r, func() int { return source.Get() + 1 })
	const depth = 50
	for i := 1; i < depth; i++ {
		prev := tail
		tail = CreateMemo(r, func() int { return prev.Get() + 1 })
	}

	var observed []int
	CreateEffect(r, func() {
		observed = append(observed, tail.Get())
	})

	source.Set(100)
	if got := observed[len(observed)-1]; got != 100+depth {
		t.Errorf("expected %d at the chain tail, got %d", 100+depth, got)
	}
	// One effect run per write, never one per intermediate memo.
	if len(observed) != 2 {
		t.Errorf("expected 2 effect runs, got %d", len(observed))
	}
}

func TestPropagateDanglingEdgesPruned(t *testing.T) {
	r := NewRoot()
	defer r.Dispose()

	s := CreateSignal(r, 0)
	scope := r.CreateScope()
	scope.Run(func() {
		CreateMemo(r, func() int { return s.Get() })
		CreateEffect(r, func() { _ = s.Get() })
	})

	if s.SubscriberCount() != 2 {
		t.Fatalf("expected 2 subscribers, got %d", s.SubscriberCount())
	}

	scope.Dispose()
	if s.SubscriberCount() != 0 {
		t.Errorf("expected subscribers detached on disposal, got %d", s.SubscriberCount())
	}

	// A write after disposal walks no stale edges and changes nothing.
	s.Set(5)
	if s.Get() != 5 {
		t.Errorf("expected 5, got %d", s.Get())
	}
}

func TestPropagateSetInsideEffectExtendsFlush(t *testing.T) {
	// An effect writing an unrelated signal schedules that signal's
	// dependents into the same flush.
	r := NewRoot()
	defer r.Dispose()

	a := CreateSignal(r, 0)
	b := CreateSignal(r, 0)

	var bSeen []int
	CreateEffect(r, func() {
		bSeen = append(bSeen, b.Get())
	})
	CreateEffect(r, func() {
		b.Set(a.Get() * 10)
	})

	a.Set(1)
	if got := bSeen[len(bSeen)-1]; got != 10 {
		t.Errorf("expected downstream effect to observe 10, got %d", got)
	}
}

func TestRootStats(t *testing.T) {
	r := NewRoot()
	defer r.Dispose()

	a := CreateSignal(r, 1)
	CreateMemo(r, func() int { return a.Get() })
	CreateEffect(r, func() { _ = a.Get() })

	a.Set(2)
	a.Set(3)

	stats := r.Stats()
	if stats.SignalsCreated != 1 || stats.MemosCreated != 1 || stats.EffectsCreated != 1 {
		t.Errorf("creation counters wrong: %+v", stats)
	}
	if stats.PropagationPasses != 2 {
		t.Errorf("expected 2 passes, got %d", stats.PropagationPasses)
	}
	// Initial compute plus one per pass.
	if stats.MemoRecomputes != 3 {
		t.Errorf("expected 3 memo recomputes, got %d", stats.MemoRecomputes)
	}
	if stats.EffectRuns != 3 {
		t.Errorf("expected 3 effect runs, got %d", stats.EffectRuns)
	}
	if stats.LiveNodes != 3 {
		t.Errorf("expected 3 live nodes, got %d", stats.LiveNodes)
	}
}

type recordingObserver struct {
	started  int
	finished []PassStats
}

func (o *recordingObserver) PassStarted() {
	o.started++
}

func (o *recordingObserver) PassFinished(stats PassStats) {
	o.finished = append(o.finished, stats)
}

func TestObserverPassBoundaries(t *testing.T) {
	obs := &recordingObserver{}
	r := NewRoot(WithObserver(obs))
	defer r.Dispose()

	a := CreateSignal(r, 0)
	m := CreateMemo(r, func() int { return a.Get() + 1 })
	CreateEffect(r, func() { _ = m.Get() })

	obs.started = 0
	obs.finished = nil

	a.Set(1)
	if obs.started != 1 || len(obs.finished) != 1 {
		t.Fatalf("expected 1 pass, got started=%d finished=%d", obs.started, len(obs.finished))
	}
	pass := obs.finished[0]
	if pass.MemoRecomputes != 1 {
		t.Errorf("expected 1 memo recompute in pass, got %d", pass.MemoRecomputes)
	}
	if pass.EffectRuns != 1 {
		t.Errorf("expected 1 effect run in pass, got %d", pass.EffectRuns)
	}
	if pass.Duration < 0 || pass.Duration > time.Second {
		t.Errorf("implausible pass duration %s", pass.Duration)
	}

	// A batch is one pass regardless of write count.
	r.Batch(func() {
		a.Set(2)
		a.Set(3)
	})
	if obs.started != 2 || len(obs.finished) != 2 {
		t.Errorf("expected batch to count as one pass, got started=%d finished=%d",
			obs.started, len(obs.finished))
	}
}

func TestBatchEmptyIsFree(t *testing.T) {
	// Passes start lazily on the first write, so a batch with no writes
	// neither counts a pass nor notifies the observer.
	obs := &recordingObserver{}
	r := NewRoot(WithObserver(obs))
	defer r.Dispose()

	before := r.Stats().PropagationPasses
	r.Batch(func() {})

	if got := r.Stats().PropagationPasses; got != before {
		t.Errorf("empty batch counted a pass (%d -> %d)", before, got)
	}
	if obs.started != 0 || len(obs.finished) != 0 {
		t.Errorf("observer notified for an empty batch (started=%d finished=%d)",
			obs.started, len(obs.finished))
	}
}

func TestWithEffectBudgetDisabled(t *testing.T) {
	// Zero disables the budget; a tall but finite cascade completes.
	r := NewRoot(WithEffectBudget(0))
	defer r.Dispose()

	s := CreateSignal(r, 0)
	CreateEffect(r, func() {
		v := s.Get()
		if v < 200 {
			s.Set(v + 1)
		}
	})

	if got := s.Peek(); got != 200 {
		t.Errorf("expected cascade to settle at 200, got %d", got)
	}
}
