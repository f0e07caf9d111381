package reactor

import (
	"math"
	"sort"
	"time"

	"github.com/vango-dev/reactor/pkg/arena"
)

// propagate is the scheduler entry point invoked by every signal write.
//
// Shape: a breadth-first mark phase from the written signal collects the
// affected memos (marking them dirty) and enqueues affected effects; a
// depth-first color walk over source edges orders the dirty memos
// topologically; the ordered memos are recomputed synchronously. Effects
// only run once the batch depth returns to zero, deduplicated by handle
// and sorted by creation sequence (outer before inner).
//
// A write from inside a memo's compute closure re-enters here while the
// writer is still computing. Recomputing downstream memos right away
// could read the half-done writer and misreport a cycle, so such a
// write only marks the affected memos dirty; the enclosing recompute
// drains them once the writer completes. Writes from effect bodies
// re-enter with the flush in progress and fold their effects into it.
func (r *Root) propagate(src arena.Handle) {
	r.beginPass()
	defer r.endPass()
	r.startPass()

	affected := r.markPhase(src)
	if r.computing > 0 {
		r.deferred = append(r.deferred, affected...)
		return
	}

	r.recomputeAffected(affected)
	for len(r.deferred) > 0 {
		wave := r.deferred
		r.deferred = nil
		r.recomputeAffected(wave)
	}
}

// recomputeAffected brings a set of dirty memos up to date in
// topological order.
func (r *Root) recomputeAffected(affected []arena.Handle) {
	for _, h := range r.topoOrder(affected) {
		n, ok := r.nodes.Get(h)
		if !ok || n.state != stateDirty {
			// Disposed mid-pass, or already recomputed on demand.
			continue
		}
		r.recomputeMemo(h)
	}
}

func (r *Root) beginPass() {
	r.batchDepth++
}

// startPass opens the outermost pass on the first write that actually
// lands. An empty batch never gets here, so it neither counts a pass
// nor notifies the observer.
func (r *Root) startPass() {
	if r.passActive || r.flushing {
		return
	}
	r.passActive = true
	r.stats.propagationPasses.Add(1)
	r.passStartRecomputes = r.stats.memoRecomputes.Load()
	r.passStartEffectRuns = r.stats.effectRuns.Load()
	r.passStart = time.Now()
	if r.observer != nil {
		r.observer.PassStarted()
	}
}

func (r *Root) endPass() {
	r.batchDepth--
	if r.batchDepth != 0 || r.flushing {
		return
	}
	// Close the pass before flushing so a panicking effect body cannot
	// leave it open for the next write.
	wasActive := r.passActive
	r.passActive = false
	r.flushEffects()
	if !wasActive {
		return
	}
	if r.observer != nil {
		r.observer.PassFinished(PassStats{
			MemoRecomputes: r.stats.memoRecomputes.Load() - r.passStartRecomputes,
			EffectRuns:     r.stats.effectRuns.Load() - r.passStartEffectRuns,
			Duration:       time.Since(r.passStart),
		})
	}
}

// markPhase walks subscriber edges breadth-first from the written
// signal, dirtying memos and enqueuing effects. Dangling edges left by
// disposed dependents are pruned here rather than dereferenced. A memo
// found mid-computation means the write originated inside its own
// compute closure: a cycle.
func (r *Root) markPhase(src arena.Handle) []arena.Handle {
	var affected []arena.Handle
	visited := map[arena.Handle]struct{}{src: {}}
	queue := []arena.Handle{src}

	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]

		n, ok := r.nodes.Get(h)
		if !ok {
			continue
		}

		kept := n.subs[:0]
		for _, sub := range n.subs {
			sn, ok := r.nodes.Get(sub)
			if !ok {
				continue // dangling edge: prune
			}
			kept = append(kept, sub)

			if _, seen := visited[sub]; seen {
				continue
			}
			visited[sub] = struct{}{}

			switch sn.kind {
			case kindMemo:
				if sn.state == stateComputing {
					panic(&CycleError{Handle: sub})
				}
				sn.state = stateDirty
				affected = append(affected, sub)
				queue = append(queue, sub)
			case kindEffect:
				sn.state = stateDirty
				r.enqueueEffect(sub)
			}
		}
		// Re-fetch: sub lookups don't allocate, but stay disciplined
		// about writing through a fresh pointer.
		if n, ok = r.nodes.Get(h); ok {
			n.subs = kept
		}
	}
	return affected
}

// topoOrder sorts the affected memos so every memo comes after the dirty
// sources it reads. Depth-first over source edges restricted to the
// affected set, with a gray/black color scheme; a gray revisit is a
// dependency cycle.
func (r *Root) topoOrder(affected []arena.Handle) []arena.Handle {
	if len(affected) < 2 {
		return affected
	}

	in := make(map[arena.Handle]struct{}, len(affected))
	for _, h := range affected {
		in[h] = struct{}{}
	}

	const (
		gray uint8 = iota + 1
		black
	)
	color := make(map[arena.Handle]uint8, len(affected))
	order := make([]arena.Handle, 0, len(affected))

	var visit func(h arena.Handle)
	visit = func(h arena.Handle) {
		switch color[h] {
		case gray:
			panic(&CycleError{Handle: h})
		case black:
			return
		}
		color[h] = gray
		if n, ok := r.nodes.Get(h); ok {
			for _, src := range n.sources {
				if _, ok := in[src]; ok {
					visit(src)
				}
			}
		}
		color[h] = black
		order = append(order, h)
	}

	for _, h := range affected {
		visit(h)
	}
	return order
}

func (r *Root) enqueueEffect(h arena.Handle) {
	if _, ok := r.pendingSet[h]; ok {
		return
	}
	r.pendingSet[h] = struct{}{}
	r.pending = append(r.pending, h)
}

// flushEffects drains the pending queue in waves until no effect run
// enqueues further work. Each wave runs in node creation order, so an
// outer effect re-runs (disposing the scope that owns a stale nested
// effect) before the nested one would fire; the nested effect's handle
// is then stale and skipped.
func (r *Root) flushEffects() {
	r.flushing = true
	defer func() { r.flushing = false }()

	runs := 0
	for len(r.pending) > 0 {
		wave := r.pending
		r.pending = nil
		clear(r.pendingSet)

		sort.SliceStable(wave, func(i, j int) bool {
			return r.nodeSeq(wave[i]) < r.nodeSeq(wave[j])
		})

		for _, h := range wave {
			n, ok := r.nodes.Get(h)
			if !ok || n.state != stateDirty {
				continue
			}
			runs++
			if r.effectBudget > 0 && runs > r.effectBudget {
				panic(&BudgetError{Budget: r.effectBudget})
			}
			r.runEffect(h)
		}
	}
}

func (r *Root) nodeSeq(h arena.Handle) uint64 {
	n, ok := r.nodes.Get(h)
	if !ok {
		return math.MaxUint64
	}
	return n.seq
}
