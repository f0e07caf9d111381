package reactor

import "github.com/vango-dev/reactor/pkg/arena"

// Effect is a reactive sink: a closure re-run whenever any dependency it
// read during its last run changes. It has no value of its own.
//
// Every run owns a fresh private child scope. Signals, memos, nested
// effects, and OnCleanup registrations made inside the body belong to
// that scope and are disposed before the next run (and on disposal of
// the effect itself), so a re-run never leaks the previous run's
// resources.
type Effect struct {
	root *Root
	h    arena.Handle
}

// CreateEffect allocates an effect under the currently active scope and
// runs body once immediately, whether or not it reads anything.
func CreateEffect(r *Root, body func()) *Effect {
	h := r.allocNode(node{
		kind:  kindEffect,
		state: stateDirty,
		body:  body,
	})
	r.stats.effectsCreated.Add(1)
	r.runEffect(h)
	return &Effect{root: r, h: h}
}

// Dispose detaches the effect: its current run scope is disposed (running
// registered cleanups) and it will never re-run. Idempotent.
func (e *Effect) Dispose() {
	e.root.disposeNode(e.h)
}

// Alive reports whether the effect is still attached.
func (e *Effect) Alive() bool {
	return e.root.nodes.Contains(e.h)
}

// SourceCount returns the number of live dependencies registered by the
// last run. Intended for tests validating stale dependency pruning.
func (e *Effect) SourceCount() int {
	n, ok := e.root.nodes.Get(e.h)
	if !ok {
		return 0
	}
	return e.root.liveCount(n.sources)
}

// Handle returns the effect's arena handle, for diagnostics.
func (e *Effect) Handle() arena.Handle {
	return e.h
}

// runEffect executes one effect run: dispose the previous run scope,
// create a fresh one, run the body with the effect as listener and the
// fresh scope active, then prune sources not re-read this run.
func (r *Root) runEffect(h arena.Handle) {
	n, ok := r.nodes.Get(h)
	if !ok {
		return
	}

	owner := n.owner
	body := n.body
	oldSources := n.sources
	oldRun := n.runScope
	n.sources = nil
	n.runScope = nil
	n.state = stateComputing

	if oldRun != nil {
		// Runs the previous run's cleanups; user code, arena may move.
		oldRun.Dispose()
	}

	fresh := r.newScope(owner)
	n, ok = r.nodes.Get(h)
	if !ok {
		// A cleanup disposed the effect itself.
		fresh.Dispose()
		return
	}
	n.runScope = fresh

	prevListener := r.listener
	prevScope := r.scope
	r.listener = h
	r.scope = fresh

	completed := false
	defer func() {
		r.listener = prevListener
		r.scope = prevScope
		if !completed {
			// Body panicked: stay dirty so the effect retries on the
			// next change instead of being skipped as clean.
			if nn, ok := r.nodes.Get(h); ok {
				nn.state = stateDirty
			}
		}
	}()

	body()
	completed = true

	nn, ok := r.nodes.Get(h)
	if !ok {
		return
	}

	for _, src := range oldSources {
		if containsHandle(nn.sources, src) {
			continue
		}
		if sn, ok := r.nodes.Get(src); ok {
			removeHandle(&sn.subs, h)
		}
	}

	// A write inside the body may have re-dirtied us; honor it so the
	// flush loop runs the effect again (bounded by the effect budget).
	if nn.state == stateComputing {
		nn.state = stateClean
	}
	r.stats.effectRuns.Add(1)
}
