package reactor

import "github.com/vango-dev/reactor/pkg/arena"

// Memo is a cached derived value. It is both a dependent (of whatever
// its compute closure reads) and a source (for whoever reads it).
//
// Memos are eager: the initial value is computed at creation, and a
// dirty memo is recomputed inside the propagation pass, in topological
// order, so readers never observe a mix of old and new values.
type Memo[T any] struct {
	root *Root
	h    arena.Handle
}

// CreateMemo allocates a memo under the currently active scope and
// computes its initial value immediately, so the memo always holds a
// valid value after construction.
func CreateMemo[T any](r *Root, compute func() T) *Memo[T] {
	h := r.allocNode(node{
		kind:    kindMemo,
		state:   stateDirty,
		compute: func() any { return compute() },
	})
	r.stats.memosCreated.Add(1)
	r.recomputeMemo(h)
	return &Memo[T]{root: r, h: h}
}

// Get returns the cached value, recomputing first if the memo is dirty,
// and subscribes the current listener. Reading a memo that is itself
// mid-computation is a cyclic dependency and panics with *CycleError.
func (m *Memo[T]) Get() T {
	value, ok := m.read()
	if !ok {
		staleAccess(m.h)
		var zero T
		return zero
	}
	m.root.trackRead(m.h)
	return value
}

// Peek returns the value without subscribing. Still recomputes if dirty.
func (m *Memo[T]) Peek() T {
	value, ok := m.read()
	if !ok {
		staleAccess(m.h)
		var zero T
		return zero
	}
	return value
}

func (m *Memo[T]) read() (T, bool) {
	var zero T
	n, ok := m.root.nodes.Get(m.h)
	if !ok {
		return zero, false
	}
	switch n.state {
	case stateComputing:
		panic(&CycleError{Handle: m.h})
	case stateDirty:
		// Demand-driven recompute. Normally the pass walk gets here
		// first, but a newly discovered dependency ordered later in the
		// pass (or a memo left dirty by a panicked compute) is brought
		// up to date on read.
		m.root.recomputeMemo(m.h)
		n, ok = m.root.nodes.Get(m.h)
		if !ok {
			return zero, false
		}
	}
	value, _ := n.value.(T)
	return value, true
}

// Alive reports whether the memo's owning scope is still live.
func (m *Memo[T]) Alive() bool {
	return m.root.nodes.Contains(m.h)
}

// SourceCount returns the number of live dependencies registered by the
// last computation. Intended for tests validating stale dependency
// pruning.
func (m *Memo[T]) SourceCount() int {
	n, ok := m.root.nodes.Get(m.h)
	if !ok {
		return 0
	}
	return m.root.liveCount(n.sources)
}

// SubscriberCount returns the number of live dependents subscribed to
// this memo.
func (m *Memo[T]) SubscriberCount() int {
	n, ok := m.root.nodes.Get(m.h)
	if !ok {
		return 0
	}
	return m.root.liveCount(n.subs)
}

// Handle returns the memo's arena handle, for diagnostics.
func (m *Memo[T]) Handle() arena.Handle {
	return m.h
}

// recomputeMemo runs a memo's compute closure with dependency
// re-discovery: the source set is rebuilt from the reads the closure
// actually performs this run, and edges to sources no longer read are
// dropped.
func (r *Root) recomputeMemo(h arena.Handle) {
	n, ok := r.nodes.Get(h)
	if !ok {
		return
	}
	if n.state == stateComputing {
		panic(&CycleError{Handle: h})
	}
	n.state = stateComputing
	r.computing++

	oldSources := n.sources
	n.sources = nil
	compute := n.compute

	prev := r.listener
	r.listener = h

	completed := false
	defer func() {
		r.computing--
		r.listener = prev
		if !completed {
			// The compute panicked. Leave the memo dirty so the next
			// pass (or read) retries instead of serving a stale value
			// as clean. Old subscriptions stay; conservative but safe.
			if nn, ok := r.nodes.Get(h); ok {
				nn.state = stateDirty
			}
		}
	}()

	value := compute()
	completed = true

	// The compute may have allocated; re-fetch before mutating.
	nn, ok := r.nodes.Get(h)
	if !ok {
		return
	}

	// Stale dependency pruning: drop subscription edges on sources the
	// closure did not re-read this run.
	for _, src := range oldSources {
		if containsHandle(nn.sources, src) {
			continue
		}
		if sn, ok := r.nodes.Get(src); ok {
			removeHandle(&sn.subs, h)
		}
	}

	nn.value = value
	nn.state = stateClean
	r.stats.memoRecomputes.Add(1)
}
