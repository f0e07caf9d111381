package reactor

import (
	"time"

	"github.com/vango-dev/reactor/pkg/arena"
)

// DefaultEffectBudget is the maximum number of effect runs one flush may
// execute before the Root assumes a runaway cascade and panics with a
// *BudgetError. Override with WithEffectBudget.
const DefaultEffectBudget = 100000

// Root is one reactive universe: it owns the node arena, the scope tree,
// and all scheduler state. Handles created under one Root are meaningless
// against another (and are detected, not aliased, if misused).
//
// A Root is single-threaded. Callers serialize all access; nothing inside
// takes locks except the atomic stats counters.
type Root struct {
	nodes *arena.Arena[node]

	// top is the root of the scope tree; scope is the currently active
	// disposal boundary for new allocations.
	top   *Scope
	scope *Scope

	// listener is the node currently tracking dependencies (a memo or
	// effect mid-computation). Zero means reads are untracked.
	listener arena.Handle

	// batchDepth coalesces nested propagation; effects flush when it
	// returns to zero.
	batchDepth int

	// pending is the ordered, deduplicated effect queue.
	pending    []arena.Handle
	pendingSet map[arena.Handle]struct{}
	flushing   bool

	// computing counts memo recomputations currently on the stack. A
	// write landing while one is in flight only marks downstream memos
	// dirty; deferred holds them until the writer's recompute completes.
	computing int
	deferred  []arena.Handle

	// passActive marks an open outermost pass. Passes start lazily on
	// the first write that lands, so an empty batch is free.
	passActive bool

	effectBudget int
	observer     Observer

	seq      uint64
	disposed bool

	stats rootStats

	// pass-start snapshots for Observer deltas
	passStart           time.Time
	passStartRecomputes uint64
	passStartEffectRuns uint64
}

// RootOption configures a Root at construction time.
type RootOption func(*Root)

// WithEffectBudget overrides the per-flush effect run budget.
// Zero or negative disables the budget entirely.
func WithEffectBudget(n int) RootOption {
	return func(r *Root) {
		r.effectBudget = n
	}
}

// WithObserver installs an observer notified at propagation pass
// boundaries. See Observer.
func WithObserver(o Observer) RootOption {
	return func(r *Root) {
		r.observer = o
	}
}

// NewRoot creates an empty reactive universe with its top-level scope
// active.
func NewRoot(opts ...RootOption) *Root {
	r := &Root{
		nodes:        arena.New[node](),
		pendingSet:   make(map[arena.Handle]struct{}),
		effectBudget: DefaultEffectBudget,
	}
	r.top = &Scope{root: r}
	r.scope = r.top
	r.stats.scopesCreated.Add(1)

	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Dispose tears down the entire universe: every scope, node, and cleanup.
// The Root cannot be used afterwards.
func (r *Root) Dispose() {
	if r.disposed {
		return
	}
	r.disposed = true
	r.top.Dispose()
	r.pending = nil
	r.deferred = nil
	clear(r.pendingSet)
}

// IsDisposed reports whether Dispose has been called.
func (r *Root) IsDisposed() bool {
	return r.disposed
}

// OnCleanup registers fn to run when the currently active scope is
// disposed. Registrations run in reverse order (LIFO). Inside an effect
// body the active scope is the effect's per-run scope, so fn runs before
// the next re-run.
func (r *Root) OnCleanup(fn func()) {
	r.scope.OnCleanup(fn)
}

// Untracked runs fn with dependency tracking suspended: signal and memo
// reads inside fn do not subscribe the current listener. For a single
// read, Peek is the lighter form.
func (r *Root) Untracked(fn func()) {
	prev := r.listener
	r.listener = arena.Handle{}
	defer func() { r.listener = prev }()
	fn()
}

// allocNode stores n in the arena under the currently active scope.
func (r *Root) allocNode(n node) arena.Handle {
	r.seq++
	n.seq = r.seq

	owner := r.scope
	for owner != nil && owner.disposed {
		owner = owner.parent
	}
	if owner == nil {
		owner = r.top
	}
	n.owner = owner

	h := r.nodes.Alloc(n)
	owner.nodes = append(owner.nodes, h)

	r.stats.liveNodes.Add(1)
	r.stats.arenaSlots.Store(int64(r.nodes.Cap()))
	return h
}

// disposeNode detaches a node from the graph and frees its slot.
// Safe to call with a stale handle.
func (r *Root) disposeNode(h arena.Handle) {
	n, ok := r.nodes.Get(h)
	if !ok {
		return
	}

	if n.kind == kindEffect && n.runScope != nil {
		rs := n.runScope
		n.runScope = nil
		// Scope disposal runs user cleanups; the arena may move under us.
		rs.Dispose()
		n, ok = r.nodes.Get(h)
		if !ok {
			return
		}
	}

	sources := n.sources
	n.sources = nil
	for _, src := range sources {
		if sn, ok := r.nodes.Get(src); ok {
			removeHandle(&sn.subs, h)
		}
	}
	// Dangling edges in our former subscribers' source lists are pruned
	// on their next recomputation; subscriber edges pointing at us die
	// with the generation bump.
	if r.nodes.Free(h) {
		r.stats.liveNodes.Add(-1)
	}
}

// trackRead registers the mutual dependency edge between the node being
// read and the current listener, if any.
func (r *Root) trackRead(h arena.Handle) {
	l := r.listener
	if l.IsZero() || l == h {
		return
	}
	n, ok := r.nodes.Get(h)
	if !ok {
		return
	}
	addHandle(&n.subs, l)
	if ln, ok := r.nodes.Get(l); ok {
		addHandle(&ln.sources, h)
	}
}

// liveCount counts handles in hs that still resolve.
func (r *Root) liveCount(hs []arena.Handle) int {
	count := 0
	for _, h := range hs {
		if r.nodes.Contains(h) {
			count++
		}
	}
	return count
}
