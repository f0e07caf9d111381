package reactor

import "sync/atomic"

// rootStats are the Root's activity counters. They are atomic so that a
// metrics collector can scrape them from another goroutine without
// participating in the Root's single-threaded discipline.
type rootStats struct {
	signalsCreated    atomic.Uint64
	memosCreated      atomic.Uint64
	effectsCreated    atomic.Uint64
	memoRecomputes    atomic.Uint64
	effectRuns        atomic.Uint64
	propagationPasses atomic.Uint64
	cleanupRuns       atomic.Uint64
	scopesCreated     atomic.Uint64
	scopesDisposed    atomic.Uint64
	liveNodes         atomic.Int64
	arenaSlots        atomic.Int64
}

// Stats is a point-in-time snapshot of a Root's counters.
type Stats struct {
	// LiveNodes is the number of currently allocated reactive nodes.
	LiveNodes int64

	// ArenaSlots is the arena's total slot count, live plus free.
	ArenaSlots int64

	// LiveScopes is the number of undisposed scopes, top scope included.
	LiveScopes int64

	SignalsCreated    uint64
	MemosCreated      uint64
	EffectsCreated    uint64
	MemoRecomputes    uint64
	EffectRuns        uint64
	PropagationPasses uint64
	CleanupRuns       uint64
}

// Stats returns a snapshot of the Root's counters. Safe to call from any
// goroutine.
func (r *Root) Stats() Stats {
	created := r.stats.scopesCreated.Load()
	disposed := r.stats.scopesDisposed.Load()
	return Stats{
		LiveNodes:         r.stats.liveNodes.Load(),
		ArenaSlots:        r.stats.arenaSlots.Load(),
		LiveScopes:        int64(created) - int64(disposed),
		SignalsCreated:    r.stats.signalsCreated.Load(),
		MemosCreated:      r.stats.memosCreated.Load(),
		EffectsCreated:    r.stats.effectsCreated.Load(),
		MemoRecomputes:    r.stats.memoRecomputes.Load(),
		EffectRuns:        r.stats.effectRuns.Load(),
		PropagationPasses: r.stats.propagationPasses.Load(),
		CleanupRuns:       r.stats.cleanupRuns.Load(),
	}
}
