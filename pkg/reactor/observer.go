package reactor

import "time"

// PassStats summarizes one completed propagation pass.
type PassStats struct {
	// MemoRecomputes is the number of memo recomputations the pass
	// performed, including nested writes that extended it.
	MemoRecomputes uint64

	// EffectRuns is the number of effect executions in the pass's flush.
	EffectRuns uint64

	// Duration is wall time from the outermost write to flush completion.
	Duration time.Duration
}

// Observer receives pass-boundary notifications from a Root. Install
// with WithObserver. Callbacks run synchronously on the Root's thread;
// they must not write signals of the same Root.
//
// The pkg/tracing package provides an Observer that emits one trace span
// per pass.
type Observer interface {
	// PassStarted fires when an outermost write (or explicit batch)
	// begins a propagation pass.
	PassStarted()

	// PassFinished fires after the pass's effect flush completes.
	PassFinished(stats PassStats)
}
