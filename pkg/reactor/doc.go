// Package reactor is a fine-grained reactive runtime: a dependency-graph
// scheduler that tracks which computations read which values and brings
// everything downstream of a write up to date deterministically.
//
// Reactive nodes live in a generational arena owned by a Root. Handles
// into the arena are small and copyable, and a disposed node is detected
// on access instead of aliasing reused storage.
//
// # Core Types
//
// Signal[T] is a mutable reactive cell:
//
//	r := reactor.NewRoot()
//	count := reactor.CreateSignal(r, 0)
//	value := count.Get() // read (subscribes the current listener)
//	count.Set(5)         // write (drives a propagation pass)
//	count.Update(func(n int) int { return n + 1 })
//
// Memo[T] is a cached derived value, recomputed eagerly in topological
// order whenever an upstream source changes:
//
//	doubled := reactor.CreateMemo(r, func() int { return count.Get() * 2 })
//
// Effect is a reactive sink with no value of its own. Each run owns a
// private child scope that is disposed and recreated on the next run,
// so anything the body allocates (nested signals, memos, effects,
// cleanups) lives exactly as long as the run that made it:
//
//	reactor.CreateEffect(r, func() {
//	    fmt.Println("count is", count.Get())
//	    r.OnCleanup(func() { fmt.Println("before next run") })
//	})
//
// # Batching
//
// Writes inside a batch are coalesced: memos stay consistent throughout,
// and each affected effect runs once with the final values:
//
//	r.Batch(func() {
//	    a.Set(1)
//	    b.Set(2)
//	})
//
// # Threading
//
// A Root is a single-threaded universe. Nothing inside takes locks;
// callers that share a Root across goroutines must serialize access to
// it. Stats counters are the exception (atomic) so instrumentation can
// scrape them from elsewhere.
package reactor
