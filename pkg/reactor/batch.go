package reactor

// Batch groups multiple signal writes into a single logical update.
// Memos are kept consistent throughout (each write still recomputes its
// dirty memos in topological order), but affected effects are
// deduplicated and run once when the outermost batch completes,
// observing the final values.
//
// Batches nest; effects fire only when the outermost one ends.
//
//	r.Batch(func() {
//	    firstName.Set("John")
//	    lastName.Set("Doe")
//	})
//	// a dependent effect re-runs once, seeing both new values
func (r *Root) Batch(fn func()) {
	r.beginPass()
	defer r.endPass()
	fn()
}

// Batch is the free-function form of Root.Batch.
func Batch(r *Root, fn func()) {
	r.Batch(fn)
}

// Untracked is the free-function form of Root.Untracked: fn runs with
// dependency tracking suspended, so reads inside it (a log statement in
// an effect body, say) do not become dependencies.
func Untracked(r *Root, fn func()) {
	r.Untracked(fn)
}

// OnCleanup is the free-function form of Root.OnCleanup.
func OnCleanup(r *Root, fn func()) {
	r.OnCleanup(fn)
}
