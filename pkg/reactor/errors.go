package reactor

import (
	"fmt"

	"github.com/vango-dev/reactor/pkg/arena"
)

// DebugMode enables strict failure modes for programmer errors.
// When true, accessing a disposed signal/memo/effect panics with a
// *StaleHandleError instead of returning an inert result.
// Set at startup; not consulted concurrently with Root use.
var DebugMode bool

// CycleError reports a cyclic dependency: a memo or effect was asked to
// recompute while its own computation was still in progress. This is a
// configuration error in the dependency graph and is raised as a panic
// from the Set call that triggered the pass.
type CycleError struct {
	Handle arena.Handle
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("reactor: cyclic dependency detected at node %d/gen %d",
		e.Handle.Index(), e.Handle.Generation())
}

// StaleHandleError reports use of a reactive value after its owning
// scope was disposed. Raised as a panic only when DebugMode is enabled;
// otherwise stale reads return zero values and stale writes are no-ops.
type StaleHandleError struct {
	Handle arena.Handle
}

func (e *StaleHandleError) Error() string {
	return fmt.Sprintf("reactor: use after dispose at node %d/gen %d",
		e.Handle.Index(), e.Handle.Generation())
}

// BudgetError reports a runaway effect cascade: a single flush executed
// more effect runs than the Root's configured budget allows. The usual
// cause is an effect writing one of its own dependencies.
type BudgetError struct {
	Budget int
}

func (e *BudgetError) Error() string {
	return fmt.Sprintf("reactor: effect budget exceeded (%d runs in one flush)", e.Budget)
}

// staleAccess is the shared policy hook for stale-handle use.
func staleAccess(h arena.Handle) {
	if DebugMode {
		panic(&StaleHandleError{Handle: h})
	}
}
