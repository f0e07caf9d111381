package reactor

import "github.com/vango-dev/reactor/pkg/arena"

// nodeKind discriminates the tagged variants stored per arena slot.
type nodeKind uint8

const (
	kindSignal nodeKind = iota + 1
	kindMemo
	kindEffect
)

// nodeState is the per-node dirty-tracking state machine.
// Clean -> (source changed) -> Dirty -> (recomputed) -> Clean.
// Computing is transient, used only for cycle detection.
type nodeState uint8

const (
	stateClean nodeState = iota
	stateDirty
	stateComputing
)

// node is the arena-resident storage for one reactive primitive.
// Which fields are meaningful depends on kind:
//
//	signal: value, subs
//	memo:   value, compute, subs, sources, state
//	effect: body, sources, runScope, state
type node struct {
	kind  nodeKind
	state nodeState

	// seq is the creation sequence number within the Root. The effect
	// flush runs in seq order, which is what guarantees an outer effect
	// re-runs (and disposes its nested effects) before a stale nested
	// effect would fire.
	seq uint64

	value   any
	compute func() any
	body    func()

	// subs are the dependents to notify when this node changes.
	// sources are the dependencies read during the last computation.
	// The two are mutual and re-established on every recomputation.
	subs    []arena.Handle
	sources []arena.Handle

	// owner is the scope the node's lifetime is bound to.
	owner *Scope

	// runScope is an effect's private child scope, disposed and
	// recreated on every run.
	runScope *Scope
}

// addHandle appends h to set unless already present.
func addHandle(set *[]arena.Handle, h arena.Handle) {
	for _, existing := range *set {
		if existing == h {
			return
		}
	}
	*set = append(*set, h)
}

// removeHandle removes h from set by swapping with the last element.
func removeHandle(set *[]arena.Handle, h arena.Handle) {
	s := *set
	for i, existing := range s {
		if existing == h {
			s[i] = s[len(s)-1]
			*set = s[:len(s)-1]
			return
		}
	}
}

func containsHandle(set []arena.Handle, h arena.Handle) bool {
	for _, existing := range set {
		if existing == h {
			return true
		}
	}
	return false
}
