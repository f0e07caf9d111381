package reactor

import "github.com/vango-dev/reactor/pkg/arena"

// Signal is a mutable reactive cell. Reading it inside a tracked context
// (a memo computation or an effect body) subscribes that computation to
// the signal's changes.
//
// Every Set propagates. Values are not compared for equality: "same
// value" writes still notify, so T needs no comparability and effect
// firing counts stay predictable.
type Signal[T any] struct {
	root *Root
	h    arena.Handle
}

// CreateSignal allocates a signal holding initial, owned by the Root's
// currently active scope.
func CreateSignal[T any](r *Root, initial T) *Signal[T] {
	h := r.allocNode(node{
		kind:  kindSignal,
		state: stateClean,
		value: initial,
	})
	r.stats.signalsCreated.Add(1)
	return &Signal[T]{root: r, h: h}
}

// Get returns the current value and subscribes the current listener.
// After the owning scope is disposed, Get returns the zero value
// (or panics with *StaleHandleError in DebugMode).
func (s *Signal[T]) Get() T {
	n, ok := s.root.nodes.Get(s.h)
	if !ok {
		staleAccess(s.h)
		var zero T
		return zero
	}
	value, _ := n.value.(T)
	s.root.trackRead(s.h)
	return value
}

// Peek returns the current value without subscribing anyone.
func (s *Signal[T]) Peek() T {
	n, ok := s.root.nodes.Get(s.h)
	if !ok {
		staleAccess(s.h)
		var zero T
		return zero
	}
	value, _ := n.value.(T)
	return value
}

// Set stores value and drives a propagation pass. Writing to a disposed
// signal is a no-op (or a DebugMode panic).
func (s *Signal[T]) Set(value T) {
	n, ok := s.root.nodes.Get(s.h)
	if !ok {
		staleAccess(s.h)
		return
	}
	n.value = value
	s.root.propagate(s.h)
}

// Update applies fn to the current value and stores the result, then
// propagates. The implicit read does not register a dependency.
func (s *Signal[T]) Update(fn func(T) T) {
	n, ok := s.root.nodes.Get(s.h)
	if !ok {
		staleAccess(s.h)
		return
	}
	old, _ := n.value.(T)

	// fn is user code and may allocate nodes; the arena can move, so the
	// node pointer must be re-fetched before the store.
	value := fn(old)

	n, ok = s.root.nodes.Get(s.h)
	if !ok {
		return
	}
	n.value = value
	s.root.propagate(s.h)
}

// Alive reports whether the signal's owning scope is still live.
func (s *Signal[T]) Alive() bool {
	return s.root.nodes.Contains(s.h)
}

// SubscriberCount returns the number of live dependents currently
// subscribed. Intended for tests validating dependency pruning.
func (s *Signal[T]) SubscriberCount() int {
	n, ok := s.root.nodes.Get(s.h)
	if !ok {
		return 0
	}
	return s.root.liveCount(n.subs)
}

// Handle returns the signal's arena handle, for diagnostics.
func (s *Signal[T]) Handle() arena.Handle {
	return s.h
}
