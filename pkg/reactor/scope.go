package reactor

import "github.com/vango-dev/reactor/pkg/arena"

// Scope is a disposal boundary. Every reactive node is owned by the
// scope that was active when it was created; disposing the scope runs
// its cleanups and frees the nodes. Scopes form a tree rooted at the
// Root's top-level scope, and disposal is transitive: children first
// (in reverse creation order), then this scope's cleanups in LIFO
// order, then the owned nodes.
type Scope struct {
	root     *Root
	parent   *Scope
	children []*Scope
	nodes    []arena.Handle
	cleanups []func()
	disposed bool
}

// CreateScope begins a new disposal boundary as a child of the currently
// active scope. The new scope is not made current; use Run for that.
func (r *Root) CreateScope() *Scope {
	return r.newScope(r.scope)
}

func (r *Root) newScope(parent *Scope) *Scope {
	s := &Scope{root: r, parent: parent}
	if parent != nil {
		parent.children = append(parent.children, s)
	}
	r.stats.scopesCreated.Add(1)
	return s
}

// Run executes fn with s as the active scope, so every node and cleanup
// created inside belongs to s.
func (s *Scope) Run(fn func()) {
	r := s.root
	prev := r.scope
	r.scope = s
	defer func() { r.scope = prev }()
	fn()
}

// OnCleanup registers fn to run when s is disposed. Multiple
// registrations run in reverse order. If s is already disposed, fn runs
// immediately; an effect's outer scope may be torn down while a re-run
// is still in flight, and the teardown must not be lost.
func (s *Scope) OnCleanup(fn func()) {
	if s.disposed {
		fn()
		s.root.stats.cleanupRuns.Add(1)
		return
	}
	s.cleanups = append(s.cleanups, fn)
}

// IsDisposed reports whether s has been disposed.
func (s *Scope) IsDisposed() bool {
	return s.disposed
}

// Dispose tears down s: children depth-first in reverse creation order,
// then cleanups in LIFO order, then the owned nodes. Disposing an
// already-disposed scope is a no-op.
func (s *Scope) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true

	if s.parent != nil {
		s.parent.removeChild(s)
	}

	children := s.children
	s.children = nil
	for i := len(children) - 1; i >= 0; i-- {
		children[i].Dispose()
	}

	cleanups := s.cleanups
	s.cleanups = nil
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
		s.root.stats.cleanupRuns.Add(1)
	}

	nodes := s.nodes
	s.nodes = nil
	for _, h := range nodes {
		s.root.disposeNode(h)
	}

	s.root.stats.scopesDisposed.Add(1)
}

func (s *Scope) removeChild(child *Scope) {
	for i, c := range s.children {
		if c == child {
			s.children = append(s.children[:i], s.children[i+1:]...)
			return
		}
	}
}
