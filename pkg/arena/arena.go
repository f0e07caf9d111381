// Package arena provides a generational slab allocator.
//
// Values are stored in slots addressed by a small, copyable Handle that
// carries no lifetime. Freed slots are recycled through a free list, and
// every (re)allocation stamps the slot with a fresh generation, so a
// Handle to a freed value is detected on access rather than aliasing
// whatever now occupies the slot.
//
// Generations are drawn from a single process-wide sequence. A Handle
// minted by one Arena therefore never validates against another Arena,
// which turns cross-arena misuse into a lookup failure instead of
// silent corruption.
package arena

import "sync/atomic"

// generationCounter is the source of slot generations for all arenas.
// Never reused, never zero.
var generationCounter atomic.Uint64

func nextGeneration() uint64 {
	return generationCounter.Add(1)
}

// Handle identifies a value stored in an Arena.
// The zero Handle is never valid.
type Handle struct {
	index      uint32
	generation uint64
}

// IsZero reports whether h is the zero Handle.
func (h Handle) IsZero() bool {
	return h.generation == 0
}

// Index returns the slot index. Exposed for diagnostics only; the index
// alone does not identify a live value.
func (h Handle) Index() uint32 {
	return h.index
}

// Generation returns the slot generation the handle was minted with.
func (h Handle) Generation() uint64 {
	return h.generation
}

type slot[T any] struct {
	value      T
	generation uint64
	live       bool
}

// Arena is a generational slab of T values.
// It is not safe for concurrent use; the owner serializes access.
type Arena[T any] struct {
	slots []slot[T]
	free  []uint32
	count int
}

// New returns an empty arena.
func New[T any]() *Arena[T] {
	return &Arena[T]{}
}

// Alloc stores v in a slot and returns its handle.
// Freed slots are reused before the slab grows.
func (a *Arena[T]) Alloc(v T) Handle {
	gen := nextGeneration()

	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		a.slots[idx] = slot[T]{value: v, generation: gen, live: true}
		a.count++
		return Handle{index: idx, generation: gen}
	}

	a.slots = append(a.slots, slot[T]{value: v, generation: gen, live: true})
	a.count++
	return Handle{index: uint32(len(a.slots) - 1), generation: gen}
}

// Get returns a pointer to the value addressed by h.
// It returns (nil, false) if the slot was freed or the handle belongs to
// a different arena. The pointer is invalidated by the next Alloc, so
// callers must not hold it across allocations.
func (a *Arena[T]) Get(h Handle) (*T, bool) {
	if h.IsZero() || int(h.index) >= len(a.slots) {
		return nil, false
	}
	s := &a.slots[h.index]
	if !s.live || s.generation != h.generation {
		return nil, false
	}
	return &s.value, true
}

// Contains reports whether h addresses a live value in this arena.
func (a *Arena[T]) Contains(h Handle) bool {
	_, ok := a.Get(h)
	return ok
}

// Free releases the slot addressed by h and returns it to the free list.
// Freeing an already-freed or foreign handle is a no-op returning false.
func (a *Arena[T]) Free(h Handle) bool {
	if h.IsZero() || int(h.index) >= len(a.slots) {
		return false
	}
	s := &a.slots[h.index]
	if !s.live || s.generation != h.generation {
		return false
	}

	var zero T
	s.value = zero
	s.live = false
	// Stamp a fresh generation so the stale handle can never revalidate,
	// even before the slot is reallocated.
	s.generation = nextGeneration()

	a.free = append(a.free, h.index)
	a.count--
	return true
}

// Len returns the number of live values.
func (a *Arena[T]) Len() int {
	return a.count
}

// Cap returns the total number of slots, live and free.
func (a *Arena[T]) Cap() int {
	return len(a.slots)
}
