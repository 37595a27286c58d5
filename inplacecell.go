package swappool

import "sync"

/*
InplaceCell is the concurrent in-place mutation primitive the rest of the
pool is built on: a container that guarantees a concurrent reader never
observes a default/empty value while Update is mutating it.

The original design (see DESIGN.md) reached this guarantee by cloning the
value onto the side while a single-threaded RefCell mutated the real one.
This rewrite takes the "strict rewrite" path the design notes call out
explicitly: a sync.RWMutex. A writer excludes readers entirely for the
(short) duration of the update, so a reader either sees the value before
the update or after it, never a torn or default one — a strictly stronger
guarantee than the clone discipline, at the usual RWMutex cost.

Constructed not-thread-safe, InplaceCell skips the lock entirely. This is
a single-goroutine optimization: callers who already serialize their own
access (e.g. a Pool built with WithThreadSafe(false)) pay no synchronization
overhead at all. Callers MUST NOT retain a value returned by Get across a
subsequent Update on the same cell in this mode.
*/
type InplaceCell[T any] struct {
	mu         sync.RWMutex
	value      T
	threadSafe bool
}

// NewInplaceCell creates a cell holding value. threadSafe selects whether
// concurrent access is guarded by a sync.RWMutex.
func NewInplaceCell[T any](value T, threadSafe bool) *InplaceCell[T] {
	return &InplaceCell[T]{value: value, threadSafe: threadSafe}
}

// Get returns the current value.
func (c *InplaceCell[T]) Get() T {
	if !c.threadSafe {
		return c.value
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// ReplaceBy unconditionally stores v.
func (c *InplaceCell[T]) ReplaceBy(v T) {
	if !c.threadSafe {
		c.value = v
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = v
}

// Update applies updater to the stored value in place.
func (c *InplaceCell[T]) Update(updater func(*T)) {
	if !c.threadSafe {
		updater(&c.value)
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	updater(&c.value)
}

// UpdateResult applies updater to the stored value in place, propagating
// whatever error updater returns. If updater returns an error the value
// is still left however updater mutated it before returning, matching the
// original's "rollback only insofar as the value is left as mutated"
// contract (see spec.md §7).
func UpdateResult[T any, R any](c *InplaceCell[T], updater func(*T) (R, error)) (R, error) {
	if !c.threadSafe {
		return updater(&c.value)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return updater(&c.value)
}
