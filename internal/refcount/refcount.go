// Package refcount implements the atomic reference counter that backs
// shared ownership of Chain blocks, without the heap overhead of a full
// shared-pointer type.
package refcount

import (
	"strconv"
	"sync/atomic"
)

// RefCount is an atomic, non-negative reference counter starting at 1.
//
// The zero value is not usable; construct with New. RefCount must not be
// copied after first use.
type RefCount struct {
	n atomic.Int64
}

// New returns a RefCount with an initial count of 1.
func New() *RefCount {
	r := &RefCount{}
	r.n.Store(1)
	return r
}

// Ref increments the count. Relaxed: the caller already holds a live
// reference, so no ordering needs to be established with other goroutines.
func (r *RefCount) Ref() {
	r.n.Add(1)
}

// Unref decrements the count and reports whether it reached zero, in which
// case the caller is responsible for destroying the referenced object.
//
// The decrement that brings the count to zero synchronizes-with every prior
// mutation made by any former owner: the caller may safely observe and free
// state that other goroutines wrote before dropping their reference.
func (r *RefCount) Unref() bool {
	// Fast path: if a relaxed read already shows 1, this call cannot be
	// racing another Unref (there is only one owner left), so the
	// count can be brought to zero without a second atomic RMW.
	if r.n.Load() == 1 {
		r.n.Store(0)
		return true
	}
	return r.n.Add(-1) == 0
}

// Unique reports whether the count is currently 1, i.e. whether the caller
// may be the sole owner. This is advisory: a concurrent Ref by another
// goroutine that already held a reference would be a caller bug, not a race
// this method needs to guard against. Correctness-relevant "may I mutate?"
// checks rely on the caller already being the only external owner.
func (r *RefCount) Unique() bool {
	return r.n.Load() == 1
}

// Count returns a snapshot of the current reference count, for diagnostics
// and sizing decisions only.
func (r *RefCount) Count() int64 {
	return r.n.Load()
}

// String implements fmt.Stringer for use in structured log fields.
func (r *RefCount) String() string {
	return "refcount(" + strconv.FormatInt(r.Count(), 10) + ")"
}
