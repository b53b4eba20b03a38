// Package cord implements a minimal rope of flat fragments: the
// absl::Cord-equivalent that spec.md's SharedBlock external-payload
// bridging operations need. No example repo in the pack ships a Go rope
// type, so this is new code, shaped after Chain's own block-sequence
// design rather than translated from any particular library.
package cord

import "github.com/rgli/riegeli/internal/refcount"

// fragment is one flat, ref-counted chunk of a Cord.
type fragment struct {
	ref  *refcount.RefCount
	data []byte
}

// Cord is an ordered sequence of flat byte fragments presenting one
// logical string, with cheap sharing of fragments across copies.
type Cord struct {
	fragments []*fragment
	size      int
}

// FromString builds a single-fragment Cord from s.
func FromString(s string) *Cord {
	return &Cord{
		fragments: []*fragment{{ref: refcount.New(), data: []byte(s)}},
		size:      len(s),
	}
}

// Size returns the Cord's total logical length.
func (c *Cord) Size() int {
	return c.size
}

// TryFlat returns a view of the Cord's bytes without copying, if and only
// if the Cord consists of exactly one fragment.
func (c *Cord) TryFlat() ([]byte, bool) {
	if len(c.fragments) != 1 {
		return nil, false
	}
	return c.fragments[0].data, true
}

// ToString copies the Cord's bytes into a single string.
func (c *Cord) ToString() string {
	if flat, ok := c.TryFlat(); ok {
		return string(flat)
	}
	buf := make([]byte, 0, c.size)
	for _, f := range c.fragments {
		buf = append(buf, f.data...)
	}
	return string(buf)
}

// FragmentRef is a (refcount, bytes) pair exposing a Cord fragment to a
// caller (internal/block) that wants to share ownership of it rather than
// copy it.
type FragmentRef struct {
	Ref  *refcount.RefCount
	Data []byte
}

// Fragments returns every flat fragment backing the Cord, for callers that
// want to attach each one to a Chain (sharing ownership via Ref) rather
// than flattening first.
func (c *Cord) Fragments() []FragmentRef {
	out := make([]FragmentRef, len(c.fragments))
	for i, f := range c.fragments {
		out[i] = FragmentRef{Ref: f.ref, Data: f.data}
	}
	return out
}

// AppendFragment appends a new flat fragment of data to the Cord, copying
// it: callers that already own the bytes and want to avoid the copy should
// use AppendFragmentRef.
func (c *Cord) AppendFragment(data []byte) {
	cp := make([]byte, len(data))
	copy(cp, data)
	c.fragments = append(c.fragments, &fragment{ref: refcount.New(), data: cp})
	c.size += len(data)
}

// AppendFragmentRef appends a fragment by sharing ref rather than copying
// data. ref is bumped; the caller keeps its own reference.
func (c *Cord) AppendFragmentRef(ref *refcount.RefCount, data []byte) {
	ref.Ref()
	c.fragments = append(c.fragments, &fragment{ref: ref, data: data})
	c.size += len(data)
}
