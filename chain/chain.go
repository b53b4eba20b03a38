// Package chain implements Chain, the segmented byte buffer at the heart
// of the Riegeli record engine: an ordered sequence of SharedBlocks
// presenting one logical byte string, with O(1) amortized append/prepend,
// cheap substring removal, zero-copy sharing across copies, and an inline
// small-buffer optimization for short contents.
package chain

import (
	"bytes"
	"iter"

	"github.com/rgli/riegeli/cord"
	"github.com/rgli/riegeli/internal/block"
)

// MaxShortDataSize is the largest payload kept inline in a Chain with no
// attached blocks.
const MaxShortDataSize = 15

// Chain is a mutable, movable value representing a logical byte string.
//
// The zero value is an empty Chain, ready to use.
type Chain struct {
	size     int64
	short    [MaxShortDataSize]byte
	shortLen int
	blocks   blockList
}

// New returns an empty Chain.
func New() *Chain {
	return &Chain{}
}

// FromString returns a Chain containing a copy of s.
func FromString(s string) *Chain {
	c := &Chain{}
	c.Append([]byte(s), DefaultOptions())
	return c
}

// FromCord returns a Chain built from a Cord, sharing ownership of
// fragments at or above the tiny-block threshold instead of copying them.
func FromCord(src *cord.Cord) *Chain {
	c := &Chain{}
	c.AppendCord(src, DefaultOptions())
	return c
}

// Size returns the Chain's total logical length.
func (c *Chain) Size() int64 {
	return c.size
}

// Empty reports whether the Chain holds no bytes.
func (c *Chain) Empty() bool {
	return c.size == 0
}

// Clear empties the Chain, dropping references to every attached block.
func (c *Chain) Clear() {
	for i := 0; i < c.blocks.len(); i++ {
		c.blocks.at(i).Unref()
	}
	c.blocks.clear()
	c.size = 0
	c.shortLen = 0
}

// isShort reports whether the Chain is currently in short-data mode (no
// blocks attached).
func (c *Chain) isShort() bool {
	return c.blocks.len() == 0
}

// Bytes copies the Chain's contents into a single newly allocated slice.
func (c *Chain) Bytes() []byte {
	if c.isShort() {
		out := make([]byte, c.shortLen)
		copy(out, c.short[:c.shortLen])
		return out
	}
	out := make([]byte, 0, c.size)
	for i := 0; i < c.blocks.len(); i++ {
		out = append(out, c.blocks.at(i).Data()...)
	}
	return out
}

// String returns the Chain's contents as a string, satisfying
// fmt.Stringer.
func (c *Chain) String() string {
	return string(c.Bytes())
}

// ToCord copies the Chain's contents into a new single-fragment Cord.
func (c *Chain) ToCord() *cord.Cord {
	return cord.FromString(c.String())
}

// Blocks returns an iterator over the Chain's block contents, in order. In
// short-data mode it yields the single inline slice (if non-empty).
func (c *Chain) Blocks() iter.Seq[[]byte] {
	return func(yield func([]byte) bool) {
		if c.isShort() {
			if c.shortLen > 0 {
				yield(c.short[:c.shortLen])
			}
			return
		}
		for i := 0; i < c.blocks.len(); i++ {
			if !yield(c.blocks.at(i).Data()) {
				return
			}
		}
	}
}

// BlockCount returns the number of blocks currently attached (0 in
// short-data mode).
func (c *Chain) BlockCount() int {
	return c.blocks.len()
}

// BlockAndChar locates the block owning logical position index (0 <= index
// <= Size) and the intra-block offset within it, such that the global byte
// at index equals the returned slice at the returned offset. index ==
// Size() returns the last live region with offset equal to its length
// (one-past-the-end, matching an EOF probe).
func (c *Chain) BlockAndChar(index int64) (data []byte, offset int) {
	if index < 0 || index > c.size {
		panic("chain: BlockAndChar index out of range")
	}
	if c.isShort() {
		return c.short[:c.shortLen], int(index)
	}
	if c.blocks.len() == 0 {
		return nil, 0
	}
	i, off := c.blocks.blockAndOffset(index)
	return c.blocks.at(i).Data(), int(off)
}

// Equal reports whether a and b represent the same byte string.
func Equal(a, b *Chain) bool {
	if a.size != b.size {
		return false
	}
	return Compare(a, b) == 0
}

// Compare performs a byte-wise three-way comparison between a and b,
// agreeing with bytes.Compare(a.Bytes(), b.Bytes()) for all inputs.
func Compare(a, b *Chain) int {
	// A block-by-block comparison would avoid the Bytes() copies in the
	// common case; Chain instances in this engine are overwhelmingly
	// compared only in tests and diagnostics, so the simple, obviously
	// correct implementation is used here.
	return bytes.Compare(a.Bytes(), b.Bytes())
}

// Copy returns a new Chain sharing this Chain's blocks (each block's
// refcount is bumped); no bytes are copied. Mutating the result will
// trigger copy-on-write at the block level as needed — the original Chain
// is never affected by mutations performed through the copy.
func (c *Chain) Copy() *Chain {
	out := &Chain{size: c.size, shortLen: c.shortLen, short: c.short}
	if c.isShort() {
		return out
	}
	out.blocks.reserveBack(c.blocks.len())
	for i := 0; i < c.blocks.len(); i++ {
		b := c.blocks.at(i)
		b.Ref()
		out.blocks.pushBack(b)
	}
	return out
}
