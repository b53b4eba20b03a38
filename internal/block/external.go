package block

import (
	"fmt"
	"sync"

	"github.com/rgli/riegeli/internal/refcount"
)

// ownedBytes is the simplest external payload: a plain byte slice the
// block borrows for as long as it lives, released by dropping the
// reference (there is nothing to free explicitly; the slice is reclaimed
// by the garbage collector once the last block referencing it is gone).
type ownedBytes struct {
	data []byte
}

func (p *ownedBytes) Delete()                         {}
func (p *ownedBytes) Dump() string                    { return fmt.Sprintf("owned-bytes(%d)", len(p.data)) }
func (p *ownedBytes) RegisterSubobjects(reg func(any)) {}
func (p *ownedBytes) DynamicSizeof() (uintptr, bool)  { return uintptr(len(p.data)), true }

// NewExternalFromBytes wraps data as an external block. Ownership of data
// passes to the block: the caller must not mutate it afterwards.
func NewExternalFromBytes(data []byte) *Block {
	return NewExternal(&ownedBytes{data: data}, data)
}

// NewExternalFromString wraps a copy of s's bytes as an external block.
func NewExternalFromString(s string) *Block {
	data := []byte(s)
	// []byte(s) always allocates a fresh copy, so the block's borrowed
	// view is exclusively owned by this payload and never mutated.
	return NewExternal(&ownedBytes{data: data}, data)
}

// zeroPagePayload is a singleton "zero page": a static all-zero buffer
// shared by every block that wants zero-filled bytes without allocating
// its own arena. Re-architecture guidance (spec.md §9) calls this out
// explicitly as a canonical external payload.
type zeroPagePayload struct{}

func (zeroPagePayload) Delete()                         {}
func (zeroPagePayload) Dump() string                    { return "zero-page" }
func (zeroPagePayload) RegisterSubobjects(func(any))    {}
func (zeroPagePayload) DynamicSizeof() (uintptr, bool)  { return 0, true }

const zeroPageSize = 64 << 10

var (
	zeroPageOnce sync.Once
	zeroPage     []byte
)

func zeroPageBytes(n int) []byte {
	zeroPageOnce.Do(func() {
		zeroPage = make([]byte, zeroPageSize)
	})
	for n > len(zeroPage) {
		// Grow the shared singleton once, lazily, rather than cap
		// callers to a fixed size.
		zeroPage = make([]byte, 2*len(zeroPage))
	}
	return zeroPage[:n]
}

// NewExternalZeroPage returns an external block of n zero bytes backed by
// the shared zero-page singleton: for n up to the current zero-page size
// (initially 64 KiB) constructing it costs no allocation proportional to
// n; a larger n first replaces the singleton with one at least n bytes
// long.
func NewExternalZeroPage(n int) *Block {
	return NewExternal(zeroPagePayload{}, zeroPageBytes(n))
}

// substringViewPayload keeps a donor block alive for as long as a
// substring view of it is in use, per spec.md §9's "blocks may cite other
// blocks" guidance. This is how RemovePrefix/RemoveSuffix hand back a
// retained view of a large, externally shared block without copying.
type substringViewPayload struct {
	donor *Block
}

func (p *substringViewPayload) Delete() {
	p.donor.Unref()
}

func (p *substringViewPayload) Dump() string {
	return fmt.Sprintf("substring-view(of %s)", p.donor.Dump())
}

func (p *substringViewPayload) RegisterSubobjects(reg func(any)) {
	reg(p.donor)
}

func (p *substringViewPayload) DynamicSizeof() (uintptr, bool) {
	// The view itself owns no bytes; the donor accounts for them.
	return 0, true
}

// NewExternalSubstringView returns an external block viewing data, a
// subslice of donor's live region, keeping donor referenced for as long as
// the view exists. donor's reference count is bumped by one; the caller
// retains its own reference to donor.
func NewExternalSubstringView(donor *Block, data []byte) *Block {
	donor.Ref()
	return NewExternal(&substringViewPayload{donor: donor}, data)
}

// refcountedCordFragment is the external payload used when a block is
// built by sharing a Cord's flat fragment rather than copying it: the
// fragment's own refcount is bumped instead of duplicating bytes.
type refcountedCordFragment struct {
	ref  *refcount.RefCount
	data []byte
}

func (p *refcountedCordFragment) Delete() {
	p.ref.Unref()
}

func (p *refcountedCordFragment) Dump() string {
	return fmt.Sprintf("cord-fragment(%d)", len(p.data))
}

func (p *refcountedCordFragment) RegisterSubobjects(func(any)) {}

func (p *refcountedCordFragment) DynamicSizeof() (uintptr, bool) {
	return uintptr(len(p.data)), true
}

// NewExternalCordFragment wraps a Cord fragment's bytes as an external
// block, bumping ref (the fragment's own refcount) instead of copying.
func NewExternalCordFragment(ref *refcount.RefCount, data []byte) *Block {
	ref.Ref()
	return NewExternal(&refcountedCordFragment{ref: ref, data: data}, data)
}
