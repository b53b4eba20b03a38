// Package block implements SharedBlock, the reference-counted, size-capped
// byte block that is the storage unit of a Chain.
//
// A Block is either internal (it owns a mutable arena allocated together
// with the block header) or external (its bytes are borrowed from an
// owned, type-erased payload). Internal blocks may be mutated in place
// while uniquely owned; external blocks are never mutable.
package block

import (
	"fmt"

	"github.com/rgli/riegeli/internal/refcount"
)

const (
	// DefaultMinBlockSize is the new-block floor: blocks smaller than this
	// are tiny and must be merged with a neighbor at a Chain seam.
	DefaultMinBlockSize = 256

	// DefaultMaxBlockSize is the new-block ceiling used by package
	// chain's newBlockCapacity when no tighter bound applies.
	DefaultMaxBlockSize = 64 << 10

	// MaxBlockCapacity bounds the capacity any single block may reach.
	MaxBlockCapacity = 1 << 30

	// AllocationCost is the fixed overhead added on top of the live
	// region when deciding whether a block is wasteful.
	AllocationCost = 64
)

// Methods is the vtable an external block's owned payload must implement.
// It mirrors the riegeli `ExternalRef::Methods` table: delete, dump,
// register-subobjects, dynamic-sizeof.
type Methods interface {
	// Delete releases the payload. Called exactly once, when the last
	// reference to the block holding it is dropped.
	Delete()

	// Dump returns a short, human-readable description of the payload,
	// for debug logging.
	Dump() string

	// RegisterSubobjects reports nested owned objects (e.g. a substring
	// view's donor block) to reg. Payloads with no nested owners may
	// implement this as a no-op.
	RegisterSubobjects(reg func(any))

	// DynamicSizeof returns the payload's heap footprint, if knowable.
	DynamicSizeof() (size uintptr, ok bool)
}

// Block is a SharedBlock: a refcounted contiguous byte region, internal or
// external, shared by every Chain that holds a pointer to it.
//
// A *Block must not be copied; share it by bumping Ref and handing out the
// pointer.
type Block struct {
	ref      *refcount.RefCount
	external bool
	frozen   bool // internal-only: set once the block must never be mutated again, even if unique

	// internal-only
	arena      []byte
	begin, end int

	// external-only
	methods Methods
	data    []byte
}

// NewInternal allocates a fresh internal block with at least minCapacity
// bytes of capacity, clamped to MaxBlockCapacity. The block starts empty.
func NewInternal(minCapacity int) *Block {
	if minCapacity < 0 {
		minCapacity = 0
	}
	if minCapacity > MaxBlockCapacity {
		minCapacity = MaxBlockCapacity
	}
	return &Block{
		ref:   refcount.New(),
		arena: make([]byte, minCapacity),
	}
}

// NewExternal wraps data, owned by a payload managed through methods, as an
// external block. The block borrows data; it never copies or mutates it.
func NewExternal(methods Methods, data []byte) *Block {
	return &Block{
		ref:      refcount.New(),
		external: true,
		methods:  methods,
		data:     data,
	}
}

// Ref adds a new owner of the block.
func (b *Block) Ref() {
	b.ref.Ref()
}

// Unref drops one owner's reference. When the last reference is dropped,
// the block's resources are released: an external block's payload is
// deleted via its Methods; an internal block's arena is left for the
// garbage collector.
func (b *Block) Unref() {
	if b.ref.Unref() {
		if b.external {
			b.methods.Delete()
		}
	}
}

// Unique reports whether this is the sole live reference to the block.
func (b *Block) Unique() bool {
	return b.ref.Unique()
}

// RefCount exposes the block's reference counter for callers (Chain) that
// need to bump/drop it without a full Unref (e.g. when sharing the block
// with a newly built substring view payload).
func (b *Block) RefCount() *refcount.RefCount {
	return b.ref
}

// IsExternal reports whether the block is an external block.
func (b *Block) IsExternal() bool {
	return b.external
}

// IsInternal reports whether the block is an internal block.
func (b *Block) IsInternal() bool {
	return !b.external
}

// Data returns the block's live byte region.
func (b *Block) Data() []byte {
	if b.external {
		return b.data
	}
	return b.arena[b.begin:b.end]
}

// Size returns the number of live bytes in the block.
func (b *Block) Size() int {
	if b.external {
		return len(b.data)
	}
	return b.end - b.begin
}

// Capacity returns the block's total allocation. For external blocks this
// always equals Size.
func (b *Block) Capacity() int {
	if b.external {
		return len(b.data)
	}
	return cap(b.arena)
}

// SpaceBefore returns the free bytes preceding the live region. Always 0
// for external blocks.
func (b *Block) SpaceBefore() int {
	if b.external {
		return 0
	}
	return b.begin
}

// SpaceAfter returns the free bytes following the live region. Always 0 for
// external blocks.
func (b *Block) SpaceAfter() int {
	if b.external {
		return 0
	}
	return cap(b.arena) - b.end
}

// Mutable reports whether the block's arena may be written to in place:
// internal, uniquely owned, and not frozen.
func (b *Block) Mutable() bool {
	return !b.external && !b.frozen && b.ref.Unique()
}

// Freeze permanently forbids future in-place mutation of an internal
// block, even while it remains uniquely owned. Used when a block's bytes
// have been handed out as a stable view (e.g. Chain.Flatten) that must not
// be invalidated by a later append sliding the data around.
func (b *Block) Freeze() {
	b.frozen = true
}

// Tiny reports whether the block, with extra additional bytes, would still
// fall below DefaultMinBlockSize. External blocks are never tiny.
func (b *Block) Tiny(extra int) bool {
	if b.external {
		return false
	}
	return b.Size()+extra < DefaultMinBlockSize
}

// Wasteful reports whether an internal block's allocation is at least
// twice the live region (plus a fixed overhead), i.e. less than half of
// the arena is actually used. External blocks are never wasteful.
func (b *Block) Wasteful(extra int) bool {
	if b.external {
		return false
	}
	return b.Capacity() >= 2*(b.Size()+extra)+AllocationCost
}

// Feasibility classifies whether an append/prepend of n bytes can proceed
// in place, via a slide-to-make-room memmove, or not at all.
type Feasibility int

const (
	// Reject: the block cannot accommodate n more bytes on this side.
	Reject Feasibility = iota
	// InPlace: there is already room on this side.
	InPlace
	// Slide: there is no room now, but shifting the live region within
	// the existing arena would create it.
	Slide
)

// CanAppend reports whether n bytes can be appended in place. An empty
// block's entire capacity counts as trailing space.
func (b *Block) CanAppend(n int) bool {
	if !b.Mutable() {
		return false
	}
	if b.Size() == 0 {
		return b.Capacity() >= n
	}
	return b.SpaceAfter() >= n
}

// CanPrepend reports whether n bytes can be prepended in place. An empty
// block's entire capacity counts as leading space.
func (b *Block) CanPrepend(n int) bool {
	if !b.Mutable() {
		return false
	}
	if b.Size() == 0 {
		return b.Capacity() >= n
	}
	return b.SpaceBefore() >= n
}

// CanAppendMoving classifies append feasibility including the slide case:
// mutable, size+n fits in capacity, and the live region occupies at most
// half the arena (so sliding it to the front is worth it).
func (b *Block) CanAppendMoving(n int) Feasibility {
	if b.CanAppend(n) {
		return InPlace
	}
	if !b.Mutable() {
		return Reject
	}
	if b.Size()+n <= b.Capacity() && 2*b.Size() <= b.Capacity() {
		return Slide
	}
	return Reject
}

// CanPrependMoving is the mirror of CanAppendMoving for the front side.
func (b *Block) CanPrependMoving(n int) Feasibility {
	if b.CanPrepend(n) {
		return InPlace
	}
	if !b.Mutable() {
		return Reject
	}
	if b.Size()+n <= b.Capacity() && 2*b.Size() <= b.Capacity() {
		return Slide
	}
	return Reject
}

// slideToFront memmoves the live region to the start of the arena,
// maximizing trailing space.
func (b *Block) slideToFront() {
	n := copy(b.arena[0:b.Size()], b.Data())
	b.begin = 0
	b.end = n
}

// slideToBack memmoves the live region to the end of the arena, maximizing
// leading space.
func (b *Block) slideToBack() {
	size := b.Size()
	dstBegin := cap(b.arena) - size
	copy(b.arena[dstBegin:cap(b.arena)], b.Data())
	b.begin = dstBegin
	b.end = cap(b.arena)
}

// AppendBuffer ensures at least min and at most max bytes of writable space
// exist after the live region (sliding the content if necessary), appends
// that window to the live region, and returns it for the caller to fill.
// AppendBuffer panics if the block cannot accommodate min bytes; callers
// must check CanAppendMoving first.
func (b *Block) AppendBuffer(minLength, maxLength int) []byte {
	switch b.CanAppendMoving(minLength) {
	case Reject:
		panic("block: AppendBuffer called on a block that cannot append")
	case Slide:
		b.slideToFront()
	}
	if b.Size() == 0 {
		b.begin, b.end = 0, 0
	}

	avail := b.SpaceAfter()
	n := maxLength
	if n > avail {
		n = avail
	}
	if n < minLength {
		n = minLength
	}
	start := b.end
	b.end += n
	return b.arena[start:b.end]
}

// PrependBuffer is the mirror of AppendBuffer for the front side.
func (b *Block) PrependBuffer(minLength, maxLength int) []byte {
	switch b.CanPrependMoving(minLength) {
	case Reject:
		panic("block: PrependBuffer called on a block that cannot prepend")
	case Slide:
		b.slideToBack()
	}
	if b.Size() == 0 {
		b.begin, b.end = cap(b.arena), cap(b.arena)
	}

	avail := b.SpaceBefore()
	n := maxLength
	if n > avail {
		n = avail
	}
	if n < minLength {
		n = minLength
	}
	end := b.begin
	b.begin -= n
	return b.arena[b.begin:end]
}

// AppendInPlace appends data to the live region without growing beyond the
// existing arena. The caller must have already verified CanAppend(len(data)).
func (b *Block) AppendInPlace(data []byte) {
	if b.Size() == 0 && b.begin != 0 {
		b.begin, b.end = 0, 0
	}
	start := b.end
	b.end += len(data)
	copy(b.arena[start:b.end], data)
}

// PrependInPlace prepends data to the live region without growing beyond
// the existing arena. The caller must have already verified
// CanPrepend(len(data)).
func (b *Block) PrependInPlace(data []byte) {
	if b.Size() == 0 && b.end != cap(b.arena) {
		b.begin, b.end = cap(b.arena), cap(b.arena)
	}
	b.begin -= len(data)
	copy(b.arena[b.begin:b.begin+len(data)], data)
}

// RemovePrefix drops n bytes from the front of the live region without
// copying. It is always cheap: only the begin offset moves.
func (b *Block) RemovePrefix(n int) {
	if b.external {
		b.data = b.data[n:]
		return
	}
	b.begin += n
}

// RemoveSuffix drops n bytes from the back of the live region without
// copying.
func (b *Block) RemoveSuffix(n int) {
	if b.external {
		b.data = b.data[:len(b.data)-n]
		return
	}
	b.end -= n
}

// Copy returns a fresh internal block whose contents equal this block's
// live region and whose arena capacity is exactly Size: the result is
// never wasteful, regardless of this block's own shape.
func (b *Block) Copy() *Block {
	out := NewInternal(b.Size())
	out.end = copy(out.arena, b.Data())
	return out
}

// Dump renders a short diagnostic description of the block, suitable for a
// zap field.
func (b *Block) Dump() string {
	if b.external {
		return fmt.Sprintf("external{size=%d, payload=%s}", b.Size(), b.methods.Dump())
	}
	return fmt.Sprintf("internal{size=%d, capacity=%d, refs=%d}", b.Size(), b.Capacity(), b.ref.Count())
}

// DynamicSizeof reports the block's own heap footprint: the arena size for
// internal blocks, or the payload's reported size for external blocks.
func (b *Block) DynamicSizeof() uintptr {
	if b.external {
		if size, ok := b.methods.DynamicSizeof(); ok {
			return size
		}
		return uintptr(len(b.data))
	}
	return uintptr(cap(b.arena))
}
