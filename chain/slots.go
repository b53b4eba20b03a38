package chain

import (
	"sort"

	"github.com/rgli/riegeli/internal/block"
)

// blockList is the dynamic array of block pointers backing a non-short-data
// Chain, plus the parallel prefix-offset table used for O(log n)
// block_and_char lookups.
//
// spec.md describes a dual in-object ("here", ≤2 slots) / heap-allocated
// ("allocated") representation purely to avoid a second heap allocation for
// small chains. Go slices already avoid that allocation concern (there is
// no inline-array trick available, or needed, in a garbage-collected
// runtime), so blockList always maintains the offsets table; the growth
// policy (geometric ×1.5, minimum 16) and the shift-when-at-most-half-full
// rule are kept faithfully, since those are the properties spec.md's
// testable-properties section actually exercises.
type blockList struct {
	slots      []*block.Block
	offsets    []int64 // parallel to slots; monotonically increasing absolute prefix sums
	begin, end int
}

const minSlotGrowth = 16

func (l *blockList) len() int {
	return l.end - l.begin
}

func (l *blockList) at(i int) *block.Block {
	return l.slots[l.begin+i]
}

// relativeOffset returns the offset of slots[begin+i] relative to
// slots[begin] — i.e. how many bytes of the active window precede it.
func (l *blockList) relativeOffset(i int) int64 {
	return l.offsets[l.begin+i] - l.offsets[l.begin]
}

func (l *blockList) reserveBack(n int) {
	if cap(l.slots)-l.end >= n {
		return
	}
	length := l.len()
	if l.begin > 0 && length*2 <= cap(l.slots) && cap(l.slots)-length >= n {
		l.shiftTo(0)
		return
	}
	l.grow(length + n)
}

func (l *blockList) reserveFront(n int) {
	if l.begin >= n {
		return
	}
	length := l.len()
	if length*2 <= cap(l.slots) {
		newBegin := cap(l.slots) - length
		if newBegin >= n {
			l.shiftTo(newBegin)
			return
		}
	}
	l.growFront(length+n, n)
}

// shiftTo moves the active window to start at index newBegin within the
// existing allocation (no reallocation).
func (l *blockList) shiftTo(newBegin int) {
	length := l.len()
	copy(l.slots[newBegin:newBegin+length], l.slots[l.begin:l.end])
	for i := l.begin; i < l.end; i++ {
		if i < newBegin || i >= newBegin+length {
			l.slots[i] = nil // drop stale pointers so the GC can reclaim them
		}
	}
	if l.offsets != nil {
		copy(l.offsets[newBegin:newBegin+length], l.offsets[l.begin:l.end])
	}
	l.begin, l.end = newBegin, newBegin+length
}

func (l *blockList) grow(need int) {
	newCap := cap(l.slots) * 3 / 2
	if newCap < minSlotGrowth {
		newCap = minSlotGrowth
	}
	for newCap < need {
		newCap = newCap * 3 / 2
	}
	length := l.len()
	newSlots := make([]*block.Block, newCap)
	copy(newSlots, l.slots[l.begin:l.end])
	newOffsets := make([]int64, newCap)
	copy(newOffsets, l.offsets[l.begin:l.end])
	l.slots, l.offsets = newSlots, newOffsets
	l.begin, l.end = 0, length
}

// growFront reallocates with at least frontSlack slots of room before the
// active window, for a subsequent prepend.
func (l *blockList) growFront(need, frontSlack int) {
	newCap := cap(l.slots) * 3 / 2
	if newCap < minSlotGrowth {
		newCap = minSlotGrowth
	}
	for newCap < need {
		newCap = newCap * 3 / 2
	}
	length := l.len()
	newSlots := make([]*block.Block, newCap)
	newOffsets := make([]int64, newCap)
	copy(newSlots[frontSlack:frontSlack+length], l.slots[l.begin:l.end])
	copy(newOffsets[frontSlack:frontSlack+length], l.offsets[l.begin:l.end])
	l.slots, l.offsets = newSlots, newOffsets
	l.begin, l.end = frontSlack, frontSlack+length
}

// pushBack appends b, recording its offset relative to the running total.
func (l *blockList) pushBack(b *block.Block) {
	l.reserveBack(1)
	var prevTotal int64
	if l.end > l.begin {
		prevTotal = l.offsets[l.end-1] + l.sizeAt(l.end-1)
	}
	l.slots[l.end] = b
	l.offsets[l.end] = prevTotal
	l.end++
}

// sizeAt returns the size of the block stored at absolute index i, using
// the offsets table's next entry when available, falling back to asking
// the block directly for the last element.
func (l *blockList) sizeAt(i int) int64 {
	if i+1 < l.end {
		return l.offsets[i+1] - l.offsets[i]
	}
	return int64(l.slots[i].Size())
}

// pushFront prepends b.
func (l *blockList) pushFront(b *block.Block, size int64) {
	l.reserveFront(1)
	l.begin--
	l.slots[l.begin] = b
	// Offsets are absolute prefix sums; shifting begin back means every
	// existing relative offset must still read correctly relative to the
	// new begin, so we rebase the new front entry below the old one.
	if l.begin+1 < l.end {
		l.offsets[l.begin] = l.offsets[l.begin+1] - size
	} else {
		l.offsets[l.begin] = 0
	}
}

// popBack drops and returns the last block.
func (l *blockList) popBack() *block.Block {
	l.end--
	b := l.slots[l.end]
	l.slots[l.end] = nil
	return b
}

// popFront drops and returns the first block.
func (l *blockList) popFront() *block.Block {
	b := l.slots[l.begin]
	l.slots[l.begin] = nil
	l.begin++
	return b
}

// blockAndOffset locates the block containing logical position pos (0 <=
// pos <= total size) via binary search over the relative-offset table, and
// returns its index within the active window plus the intra-block offset.
// pos == size returns the last block with an intra-block offset equal to
// its size (one-past-the-end), matching spec.md's EOF convention.
func (l *blockList) blockAndOffset(pos int64) (index int, intraOffset int64) {
	n := l.len()
	// upper_bound: first index whose relative offset exceeds pos.
	idx := sort.Search(n, func(i int) bool {
		return l.relativeOffset(i) > pos
	})
	if idx == 0 {
		return 0, pos
	}
	idx--
	return idx, pos - l.relativeOffset(idx)
}

func (l *blockList) clear() {
	for i := l.begin; i < l.end; i++ {
		l.slots[i] = nil
	}
	l.begin, l.end = 0, 0
}
