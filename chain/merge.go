package chain

import (
	"github.com/rgli/riegeli/internal/block"
)

// JoinOutcome names the five seam outcomes spec.md's boundary-join state
// machine can reach when new content is attached next to an existing
// block.
type JoinOutcome int

const (
	// MergeInPlace: the incoming content was written into the existing
	// neighbor block's free space.
	MergeInPlace JoinOutcome = iota
	// MergeNewBlock: neighbor and incoming were both tiny and neither
	// fit in place, so both were copied into one freshly allocated
	// block.
	MergeNewBlock
	// DropEmpty: the neighbor block was empty and was replaced outright.
	DropEmpty
	// RewriteThenAttach: the neighbor block was wasteful and was
	// rewritten into a compact copy before the incoming block was
	// attached alongside it.
	RewriteThenAttach
	// Attach: the incoming content was attached as a new block with no
	// special-casing.
	Attach
)

func (o JoinOutcome) String() string {
	switch o {
	case MergeInPlace:
		return "merge-in-place"
	case MergeNewBlock:
		return "merge-new-block"
	case DropEmpty:
		return "drop-empty"
	case RewriteThenAttach:
		return "rewrite-then-attach"
	case Attach:
		return "attach"
	default:
		return "unknown"
	}
}

// Append appends data to the Chain, allocating as few, as compact blocks
// as the merge/rewrite policy allows. An empty append is a no-op.
func (c *Chain) Append(data []byte, opts Options) {
	if len(data) == 0 {
		return
	}
	c.appendInternal(data, opts)
}

// Prepend is the mirror of Append for the front of the Chain.
func (c *Chain) Prepend(data []byte, opts Options) {
	if len(data) == 0 {
		return
	}
	c.prependInternal(data, opts)
}

func (c *Chain) appendInternal(data []byte, opts Options) {
	if c.isShort() {
		if c.shortLen+len(data) <= MaxShortDataSize {
			copy(c.short[c.shortLen:], data)
			c.shortLen += len(data)
			c.size += int64(len(data))
			return
		}
		c.promoteShort(opts)
	}

	remaining := data

	// Try to consume as much as possible into the existing last block's
	// free space before allocating anything new.
	if c.blocks.len() > 0 {
		last := c.blocks.at(c.blocks.len() - 1)
		remaining = fillInPlace(last, remaining, true)
		c.size += int64(len(data) - len(remaining))
	}

	for len(remaining) > 0 {
		chunk := remaining
		if max := opts.maxBlockSize(); len(chunk) > max {
			chunk = chunk[:max]
		}
		c.joinAppend(chunk, opts)
		c.size += int64(len(chunk))
		remaining = remaining[len(chunk):]
	}
}

func (c *Chain) prependInternal(data []byte, opts Options) {
	if c.isShort() {
		if c.shortLen+len(data) <= MaxShortDataSize {
			copy(c.short[len(data):len(data)+c.shortLen], c.short[:c.shortLen])
			copy(c.short[:len(data)], data)
			c.shortLen += len(data)
			c.size += int64(len(data))
			return
		}
		c.promoteShort(opts)
	}

	remaining := data

	if c.blocks.len() > 0 {
		first := c.blocks.at(0)
		kept := fillInPlace(first, remaining, false)
		consumed := len(remaining) - len(kept)
		c.size += int64(consumed)
		remaining = remaining[:len(remaining)-consumed]
	}

	for len(remaining) > 0 {
		chunk := remaining
		if max := opts.maxBlockSize(); len(chunk) > max {
			chunk = chunk[len(chunk)-max:]
		}
		c.joinPrepend(chunk, opts)
		c.size += int64(len(chunk))
		remaining = remaining[:len(remaining)-len(chunk)]
	}
}

// fillInPlace writes as much of data as fits into blk's free space on the
// append side (fromBack=true) or prepend side (fromBack=false), including
// sliding the block's content if that is what makes room, and returns the
// unconsumed remainder. For append, the remainder is the tail of data that
// did not fit; for prepend, it is the head.
func fillInPlace(blk *block.Block, data []byte, fromBack bool) []byte {
	if len(data) == 0 || !blk.Mutable() {
		return data
	}

	canMoving := blk.CanAppendMoving(len(data))
	if !fromBack {
		canMoving = blk.CanPrependMoving(len(data))
	}

	if canMoving != block.Reject {
		if fromBack {
			buf := blk.AppendBuffer(len(data), len(data))
			copy(buf, data)
		} else {
			buf := blk.PrependBuffer(len(data), len(data))
			copy(buf, data)
		}
		return nil
	}

	// The whole of data does not fit even after sliding; consume
	// whatever free space already exists (no slide — sliding for a
	// partial fill would just move bytes without creating new net
	// capacity beyond what a plain append already sees).
	var avail int
	if fromBack {
		avail = blk.SpaceAfter()
		if blk.Size() == 0 {
			avail = blk.Capacity()
		}
	} else {
		avail = blk.SpaceBefore()
		if blk.Size() == 0 {
			avail = blk.Capacity()
		}
	}
	if avail <= 0 {
		return data
	}
	if avail > len(data) {
		avail = len(data)
	}

	if fromBack {
		buf := blk.AppendBuffer(avail, avail)
		copy(buf, data[:avail])
		return data[avail:]
	}
	buf := blk.PrependBuffer(avail, avail)
	copy(buf, data[len(data)-avail:])
	return data[:len(data)-avail]
}

// joinAppend attaches chunk as the Chain's new last block, applying the
// merge/rewrite/attach seam policy against the current last block (if
// any). The caller has already capped len(chunk) to the max block size and
// exhausted any in-place room in the current last block.
func (c *Chain) joinAppend(chunk []byte, opts Options) JoinOutcome {
	if c.blocks.len() == 0 {
		c.blocks.pushBack(freshBlock(chunk, opts))
		return Attach
	}

	last := c.blocks.at(c.blocks.len() - 1)
	incomingTiny := len(chunk) < block.DefaultMinBlockSize

	switch {
	case last.Tiny(0) && incomingTiny:
		if last.Mutable() && last.CanAppend(len(chunk)) {
			buf := last.AppendBuffer(len(chunk), len(chunk))
			copy(buf, chunk)
			return MergeInPlace
		}
		merged := block.NewInternal(newBlockCapacity(0, last.Size()+len(chunk), last.Size()+len(chunk), opts))
		buf := merged.AppendBuffer(last.Size()+len(chunk), last.Size()+len(chunk))
		n := copy(buf, last.Data())
		copy(buf[n:], chunk)
		c.blocks.popBack().Unref()
		c.blocks.pushBack(merged)
		return MergeNewBlock

	case last.Size() == 0:
		c.blocks.popBack().Unref()
		c.blocks.pushBack(freshBlock(chunk, opts))
		return DropEmpty

	case last.Wasteful(0):
		if last.Mutable() && last.CanAppend(len(chunk)) && !last.Wasteful(len(chunk)) {
			buf := last.AppendBuffer(len(chunk), len(chunk))
			copy(buf, chunk)
			return MergeInPlace
		}
		rewritten := last.Copy()
		c.blocks.popBack().Unref()
		c.blocks.pushBack(rewritten)
		c.blocks.pushBack(freshBlock(chunk, opts))
		return RewriteThenAttach

	default:
		c.blocks.pushBack(freshBlock(chunk, opts))
		return Attach
	}
}

// joinPrepend mirrors joinAppend for the front of the Chain.
func (c *Chain) joinPrepend(chunk []byte, opts Options) JoinOutcome {
	if c.blocks.len() == 0 {
		c.blocks.pushFront(freshBlock(chunk, opts), int64(len(chunk)))
		return Attach
	}

	first := c.blocks.at(0)
	incomingTiny := len(chunk) < block.DefaultMinBlockSize

	switch {
	case first.Tiny(0) && incomingTiny:
		if first.Mutable() && first.CanPrepend(len(chunk)) {
			buf := first.PrependBuffer(len(chunk), len(chunk))
			copy(buf, chunk)
			return MergeInPlace
		}
		combined := first.Size() + len(chunk)
		merged := block.NewInternal(newBlockCapacity(0, combined, combined, opts))
		buf := merged.AppendBuffer(combined, combined)
		n := copy(buf, chunk)
		copy(buf[n:], first.Data())
		c.blocks.popFront().Unref()
		c.blocks.pushFront(merged, int64(combined))
		return MergeNewBlock

	case first.Size() == 0:
		c.blocks.popFront().Unref()
		c.blocks.pushFront(freshBlock(chunk, opts), int64(len(chunk)))
		return DropEmpty

	case first.Wasteful(0):
		if first.Mutable() && first.CanPrepend(len(chunk)) && !first.Wasteful(len(chunk)) {
			buf := first.PrependBuffer(len(chunk), len(chunk))
			copy(buf, chunk)
			return MergeInPlace
		}
		rewritten := first.Copy()
		c.blocks.popFront().Unref()
		c.blocks.pushFront(rewritten, int64(rewritten.Size()))
		c.blocks.pushFront(freshBlock(chunk, opts), int64(len(chunk)))
		return RewriteThenAttach

	default:
		c.blocks.pushFront(freshBlock(chunk, opts), int64(len(chunk)))
		return Attach
	}
}

func freshBlock(chunk []byte, opts Options) *block.Block {
	capacity := newBlockCapacity(0, len(chunk), len(chunk), opts)
	blk := block.NewInternal(capacity)
	buf := blk.AppendBuffer(len(chunk), len(chunk))
	copy(buf, chunk)
	return blk
}

// promoteShort moves inline short data into a real block so that
// subsequent append/prepend logic no longer needs to special-case the
// inline representation.
func (c *Chain) promoteShort(opts Options) {
	if c.shortLen == 0 {
		return
	}
	blk := block.NewInternal(newBlockCapacity(0, c.shortLen, c.shortLen, opts))
	buf := blk.AppendBuffer(c.shortLen, c.shortLen)
	copy(buf, c.short[:c.shortLen])
	c.blocks.pushBack(blk)
	c.shortLen = 0
}
