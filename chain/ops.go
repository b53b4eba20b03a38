package chain

import (
	"github.com/rgli/riegeli/cord"
	"github.com/rgli/riegeli/internal/block"
)

// AppendChain appends src's contents to c. Blocks are shared (ref-counted)
// rather than copied, except where the seam policy merges a tiny src block
// into a tiny neighbor, and except for src's inline short data, which is
// copied; mutating c afterwards triggers copy-on-write at the block level
// as needed, leaving src untouched.
func (c *Chain) AppendChain(src *Chain, opts Options) {
	if src.isShort() {
		c.appendInternal(src.short[:src.shortLen], opts)
		return
	}
	if c.isShort() {
		c.promoteShort(opts)
	}
	for i := 0; i < src.blocks.len(); i++ {
		b := src.blocks.at(i)
		b.Ref()
		c.joinAppendBlock(b, opts)
		c.size += int64(b.Size())
	}
}

// AppendCord appends a Cord's contents to c. Fragments at or above the
// tiny-block threshold are attached by sharing ownership of the fragment;
// smaller fragments are copied through the ordinary byte-append path, same
// as any other small write.
func (c *Chain) AppendCord(src *cord.Cord, opts Options) {
	for _, frag := range src.Fragments() {
		if len(frag.Data) < block.DefaultMinBlockSize {
			c.appendInternal(frag.Data, opts)
			continue
		}
		if c.isShort() {
			c.promoteShort(opts)
		}
		blk := block.NewExternalCordFragment(frag.Ref, frag.Data)
		c.joinAppendBlock(blk, opts)
		c.size += int64(len(frag.Data))
	}
}

// AppendExternal attaches data as a new external block owned by methods,
// applying the same seam policy as Append. No bytes are copied unless the
// seam merges it with a tiny neighbor.
func (c *Chain) AppendExternal(methods block.Methods, data []byte, opts Options) {
	if c.isShort() {
		c.promoteShort(opts)
	}
	blk := block.NewExternal(methods, data)
	c.joinAppendBlock(blk, opts)
	c.size += int64(len(data))
}

// PrependExternal is the mirror of AppendExternal for the front of the
// Chain.
func (c *Chain) PrependExternal(methods block.Methods, data []byte, opts Options) {
	if c.isShort() {
		c.promoteShort(opts)
	}
	blk := block.NewExternal(methods, data)
	c.joinPrependBlock(blk, opts)
	c.size += int64(len(data))
}

// joinAppendBlock attaches an already-constructed donor block as the
// Chain's new last block, applying the merge/rewrite/attach seam policy.
// It takes ownership of the caller's reference to donor.
func (c *Chain) joinAppendBlock(donor *block.Block, opts Options) JoinOutcome {
	if c.blocks.len() == 0 {
		c.blocks.pushBack(donor)
		return Attach
	}

	last := c.blocks.at(c.blocks.len() - 1)
	incomingTiny := donor.Tiny(0)

	switch {
	case last.Tiny(0) && incomingTiny:
		if last.Mutable() && last.CanAppend(donor.Size()) {
			buf := last.AppendBuffer(donor.Size(), donor.Size())
			copy(buf, donor.Data())
			donor.Unref()
			return MergeInPlace
		}
		combined := last.Size() + donor.Size()
		merged := block.NewInternal(newBlockCapacity(0, combined, combined, opts))
		buf := merged.AppendBuffer(combined, combined)
		n := copy(buf, last.Data())
		copy(buf[n:], donor.Data())
		donor.Unref()
		c.blocks.popBack().Unref()
		c.blocks.pushBack(merged)
		return MergeNewBlock

	case last.Size() == 0:
		c.blocks.popBack().Unref()
		c.blocks.pushBack(donor)
		return DropEmpty

	case last.Wasteful(0):
		if last.Mutable() && last.CanAppend(donor.Size()) && !last.Wasteful(donor.Size()) {
			buf := last.AppendBuffer(donor.Size(), donor.Size())
			copy(buf, donor.Data())
			donor.Unref()
			return MergeInPlace
		}
		rewritten := last.Copy()
		c.blocks.popBack().Unref()
		c.blocks.pushBack(rewritten)
		c.blocks.pushBack(donor)
		return RewriteThenAttach

	default:
		c.blocks.pushBack(donor)
		return Attach
	}
}

// joinPrependBlock mirrors joinAppendBlock for the front of the Chain.
func (c *Chain) joinPrependBlock(donor *block.Block, opts Options) JoinOutcome {
	if c.blocks.len() == 0 {
		c.blocks.pushFront(donor, int64(donor.Size()))
		return Attach
	}

	first := c.blocks.at(0)
	incomingTiny := donor.Tiny(0)

	switch {
	case first.Tiny(0) && incomingTiny:
		if first.Mutable() && first.CanPrepend(donor.Size()) {
			buf := first.PrependBuffer(donor.Size(), donor.Size())
			copy(buf, donor.Data())
			donor.Unref()
			return MergeInPlace
		}
		combined := first.Size() + donor.Size()
		merged := block.NewInternal(newBlockCapacity(0, combined, combined, opts))
		buf := merged.AppendBuffer(combined, combined)
		n := copy(buf, donor.Data())
		copy(buf[n:], first.Data())
		donor.Unref()
		c.blocks.popFront().Unref()
		c.blocks.pushFront(merged, int64(combined))
		return MergeNewBlock

	case first.Size() == 0:
		c.blocks.popFront().Unref()
		c.blocks.pushFront(donor, int64(donor.Size()))
		return DropEmpty

	case first.Wasteful(0):
		if first.Mutable() && first.CanPrepend(donor.Size()) && !first.Wasteful(donor.Size()) {
			buf := first.PrependBuffer(donor.Size(), donor.Size())
			copy(buf, donor.Data())
			donor.Unref()
			return MergeInPlace
		}
		rewritten := first.Copy()
		c.blocks.popFront().Unref()
		c.blocks.pushFront(rewritten, int64(rewritten.Size()))
		c.blocks.pushFront(donor, int64(donor.Size()))
		return RewriteThenAttach

	default:
		c.blocks.pushFront(donor, int64(donor.Size()))
		return Attach
	}
}

// AppendBuffer returns a writable slice of at least minLength and at most
// maxLength bytes, recommending recommendedLength, that the caller fills
// directly and which is already accounted for as part of the Chain's
// content. It avoids the copy an Append(data, opts) call would otherwise
// need when the caller is about to produce the bytes in place (e.g. a
// compressor writing straight into the Chain).
//
// Unlike Append, a block freshly allocated to satisfy an AppendBuffer call
// is never tiny-merged with an existing neighbor: the merge would have to
// copy the neighbor's bytes into a new block before the caller has had a
// chance to fill the buffer it was just handed, silently discarding those
// writes. DropEmpty and wasteful-rewrite seam handling still apply, since
// neither touches the fresh block's own bytes.
func (c *Chain) AppendBuffer(minLength, recommendedLength, maxLength int, opts Options) []byte {
	if maxLength < minLength {
		maxLength = minLength
	}
	if recommendedLength < minLength {
		recommendedLength = minLength
	}
	if recommendedLength > maxLength {
		recommendedLength = maxLength
	}

	if c.isShort() {
		if c.shortLen+minLength <= MaxShortDataSize {
			n := maxLength
			if c.shortLen+n > MaxShortDataSize {
				n = MaxShortDataSize - c.shortLen
			}
			buf := c.short[c.shortLen : c.shortLen+n]
			c.shortLen += n
			c.size += int64(n)
			return buf
		}
		c.promoteShort(opts)
	}

	if c.blocks.len() > 0 {
		last := c.blocks.at(c.blocks.len() - 1)
		if last.CanAppendMoving(minLength) != block.Reject {
			buf := last.AppendBuffer(minLength, maxLength)
			c.size += int64(len(buf))
			return buf
		}
	}

	capacity := newBlockCapacity(0, minLength, recommendedLength, opts)
	blk := block.NewInternal(capacity)
	max := maxLength
	if max > capacity {
		max = capacity
	}
	buf := blk.AppendBuffer(minLength, max)
	c.attachFreshBlock(blk)
	c.size += int64(len(buf))
	return buf
}

// PrependBuffer is the mirror of AppendBuffer for the front of the Chain.
func (c *Chain) PrependBuffer(minLength, recommendedLength, maxLength int, opts Options) []byte {
	if maxLength < minLength {
		maxLength = minLength
	}
	if recommendedLength < minLength {
		recommendedLength = minLength
	}
	if recommendedLength > maxLength {
		recommendedLength = maxLength
	}

	if c.isShort() {
		if c.shortLen+minLength <= MaxShortDataSize {
			n := maxLength
			if c.shortLen+n > MaxShortDataSize {
				n = MaxShortDataSize - c.shortLen
			}
			copy(c.short[n:n+c.shortLen], c.short[:c.shortLen])
			c.shortLen += n
			c.size += int64(n)
			return c.short[:n]
		}
		c.promoteShort(opts)
	}

	if c.blocks.len() > 0 {
		first := c.blocks.at(0)
		if first.CanPrependMoving(minLength) != block.Reject {
			buf := first.PrependBuffer(minLength, maxLength)
			c.size += int64(len(buf))
			return buf
		}
	}

	capacity := newBlockCapacity(0, minLength, recommendedLength, opts)
	blk := block.NewInternal(capacity)
	max := maxLength
	if max > capacity {
		max = capacity
	}
	buf := blk.PrependBuffer(minLength, max)
	c.attachFreshBlockFront(blk)
	c.size += int64(len(buf))
	return buf
}

func (c *Chain) attachFreshBlock(blk *block.Block) {
	if c.blocks.len() == 0 {
		c.blocks.pushBack(blk)
		return
	}
	last := c.blocks.at(c.blocks.len() - 1)
	switch {
	case last.Size() == 0:
		c.blocks.popBack().Unref()
		c.blocks.pushBack(blk)
	case last.Wasteful(0):
		rewritten := last.Copy()
		c.blocks.popBack().Unref()
		c.blocks.pushBack(rewritten)
		c.blocks.pushBack(blk)
	default:
		c.blocks.pushBack(blk)
	}
}

func (c *Chain) attachFreshBlockFront(blk *block.Block) {
	if c.blocks.len() == 0 {
		c.blocks.pushFront(blk, int64(blk.Size()))
		return
	}
	first := c.blocks.at(0)
	switch {
	case first.Size() == 0:
		c.blocks.popFront().Unref()
		c.blocks.pushFront(blk, int64(blk.Size()))
	case first.Wasteful(0):
		rewritten := first.Copy()
		c.blocks.popFront().Unref()
		c.blocks.pushFront(rewritten, int64(rewritten.Size()))
		c.blocks.pushFront(blk, int64(blk.Size()))
	default:
		c.blocks.pushFront(blk, int64(blk.Size()))
	}
}

// RemovePrefix drops the first n bytes from the Chain. Whole blocks made
// empty are dropped outright; a partially consumed boundary block is
// trimmed in place when uniquely owned, or replaced with a substring view
// that keeps the original block alive when shared.
func (c *Chain) RemovePrefix(n int64, opts Options) {
	if n <= 0 {
		return
	}
	if n > c.size {
		panic("chain: RemovePrefix n exceeds size")
	}
	if c.isShort() {
		copy(c.short[:], c.short[n:int64(c.shortLen)])
		c.shortLen -= int(n)
		c.size -= n
		return
	}

	remaining := n
	for remaining > 0 {
		first := c.blocks.at(0)
		sz := int64(first.Size())
		if sz <= remaining {
			c.blocks.popFront().Unref()
			remaining -= sz
			continue
		}
		if first.IsExternal() && first.Unique() {
			first.RemovePrefix(int(remaining))
		} else if !first.IsExternal() && first.Mutable() {
			first.RemovePrefix(int(remaining))
		} else {
			view := block.NewExternalSubstringView(first, first.Data()[remaining:])
			c.blocks.popFront().Unref()
			c.blocks.pushFront(view, int64(view.Size()))
		}
		remaining = 0
	}
	c.size -= n
	c.compactFrontIfTiny(opts)
}

// compactFrontIfTiny merges the first two blocks into one when a prefix
// trim has left both of them tiny, so repeated small RemovePrefix calls
// don't leave a trail of tiny blocks behind.
func (c *Chain) compactFrontIfTiny(opts Options) {
	if c.blocks.len() < 2 {
		return
	}
	a := c.blocks.at(0)
	b := c.blocks.at(1)
	if !a.Tiny(0) || !b.Tiny(0) {
		return
	}
	combined := a.Size() + b.Size()
	merged := block.NewInternal(newBlockCapacity(0, combined, combined, opts))
	buf := merged.AppendBuffer(combined, combined)
	n := copy(buf, a.Data())
	copy(buf[n:], b.Data())
	c.blocks.popFront().Unref()
	c.blocks.popFront().Unref()
	c.blocks.pushFront(merged, int64(combined))
}

// RemoveSuffix is the mirror of RemovePrefix for the back of the Chain.
func (c *Chain) RemoveSuffix(n int64, opts Options) {
	if n <= 0 {
		return
	}
	if n > c.size {
		panic("chain: RemoveSuffix n exceeds size")
	}
	if c.isShort() {
		c.shortLen -= int(n)
		c.size -= n
		return
	}

	remaining := n
	for remaining > 0 {
		last := c.blocks.at(c.blocks.len() - 1)
		sz := int64(last.Size())
		if sz <= remaining {
			c.blocks.popBack().Unref()
			remaining -= sz
			continue
		}
		newLen := int(sz - remaining)
		if last.IsExternal() && last.Unique() {
			last.RemoveSuffix(int(remaining))
		} else if !last.IsExternal() && last.Mutable() {
			last.RemoveSuffix(int(remaining))
		} else {
			view := block.NewExternalSubstringView(last, last.Data()[:newLen])
			c.blocks.popBack().Unref()
			c.blocks.pushBack(view)
		}
		remaining = 0
	}
	c.size -= n
	c.compactBackIfTiny(opts)
}

// compactBackIfTiny is the mirror of compactFrontIfTiny for the back of
// the Chain.
func (c *Chain) compactBackIfTiny(opts Options) {
	n := c.blocks.len()
	if n < 2 {
		return
	}
	a := c.blocks.at(n - 2)
	b := c.blocks.at(n - 1)
	if !a.Tiny(0) || !b.Tiny(0) {
		return
	}
	combined := a.Size() + b.Size()
	merged := block.NewInternal(newBlockCapacity(0, combined, combined, opts))
	buf := merged.AppendBuffer(combined, combined)
	m := copy(buf, a.Data())
	copy(buf[m:], b.Data())
	c.blocks.popBack().Unref()
	c.blocks.popBack().Unref()
	c.blocks.pushBack(merged)
}

// Flatten collapses the Chain into a single block and returns its live
// region as a stable slice: the returned slice remains valid and unchanged
// by later Chain mutations, since the backing block is frozen against
// future in-place writes.
func (c *Chain) Flatten() []byte {
	if c.isShort() {
		// The inline buffer is rewritten by later short-data mutations, so
		// hand back a copy of it.
		out := make([]byte, c.shortLen)
		copy(out, c.short[:c.shortLen])
		return out
	}
	if c.blocks.len() == 1 {
		blk := c.blocks.at(0)
		blk.Freeze()
		return blk.Data()
	}

	merged := block.NewInternal(newBlockCapacity(0, int(c.size), int(c.size), DefaultOptions()))
	buf := merged.AppendBuffer(int(c.size), int(c.size))
	pos := 0
	for i := 0; i < c.blocks.len(); i++ {
		b := c.blocks.at(i)
		pos += copy(buf[pos:], b.Data())
		b.Unref()
	}
	merged.Freeze()
	c.blocks.clear()
	c.blocks.pushBack(merged)
	return merged.Data()
}
