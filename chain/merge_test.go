package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgli/riegeli/internal/block"
)

func blockWithSpareCapacity(size, capacity int, fill byte) *block.Block {
	b := block.NewInternal(capacity)
	buf := b.AppendBuffer(size, size)
	for i := range buf {
		buf[i] = fill
	}
	return b
}

func Test_JoinAppend_MergeInPlace_WhenTinyNeighborHasRoom(t *testing.T) {
	c := New()
	c.blocks.pushBack(blockWithSpareCapacity(10, 64, 'a'))

	outcome := c.joinAppend([]byte("bb"), DefaultOptions())

	assert.Equal(t, MergeInPlace, outcome)
	require.Equal(t, 1, c.BlockCount())
	assert.Equal(t, "aaaaaaaaaabb", string(c.blocks.at(0).Data()))
}

func Test_JoinAppend_MergeNewBlock_WhenTinyNeighborIsFull(t *testing.T) {
	c := New()
	c.blocks.pushBack(blockWithSpareCapacity(10, 10, 'a'))

	outcome := c.joinAppend([]byte("bb"), DefaultOptions())

	assert.Equal(t, MergeNewBlock, outcome)
	require.Equal(t, 1, c.BlockCount())
	assert.Equal(t, "aaaaaaaaaabb", string(c.blocks.at(0).Data()))
}

func Test_JoinAppend_DropEmpty_WhenNeighborIsEmpty(t *testing.T) {
	c := New()
	c.blocks.pushBack(block.NewInternal(64)) // empty
	// Non-tiny incoming so the tiny+tiny merge case (which would instead
	// write into the empty block's spare capacity in place) doesn't take
	// precedence over the empty-neighbor case.
	incoming := make([]byte, 300)
	for i := range incoming {
		incoming[i] = 'n'
	}

	outcome := c.joinAppend(incoming, DefaultOptions())

	assert.Equal(t, DropEmpty, outcome)
	require.Equal(t, 1, c.BlockCount())
	assert.Equal(t, 300, c.blocks.at(0).Size())
}

func Test_JoinAppend_RewriteThenAttach_WhenNeighborIsWastefulAndTooSmall(t *testing.T) {
	c := New()
	// size=300 (not tiny, since >= 256), capacity=664 => wasteful
	// (664 >= 2*300+64), with only 364 bytes free: too little for a
	// 400-byte incoming chunk, so the seam can't fill it in place.
	last := blockWithSpareCapacity(300, 664, 'a')
	c.blocks.pushBack(last)
	incoming := make([]byte, 400)
	for i := range incoming {
		incoming[i] = 'b'
	}

	outcome := c.joinAppend(incoming, DefaultOptions())

	assert.Equal(t, RewriteThenAttach, outcome)
	require.Equal(t, 2, c.BlockCount())
	assert.Equal(t, 300, c.blocks.at(0).Size())
	assert.Equal(t, 300, c.blocks.at(0).Capacity()) // rewritten: no longer wasteful
	assert.Equal(t, 400, c.blocks.at(1).Size())
}

func Test_JoinAppend_Attach_WhenNeighborIsOrdinary(t *testing.T) {
	c := New()
	c.blocks.pushBack(blockWithSpareCapacity(300, 300, 'a')) // full, not wasteful, not tiny

	outcome := c.joinAppend(make([]byte, 300), DefaultOptions())

	assert.Equal(t, Attach, outcome)
	assert.Equal(t, 2, c.BlockCount())
}

func Test_JoinAppend_Attach_WhenNoNeighbor(t *testing.T) {
	c := New()
	outcome := c.joinAppend([]byte("first"), DefaultOptions())
	assert.Equal(t, Attach, outcome)
	require.Equal(t, 1, c.BlockCount())
}

func Test_JoinPrepend_MirrorsJoinAppend_MergeInPlace(t *testing.T) {
	c := New()
	c.blocks.pushFront(blockWithSpareCapacityPrepend(10, 64, 'a'), 10)

	outcome := c.joinPrepend([]byte("bb"), DefaultOptions())

	assert.Equal(t, MergeInPlace, outcome)
	require.Equal(t, 1, c.BlockCount())
	assert.Equal(t, "bbaaaaaaaaaa", string(c.blocks.at(0).Data()))
}

// blockWithSpareCapacityPrepend builds a block with free space before its
// live region, by prepending into a block that starts with full trailing
// room reserved at the back via PrependBuffer.
func blockWithSpareCapacityPrepend(size, capacity int, fill byte) *block.Block {
	b := block.NewInternal(capacity)
	buf := b.PrependBuffer(size, size)
	for i := range buf {
		buf[i] = fill
	}
	return b
}
