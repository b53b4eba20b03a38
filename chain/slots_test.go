package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgli/riegeli/internal/block"
)

func tinyBlock(t *testing.T, s string) *block.Block {
	t.Helper()
	b := block.NewInternal(len(s))
	buf := b.AppendBuffer(len(s), len(s))
	copy(buf, s)
	return b
}

func Test_BlockList_PushBackGrowsAndTracksOffsets(t *testing.T) {
	var l blockList
	l.pushBack(tinyBlock(t, "aaa"))
	l.pushBack(tinyBlock(t, "bb"))
	l.pushBack(tinyBlock(t, "c"))

	require.Equal(t, 3, l.len())
	assert.Equal(t, "aaa", string(l.at(0).Data()))
	assert.Equal(t, "bb", string(l.at(1).Data()))
	assert.Equal(t, "c", string(l.at(2).Data()))

	idx, off := l.blockAndOffset(4)
	assert.Equal(t, 1, idx)
	assert.Equal(t, int64(1), off)
}

func Test_BlockList_PushFrontPrependsInOrder(t *testing.T) {
	var l blockList
	l.pushFront(tinyBlock(t, "c"), 1)
	l.pushFront(tinyBlock(t, "bb"), 2)
	l.pushFront(tinyBlock(t, "aaa"), 3)

	require.Equal(t, 3, l.len())
	assert.Equal(t, "aaa", string(l.at(0).Data()))
	assert.Equal(t, "bb", string(l.at(1).Data()))
	assert.Equal(t, "c", string(l.at(2).Data()))
}

func Test_BlockList_PopBackAndFront(t *testing.T) {
	var l blockList
	l.pushBack(tinyBlock(t, "a"))
	l.pushBack(tinyBlock(t, "b"))
	l.pushBack(tinyBlock(t, "c"))

	front := l.popFront()
	assert.Equal(t, "a", string(front.Data()))
	back := l.popBack()
	assert.Equal(t, "c", string(back.Data()))
	require.Equal(t, 1, l.len())
	assert.Equal(t, "b", string(l.at(0).Data()))
}

func Test_BlockList_ShiftToFrontWhenAtMostHalfFull(t *testing.T) {
	var l blockList
	for i := 0; i < 16; i++ {
		l.pushBack(tinyBlock(t, "x"))
	}
	require.Equal(t, 16, cap(l.slots))
	for i := 0; i < 14; i++ {
		l.popFront()
	}
	require.Equal(t, 2, l.len())
	beginBefore := l.begin
	capBefore := cap(l.slots)

	l.pushBack(tinyBlock(t, "y"))
	// The window (2 of 16 slots, with no room left at the back) is at
	// most half full, so reserveBack should have shifted it back to
	// index 0 in the existing allocation rather than reallocating.
	assert.Less(t, l.begin, beginBefore)
	assert.Equal(t, capBefore, cap(l.slots))
}

func Test_BlockList_BlockAndOffset_BoundaryPositions(t *testing.T) {
	var l blockList
	l.pushBack(tinyBlock(t, "aaa"))
	l.pushBack(tinyBlock(t, "bbb"))

	idx, off := l.blockAndOffset(0)
	assert.Equal(t, 0, idx)
	assert.Equal(t, int64(0), off)

	idx, off = l.blockAndOffset(3)
	assert.Equal(t, 1, idx)
	assert.Equal(t, int64(0), off)

	idx, off = l.blockAndOffset(6)
	assert.Equal(t, 1, idx)
	assert.Equal(t, int64(3), off)
}

func Test_NewBlockCapacity_MinLengthWinsOverMaxBlockSize(t *testing.T) {
	opts := Options{MinBlockSize: 16, MaxBlockSize: 32}
	// recommendedLength/minLength exceeding MaxBlockSize must still be
	// honored in full: the lower bound wins on conflict.
	got := newBlockCapacity(0, 100, 100, opts)
	assert.Equal(t, 100, got)
}

func Test_NewBlockCapacity_SizeHintClampsToRemainder(t *testing.T) {
	hint := int64(500)
	opts := Options{MinBlockSize: 16, MaxBlockSize: 1000, SizeHint: &hint}
	got := newBlockCapacity(0, 16, 16, opts)
	assert.Equal(t, 500, got)
}
