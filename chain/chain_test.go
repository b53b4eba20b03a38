package chain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgli/riegeli/cord"
)

func Test_FromString_ShortData(t *testing.T) {
	c := FromString("hello")
	assert.Equal(t, int64(5), c.Size())
	assert.Equal(t, "hello", c.String())
	assert.Equal(t, 0, c.BlockCount())
}

func Test_Append_PromotesPastShortThreshold(t *testing.T) {
	c := New()
	c.Append([]byte("0123456789012345"), DefaultOptions()) // 16 bytes > MaxShortDataSize
	assert.Equal(t, int64(16), c.Size())
	assert.Equal(t, "0123456789012345", c.String())
	assert.Greater(t, c.BlockCount(), 0)
}

func Test_Append_ManySmallWrites_StaysCompact(t *testing.T) {
	c := New()
	opts := DefaultOptions()
	for i := 0; i < 1000; i++ {
		c.Append([]byte("0123456789"), opts)
	}
	assert.Equal(t, int64(10000), c.Size())
	assert.Equal(t, 10000, len(c.Bytes()))
	// 1000 ten-byte writes should not produce anywhere near 1000 blocks:
	// the in-place fill path and the tiny-merge seam both keep block
	// count far below the write count.
	assert.Less(t, c.BlockCount(), 100)
}

func Test_Append_Large_SplitsAcrossMaxBlockSize(t *testing.T) {
	// Block sizes at or above the tiny-block threshold (256) never merge
	// at the seam, so a write that is an exact multiple of MaxBlockSize
	// lands in one fresh block per chunk.
	c := New()
	opts := Options{MinBlockSize: 256, MaxBlockSize: 300}
	data := make([]byte, 900)
	for i := range data {
		data[i] = byte(i)
	}
	c.Append(data, opts)
	assert.Equal(t, int64(900), c.Size())
	assert.Equal(t, data, c.Bytes())
	assert.Equal(t, 3, c.BlockCount())
}

func Test_Prepend_BuildsReverseOrder(t *testing.T) {
	c := New()
	opts := Options{MinBlockSize: 16, MaxBlockSize: 32}
	words := []string{"three ", "two ", "one "}
	for _, w := range words {
		c.Prepend([]byte(w), opts)
	}
	assert.Equal(t, "one two three ", c.String())
}

func Test_Copy_SharesBlocksCopyOnWrite(t *testing.T) {
	opts := Options{MinBlockSize: 16, MaxBlockSize: 32}
	c := New()
	c.Append([]byte("0123456789abcdef"), opts) // 16 bytes, forces a block

	cp := c.Copy()
	require.Equal(t, c.String(), cp.String())

	cp.Append([]byte("!"), opts)
	assert.NotEqual(t, c.String(), cp.String())
	assert.Equal(t, "0123456789abcdef", c.String())
}

func Test_RemovePrefix_NoBlockLeftBehind(t *testing.T) {
	opts := Options{MinBlockSize: 16, MaxBlockSize: 32}
	c := New()
	c.Append([]byte("0123456789abcdef"), opts)
	c.RemovePrefix(16, opts)
	assert.Equal(t, int64(0), c.Size())
	assert.Equal(t, "", c.String())
}

func Test_RemovePrefixSuffix_Partial(t *testing.T) {
	opts := Options{MinBlockSize: 16, MaxBlockSize: 32}
	c := New()
	c.Append([]byte("0123456789abcdef"), opts)
	c.RemovePrefix(2, opts)
	c.RemoveSuffix(3, opts)
	assert.Equal(t, "23456789abc", c.String())
}

func Test_RemovePrefix_SharedBlock_DoesNotMutateDonor(t *testing.T) {
	opts := Options{MinBlockSize: 16, MaxBlockSize: 32}
	c := New()
	c.Append([]byte("0123456789abcdef"), opts)
	cp := c.Copy()

	cp.RemovePrefix(4, opts)
	assert.Equal(t, "456789abcdef", cp.String())
	assert.Equal(t, "0123456789abcdef", c.String())
}

func Test_Flatten_SingleBlockResult(t *testing.T) {
	// Non-tiny 300-byte appends, so the Chain leaves short-data mode and
	// holds three separate blocks before flattening.
	opts := Options{MinBlockSize: 256, MaxBlockSize: 300}
	c := New()
	c.Append(repeat('a', 300), opts)
	c.Append(repeat('b', 300), opts)
	c.Append(repeat('c', 300), opts)
	flat := c.Flatten()
	assert.Equal(t, string(repeat('a', 300))+string(repeat('b', 300))+string(repeat('c', 300)), string(flat))
	assert.Equal(t, 1, c.BlockCount())
}

func Test_AppendCord_SharesLargeFragments(t *testing.T) {
	src := cord.FromString("aaaa")
	large := make([]byte, 8000)
	for i := range large {
		large[i] = 'b'
	}
	src.AppendFragment(large)
	src.AppendFragment([]byte("cccccccccccc"))

	c := FromCord(src)
	assert.Equal(t, int64(4+8000+12), c.Size())
	assert.Equal(t, 4+8000+12, len(c.Bytes()))
}

func Test_AppendBuffer_FillsCallerSuppliedBytes(t *testing.T) {
	c := New()
	opts := Options{MinBlockSize: 16, MaxBlockSize: 32}
	buf := c.AppendBuffer(4, 8, 8, opts)
	require.Len(t, buf, 8)
	for i := range buf {
		buf[i] = byte('a' + i)
	}
	assert.Equal(t, int64(8), c.Size())
	assert.Equal(t, "abcdefgh", c.String())
}

func Test_Equal_And_Compare(t *testing.T) {
	a := FromString("abc")
	b := FromString("abc")
	d := FromString("abd")
	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, d))
	assert.Less(t, Compare(a, d), 0)
}

func Test_BlockAndChar_ShortData(t *testing.T) {
	c := FromString("hello")
	data, offset := c.BlockAndChar(2)
	assert.Equal(t, "hello", string(data))
	assert.Equal(t, 2, offset)
}

func Test_BlockAndChar_MultiBlock(t *testing.T) {
	opts := Options{MinBlockSize: 256, MaxBlockSize: 300}
	c := New()
	c.Append(repeat('a', 300), opts)
	c.Append(repeat('b', 300), opts)
	c.Append(repeat('c', 300), opts)
	require.Equal(t, 3, c.BlockCount())

	data, offset := c.BlockAndChar(305)
	assert.Equal(t, byte('b'), data[offset])
}

func Test_Blocks_YieldsEachBlockInOrder(t *testing.T) {
	opts := Options{MinBlockSize: 256, MaxBlockSize: 300}
	c := New()
	c.Append(repeat('a', 300), opts)
	c.Append(repeat('b', 300), opts)
	c.Append(repeat('c', 300), opts)

	var got [][]byte
	for block := range c.Blocks() {
		got = append(got, block)
	}

	want := [][]byte{repeat('a', 300), repeat('b', 300), repeat('c', 300)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Blocks() mismatch (-want +got):\n%s", diff)
	}
}

func repeat(b byte, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = b
	}
	return out
}
