package ffi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCloser struct{ closed bool }

func (c *fakeCloser) Close() error {
	c.closed = true
	return nil
}

func Test_HandleTable_AllocLookupRelease(t *testing.T) {
	var table handleTable
	s := &stream{closer: &fakeCloser{}}

	handle, ok := table.allocHandle(s)
	require.True(t, ok)
	assert.Equal(t, int64(1), handle)

	got, ok := table.lookup(handle)
	require.True(t, ok)
	assert.Same(t, s, got)

	released, ok := table.release(handle)
	require.True(t, ok)
	assert.Same(t, s, released)

	_, ok = table.lookup(handle)
	assert.False(t, ok)
}

func Test_HandleTable_RejectsUnknownOrZeroHandle(t *testing.T) {
	var table handleTable
	_, ok := table.lookup(0)
	assert.False(t, ok)
	_, ok = table.lookup(999)
	assert.False(t, ok)
	_, ok = table.release(0)
	assert.False(t, ok)
}

func Test_HandleTable_ReusesFreedSlot(t *testing.T) {
	var table handleTable
	h1, _ := table.allocHandle(&stream{closer: &fakeCloser{}})
	table.release(h1)

	h2, ok := table.allocHandle(&stream{closer: &fakeCloser{}})
	require.True(t, ok)
	assert.Equal(t, h1, h2)
}

func Test_HandleTable_ExhaustsAtCapacity(t *testing.T) {
	var table handleTable
	for i := 0; i < maxHandles; i++ {
		_, ok := table.allocHandle(&stream{closer: &fakeCloser{}})
		require.True(t, ok)
	}
	_, ok := table.allocHandle(&stream{closer: &fakeCloser{}})
	assert.False(t, ok)
}
