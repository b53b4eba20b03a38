package refcount

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_NewStartsAtOneAndUnique(t *testing.T) {
	r := New()
	assert.Equal(t, int64(1), r.Count())
	assert.True(t, r.Unique())
}

func Test_RefMakesNonUnique(t *testing.T) {
	r := New()
	r.Ref()
	assert.Equal(t, int64(2), r.Count())
	assert.False(t, r.Unique())
}

func Test_UnrefToZeroReportsTrue(t *testing.T) {
	r := New()
	require.False(t, r.Unref())

	r2 := New()
	assert.True(t, r2.Unref())
	assert.Equal(t, int64(0), r2.Count())
}

func Test_RefUnrefBalances(t *testing.T) {
	r := New()
	r.Ref()
	r.Ref()
	assert.Equal(t, int64(3), r.Count())

	assert.False(t, r.Unref())
	assert.False(t, r.Unref())
	assert.True(t, r.Unref())
}

func Test_ConcurrentRefUnref(t *testing.T) {
	r := New()

	const n = 200
	var wg sync.WaitGroup
	wg.Add(n)
	for range n {
		r.Ref()
	}
	for range n {
		go func() {
			defer wg.Done()
			r.Unref()
		}()
	}
	wg.Wait()

	assert.True(t, r.Unique())
	assert.True(t, r.Unref())
}
