package ioriegeli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"google.golang.org/grpc/codes"

	"github.com/rgli/riegeli/chain"
	"github.com/rgli/riegeli/rerror"
)

func Test_CopyAll_CopiesEverythingUnderBudget(t *testing.T) {
	src := chain.FromString("hello world")
	dst := chain.New()

	n, err := CopyAll(NewChainReader(src), NewChainWriter(dst, chain.DefaultOptions()), 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(11), n)
	assert.Equal(t, "hello world", dst.String())
}

func Test_CopyAll_ResourceExhausted_WhenOverBudget(t *testing.T) {
	src := chain.FromString("hello world")
	dst := chain.New()

	n, err := CopyAll(NewChainReader(src), NewChainWriter(dst, chain.DefaultOptions()), 5)
	require.Error(t, err)
	assert.True(t, rerror.Is(err, codes.ResourceExhausted))
	assert.Equal(t, int64(5), n)
	assert.Equal(t, "hello", dst.String())
}

func Test_CopyAll_ExactBudget_IsCleanEOF_NotResourceExhausted(t *testing.T) {
	src := chain.FromString("hello")
	dst := chain.New()

	n, err := CopyAll(NewChainReader(src), NewChainWriter(dst, chain.DefaultOptions()), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
}
