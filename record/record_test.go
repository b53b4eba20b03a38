package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgli/riegeli/chain"
	"github.com/rgli/riegeli/ioriegeli"
)

func Test_WriteRecord_ReadRecord_RoundTrip(t *testing.T) {
	dst := chain.New()
	w := ioriegeli.NewChainWriter(dst, chain.DefaultOptions())

	require.NoError(t, WriteRecord(w, []byte("first")))
	require.NoError(t, WriteRecord(w, []byte("second record")))
	require.True(t, w.Flush())

	r := ioriegeli.NewChainReader(dst)
	got, err := ReadRecord(r)
	require.NoError(t, err)
	assert.Equal(t, "first", string(got))

	got, err = ReadRecord(r)
	require.NoError(t, err)
	assert.Equal(t, "second record", string(got))

	got, err = ReadRecord(r)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func Test_WriteRecord_EmptyPayload(t *testing.T) {
	dst := chain.New()
	w := ioriegeli.NewChainWriter(dst, chain.DefaultOptions())

	require.NoError(t, WriteRecord(w, nil))
	require.True(t, w.Flush())

	r := ioriegeli.NewChainReader(dst)
	got, err := ReadRecord(r)
	require.NoError(t, err)
	assert.Equal(t, 0, len(got))
}

func Test_ReadRecord_DetectsChecksumMismatch(t *testing.T) {
	dst := chain.New()
	w := ioriegeli.NewChainWriter(dst, chain.DefaultOptions())
	require.NoError(t, WriteRecord(w, []byte("tamper me")))
	require.True(t, w.Flush())

	corrupted := []byte(dst.String())
	corrupted[len(corrupted)-1] ^= 0xff
	tampered := chain.FromString(string(corrupted))

	r := ioriegeli.NewChainReader(tampered)
	_, err := ReadRecord(r)
	require.Error(t, err)
}
