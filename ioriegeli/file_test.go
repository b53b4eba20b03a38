package ioriegeli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_FileWriterReader_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")

	w, err := CreateFileWriter(path)
	require.NoError(t, err)
	n, err := w.Write([]byte("hello file"))
	require.NoError(t, err)
	assert.Equal(t, 10, n)
	require.NoError(t, w.Close())

	r, err := OpenFileReader(path)
	require.NoError(t, err)
	defer r.Close()

	require.True(t, r.Pull(10, 0))
	out := make([]byte, 10)
	got := r.Read(out)
	require.Equal(t, 10, got)
	assert.Equal(t, "hello file", string(out))

	assert.False(t, r.Pull(1, 0))
	assert.True(t, r.Ok())
}

func Test_FileReader_Seek(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	require.NoError(t, os.WriteFile(path, []byte("0123456789"), 0o644))

	r, err := OpenFileReader(path)
	require.NoError(t, err)
	defer r.Close()

	require.True(t, r.Seek(7))
	out := make([]byte, 3)
	n := r.Read(out)
	require.Equal(t, 3, n)
	assert.Equal(t, "789", string(out))

	assert.False(t, r.Seek(-1))
}

func Test_FileWriter_PushAdvanceFlush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	w, err := CreateFileWriter(path)
	require.NoError(t, err)

	require.True(t, w.Push(4, 4))
	buf := w.Window()
	copy(buf, "abcd")
	w.Advance(4)
	require.True(t, w.Flush())
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "abcd", string(data))
}
