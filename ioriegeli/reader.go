// Package ioriegeli implements the Reader/Writer façade: the pull/push
// buffered-I/O contract the record engine is built on, backed either by an
// in-memory Chain or by a file.
package ioriegeli

import (
	"github.com/rgli/riegeli/chain"
)

// Reader is the pull-based read contract. A Reader exposes its current
// readable window via Window so callers can consume bytes with zero
// copying when the backend permits it (a ChainReader's window aliases the
// Chain's own blocks).
//
// A failed Reader transitions to a sticky not-ok state: further Pull/Read
// calls are no-ops returning false, and Err reports why.
type Reader interface {
	// Pull ensures at least min bytes are available in Window(), doing
	// whatever work the backend needs (refilling a buffer, reading
	// ahead) to make that true. hint is an optional larger amount worth
	// fetching in the same call if convenient; it never forces failure
	// when unavailable. Pull returns false at EOF or on failure; Ok
	// distinguishes the two.
	Pull(min, hint int) bool

	// Window returns the reader's current readable bytes, valid until
	// the next call that advances pos (Consume, Skip, Seek) or mutates
	// the reader otherwise.
	Window() []byte

	// Consume advances pos by n bytes, which must be <= len(Window()).
	Consume(n int)

	// Read copies up to len(dst) bytes into dst, advancing pos, pulling
	// as needed. It returns the number of bytes copied; n < len(dst)
	// only at EOF or on failure.
	Read(dst []byte) int

	// Copy copies exactly n bytes to w, pulling from the reader as
	// needed. It returns the number of bytes actually copied; a short
	// copy means EOF or failure on the reader side, or w.Ok() became
	// false, whichever is reported by the return value via Ok()/Err().
	Copy(n int64, w Writer) int64

	// Skip advances pos by n bytes without copying them anywhere,
	// pulling as needed to confirm they exist. Returns false if fewer
	// than n bytes remain.
	Skip(n int64) bool

	// Size reports the total number of bytes the Reader will ever
	// produce, if knowable.
	Size() (int64, bool)

	// Seek repositions pos, if the backend supports random access.
	Seek(pos int64) bool

	// Pos returns the reader's current logical position.
	Pos() int64

	// Ok reports whether the reader is in a usable state (no failure
	// seen yet; a clean EOF still reports true).
	Ok() bool

	// Err returns the failure that put the reader in a not-ok state, or
	// nil.
	Err() error
}

var _ Reader = (*ChainReader)(nil)

// ChainReader reads from an in-memory Chain, presenting each underlying
// block as a zero-copy window wherever a Pull's min can be satisfied by a
// single block; a min spanning a block boundary is satisfied by copying
// into a small scratch buffer, the one case a ChainReader cannot avoid a
// copy.
type ChainReader struct {
	src    *chain.Chain
	pos    int64
	window []byte
	ok     bool
	err    error
}

// NewChainReader returns a Reader over src's current contents. Mutating
// src after construction is not supported; build a fresh ChainReader (or
// read from a Copy) instead.
func NewChainReader(src *chain.Chain) *ChainReader {
	return &ChainReader{src: src, ok: true}
}

func (r *ChainReader) Ok() bool    { return r.ok }
func (r *ChainReader) Err() error  { return r.err }
func (r *ChainReader) Pos() int64  { return r.pos }
func (r *ChainReader) Window() []byte { return r.window }

func (r *ChainReader) Size() (int64, bool) { return r.src.Size(), true }

func (r *ChainReader) Pull(min, hint int) bool {
	if !r.ok {
		return false
	}
	if min < 1 {
		min = 1
	}
	remaining := r.src.Size() - r.pos
	if remaining <= 0 {
		r.window = nil
		return false
	}
	data, off := r.src.BlockAndChar(r.pos)
	if int64(len(data)-off) >= int64(min) {
		r.window = data[off:]
		return true
	}

	want := int64(min)
	if hint > min {
		want = int64(hint)
	}
	if want > remaining {
		want = remaining
	}
	scratch := make([]byte, 0, want)
	p := r.pos
	for int64(len(scratch)) < want {
		d, o := r.src.BlockAndChar(p)
		chunk := d[o:]
		if len(chunk) == 0 {
			break
		}
		take := chunk
		if int64(len(take)) > want-int64(len(scratch)) {
			take = take[:want-int64(len(scratch))]
		}
		scratch = append(scratch, take...)
		p += int64(len(take))
	}
	r.window = scratch
	return len(scratch) >= min
}

func (r *ChainReader) Consume(n int) {
	r.pos += int64(n)
	r.window = r.window[n:]
}

func (r *ChainReader) Read(dst []byte) int {
	n := 0
	for n < len(dst) {
		if len(r.Window()) == 0 && !r.Pull(1, len(dst)-n) {
			break
		}
		copied := copy(dst[n:], r.Window())
		r.Consume(copied)
		n += copied
	}
	return n
}

func (r *ChainReader) Skip(n int64) bool {
	for n > 0 {
		if len(r.Window()) == 0 && !r.Pull(1, int(n)) {
			return false
		}
		take := int64(len(r.Window()))
		if take > n {
			take = n
		}
		r.Consume(int(take))
		n -= take
	}
	return true
}

func (r *ChainReader) Copy(n int64, w Writer) int64 {
	var copied int64
	for copied < n {
		remaining := n - copied
		if len(r.Window()) == 0 && !r.Pull(1, int(remaining)) {
			break
		}
		window := r.Window()
		if int64(len(window)) > remaining {
			window = window[:remaining]
		}
		wn, _ := w.Write(window)
		r.Consume(wn)
		copied += int64(wn)
		if wn < len(window) {
			break
		}
	}
	return copied
}

func (r *ChainReader) Seek(pos int64) bool {
	if pos < 0 || pos > r.src.Size() {
		return false
	}
	r.pos = pos
	r.window = nil
	return true
}
