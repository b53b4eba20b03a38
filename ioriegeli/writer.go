package ioriegeli

import (
	"github.com/rgli/riegeli/chain"
)

// Writer is the push-based write contract mirroring Reader: push, write,
// flush.
//
// A failed Writer transitions to a sticky not-ok state: further
// Push/Write calls are no-ops returning false, and Err reports why.
type Writer interface {
	// Push ensures at least min writable bytes are available in
	// Window(), growing the backend as needed. hint is an optional
	// larger amount worth reserving in the same call if convenient.
	Push(min, hint int) bool

	// Window returns the writer's current writable bytes; writing into
	// it and calling Advance commits those bytes.
	Window() []byte

	// Advance commits the first n bytes of Window() as written,
	// shrinking Window() by n.
	Advance(n int)

	// Write copies p into the writer, pushing as needed. It returns the
	// number of bytes written; n < len(p) only on failure.
	Write(p []byte) (int, error)

	// Flush commits any buffered-but-uncommitted state to the backend
	// and reports whether the writer is still ok.
	Flush() bool

	// Pos returns the writer's current logical position (bytes
	// committed so far).
	Pos() int64

	// Ok reports whether the writer is in a usable state.
	Ok() bool

	// Err returns the failure that put the writer in a not-ok state, or
	// nil.
	Err() error
}

var _ Writer = (*ChainWriter)(nil)

// ChainWriter appends to an in-memory Chain, using AppendBuffer to hand
// callers a writable window that the Chain has already accounted for in
// its Size(); a Push before the previous window is fully used trims the
// unused tail back out of the Chain via RemoveSuffix so no stale bytes
// are left behind.
type ChainWriter struct {
	dst  *chain.Chain
	opts chain.Options
	buf  []byte
	used int
	ok   bool
	err  error
}

// NewChainWriter returns a Writer that appends to dst using opts to size
// new blocks.
func NewChainWriter(dst *chain.Chain, opts chain.Options) *ChainWriter {
	return &ChainWriter{dst: dst, opts: opts, ok: true}
}

func (w *ChainWriter) Ok() bool   { return w.ok }
func (w *ChainWriter) Err() error { return w.err }

// Pos is the Chain's current size minus whatever part of the last
// returned window is still uncommitted: AppendBuffer already counts the
// full window towards Size(), so the unwritten tail is the only
// correction needed.
func (w *ChainWriter) Pos() int64 {
	return w.dst.Size() - int64(len(w.buf)-w.used)
}

func (w *ChainWriter) Window() []byte { return w.buf[w.used:] }

func (w *ChainWriter) Advance(n int) { w.used += n }

func (w *ChainWriter) trimUnused() {
	if unused := len(w.buf) - w.used; unused > 0 {
		w.dst.RemoveSuffix(int64(unused), w.opts)
	}
	w.buf = nil
	w.used = 0
}

func (w *ChainWriter) Push(min, hint int) bool {
	if !w.ok {
		return false
	}
	w.trimUnused()
	if min < 1 {
		min = 1
	}
	if hint < min {
		hint = min
	}
	w.buf = w.dst.AppendBuffer(min, hint, hint, w.opts)
	w.used = 0
	return true
}

func (w *ChainWriter) Write(p []byte) (int, error) {
	if !w.ok {
		return 0, w.err
	}
	remaining := p
	for len(remaining) > 0 {
		if len(w.Window()) == 0 && !w.Push(1, len(remaining)) {
			return len(p) - len(remaining), w.err
		}
		n := copy(w.Window(), remaining)
		w.Advance(n)
		remaining = remaining[n:]
	}
	return len(p), nil
}

func (w *ChainWriter) Flush() bool {
	if !w.ok {
		return false
	}
	w.trimUnused()
	return true
}
