// Package ffi exposes a handle-based C ABI over the record stream codec,
// replacing the process-wide singleton the original riegeli_init/
// riegeli_read_record/riegeli_free triple implied: any number of handles
// may be live at once, and a handle has an explicit close.
//
// handles.go is pure Go and carries no cgo dependency, so the allocator
// discipline is unit-testable without a C toolchain; shim.go is the thin
// cgo-exported layer built on top of it.
package ffi

import (
	"sync"

	"github.com/rgli/riegeli/internal/bitset"
)

// maxHandles bounds live handles to what a single TinyBitset free-slot
// table can track; a process driving more than this many concurrent
// record streams through the C ABI is already outside this shim's
// intended use (a handful of sequential readers/writers per process).
const maxHandles = 64 * bitset.MaxBitsetWords

// stream is whatever a handle refers to. closer is whichever concrete
// file-backed reader or writer backs the handle; Close releases the
// underlying file descriptor.
type stream struct {
	closer interface{ Close() error }
}

// handleTable is a mutex-guarded, fixed-capacity handle allocator.
// Index i in slots corresponds to handle i+1 (handle 0 is never valid,
// reserved the way file descriptor -1 conventionally isn't).
type handleTable struct {
	mu    sync.Mutex
	used  bitset.TinyBitset
	slots [maxHandles]*stream
}

var global handleTable

// allocHandle reserves the lowest free slot for s and returns its
// 1-based handle, or ok=false if the table is full.
func (t *handleTable) allocHandle(s *stream) (int64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx, ok := t.used.FirstClear()
	if !ok {
		return 0, false
	}
	t.used.Insert(idx)
	t.slots[idx] = s
	return int64(idx) + 1, true
}

// lookup returns the stream for handle, or ok=false if it is not live.
func (t *handleTable) lookup(handle int64) (*stream, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx, ok := t.indexOf(handle)
	if !ok {
		return nil, false
	}
	return t.slots[idx], true
}

// release frees handle's slot, returning the stream that occupied it so
// the caller can close it outside the lock.
func (t *handleTable) release(handle int64) (*stream, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx, ok := t.indexOf(handle)
	if !ok {
		return nil, false
	}
	s := t.slots[idx]
	t.slots[idx] = nil
	t.used.Remove(idx)
	return s, true
}

func (t *handleTable) indexOf(handle int64) (uint32, bool) {
	if handle <= 0 || handle > int64(maxHandles) {
		return 0, false
	}
	idx := uint32(handle - 1)
	if !t.used.Has(idx) {
		return 0, false
	}
	return idx, true
}
