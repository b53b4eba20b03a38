//go:build cgo

package ffi

/*
#include <stdint.h>
#include <stdlib.h>
*/
import "C"

import "unsafe"

// riegeli_open opens path for sequential record reading. It returns a
// positive handle on success, or a negative value on failure (the
// original's negative-return-code convention for errors, without the
// original's process-wide singleton: any number of handles may be open
// at once).
//
//export riegeli_open
func riegeli_open(path *C.char) C.int64_t {
	handle, err := Open(C.GoString(path))
	if err != nil {
		return -1
	}
	return C.int64_t(handle)
}

// riegeli_read_record reads the next record from handle. It returns a
// malloc'd buffer the caller owns (free with riegeli_free) and sets
// *out_len to its size, or returns NULL at end of stream or on error
// (the two are not distinguished at the C boundary; callers that need
// to tell them apart should use the Go API directly).
//
//export riegeli_read_record
func riegeli_read_record(handle C.int64_t, out_len *C.size_t) *C.uint8_t {
	payload, err := ReadRecord(int64(handle))
	if err != nil || payload == nil {
		*out_len = 0
		return nil
	}

	buf := C.malloc(C.size_t(len(payload)))
	if buf == nil {
		*out_len = 0
		return nil
	}
	if len(payload) > 0 {
		copy(unsafe.Slice((*byte)(buf), len(payload)), payload)
	}
	*out_len = C.size_t(len(payload))
	return (*C.uint8_t)(buf)
}

// riegeli_close releases handle, the lifecycle method the original
// riegeli_init/riegeli_read_record/riegeli_free triple was missing.
//
//export riegeli_close
func riegeli_close(handle C.int64_t) C.int {
	if err := Close(int64(handle)); err != nil {
		return -1
	}
	return 0
}

// riegeli_free releases a buffer returned by riegeli_read_record.
//
//export riegeli_free
func riegeli_free(ptr unsafe.Pointer) {
	C.free(ptr)
}
