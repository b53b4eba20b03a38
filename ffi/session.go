package ffi

import (
	"github.com/rgli/riegeli/ioriegeli"
	"github.com/rgli/riegeli/record"
	"github.com/rgli/riegeli/rerror"
)

// Open opens path as a record stream for reading and returns a live
// handle, or an error if the file could not be opened.
func Open(path string) (int64, error) {
	f, err := ioriegeli.OpenFileReader(path)
	if err != nil {
		return 0, err
	}

	s := &stream{closer: f}
	handle, ok := global.allocHandle(s)
	if !ok {
		f.Close()
		return 0, rerror.ResourceExhausted("ffi: no free handle slots (max %d live)", maxHandles)
	}
	return handle, nil
}

// ReadRecord reads the next record from handle's stream. It returns
// (nil, nil) at a clean end of stream.
func ReadRecord(handle int64) ([]byte, error) {
	s, ok := global.lookup(handle)
	if !ok {
		return nil, rerror.InvalidArgument("ffi: handle %d is not open", handle)
	}

	fr, ok := s.closer.(*ioriegeli.FileReader)
	if !ok {
		return nil, rerror.Internal("ffi: handle %d is not a reader", handle)
	}
	return record.ReadRecord(fr)
}

// Close releases handle. Closing an already-closed or unknown handle is
// reported as an error rather than silently ignored, since the shim has
// no other way to surface a caller's double-close bug.
func Close(handle int64) error {
	s, ok := global.release(handle)
	if !ok {
		return rerror.InvalidArgument("ffi: handle %d is not open", handle)
	}
	return s.closer.Close()
}
