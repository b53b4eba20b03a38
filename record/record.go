// Package record implements a minimal sequential record format over
// ioriegeli's Reader/Writer: varint(payload_len) || blake2b-64(payload)
// || payload. It is not the on-disk Riegeli chunk/block framing; it
// exists to give the C-ABI shim (package ffi) a concrete record stream to
// read from and write to.
package record

import (
	"encoding/binary"
	"errors"

	"golang.org/x/crypto/blake2b"

	"github.com/rgli/riegeli/ioriegeli"
	"github.com/rgli/riegeli/rerror"
)

// checksumSize is the digest length for the blake2b-64 (8-byte) chunk
// checksum: enough to catch accidental corruption, not a cryptographic
// integrity guarantee.
const checksumSize = 8

const maxVarintLen = binary.MaxVarintLen64

func checksum(payload []byte) ([]byte, error) {
	h, err := blake2b.New(checksumSize, nil)
	if err != nil {
		return nil, rerror.Internal("record: building blake2b-64: %v", err)
	}
	h.Write(payload)
	return h.Sum(nil), nil
}

// WriteRecord appends one record (length prefix, checksum, payload) to w.
func WriteRecord(w ioriegeli.Writer, payload []byte) error {
	var lenBuf [maxVarintLen]byte
	n := binary.PutUvarint(lenBuf[:], uint64(len(payload)))
	if _, err := w.Write(lenBuf[:n]); err != nil {
		return rerror.IO(err)
	}

	sum, err := checksum(payload)
	if err != nil {
		return err
	}
	if _, err := w.Write(sum); err != nil {
		return rerror.IO(err)
	}

	if _, err := w.Write(payload); err != nil {
		return rerror.IO(err)
	}
	if !w.Ok() {
		return w.Err()
	}
	return nil
}

// ReadRecord reads one record from r, verifying its checksum. It returns
// (nil, nil) at a clean end of stream (no partial record pending).
func ReadRecord(r ioriegeli.Reader) ([]byte, error) {
	payloadLen, err := readUvarint(r)
	if err != nil {
		if err == errCleanEOF {
			return nil, nil
		}
		return nil, err
	}

	sum := make([]byte, checksumSize)
	if n := r.Read(sum); n != checksumSize {
		return nil, recordReadErr(r, "record: truncated checksum")
	}

	payload := make([]byte, payloadLen)
	if n := r.Read(payload); uint64(n) != payloadLen {
		return nil, recordReadErr(r, "record: truncated payload")
	}

	want, err := checksum(payload)
	if err != nil {
		return nil, err
	}
	if string(want) != string(sum) {
		return nil, rerror.Internal("record: checksum mismatch (payload length %d)", payloadLen)
	}
	return payload, nil
}

func recordReadErr(r ioriegeli.Reader, msg string) error {
	if !r.Ok() {
		return rerror.Wrap(r.Err(), "%s", msg)
	}
	return rerror.Internal("%s", msg)
}

// errCleanEOF signals that the reader ended exactly on a record boundary;
// it never escapes ReadRecord as a returned error.
var errCleanEOF = errors.New("record: clean eof")

// readUvarint reads a binary.Uvarint-encoded length, one byte at a time
// via the Reader's Pull/Consume so it never over-reads into the
// checksum or payload that follows.
func readUvarint(r ioriegeli.Reader) (uint64, error) {
	var x uint64
	var s uint
	for i := 0; i < maxVarintLen; i++ {
		var b [1]byte
		if !r.Pull(1, 0) {
			if i == 0 {
				return 0, errCleanEOF
			}
			return 0, recordReadErr(r, "record: truncated length varint")
		}
		b[0] = r.Window()[0]
		r.Consume(1)
		if b[0] < 0x80 {
			if i == maxVarintLen-1 && b[0] > 1 {
				return 0, rerror.Internal("record: length varint overflow")
			}
			return x | uint64(b[0])<<s, nil
		}
		x |= uint64(b[0]&0x7f) << s
		s += 7
	}
	return 0, rerror.Internal("record: length varint overflow")
}
