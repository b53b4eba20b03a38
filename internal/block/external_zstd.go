package block

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// zstdPayload is an external payload backed by a fully decompressed
// zstd-compressed buffer. It demonstrates the external-block vtable
// against a real compression library: decoding is delegated entirely to
// klauspost/compress, which is the "external collaborator" spec.md says
// compression belongs to — this package only wires its output into a
// Block, it does not implement any codec logic itself.
type zstdPayload struct {
	compressedSize int
	data           []byte
}

func (p *zstdPayload) Delete()                        {}
func (p *zstdPayload) RegisterSubobjects(func(any))   {}

func (p *zstdPayload) Dump() string {
	return fmt.Sprintf("zstd(compressed=%d, decompressed=%d)", p.compressedSize, len(p.data))
}

func (p *zstdPayload) DynamicSizeof() (uintptr, bool) {
	return uintptr(len(p.data)), true
}

// NewExternalZstd decompresses a zstd-compressed buffer in full and wraps
// the result as an external block. maxDecodedSize bounds the decoder's
// output to guard against decompression bombs.
func NewExternalZstd(compressed []byte, maxDecodedSize int) (*Block, error) {
	dec, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(uint64(maxDecodedSize)))
	if err != nil {
		return nil, fmt.Errorf("block: failed to initialize zstd decoder: %w", err)
	}
	defer dec.Close()

	data, err := dec.DecodeAll(compressed, make([]byte, 0, len(compressed)*3))
	if err != nil {
		return nil, fmt.Errorf("block: failed to decompress zstd payload: %w", err)
	}
	if len(data) > maxDecodedSize {
		return nil, fmt.Errorf("block: decompressed zstd payload of %d bytes exceeds limit %d", len(data), maxDecodedSize)
	}

	payload := &zstdPayload{compressedSize: len(compressed), data: data}
	return NewExternal(payload, data), nil
}
