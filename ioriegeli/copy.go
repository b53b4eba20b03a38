package ioriegeli

import "github.com/rgli/riegeli/rerror"

const copyHintCap = 1 << 20

// CopyAll copies from src to dest until src is exhausted or maxLength
// bytes have been copied, whichever comes first.
//
// Precedence on failure: a destination failure supersedes a source
// failure (if dest stops accepting bytes mid-copy, that's the error
// reported even if src also later fails), and src holding more than
// maxLength bytes is reported as ResourceExhausted after exactly
// maxLength bytes are copied. A src that ends exactly at maxLength is a
// clean copy with a nil error.
func CopyAll(src Reader, dest Writer, maxLength int64) (int64, error) {
	var copied int64
	for {
		remaining := maxLength - copied
		hint := remaining
		if hint > copyHintCap {
			hint = copyHintCap
		}
		if !src.Pull(1, int(hint)) {
			break
		}
		window := src.Window()
		exceeds := int64(len(window)) > remaining
		if exceeds {
			window = window[:remaining]
		}

		n, werr := dest.Write(window)
		src.Consume(n)
		copied += int64(n)
		if werr != nil || !dest.Ok() {
			if !dest.Ok() && dest.Err() != nil {
				return copied, dest.Err()
			}
			return copied, werr
		}
		if exceeds {
			return copied, rerror.ResourceExhausted("copy_all: reached max_length %d after copying %d bytes", maxLength, copied)
		}
	}
	if !src.Ok() {
		return copied, src.Err()
	}
	return copied, nil
}
