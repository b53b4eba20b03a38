package chain

import (
	"fmt"

	"github.com/c2h5oh/datasize"

	"github.com/rgli/riegeli/internal/block"
)

// Options controls how Chain mutation operations size freshly allocated
// blocks.
type Options struct {
	// SizeHint is the caller's advance estimate of the Chain's final
	// size. When set, it clamps a newly allocated block's capacity so
	// that a single block can hold the remaining expected bytes, up to
	// MaxBlockSize.
	SizeHint *int64

	// MinBlockSize is the new-block floor for the capacity of freshly
	// allocated blocks. It does not decide which blocks count as tiny at
	// a Chain seam: that threshold is always block.DefaultMinBlockSize.
	MinBlockSize int

	// MaxBlockSize is the new-block ceiling: beyond this, an append
	// allocates an additional block rather than growing one further.
	MaxBlockSize int
}

// DefaultOptions returns the Options a plain append/prepend call uses when
// the caller supplies none.
func DefaultOptions() Options {
	return Options{
		MinBlockSize: block.DefaultMinBlockSize,
		MaxBlockSize: block.DefaultMaxBlockSize,
	}
}

// ParseBlockSize parses a human-readable byte size like "4KiB" or "256B",
// so a CLI flag or config field can set Options.MinBlockSize/MaxBlockSize
// without the caller doing the unit arithmetic themselves.
func ParseBlockSize(s string) (int, error) {
	var v datasize.ByteSize
	if err := v.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("chain: invalid block size %q: %w", s, err)
	}
	return int(v.Bytes()), nil
}

func (o Options) minBlockSize() int {
	if o.MinBlockSize > 0 {
		return o.MinBlockSize
	}
	return block.DefaultMinBlockSize
}

func (o Options) maxBlockSize() int {
	if o.MaxBlockSize > 0 {
		return o.MaxBlockSize
	}
	return block.DefaultMaxBlockSize
}

// newBlockCapacity computes the capacity of a freshly allocated block that
// will absorb a rewrite of replacedLength existing bytes plus at least
// minLength, at most recommendedLength, new bytes.
//
//   - Start from max(0, options.MinBlockSize - replacedLength,
//     recommendedLength).
//   - Clamp upward by options.SizeHint, if present, so a single block can
//     hold the whole hinted remainder.
//   - Clamp into [minLength, options.MaxBlockSize - replacedLength]; the
//     lower bound wins on conflict.
//   - Add replacedLength back, since the block must also hold the
//     rewritten prefix.
func newBlockCapacity(replacedLength, minLength, recommendedLength int, options Options) int {
	capacity := options.minBlockSize() - replacedLength
	if capacity < 0 {
		capacity = 0
	}
	if recommendedLength > capacity {
		capacity = recommendedLength
	}

	if options.SizeHint != nil {
		remainder := *options.SizeHint - int64(replacedLength)
		if remainder < 0 {
			remainder = 0
		}
		max := options.maxBlockSize() - replacedLength
		if max < 0 {
			max = 0
		}
		if remainder > int64(max) {
			remainder = int64(max)
		}
		if int(remainder) > capacity {
			capacity = int(remainder)
		}
	}

	upper := options.maxBlockSize() - replacedLength
	if upper < 0 {
		upper = 0
	}
	if capacity > upper {
		capacity = upper
	}
	if capacity < minLength {
		capacity = minLength
	}

	capacity += replacedLength
	if capacity > block.MaxBlockCapacity {
		capacity = block.MaxBlockCapacity
	}
	return capacity
}
