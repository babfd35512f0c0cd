// Package rle implements Parquet's hybrid RLE/bit-packed integer
// format: alternating runs of a repeated value and runs of densely
// bit-packed values, both framed by a single VLQ header whose low bit
// picks the run kind. It is what definition/repetition levels and
// dictionary indices are encoded with.
package rle

import (
	"github.com/hexbee-net/errors"
)

// minRunLength is how long a repeated-value run must be for the encoder
// to RLE it; shorter runs are folded into the surrounding bit-packed
// stretch instead. The RLE run actually emitted can be shorter (down to
// 1 value), since up to 7 of its values may first be moved into the
// preceding bit-packed run to round that run up to a multiple of 8.
const minRunLength = 8

const (
	ErrValueOutOfRange = errors.Error("rle: value does not fit in the configured bit width")
	ErrMalformedHeader = errors.Error("rle: malformed or truncated run header")
	ErrRunValueTooWide = errors.Error("rle: rle run value exceeds the configured bit width")
)

// BitWidth returns the number of bits needed to represent every value
// in [0, maxValue], i.e. ceil(log2(maxValue+1)). It is how a leaf's
// max repetition/definition level determines its level-stream bit
// width, and how a dictionary's size determines its index bit width.
func BitWidth(maxValue int) int {
	width := 0
	for v := maxValue; v > 0; v >>= 1 {
		width++
	}

	return width
}

// DictionaryIndexWidth returns the bit width of a dictionary's index
// stream: ceil(log2(dictSize)), clamped to at least 1 since a width of
// 0 is not a valid index encoding (dictSize must be >= 1).
func DictionaryIndexWidth(dictSize int) int {
	w := BitWidth(dictSize - 1)
	if w < 1 {
		w = 1
	}

	return w
}
