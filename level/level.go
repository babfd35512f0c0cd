// Package level wraps the rle package with the extra framing Parquet
// data pages (v1) use for repetition and definition level streams: a
// 4-byte little-endian length prefix in front of the RLE-hybrid bytes.
package level

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/hexbee-net/errors"
	"github.com/scylladb/parquet4seastar-go/rle"
)

const (
	ErrTruncatedPrefix = errors.Error("level: truncated length prefix")
	ErrTruncatedStream = errors.Error("level: declared length exceeds available bytes")
)

// Encode writes values (already bit-width bounded by maxLevel) to w as
// a length-prefixed RLE-hybrid stream. If maxLevel is 0 there are no
// levels to encode for this leaf, so nothing is written at all, not
// even an empty prefix: the wrapper only exists on pages where
// max_rep_level or max_def_level is positive.
func Encode(w io.Writer, maxLevel int, values []int32) error {
	if maxLevel == 0 {
		return nil
	}

	bitWidth := rle.BitWidth(maxLevel)

	e := rle.NewEncoder(bitWidth)
	if err := e.AppendValues(values); err != nil {
		return err
	}

	var buf bytes.Buffer

	if err := e.Close(&buf); err != nil {
		return err
	}

	body := buf.Bytes()

	var prefix [4]byte
	binary.LittleEndian.PutUint32(prefix[:], uint32(len(body)))

	if _, err := w.Write(prefix[:]); err != nil {
		return err
	}

	_, err := w.Write(body)

	return err
}

// Decode reads a length-prefixed RLE-hybrid level stream from data and
// returns count decoded level values. If maxLevel is 0 it returns
// count zeros without consuming any bytes, matching Encode.
func Decode(data []byte, maxLevel int, count int) ([]int32, error) {
	out := make([]int32, count)

	if maxLevel == 0 {
		return out, nil
	}

	if len(data) < 4 {
		return nil, errors.WithStack(ErrTruncatedPrefix)
	}

	length := binary.LittleEndian.Uint32(data[:4])
	body := data[4:]

	if uint32(len(body)) < length {
		return nil, errors.WithFields(
			errors.WithStack(ErrTruncatedStream),
			errors.Fields{"declared": length, "available": len(body)})
	}

	bitWidth := rle.BitWidth(maxLevel)

	d := rle.NewDecoder(bitWidth)
	d.Init(bitWidth, body[:length])

	n, err := d.NextBatch(out)
	if err != nil {
		return nil, err
	}

	if n != count {
		return nil, errors.WithFields(
			errors.WithStack(ErrTruncatedStream),
			errors.Fields{"want": count, "got": n})
	}

	return out, nil
}

// PrefixLen returns the number of bytes the length prefix for a
// length-byte stream occupies: always 4, present even when the stream
// itself is empty (length 0).
const PrefixLen = 4
