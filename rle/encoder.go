package rle

import (
	"encoding/binary"
	"io"

	"github.com/hexbee-net/errors"
	"github.com/scylladb/parquet4seastar-go/bitstream"
)

// Encoder buffers a page's worth of small unsigned integers and, on
// Close, segments them into RLE runs and bit-packed runs. It operates
// on the whole buffered sequence at once rather than emitting bytes as
// values arrive: the run-length decision for a value depends on how
// many further repeats follow it, so a page's full level or index
// stream is gathered before it is framed. This matches how Parquet
// pages are actually produced (the level/index stream for a page is
// materialized before the page is serialized).
type Encoder struct {
	bitWidth int
	values   []int32
}

// NewEncoder creates an Encoder for values that fit in bitWidth bits
// (0..32).
func NewEncoder(bitWidth int) *Encoder {
	return &Encoder{bitWidth: bitWidth}
}

// Reset clears the buffered values and switches to a new bit width, so
// the Encoder can be reused across pages without reallocating.
func (e *Encoder) Reset(bitWidth int) {
	e.bitWidth = bitWidth
	e.values = e.values[:0]
}

// AppendValues buffers values for the next Close call.
func (e *Encoder) AppendValues(values []int32) error {
	if e.bitWidth < 32 {
		limit := uint32(1) << uint(e.bitWidth)

		for _, v := range values {
			if uint32(v) >= limit {
				return errors.WithFields(
					errors.WithStack(ErrValueOutOfRange),
					errors.Fields{"value": v, "bit-width": e.bitWidth})
			}
		}
	}

	e.values = append(e.values, values...)

	return nil
}

// Close writes the buffered sequence to w as alternating RLE and
// bit-packed runs, then clears the buffer. If the bit width is 0, it
// writes nothing: per spec, a max level of 0 means no header and no
// bytes for that page.
func (e *Encoder) Close(w io.Writer) error {
	defer func() { e.values = e.values[:0] }()

	if e.bitWidth == 0 {
		return nil
	}

	values := e.values
	n := len(values)

	// bpBuf accumulates values not yet written as a bit-packed run. Only
	// the run flushed at the very end of the whole sequence may have a
	// length that isn't a multiple of 8 (its trailing group is padded
	// with zeros); every other flush must land on an 8-value boundary,
	// since nothing in the wire format tells a decoder where real values
	// stop and padding starts within a run that more data follows.
	var bpBuf []int32

	flushBP := func() error {
		if len(bpBuf) == 0 {
			return nil
		}

		if err := e.writeBitPackedRun(w, bpBuf); err != nil {
			return err
		}

		bpBuf = bpBuf[:0]

		return nil
	}

	for i := 0; i < n; {
		j := i + 1
		for j < n && values[j] == values[i] {
			j++
		}

		runLen := j - i

		if runLen < minRunLength {
			bpBuf = append(bpBuf, values[i:j]...)
			i = j

			continue
		}

		// Borrow enough values from the front of this run to round the
		// pending bit-packed buffer up to a multiple of 8 before flushing
		// it; at most 7 are borrowed and the run holds at least
		// minRunLength (8), so at least one value is left for the RLE run.
		if rem := len(bpBuf) % 8; rem != 0 {
			need := 8 - rem
			bpBuf = append(bpBuf, values[i:i+need]...)
			i += need
			runLen -= need
		}

		if err := flushBP(); err != nil {
			return err
		}

		if err := e.writeRLERun(w, values[i], runLen); err != nil {
			return err
		}

		i += runLen
	}

	return flushBP()
}

func (e *Encoder) writeRLERun(w io.Writer, value int32, runLength int) error {
	header := make([]byte, binary.MaxVarintLen32)
	n := binary.PutUvarint(header, uint64(runLength)<<1)

	if _, err := w.Write(header[:n]); err != nil {
		return err
	}

	nbytes := (e.bitWidth + 7) / 8
	buf := make([]byte, nbytes)
	u := uint32(value)

	for k := 0; k < nbytes; k++ {
		buf[k] = byte(u >> uint(8*k))
	}

	_, err := w.Write(buf)

	return err
}

func (e *Encoder) writeBitPackedRun(w io.Writer, values []int32) error {
	numGroups := (len(values) + 7) / 8

	header := make([]byte, binary.MaxVarintLen32)
	n := binary.PutUvarint(header, uint64(numGroups)<<1|1)

	if _, err := w.Write(header[:n]); err != nil {
		return err
	}

	for g := 0; g < numGroups; g++ {
		var group [8]int32

		for k := 0; k < 8; k++ {
			idx := g*8 + k
			if idx < len(values) {
				group[k] = values[idx]
			}
		}

		if _, err := w.Write(bitstream.Pack8(e.bitWidth, &group)); err != nil {
			return err
		}
	}

	return nil
}
