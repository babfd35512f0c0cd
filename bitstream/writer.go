package bitstream

import "github.com/hexbee-net/errors"

// Writer packs values into a caller-owned buffer, bit-packed and
// byte-aligned writes freely mixed, as in parquet4seastar's BitWriter.
// Unlike that BitWriter, the 64-bit accumulator is flushed to the buffer
// a byte at a time as it fills, so no write ever reaches past the
// buffer's declared length.
type Writer struct {
	buf      []byte
	maxBytes int

	bufferedValues uint64
	byteOffset     int
	bitOffset      int
}

// NewWriter creates a Writer appending into buf. buf's length is the
// writer's capacity; it is never grown.
func NewWriter(buf []byte) *Writer {
	w := &Writer{}
	w.Reset(buf)

	return w
}

// Reset rebinds the writer to buf and clears all state.
func (w *Writer) Reset(buf []byte) {
	w.buf = buf
	w.maxBytes = len(buf)
	w.bufferedValues = 0
	w.byteOffset = 0
	w.bitOffset = 0
}

// BytesWritten reports the length written so far, including a partial
// trailing byte.
func (w *Writer) BytesWritten() int {
	return w.byteOffset + bytesForBits(w.bitOffset)
}

// Bytes returns the buffer slice covering everything written so far.
func (w *Writer) Bytes() []byte {
	return w.buf[:w.BytesWritten()]
}

// PutBits writes the numBits least-significant bits of v. The caller
// must ensure v has no set bits above bit numBits-1; that precondition
// is checked here to fail loudly on caller bugs.
func (w *Writer) PutBits(v uint64, numBits int) error {
	if numBits < 0 || numBits > MaxBitWidth {
		return errors.WithFields(
			errors.WithStack(ErrInvalidBitWidth),
			errors.Fields{"num-bits": numBits})
	}

	if numBits < 64 && v>>uint(numBits) != 0 {
		return errors.WithFields(
			errors.WithStack(ErrValueOutOfRange),
			errors.Fields{"value": v, "num-bits": numBits})
	}

	if w.byteOffset*8+w.bitOffset+numBits > w.maxBytes*8 {
		return errors.WithFields(
			errors.WithStack(ErrBufferFull),
			errors.Fields{"num-bits": numBits, "bytes-left": w.bytesLeft()})
	}

	w.bufferedValues |= v << uint(w.bitOffset)
	w.bitOffset += numBits

	for w.bitOffset >= 8 {
		w.buf[w.byteOffset] = byte(w.bufferedValues)
		w.bufferedValues >>= 8
		w.bitOffset -= 8
		w.byteOffset++
	}

	return nil
}

// PutAligned flushes any buffered bits to the next byte boundary, then
// writes the nbytes low-order bytes of v, little-endian. nbytes must be
// in [1, 8].
func (w *Writer) PutAligned(v uint64, nbytes int) error {
	w.Flush(true)

	if w.byteOffset+nbytes > w.maxBytes {
		return errors.WithFields(
			errors.WithStack(ErrBufferFull),
			errors.Fields{"num-bytes": nbytes, "bytes-left": w.maxBytes - w.byteOffset})
	}

	for i := 0; i < nbytes; i++ {
		w.buf[w.byteOffset+i] = byte(v >> uint(8*i))
	}

	w.byteOffset += nbytes

	return nil
}

// PutAlignedBytes flushes to the next byte boundary, then copies data
// in raw. Unlike PutAligned it is not limited to 8 bytes.
func (w *Writer) PutAlignedBytes(data []byte) error {
	w.Flush(true)

	if w.byteOffset+len(data) > w.maxBytes {
		return errors.WithFields(
			errors.WithStack(ErrBufferFull),
			errors.Fields{"num-bytes": len(data), "bytes-left": w.maxBytes - w.byteOffset})
	}

	copy(w.buf[w.byteOffset:], data)
	w.byteOffset += len(data)

	return nil
}

// PutVlq writes v as an unsigned variable-length quantity: 7 bits per
// byte, MSB set on every byte but the last.
func (w *Writer) PutVlq(v uint32) error {
	for v&0xFFFFFF80 != 0 {
		if err := w.PutAligned(uint64(byte(v&0x7F)|0x80), 1); err != nil {
			return err
		}

		v >>= 7
	}

	return w.PutAligned(uint64(byte(v&0x7F)), 1)
}

// PutZigzagVlq writes v zigzag-encoded then as an unsigned VLQ, so that
// small-magnitude negative values cost as few bytes as small positive
// ones.
func (w *Writer) PutZigzagVlq(v int32) error {
	uv := uint32(v)

	return w.PutVlq((uv << 1) ^ uint32(v>>31))
}

// PutVlq64 writes v as an unsigned 64-bit variable-length quantity: 7
// bits per byte, MSB set on every byte but the last. Needed for
// DELTA_BINARY_PACKED's int64 header fields (first_value, min_delta),
// whose magnitude routinely exceeds 32 bits even when the per-miniblock
// deltas do not.
func (w *Writer) PutVlq64(v uint64) error {
	for v&0xFFFFFFFFFFFFFF80 != 0 {
		if err := w.PutAligned(uint64(byte(v&0x7F)|0x80), 1); err != nil {
			return err
		}

		v >>= 7
	}

	return w.PutAligned(v&0x7F, 1)
}

// PutZigzagVlq64 writes v zigzag-encoded (per spec: (v<<1) xor (v>>63))
// then as an unsigned 64-bit VLQ.
func (w *Writer) PutZigzagVlq64(v int64) error {
	uv := uint64(v)

	return w.PutVlq64((uv << 1) ^ uint64(v>>63))
}

// Flush copies any bits buffered in the accumulator into the
// destination buffer. If align is true, the cursor is advanced past
// them and future writes start at the next byte boundary; otherwise the
// bits remain buffered and can still be added to.
func (w *Writer) Flush(align bool) {
	n := bytesForBits(w.bitOffset)
	if n > w.maxBytes-w.byteOffset {
		n = w.maxBytes - w.byteOffset
	}

	for i := 0; i < n; i++ {
		w.buf[w.byteOffset+i] = byte(w.bufferedValues >> uint(8*i))
	}

	if align {
		w.bufferedValues = 0
		w.byteOffset += n
		w.bitOffset = 0
	}
}

func (w *Writer) bytesLeft() int {
	return w.maxBytes - (w.byteOffset + bytesForBits(w.bitOffset))
}
