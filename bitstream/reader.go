package bitstream

import (
	"encoding/binary"

	"github.com/hexbee-net/errors"
)

// Reader is the inverse of Writer: it reads bit-packed and byte-aligned
// values back out of a caller-owned buffer, refilling a 64-bit
// accumulator from the buffer as bits are consumed.
type Reader struct {
	buf      []byte
	maxBytes int

	bufferedValues uint64
	byteOffset     int
	bitOffset      int
}

// NewReader creates a Reader over buf.
func NewReader(buf []byte) *Reader {
	r := &Reader{}
	r.Reset(buf)

	return r
}

// Reset rebinds the reader to buf and seeks back to the start.
func (r *Reader) Reset(buf []byte) {
	r.buf = buf
	r.maxBytes = len(buf)
	r.byteOffset = 0
	r.bitOffset = 0
	r.bufferedValues = r.loadWord(0)
}

// BytesLeft is the number of whole bytes left in the stream, not
// counting a trailing partial byte still held in the accumulator.
func (r *Reader) BytesLeft() int {
	return r.maxBytes - (r.byteOffset + bytesForBits(r.bitOffset))
}

func (r *Reader) loadWord(offset int) uint64 {
	n := r.maxBytes - offset
	if n <= 0 {
		return 0
	}

	if n > 8 {
		n = 8
	}

	var tmp [8]byte
	copy(tmp[:], r.buf[offset:offset+n])

	return binary.LittleEndian.Uint64(tmp[:])
}

// GetBits reads the next numBits bits and returns them zero-extended in
// a uint64.
func (r *Reader) GetBits(numBits int) (uint64, error) {
	if numBits < 0 || numBits > MaxBitWidth {
		return 0, errors.WithFields(
			errors.WithStack(ErrInvalidBitWidth),
			errors.Fields{"num-bits": numBits})
	}

	if r.byteOffset*8+r.bitOffset+numBits > r.maxBytes*8 {
		return 0, errors.WithFields(
			errors.WithStack(ErrBufferUnderrun),
			errors.Fields{"num-bits": numBits, "bytes-left": r.BytesLeft()})
	}

	v := trailingBits(r.bufferedValues, r.bitOffset+numBits) >> uint(r.bitOffset)
	r.bitOffset += numBits

	if r.bitOffset >= 64 {
		r.byteOffset += 8
		r.bitOffset -= 64
		r.bufferedValues = r.loadWord(r.byteOffset)
		v |= trailingBits(r.bufferedValues, r.bitOffset) << uint(numBits-r.bitOffset)
	}

	return v, nil
}

// GetBatch reads up to len(out) values of numBits bits each into out,
// stopping early if the stream runs out, and returns the number
// actually read. A bit-width dispatched bulk path would unpack whole
// groups at once; this reader takes the always-correct per-value path
// and relies on GetBits' single bounds check per value instead, see
// DESIGN.md for the tradeoff.
func (r *Reader) GetBatch(numBits int, out []int32) (int, error) {
	for i := range out {
		v, err := r.GetBits(numBits)
		if err != nil {
			return i, err
		}

		out[i] = int32(v)
	}

	return len(out), nil
}

// GetAligned skips to the next byte boundary, then reads nbytes
// little-endian bytes into a uint64. nbytes must be in [1, 8].
func (r *Reader) GetAligned(nbytes int) (uint64, error) {
	bytesRead := bytesForBits(r.bitOffset)

	if r.byteOffset+bytesRead+nbytes > r.maxBytes {
		return 0, errors.WithFields(
			errors.WithStack(ErrBufferUnderrun),
			errors.Fields{"num-bytes": nbytes})
	}

	r.byteOffset += bytesRead

	var tmp [8]byte
	copy(tmp[:], r.buf[r.byteOffset:r.byteOffset+nbytes])

	v := binary.LittleEndian.Uint64(tmp[:])

	r.byteOffset += nbytes
	r.bitOffset = 0
	r.bufferedValues = r.loadWord(r.byteOffset)

	return v, nil
}

// GetAlignedBytes skips to the next byte boundary, then copies n raw
// bytes out of the stream. Unlike GetAligned it is not limited to 8
// bytes, for reading bit-packed run payloads at widths above 8.
func (r *Reader) GetAlignedBytes(n int) ([]byte, error) {
	bytesRead := bytesForBits(r.bitOffset)

	if r.byteOffset+bytesRead+n > r.maxBytes {
		return nil, errors.WithFields(
			errors.WithStack(ErrBufferUnderrun),
			errors.Fields{"num-bytes": n})
	}

	r.byteOffset += bytesRead

	out := make([]byte, n)
	copy(out, r.buf[r.byteOffset:r.byteOffset+n])

	r.byteOffset += n
	r.bitOffset = 0
	r.bufferedValues = r.loadWord(r.byteOffset)

	return out, nil
}

// GetVlq reads an unsigned variable-length quantity. It fails if more
// than 5 bytes are consumed without finding a terminating byte.
func (r *Reader) GetVlq() (uint32, error) {
	var v uint32

	for i := 0; i < maxVlqBytes; i++ {
		b, err := r.GetAligned(1)
		if err != nil {
			return 0, err
		}

		v |= uint32(b&0x7F) << uint(7*i)

		if b&0x80 == 0 {
			return v, nil
		}
	}

	return 0, errors.WithStack(ErrVlqTooLong)
}

// GetZigzagVlq reads a VLQ then undoes the zigzag mapping.
func (r *Reader) GetZigzagVlq() (int32, error) {
	u, err := r.GetVlq()
	if err != nil {
		return 0, err
	}

	return int32(u>>1) ^ -int32(u&1), nil
}

// GetVlq64 reads an unsigned 64-bit variable-length quantity. It fails
// if more than 10 bytes are consumed without finding a terminating
// byte.
func (r *Reader) GetVlq64() (uint64, error) {
	var v uint64

	for i := 0; i < maxVlqBytes64; i++ {
		b, err := r.GetAligned(1)
		if err != nil {
			return 0, err
		}

		v |= (b & 0x7F) << uint(7*i)

		if b&0x80 == 0 {
			return v, nil
		}
	}

	return 0, errors.WithStack(ErrVlq64TooLong)
}

// GetZigzagVlq64 reads a 64-bit VLQ then undoes the zigzag mapping.
func (r *Reader) GetZigzagVlq64() (int64, error) {
	u, err := r.GetVlq64()
	if err != nil {
		return 0, err
	}

	return int64(u>>1) ^ -int64(u&1), nil
}
