package bitstream

import (
	"testing"

	"github.com/hexbee-net/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_PutBits_PackedByte(t *testing.T) {
	// S1: put_bits(5, 3); put_bits(7, 3); flush(false) -> one byte 0x3D.
	buf := make([]byte, 1)
	w := NewWriter(buf)

	require.NoError(t, w.PutBits(5, 3))
	require.NoError(t, w.PutBits(7, 3))
	w.Flush(false)

	assert.Equal(t, []byte{0x3D}, buf)
}

func TestWriter_PutBits_RejectsOutOfRangeValue(t *testing.T) {
	w := NewWriter(make([]byte, 4))
	err := w.PutBits(8, 3) // 8 does not fit in 3 bits
	assert.EqualError(t, errors.Cause(err), ErrValueOutOfRange.Error())
}

func TestWriter_PutBits_FailsWhenBufferFull(t *testing.T) {
	w := NewWriter(make([]byte, 1))
	require.NoError(t, w.PutBits(0xFF, 8))
	err := w.PutBits(1, 1)
	assert.EqualError(t, errors.Cause(err), ErrBufferFull.Error())
}

func TestBitStream_RoundTrip(t *testing.T) {
	type entry struct {
		v uint64
		n int
	}

	entries := []entry{
		{0, 1}, {1, 1}, {5, 3}, {7, 3}, {300, 9}, {1<<31 - 1, 31}, {0xFFFFFFFF, 32},
		{42, 7}, {0, 32}, {1, 32},
	}

	totalBits := 0
	for _, e := range entries {
		totalBits += e.n
	}

	buf := make([]byte, (totalBits+7)/8)
	w := NewWriter(buf)

	for _, e := range entries {
		require.NoError(t, w.PutBits(e.v, e.n))
	}

	w.Flush(true)
	assert.Equal(t, (totalBits+7)/8, w.BytesWritten())

	r := NewReader(buf)

	for _, e := range entries {
		v, err := r.GetBits(e.n)
		require.NoError(t, err)
		assert.Equal(t, e.v, v)
	}
}

func TestWriter_PutAligned(t *testing.T) {
	buf := make([]byte, 8)
	w := NewWriter(buf)

	require.NoError(t, w.PutBits(3, 3))
	require.NoError(t, w.PutAligned(uint64(0x1234), 2))

	r := NewReader(buf)

	v, err := r.GetBits(3)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), v)

	aligned, err := r.GetAligned(2)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x1234), aligned)
}

func TestVlq_RoundTrip(t *testing.T) {
	// S2: VLQ encode 300 -> bytes AC 02; decode back to 300.
	buf := make([]byte, 5)
	w := NewWriter(buf)
	require.NoError(t, w.PutVlq(300))
	assert.Equal(t, []byte{0xAC, 0x02}, buf[:2])

	r := NewReader(buf)
	v, err := r.GetVlq()
	require.NoError(t, err)
	assert.Equal(t, uint32(300), v)
}

func TestVlq_RoundTrip_FullRange(t *testing.T) {
	values := []uint32{0, 1, 127, 128, 16383, 16384, 1 << 28, 1<<32 - 1}

	for _, v := range values {
		buf := make([]byte, 5)
		w := NewWriter(buf)
		require.NoError(t, w.PutVlq(v))

		r := NewReader(buf)
		got, err := r.GetVlq()
		require.NoError(t, err)
		assert.Equal(t, v, got)
		assert.LessOrEqual(t, w.BytesWritten(), 5)
	}
}

func TestZigzagVlq(t *testing.T) {
	// S3: encode -1 -> one byte 0x01; encode 1 -> 0x02.
	cases := []struct {
		v    int32
		want byte
	}{
		{-1, 0x01},
		{1, 0x02},
		{0, 0x00},
	}

	for _, c := range cases {
		buf := make([]byte, 5)
		w := NewWriter(buf)
		require.NoError(t, w.PutZigzagVlq(c.v))
		assert.Equal(t, c.want, buf[0])

		r := NewReader(buf)
		got, err := r.GetZigzagVlq()
		require.NoError(t, err)
		assert.Equal(t, c.v, got)
	}
}

func TestZigzagVlq_Involution(t *testing.T) {
	for _, v := range []int32{0, 1, -1, 42, -42, 1 << 20, -(1 << 20), 1<<31 - 1, -(1 << 31)} {
		buf := make([]byte, 8)
		w := NewWriter(buf)
		require.NoError(t, w.PutZigzagVlq(v))

		r := NewReader(buf)
		got, err := r.GetZigzagVlq()
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestPack8_Unpack8_RoundTrip(t *testing.T) {
	for width := 1; width <= 32; width++ {
		var values [8]int32
		for i := range values {
			values[i] = int32(uint32(1<<uint(width)-1) & uint32(i*2654435761))
		}

		packed := Pack8(width, &values)
		assert.Len(t, packed, width)

		unpacked := Unpack8(width, packed)
		assert.Equal(t, values, unpacked)
	}
}

func TestPack8_WidthZero(t *testing.T) {
	var values [8]int32
	assert.Nil(t, Pack8(0, &values))
	assert.Equal(t, [8]int32{}, Unpack8(0, nil))
}
