package rle

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncoder_RLERun(t *testing.T) {
	// S4: [3]*10 at width 2 -> header 0x14, value byte 0x03.
	e := NewEncoder(2)
	require.NoError(t, e.AppendValues(repeat(3, 10)))

	var buf bytes.Buffer
	require.NoError(t, e.Close(&buf))

	assert.Equal(t, []byte{0x14, 0x03}, buf.Bytes())
}

func TestEncoder_BitPackedRun(t *testing.T) {
	// S5: [0..7] at width 3 -> header 0x03, payload bytes 88 C6 FA.
	e := NewEncoder(3)
	require.NoError(t, e.AppendValues([]int32{0, 1, 2, 3, 4, 5, 6, 7}))

	var buf bytes.Buffer
	require.NoError(t, e.Close(&buf))

	assert.Equal(t, []byte{0x03, 0x88, 0xC6, 0xFA}, buf.Bytes())
}

func TestEncoder_RejectsOutOfRangeValue(t *testing.T) {
	e := NewEncoder(2)
	err := e.AppendValues([]int32{4})
	assert.Error(t, err)
}

func TestEncoder_ZeroWidthWritesNothing(t *testing.T) {
	e := NewEncoder(0)
	require.NoError(t, e.AppendValues([]int32{0, 0, 0}))

	var buf bytes.Buffer
	require.NoError(t, e.Close(&buf))

	assert.Empty(t, buf.Bytes())
}

func TestHybrid_RoundTrip(t *testing.T) {
	cases := []struct {
		name     string
		bitWidth int
		values   []int32
	}{
		{"all rle", 2, repeat(1, 20)},
		{"all bit-packed", 5, sequence(0, 31, 17)},
		{"mixed", 4, concat(repeat(9, 12), sequence(0, 15, 5), repeat(2, 9), sequence(0, 15, 3))},
		{"short run stays packed", 3, concat(sequence(0, 7, 3), repeat(5, 3), sequence(0, 7, 2))},
		{"single value", 1, []int32{1}},
		{"max width", 32, []int32{0, -1, -1, -1, -1, -1, -1, -1, -1, 1}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			e := NewEncoder(c.bitWidth)
			require.NoError(t, e.AppendValues(c.values))

			var buf bytes.Buffer
			require.NoError(t, e.Close(&buf))

			d := NewDecoder(0)
			d.Init(c.bitWidth, buf.Bytes())

			got := make([]int32, len(c.values))
			n, err := d.NextBatch(got)
			require.NoError(t, err)
			assert.Equal(t, len(c.values), n)
			assert.Equal(t, c.values, got)
		})
	}
}

func TestDecoder_ZeroWidthAlwaysZero(t *testing.T) {
	d := NewDecoder(0)
	d.Init(0, nil)

	for i := 0; i < 5; i++ {
		v, err := d.Next()
		require.NoError(t, err)
		assert.Equal(t, int32(0), v)
	}
}

func TestDecoder_MalformedHeaderZeroRunLength(t *testing.T) {
	d := NewDecoder(0)
	d.Init(3, []byte{0x00})

	_, err := d.Next()
	assert.Error(t, err)
}

func TestBitWidth(t *testing.T) {
	assert.Equal(t, 0, BitWidth(0))
	assert.Equal(t, 1, BitWidth(1))
	assert.Equal(t, 2, BitWidth(2))
	assert.Equal(t, 2, BitWidth(3))
	assert.Equal(t, 3, BitWidth(4))
	assert.Equal(t, 8, BitWidth(255))
	assert.Equal(t, 9, BitWidth(256))
}

func TestDictionaryIndexWidth(t *testing.T) {
	assert.Equal(t, 1, DictionaryIndexWidth(1))
	assert.Equal(t, 1, DictionaryIndexWidth(2))
	assert.Equal(t, 2, DictionaryIndexWidth(3))
	assert.Equal(t, 2, DictionaryIndexWidth(4))
	assert.Equal(t, 8, DictionaryIndexWidth(256))
}

func repeat(v int32, n int) []int32 {
	out := make([]int32, n)
	for i := range out {
		out[i] = v
	}

	return out
}

func sequence(lo, hi int32, times int) []int32 {
	var out []int32
	for i := 0; i < times; i++ {
		for v := lo; v <= hi; v++ {
			out = append(out, v)
		}
	}

	return out
}

func concat(parts ...[]int32) []int32 {
	var out []int32
	for _, p := range parts {
		out = append(out, p...)
	}

	return out
}
