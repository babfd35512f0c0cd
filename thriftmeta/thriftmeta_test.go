package thriftmeta

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scylladb/parquet4seastar-go/schema"
	"github.com/scylladb/parquet4seastar-go/value"
)

func i32(v int32) *int32 { return &v }

func TestSchema_RoundTrip(t *testing.T) {
	pt32 := value.Int32
	ptBA := value.ByteArray
	ct := schema.ConvertedList

	elements := []schema.Element{
		{
			Name:        "schema",
			NumChildren: i32(2),
			Repetition:  schema.Required,
		},
		{
			Name:       "id",
			Repetition: schema.Required,
			Type:       &pt32,
			FieldID:    i32(1),
		},
		{
			Name:          "tags",
			NumChildren:   i32(1),
			Repetition:    schema.Optional,
			ConvertedType: &ct,
		},
		{
			Name:       "tag",
			Repetition: schema.Optional,
			Type:       &ptBA,
			LogicalType: &schema.LogicalType{Name: "UTF8"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, EncodeSchema(&buf, elements))

	decoded, err := DecodeSchema(&buf)
	require.NoError(t, err)
	require.Len(t, decoded, len(elements))

	for i := range elements {
		want := elements[i]
		got := decoded[i]

		assert.Equal(t, want.Name, got.Name)
		assert.Equal(t, want.Repetition, got.Repetition)

		if want.Type != nil {
			require.NotNil(t, got.Type)
			assert.Equal(t, *want.Type, *got.Type)
		} else {
			assert.Nil(t, got.Type)
		}

		if want.NumChildren != nil {
			require.NotNil(t, got.NumChildren)
			assert.Equal(t, *want.NumChildren, *got.NumChildren)
		}

		if want.ConvertedType != nil {
			require.NotNil(t, got.ConvertedType)
			assert.Equal(t, *want.ConvertedType, *got.ConvertedType)
		}

		if want.FieldID != nil {
			require.NotNil(t, got.FieldID)
			assert.Equal(t, *want.FieldID, *got.FieldID)
		}

		if want.LogicalType != nil {
			require.NotNil(t, got.LogicalType)
			assert.Equal(t, want.LogicalType.Name, got.LogicalType.Name)
		}
	}
}

func TestSchema_EmptyList(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeSchema(&buf, nil))

	decoded, err := DecodeSchema(&buf)
	require.NoError(t, err)
	assert.Empty(t, decoded)
}

func TestPageHeader_RoundTrip(t *testing.T) {
	crc := int32(123456)
	h := &PageHeader{
		Type:             DataPageV1,
		UncompressedSize: 4096,
		CompressedSize:   2048,
		CRC:              &crc,
		NumValues:        1000,
	}

	var buf bytes.Buffer
	require.NoError(t, EncodePageHeader(&buf, h))

	got, err := DecodePageHeader(&buf)
	require.NoError(t, err)
	assert.Equal(t, h.Type, got.Type)
	assert.Equal(t, h.UncompressedSize, got.UncompressedSize)
	assert.Equal(t, h.CompressedSize, got.CompressedSize)
	require.NotNil(t, got.CRC)
	assert.Equal(t, *h.CRC, *got.CRC)
	assert.Equal(t, h.NumValues, got.NumValues)
}

func TestPageHeader_RoundTrip_NoCRC(t *testing.T) {
	h := &PageHeader{
		Type:             DictionaryPage,
		UncompressedSize: 64,
		CompressedSize:   64,
		NumValues:        10,
	}

	var buf bytes.Buffer
	require.NoError(t, EncodePageHeader(&buf, h))

	got, err := DecodePageHeader(&buf)
	require.NoError(t, err)
	assert.Equal(t, h.Type, got.Type)
	assert.Nil(t, got.CRC)
}

func TestSchema_FixedLenByteArrayKeepsTypeLength(t *testing.T) {
	pt := value.FixedLenByteArray

	elements := []schema.Element{
		{
			Name:       "hash",
			Repetition: schema.Required,
			Type:       &pt,
			TypeLength: i32(16),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, EncodeSchema(&buf, elements))

	decoded, err := DecodeSchema(&buf)
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	require.NotNil(t, decoded[0].TypeLength)
	assert.Equal(t, int32(16), *decoded[0].TypeLength)
}
