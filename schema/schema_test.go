package schema

import (
	"testing"

	"github.com/scylladb/parquet4seastar-go/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func primitive(name string, optional bool, pt value.PhysicalType) *Node {
	return &Node{
		Kind:     KindPrimitive,
		Name:     name,
		Optional: optional,
		Primitive: &PrimitiveNode{
			PhysicalType: pt,
			Encoding:     value.Plain,
		},
	}
}

func TestFlatten_RequiredPrimitive(t *testing.T) {
	s := &Schema{Nodes: []*Node{primitive("id", false, value.Int64)}}

	_, leaves, err := Flatten(s)
	require.NoError(t, err)
	require.Len(t, leaves, 1)

	assert.Equal(t, []string{"id"}, leaves[0].Path)
	assert.Equal(t, 0, leaves[0].MaxRepLevel)
	assert.Equal(t, 0, leaves[0].MaxDefLevel)
}

func TestFlatten_OptionalPrimitive(t *testing.T) {
	s := &Schema{Nodes: []*Node{primitive("name", true, value.ByteArray)}}

	_, leaves, err := Flatten(s)
	require.NoError(t, err)
	require.Len(t, leaves, 1)

	assert.Equal(t, 0, leaves[0].MaxRepLevel)
	assert.Equal(t, 1, leaves[0].MaxDefLevel)
}

func TestFlatten_Struct(t *testing.T) {
	s := &Schema{Nodes: []*Node{
		{
			Kind:     KindStruct,
			Name:     "address",
			Optional: true,
			Struct: &StructNode{
				Fields: []*Node{
					primitive("city", false, value.ByteArray),
					primitive("zip", true, value.ByteArray),
				},
			},
		},
	}}

	elements, leaves, err := Flatten(s)
	require.NoError(t, err)
	require.Len(t, leaves, 2)

	assert.Equal(t, []string{"address", "city"}, leaves[0].Path)
	assert.Equal(t, 0, leaves[0].MaxRepLevel)
	assert.Equal(t, 1, leaves[0].MaxDefLevel) // inherited from optional struct

	assert.Equal(t, []string{"address", "zip"}, leaves[1].Path)
	assert.Equal(t, 2, leaves[1].MaxDefLevel) // struct optional + field optional

	// schema root + struct group + 2 primitives
	assert.Len(t, elements, 4)
}

func TestFlatten_List(t *testing.T) {
	s := &Schema{Nodes: []*Node{
		{
			Kind: KindList,
			Name: "tags",
			List: &ListNode{
				Element: primitive("element", false, value.ByteArray),
			},
		},
	}}

	elements, leaves, err := Flatten(s)
	require.NoError(t, err)
	require.Len(t, leaves, 1)

	assert.Equal(t, []string{"tags", "list", "element"}, leaves[0].Path)
	assert.Equal(t, 1, leaves[0].MaxRepLevel)
	assert.Equal(t, 1, leaves[0].MaxDefLevel)

	// schema root + list group + inner "list" group + element
	assert.Len(t, elements, 4)
	assert.Equal(t, ConvertedList, *elements[1].ConvertedType)
}

func TestFlatten_Map(t *testing.T) {
	s := &Schema{Nodes: []*Node{
		{
			Kind: KindMap,
			Name: "attrs",
			Map: &MapNode{
				Key:   primitive("key", false, value.ByteArray),
				Value: primitive("value", true, value.Int32),
			},
		},
	}}

	elements, leaves, err := Flatten(s)
	require.NoError(t, err)
	require.Len(t, leaves, 2)

	assert.Equal(t, []string{"attrs", "key_value", "key"}, leaves[0].Path)
	assert.Equal(t, 1, leaves[0].MaxRepLevel)
	assert.Equal(t, 1, leaves[0].MaxDefLevel)

	assert.Equal(t, []string{"attrs", "key_value", "value"}, leaves[1].Path)
	assert.Equal(t, 2, leaves[1].MaxDefLevel)

	assert.Equal(t, ConvertedMap, *elements[1].ConvertedType)
}

func TestFlatten_RejectsOptionalMapKey(t *testing.T) {
	s := &Schema{Nodes: []*Node{
		{
			Kind: KindMap,
			Name: "attrs",
			Map: &MapNode{
				Key:   primitive("key", true, value.ByteArray),
				Value: primitive("value", false, value.Int32),
			},
		},
	}}

	_, _, err := Flatten(s)
	assert.Error(t, err)
}

func TestFlatten_RejectsMissingFixedLength(t *testing.T) {
	s := &Schema{Nodes: []*Node{primitive("hash", false, value.FixedLenByteArray)}}

	_, _, err := Flatten(s)
	assert.Error(t, err)
}

func TestFlatten_RejectsDuplicateFieldNames(t *testing.T) {
	s := &Schema{Nodes: []*Node{
		{
			Kind: KindStruct,
			Name: "s",
			Struct: &StructNode{
				Fields: []*Node{
					primitive("a", false, value.Int32),
					primitive("a", false, value.Int64),
				},
			},
		},
	}}

	_, _, err := Flatten(s)
	assert.Error(t, err)
}

func TestFlatten_NestedListOfStruct(t *testing.T) {
	s := &Schema{Nodes: []*Node{
		{
			Kind: KindList,
			Name: "events",
			List: &ListNode{
				Element: &Node{
					Kind: KindStruct,
					Name: "element",
					Struct: &StructNode{
						Fields: []*Node{
							primitive("ts", false, value.Int64),
						},
					},
				},
			},
		},
	}}

	_, leaves, err := Flatten(s)
	require.NoError(t, err)
	require.Len(t, leaves, 1)

	assert.Equal(t, []string{"events", "list", "element", "ts"}, leaves[0].Path)
	assert.Equal(t, 1, leaves[0].MaxRepLevel)
	assert.Equal(t, 1, leaves[0].MaxDefLevel)
}
