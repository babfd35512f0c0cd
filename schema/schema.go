// Package schema lowers a nested logical schema tree (structs, lists,
// maps, primitives) to the flat SchemaElement list Parquet metadata
// expects, and to the ordered leaf descriptors the value and level
// codecs need.
package schema

import (
	"github.com/hexbee-net/errors"
	"github.com/scylladb/parquet4seastar-go/value"
)

const (
	ErrMissingTypeLength = errors.Error("schema: FIXED_LEN_BYTE_ARRAY primitive is missing a type length")
	ErrDuplicateName     = errors.Error("schema: duplicate field name within a struct")
	ErrOptionalMapKey    = errors.Error("schema: map key must not be optional")
)

// ConvertedType mirrors the small subset of Parquet's converted-type
// enum the flattener itself emits.
type ConvertedType int

const (
	ConvertedNone ConvertedType = iota
	ConvertedList
	ConvertedMap
)

// Repetition is a flat element's repetition type.
type Repetition int

const (
	Required Repetition = iota
	Optional
	Repeated
)

// LogicalType is an opaque passthrough: the flattener does not
// interpret it, only carries it from a primitive node to its emitted
// leaf element.
type LogicalType struct {
	Name string
}

// Element is this module's stand-in for Parquet's Thrift-generated
// SchemaElement: it carries exactly the fields thriftmeta needs to
// serialize the flat schema list.
type Element struct {
	Name          string
	NumChildren   *int32
	Repetition    Repetition
	Type          *value.PhysicalType
	TypeLength    *int32
	ConvertedType *ConvertedType
	LogicalType   *LogicalType
	FieldID       *int32
}

// Leaf describes one flattened primitive column: its document-order
// path from the schema root, its level bounds, and its physical
// encoding choice.
type Leaf struct {
	Path         []string
	MaxRepLevel  int
	MaxDefLevel  int
	PhysicalType value.PhysicalType
	TypeLength   int
	Encoding     value.Encoding
	Compression  string
	LogicalType  *LogicalType
}

// Kind discriminates Node's sum type.
type Kind int

const (
	KindPrimitive Kind = iota
	KindList
	KindMap
	KindStruct
)

// Node is the input schema tree's sum type: exactly one of Primitive,
// List, Map, Struct is set, matching Kind.
type Node struct {
	Kind     Kind
	Name     string
	Optional bool

	Primitive *PrimitiveNode
	List      *ListNode
	Map       *MapNode
	Struct    *StructNode
}

type PrimitiveNode struct {
	PhysicalType value.PhysicalType
	Encoding     value.Encoding
	Compression  string
	TypeLength   int
	LogicalType  *LogicalType
}

type ListNode struct {
	Element *Node
}

type MapNode struct {
	Key   *Node
	Value *Node
}

type StructNode struct {
	Fields []*Node
}

// Schema is an ordered sequence of top-level nodes.
type Schema struct {
	Nodes []*Node
}

// Flatten lowers s to its flat element list and ordered leaf
// descriptors, in document order.
func Flatten(s *Schema) ([]Element, []Leaf, error) {
	f := &flattener{}

	root := int32(len(s.Nodes))

	f.elements = append(f.elements, Element{
		Name:        "schema",
		NumChildren: &root,
		Repetition:  Required,
	})

	for _, n := range s.Nodes {
		if err := f.visit(n, 0, 0, nil); err != nil {
			return nil, nil, err
		}
	}

	return f.elements, f.leaves, nil
}

type flattener struct {
	elements []Element
	leaves   []Leaf
}

func (f *flattener) visit(n *Node, repLevel, defLevel int, path []string) error {
	switch n.Kind {
	case KindStruct:
		return f.visitStruct(n, repLevel, defLevel, path)
	case KindList:
		return f.visitList(n, repLevel, defLevel, path)
	case KindMap:
		return f.visitMap(n, repLevel, defLevel, path)
	case KindPrimitive:
		return f.visitPrimitive(n, repLevel, defLevel, path)
	}

	return errors.New("schema: unknown node kind")
}

func repetitionOf(optional bool) Repetition {
	if optional {
		return Optional
	}

	return Required
}

func (f *flattener) visitStruct(n *Node, repLevel, defLevel int, path []string) error {
	if err := checkDuplicateNames(n.Struct.Fields); err != nil {
		return err
	}

	numChildren := int32(len(n.Struct.Fields))
	f.elements = append(f.elements, Element{
		Name:        n.Name,
		NumChildren: &numChildren,
		Repetition:  repetitionOf(n.Optional),
	})

	childDefLevel := defLevel
	if n.Optional {
		childDefLevel++
	}

	childPath := append(append([]string{}, path...), n.Name)

	for _, field := range n.Struct.Fields {
		if err := f.visit(field, repLevel, childDefLevel, childPath); err != nil {
			return err
		}
	}

	return nil
}

func checkDuplicateNames(fields []*Node) error {
	seen := make(map[string]struct{}, len(fields))

	for _, field := range fields {
		if _, ok := seen[field.Name]; ok {
			return errors.WithFields(
				errors.WithStack(ErrDuplicateName),
				errors.Fields{"name": field.Name})
		}

		seen[field.Name] = struct{}{}
	}

	return nil
}

func (f *flattener) visitList(n *Node, repLevel, defLevel int, path []string) error {
	one := int32(1)
	listConverted := ConvertedList

	f.elements = append(f.elements,
		Element{
			Name:          n.Name,
			NumChildren:   &one,
			Repetition:    repetitionOf(n.Optional),
			ConvertedType: &listConverted,
		},
		Element{
			Name:        "list",
			NumChildren: &one,
			Repetition:  Repeated,
		})

	childDefLevel := defLevel + 1
	if n.Optional {
		childDefLevel++
	}

	childPath := append(append([]string{}, path...), n.Name, "list")

	elem := *n.List.Element
	elem.Name = "element"

	return f.visit(&elem, repLevel+1, childDefLevel, childPath)
}

func (f *flattener) visitMap(n *Node, repLevel, defLevel int, path []string) error {
	if n.Map.Key.Optional {
		return errors.WithStack(ErrOptionalMapKey)
	}

	one := int32(1)
	two := int32(2)
	mapConverted := ConvertedMap

	f.elements = append(f.elements,
		Element{
			Name:          n.Name,
			NumChildren:   &one,
			Repetition:    repetitionOf(n.Optional),
			ConvertedType: &mapConverted,
		},
		Element{
			Name:        "key_value",
			NumChildren: &two,
			Repetition:  Repeated,
		})

	childDefLevel := defLevel + 1
	if n.Optional {
		childDefLevel++
	}

	childPath := append(append([]string{}, path...), n.Name, "key_value")

	key := *n.Map.Key
	key.Optional = false

	if err := f.visit(&key, repLevel+1, childDefLevel, childPath); err != nil {
		return err
	}

	return f.visit(n.Map.Value, repLevel+1, childDefLevel, childPath)
}

func (f *flattener) visitPrimitive(n *Node, repLevel, defLevel int, path []string) error {
	p := n.Primitive

	if p.PhysicalType == value.FixedLenByteArray && p.TypeLength == 0 {
		return errors.WithFields(
			errors.WithStack(ErrMissingTypeLength),
			errors.Fields{"name": n.Name})
	}

	pt := p.PhysicalType

	elem := Element{
		Name:        n.Name,
		Repetition:  repetitionOf(n.Optional),
		Type:        &pt,
		LogicalType: p.LogicalType,
	}

	if p.TypeLength != 0 {
		tl := int32(p.TypeLength)
		elem.TypeLength = &tl
	}

	f.elements = append(f.elements, elem)

	maxDefLevel := defLevel
	if n.Optional {
		maxDefLevel++
	}

	leafPath := append(append([]string{}, path...), n.Name)

	f.leaves = append(f.leaves, Leaf{
		Path:         leafPath,
		MaxRepLevel:  repLevel,
		MaxDefLevel:  maxDefLevel,
		PhysicalType: p.PhysicalType,
		TypeLength:   p.TypeLength,
		Encoding:     p.Encoding,
		Compression:  p.Compression,
		LogicalType:  p.LogicalType,
	})

	return nil
}
