// Package thriftmeta serializes the flat schema.Element list with the
// Thrift Compact Protocol, the wire format Parquet file metadata uses.
// It talks to the protocol directly field by field rather than through
// Thrift-generated struct bindings: this module's schema.Element is a
// deliberately small stand-in for the real (much larger) Parquet
// SchemaElement, so there is no generated code to drive.
package thriftmeta

import (
	"io"

	"github.com/apache/thrift/lib/go/thrift"
	"github.com/hexbee-net/errors"
	"github.com/scylladb/parquet4seastar-go/schema"
	"github.com/scylladb/parquet4seastar-go/value"
)

const (
	ErrUnexpectedFieldType = errors.Error("thriftmeta: field has an unexpected thrift type")
)

// Field IDs match parquet.thrift's SchemaElement.
const (
	idType           = 1
	idTypeLength     = 2
	idRepetitionType = 3
	idName           = 4
	idNumChildren    = 5
	idConvertedType  = 6
	idFieldID        = 9
	idLogicalType    = 10
)

func newProtocol(r io.Reader, w io.Writer) thrift.TProtocol {
	transport := &thrift.StreamTransport{Reader: r, Writer: w}

	return thrift.NewTCompactProtocol(transport)
}

// EncodeSchema writes elements to w as a Thrift Compact Protocol list
// of structs, in the order they appear (document order, root first).
func EncodeSchema(w io.Writer, elements []schema.Element) error {
	proto := newProtocol(nil, w)

	if err := proto.WriteListBegin(thrift.STRUCT, len(elements)); err != nil {
		return err
	}

	for i := range elements {
		if err := writeElement(proto, &elements[i]); err != nil {
			return err
		}
	}

	return proto.WriteListEnd()
}

func writeElement(proto thrift.TProtocol, e *schema.Element) error {
	if err := proto.WriteStructBegin("SchemaElement"); err != nil {
		return err
	}

	if e.Type != nil {
		if err := writeI32Field(proto, idType, int32(physicalTypeID(*e.Type))); err != nil {
			return err
		}
	}

	if e.TypeLength != nil {
		if err := writeI32Field(proto, idTypeLength, *e.TypeLength); err != nil {
			return err
		}
	}

	if err := writeI32Field(proto, idRepetitionType, int32(e.Repetition)); err != nil {
		return err
	}

	if err := proto.WriteFieldBegin("name", thrift.STRING, idName); err != nil {
		return err
	}

	if err := proto.WriteString(e.Name); err != nil {
		return err
	}

	if err := proto.WriteFieldEnd(); err != nil {
		return err
	}

	if e.NumChildren != nil {
		if err := writeI32Field(proto, idNumChildren, *e.NumChildren); err != nil {
			return err
		}
	}

	if e.ConvertedType != nil {
		if err := writeI32Field(proto, idConvertedType, int32(*e.ConvertedType)); err != nil {
			return err
		}
	}

	if e.FieldID != nil {
		if err := writeI32Field(proto, idFieldID, *e.FieldID); err != nil {
			return err
		}
	}

	if e.LogicalType != nil {
		if err := proto.WriteFieldBegin("logicalType", thrift.STRING, idLogicalType); err != nil {
			return err
		}

		if err := proto.WriteString(e.LogicalType.Name); err != nil {
			return err
		}

		if err := proto.WriteFieldEnd(); err != nil {
			return err
		}
	}

	if err := proto.WriteFieldStop(); err != nil {
		return err
	}

	return proto.WriteStructEnd()
}

func writeI32Field(proto thrift.TProtocol, id int16, v int32) error {
	if err := proto.WriteFieldBegin("", thrift.I32, id); err != nil {
		return err
	}

	if err := proto.WriteI32(v); err != nil {
		return err
	}

	return proto.WriteFieldEnd()
}

// DecodeSchema reads back a schema.Element list written by
// EncodeSchema.
func DecodeSchema(r io.Reader) ([]schema.Element, error) {
	proto := newProtocol(r, nil)

	elemType, size, err := proto.ReadListBegin()
	if err != nil {
		return nil, err
	}

	if elemType != thrift.STRUCT {
		return nil, errors.WithStack(ErrUnexpectedFieldType)
	}

	elements := make([]schema.Element, size)

	for i := 0; i < size; i++ {
		e, err := readElement(proto)
		if err != nil {
			return nil, err
		}

		elements[i] = e
	}

	return elements, proto.ReadListEnd()
}

func readElement(proto thrift.TProtocol) (schema.Element, error) {
	var e schema.Element

	if _, err := proto.ReadStructBegin(); err != nil {
		return e, err
	}

	for {
		_, fieldType, id, err := proto.ReadFieldBegin()
		if err != nil {
			return e, err
		}

		if fieldType == thrift.STOP {
			break
		}

		if err := readField(proto, &e, fieldType, id); err != nil {
			return e, err
		}

		if err := proto.ReadFieldEnd(); err != nil {
			return e, err
		}
	}

	return e, proto.ReadStructEnd()
}

func readField(proto thrift.TProtocol, e *schema.Element, wireType thrift.TType, id int16) error {
	switch id {
	case idType:
		v, err := proto.ReadI32()
		if err != nil {
			return err
		}

		pt := physicalTypeFromID(v)
		e.Type = &pt

	case idTypeLength:
		v, err := proto.ReadI32()
		if err != nil {
			return err
		}

		e.TypeLength = &v

	case idRepetitionType:
		v, err := proto.ReadI32()
		if err != nil {
			return err
		}

		e.Repetition = schema.Repetition(v)

	case idName:
		v, err := proto.ReadString()
		if err != nil {
			return err
		}

		e.Name = v

	case idNumChildren:
		v, err := proto.ReadI32()
		if err != nil {
			return err
		}

		e.NumChildren = &v

	case idConvertedType:
		v, err := proto.ReadI32()
		if err != nil {
			return err
		}

		ct := schema.ConvertedType(v)
		e.ConvertedType = &ct

	case idFieldID:
		v, err := proto.ReadI32()
		if err != nil {
			return err
		}

		e.FieldID = &v

	case idLogicalType:
		v, err := proto.ReadString()
		if err != nil {
			return err
		}

		e.LogicalType = &schema.LogicalType{Name: v}

	default:
		return thrift.SkipDefaultDepth(proto, wireType)
	}

	return nil
}

// physicalTypeID/physicalTypeFromID map this module's PhysicalType
// enum to parquet.thrift's Type enum values.
func physicalTypeID(pt value.PhysicalType) int32 {
	switch pt {
	case value.Boolean:
		return 0
	case value.Int32:
		return 1
	case value.Int64:
		return 2
	case value.Int96:
		return 3
	case value.Float:
		return 4
	case value.Double:
		return 5
	case value.ByteArray:
		return 6
	case value.FixedLenByteArray:
		return 7
	default:
		return -1
	}
}

func physicalTypeFromID(id int32) value.PhysicalType {
	switch id {
	case 0:
		return value.Boolean
	case 1:
		return value.Int32
	case 2:
		return value.Int64
	case 3:
		return value.Int96
	case 4:
		return value.Float
	case 5:
		return value.Double
	case 6:
		return value.ByteArray
	case 7:
		return value.FixedLenByteArray
	default:
		return value.Boolean
	}
}

// PageType mirrors the subset of parquet.thrift's PageType enum this
// module produces pages for.
type PageType int32

const (
	DataPageV1 PageType = iota
	DictionaryPage
)

// PageHeader is this module's stand-in for the Thrift-generated
// parquet.PageHeader: just enough fields to round-trip a page written
// by the codec core through compress.
type PageHeader struct {
	Type             PageType
	UncompressedSize int32
	CompressedSize   int32
	CRC              *int32
	NumValues        int32
}

const (
	idPHType             = 1
	idPHUncompressedSize = 2
	idPHCompressedSize   = 3
	idPHCRC              = 4
	idPHNumValues        = 5
)

// EncodePageHeader writes a single PageHeader struct to w.
func EncodePageHeader(w io.Writer, h *PageHeader) error {
	proto := newProtocol(nil, w)

	if err := proto.WriteStructBegin("PageHeader"); err != nil {
		return err
	}

	if err := writeI32Field(proto, idPHType, int32(h.Type)); err != nil {
		return err
	}

	if err := writeI32Field(proto, idPHUncompressedSize, h.UncompressedSize); err != nil {
		return err
	}

	if err := writeI32Field(proto, idPHCompressedSize, h.CompressedSize); err != nil {
		return err
	}

	if h.CRC != nil {
		if err := writeI32Field(proto, idPHCRC, *h.CRC); err != nil {
			return err
		}
	}

	if err := writeI32Field(proto, idPHNumValues, h.NumValues); err != nil {
		return err
	}

	if err := proto.WriteFieldStop(); err != nil {
		return err
	}

	return proto.WriteStructEnd()
}

// DecodePageHeader reads back a PageHeader written by
// EncodePageHeader.
func DecodePageHeader(r io.Reader) (*PageHeader, error) {
	proto := newProtocol(r, nil)

	if _, err := proto.ReadStructBegin(); err != nil {
		return nil, err
	}

	h := &PageHeader{}

	for {
		_, wireType, id, err := proto.ReadFieldBegin()
		if err != nil {
			return nil, err
		}

		if wireType == thrift.STOP {
			break
		}

		switch id {
		case idPHType:
			v, err := proto.ReadI32()
			if err != nil {
				return nil, err
			}

			h.Type = PageType(v)

		case idPHUncompressedSize:
			v, err := proto.ReadI32()
			if err != nil {
				return nil, err
			}

			h.UncompressedSize = v

		case idPHCompressedSize:
			v, err := proto.ReadI32()
			if err != nil {
				return nil, err
			}

			h.CompressedSize = v

		case idPHCRC:
			v, err := proto.ReadI32()
			if err != nil {
				return nil, err
			}

			h.CRC = &v

		case idPHNumValues:
			v, err := proto.ReadI32()
			if err != nil {
				return nil, err
			}

			h.NumValues = v

		default:
			if err := thrift.SkipDefaultDepth(proto, wireType); err != nil {
				return nil, err
			}
		}

		if err := proto.ReadFieldEnd(); err != nil {
			return nil, err
		}
	}

	return h, proto.ReadStructEnd()
}
