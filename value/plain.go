package value

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/hexbee-net/errors"
)

const ErrNegativeByteArrayLength = errors.Error("value: byte array length prefix is negative")

// Boolean /////////////////////////////////////////////////////////////////

// BooleanPlainEncoder packs one bit per value, LSB-first, padding the
// final byte with zero bits.
type BooleanPlainEncoder struct {
	writer io.Writer
	cur    byte
	nbits  int
}

func (e *BooleanPlainEncoder) Init(writer io.Writer) error {
	e.writer = writer
	e.cur = 0
	e.nbits = 0

	return nil
}

func (e *BooleanPlainEncoder) EncodeValues(values []interface{}) error {
	for i := range values {
		if values[i].(bool) {
			e.cur |= 1 << uint(e.nbits)
		}

		e.nbits++

		if e.nbits == 8 {
			if err := writeFull(e.writer, []byte{e.cur}); err != nil {
				return err
			}

			e.cur = 0
			e.nbits = 0
		}
	}

	return nil
}

func (e *BooleanPlainEncoder) Close() error {
	if e.nbits == 0 {
		return nil
	}

	err := writeFull(e.writer, []byte{e.cur})
	e.cur, e.nbits = 0, 0

	return err
}

// BooleanPlainDecoder is the inverse of BooleanPlainEncoder.
type BooleanPlainDecoder struct {
	reader io.Reader
	cur    byte
	nbits  int
}

func (d *BooleanPlainDecoder) Init(reader io.Reader) error {
	d.reader = reader
	d.nbits = 0

	return nil
}

func (d *BooleanPlainDecoder) DecodeValues(dest []interface{}) (int, error) {
	buf := make([]byte, 1)

	for i := range dest {
		if d.nbits == 0 {
			if _, err := io.ReadFull(d.reader, buf); err != nil {
				return i, err
			}

			d.cur = buf[0]
			d.nbits = 8
		}

		dest[i] = d.cur&1 == 1
		d.cur >>= 1
		d.nbits--
	}

	return len(dest), nil
}

// Int32 ///////////////////////////////////////////////////////////////////

type Int32PlainEncoder struct {
	writer   io.Writer
	Unsigned bool
}

func (e *Int32PlainEncoder) Init(writer io.Writer) error {
	e.writer = writer

	return nil
}

func (e *Int32PlainEncoder) EncodeValues(values []interface{}) error {
	d := make([]int32, len(values))

	for i := range values {
		if e.Unsigned {
			d[i] = int32(values[i].(uint32))
		} else {
			d[i] = values[i].(int32)
		}
	}

	return binary.Write(e.writer, binary.LittleEndian, d)
}

func (e *Int32PlainEncoder) Close() error { return nil }

type Int32PlainDecoder struct {
	reader   io.Reader
	Unsigned bool
}

func (d *Int32PlainDecoder) Init(reader io.Reader) error {
	d.reader = reader

	return nil
}

func (d *Int32PlainDecoder) DecodeValues(dest []interface{}) (int, error) {
	var n int32

	for count := range dest {
		if err := binary.Read(d.reader, binary.LittleEndian, &n); err != nil {
			return count, err
		}

		if d.Unsigned {
			dest[count] = uint32(n)
		} else {
			dest[count] = n
		}
	}

	return len(dest), nil
}

// Int64 ///////////////////////////////////////////////////////////////////

type Int64PlainEncoder struct {
	writer   io.Writer
	Unsigned bool
}

func (e *Int64PlainEncoder) Init(writer io.Writer) error {
	e.writer = writer

	return nil
}

func (e *Int64PlainEncoder) EncodeValues(values []interface{}) error {
	d := make([]int64, len(values))

	for i := range values {
		if e.Unsigned {
			d[i] = int64(values[i].(uint64))
		} else {
			d[i] = values[i].(int64)
		}
	}

	return binary.Write(e.writer, binary.LittleEndian, d)
}

func (e *Int64PlainEncoder) Close() error { return nil }

type Int64PlainDecoder struct {
	reader   io.Reader
	Unsigned bool
}

func (d *Int64PlainDecoder) Init(reader io.Reader) error {
	d.reader = reader

	return nil
}

func (d *Int64PlainDecoder) DecodeValues(dest []interface{}) (int, error) {
	var n int64

	for count := range dest {
		if err := binary.Read(d.reader, binary.LittleEndian, &n); err != nil {
			return count, err
		}

		if d.Unsigned {
			dest[count] = uint64(n)
		} else {
			dest[count] = n
		}
	}

	return len(dest), nil
}

// Int96 ///////////////////////////////////////////////////////////////////

const sizeInt96 = 12

// Int96PlainEncoder writes the 12-byte value opaquely; this package
// never interprets its bytes as a timestamp or any other logical type.
type Int96PlainEncoder struct {
	writer io.Writer
}

func (e *Int96PlainEncoder) Init(writer io.Writer) error {
	e.writer = writer

	return nil
}

func (e *Int96PlainEncoder) EncodeValues(values []interface{}) error {
	data := make([]byte, len(values)*sizeInt96)

	for j := range values {
		v := values[j].([sizeInt96]byte)
		copy(data[j*sizeInt96:], v[:])
	}

	return writeFull(e.writer, data)
}

func (e *Int96PlainEncoder) Close() error { return nil }

type Int96PlainDecoder struct {
	reader io.Reader
}

func (d *Int96PlainDecoder) Init(reader io.Reader) error {
	d.reader = reader

	return nil
}

func (d *Int96PlainDecoder) DecodeValues(dest []interface{}) (int, error) {
	for i := range dest {
		var data [sizeInt96]byte

		if _, err := io.ReadFull(d.reader, data[:]); err != nil {
			return i, err
		}

		dest[i] = data
	}

	return len(dest), nil
}

// Float ///////////////////////////////////////////////////////////////////

type FloatPlainEncoder struct {
	writer io.Writer
}

func (e *FloatPlainEncoder) Init(writer io.Writer) error {
	if writer == nil {
		return errors.WithStack(ErrNilWriter)
	}

	e.writer = writer

	return nil
}

func (e *FloatPlainEncoder) EncodeValues(values []interface{}) error {
	data := make([]uint32, len(values))
	for i := range values {
		data[i] = math.Float32bits(values[i].(float32))
	}

	return binary.Write(e.writer, binary.LittleEndian, data)
}

func (e *FloatPlainEncoder) Close() error { return nil }

type FloatPlainDecoder struct {
	reader io.Reader
}

func (d *FloatPlainDecoder) Init(reader io.Reader) error {
	if reader == nil {
		return errors.WithStack(ErrNilReader)
	}

	d.reader = reader

	return nil
}

func (d *FloatPlainDecoder) DecodeValues(dest []interface{}) (int, error) {
	var data uint32

	for i := range dest {
		if err := binary.Read(d.reader, binary.LittleEndian, &data); err != nil {
			return i, errors.Wrap(err, "failed to read values data")
		}

		dest[i] = math.Float32frombits(data)
	}

	return len(dest), nil
}

// Double //////////////////////////////////////////////////////////////////

type DoublePlainEncoder struct {
	writer io.Writer
}

func (e *DoublePlainEncoder) Init(writer io.Writer) error {
	if writer == nil {
		return errors.WithStack(ErrNilWriter)
	}

	e.writer = writer

	return nil
}

func (e *DoublePlainEncoder) EncodeValues(values []interface{}) error {
	data := make([]uint64, len(values))
	for i := range values {
		data[i] = math.Float64bits(values[i].(float64))
	}

	return binary.Write(e.writer, binary.LittleEndian, data)
}

func (e *DoublePlainEncoder) Close() error { return nil }

type DoublePlainDecoder struct {
	reader io.Reader
}

func (d *DoublePlainDecoder) Init(reader io.Reader) error {
	if reader == nil {
		return errors.WithStack(ErrNilReader)
	}

	d.reader = reader

	return nil
}

func (d *DoublePlainDecoder) DecodeValues(dest []interface{}) (int, error) {
	var data uint64

	for i := range dest {
		if err := binary.Read(d.reader, binary.LittleEndian, &data); err != nil {
			return i, errors.Wrap(err, "failed to read values data")
		}

		dest[i] = math.Float64frombits(data)
	}

	return len(dest), nil
}

// ByteArray ///////////////////////////////////////////////////////////////

// ByteArrayPlainEncoder writes a u32 LE length then the bytes. When
// Length is non-zero it instead checks each value matches that fixed
// length and omits the length prefix (FIXED_LEN_BYTE_ARRAY).
type ByteArrayPlainEncoder struct {
	writer io.Writer
	Length int
}

func (e *ByteArrayPlainEncoder) Init(writer io.Writer) error {
	e.writer = writer

	return nil
}

func (e *ByteArrayPlainEncoder) EncodeValues(values []interface{}) error {
	for i := range values {
		if err := e.writeBytes(values[i].([]byte)); err != nil {
			return err
		}
	}

	return nil
}

func (e *ByteArrayPlainEncoder) Close() error { return nil }

func (e *ByteArrayPlainEncoder) writeBytes(data []byte) error {
	if e.Length == 0 {
		l32 := int32(len(data))
		if err := binary.Write(e.writer, binary.LittleEndian, l32); err != nil {
			return err
		}
	} else if len(data) != e.Length {
		return errors.WithFields(
			errors.WithStack(ErrFixedLengthMismatch),
			errors.Fields{"expected": e.Length, "actual": len(data)})
	}

	return writeFull(e.writer, data)
}

type ByteArrayPlainDecoder struct {
	reader io.Reader
	Length int
}

func (d *ByteArrayPlainDecoder) Init(reader io.Reader) error {
	d.reader = reader

	return nil
}

func (d *ByteArrayPlainDecoder) DecodeValues(dest []interface{}) (int, error) {
	for i := range dest {
		v, err := d.next()
		if err != nil {
			return i, err
		}

		dest[i] = v
	}

	return len(dest), nil
}

func (d *ByteArrayPlainDecoder) next() ([]byte, error) {
	l := int32(d.Length)

	if l == 0 {
		if err := binary.Read(d.reader, binary.LittleEndian, &l); err != nil {
			return nil, err
		}
	}

	if l < 0 {
		return nil, errors.WithFields(errors.WithStack(ErrNegativeByteArrayLength), errors.Fields{"length": l})
	}

	data := make([]byte, l)
	if _, err := io.ReadFull(d.reader, data); err != nil {
		return nil, err
	}

	return data, nil
}
