// Package value implements Parquet's per-physical-type value codecs:
// PLAIN, RLE_DICTIONARY and DELTA_BINARY_PACKED, over typed Go value
// streams.
package value

import (
	"io"

	"github.com/hexbee-net/errors"
)

const (
	ErrNilWriter           = errors.Error("value: writer is nil")
	ErrNilReader           = errors.Error("value: reader is nil")
	ErrInvalidValueType    = errors.Error("value: value has unexpected Go type")
	ErrUnsupportedEncoding = errors.Error("value: encoding not supported for this physical type")
	ErrFixedLengthMismatch = errors.Error("value: byte array does not match the declared fixed length")
)

// PhysicalType is Parquet's closed physical type set.
type PhysicalType int

const (
	Boolean PhysicalType = iota
	Int32
	Int64
	Int96
	Float
	Double
	ByteArray
	FixedLenByteArray
)

// Encoding is Parquet's closed encoding set that this package covers.
type Encoding int

const (
	Plain Encoding = iota
	RLEDictionary
	DeltaBinaryPacked
)

// Encoder encodes a stream of typed Go values into an output page
// buffer. Values arrive boxed in interface{}, matching the Go type
// each physical type's codec expects (bool, int32, uint32, int64,
// uint64, [12]byte, float32, float64, []byte).
type Encoder interface {
	io.Closer

	Init(io.Writer) error
	EncodeValues(values []interface{}) error
}

// Decoder decodes a page's value bytes back into dest, returning the
// number of values actually read. A short read terminated by io.EOF is
// not itself an error; any other error is.
type Decoder interface {
	Init(io.Reader) error
	DecodeValues(dest []interface{}) (count int, err error)
}

// dictEncoder is implemented by encoders that accumulate a growing
// value dictionary rather than emitting bytes as values arrive.
type dictEncoder interface {
	Encoder

	values() []interface{}
}

// dictDecoder is implemented by decoders that translate indices
// through a dictionary supplied out of band (the dictionary page).
type dictDecoder interface {
	Decoder

	setValues([]interface{})
}

func writeFull(w io.Writer, data []byte) error {
	n, err := w.Write(data)
	if err != nil {
		return err
	}

	if n != len(data) {
		return io.ErrShortWrite
	}

	return nil
}
