package value

import (
	"io"

	"github.com/hexbee-net/errors"
	"github.com/scylladb/parquet4seastar-go/rle"
)

const (
	// dictByteLimit and dictEntryLimit bound how large a column-chunk
	// dictionary may grow before the writer falls back to PLAIN for the
	// remainder of the chunk.
	dictByteLimit  = 1 << 20
	dictEntryLimit = 1 << 20
)

// DictionaryEncoder owns a growing value-to-index map for a column
// chunk. EncodeValues assigns indices as new values are seen and
// buffers them; Close writes the data page's RLE-hybrid index stream
// (with its leading bit-width byte). Once the dictionary exceeds its size limit,
// Fallback reports true and the caller must switch the remaining pages
// in the chunk to PLAIN.
type DictionaryEncoder struct {
	writer io.Writer

	dict      []interface{}
	index     map[interface{}]int32
	dictBytes int
	indices   []int32

	sizeOf func(interface{}) int
	keyOf  func(interface{}) interface{}

	fellBack bool
}

// NewDictionaryEncoder creates a DictionaryEncoder. sizeOf estimates
// the PLAIN-encoded byte size of a single value, used to track the
// dictionary page's size against dictByteLimit. keyOf converts a value
// into a comparable map key; pass nil to use the value itself (for any
// physical type whose Go representation is already comparable, i.e.
// everything except []byte).
func NewDictionaryEncoder(sizeOf func(interface{}) int, keyOf func(interface{}) interface{}) *DictionaryEncoder {
	if keyOf == nil {
		keyOf = func(v interface{}) interface{} { return v }
	}

	return &DictionaryEncoder{
		index:  make(map[interface{}]int32),
		sizeOf: sizeOf,
		keyOf:  keyOf,
	}
}

func (e *DictionaryEncoder) Init(writer io.Writer) error {
	e.writer = writer
	e.indices = e.indices[:0]

	return nil
}

// Fallback reports whether the dictionary has exceeded its size limit
// and PLAIN must be used for the rest of the chunk.
func (e *DictionaryEncoder) Fallback() bool {
	return e.fellBack
}

func (e *DictionaryEncoder) values() []interface{} {
	return e.dict
}

// EncodeValues assigns dictionary indices for values and buffers them;
// the index stream itself is written only once, from Close, since its
// bit width depends on the final dictionary size and Parquet data
// pages carry a single RLE-hybrid index stream, not one per
// EncodeValues call.
func (e *DictionaryEncoder) EncodeValues(values []interface{}) error {
	if e.fellBack {
		return errors.New("value: dictionary encoder used after falling back to PLAIN")
	}

	for _, v := range values {
		key := e.keyOf(v)

		idx, ok := e.index[key]
		if !ok {
			idx = int32(len(e.dict))
			e.dict = append(e.dict, v)
			e.index[key] = idx
			e.dictBytes += e.sizeOf(v)

			if e.dictBytes > dictByteLimit || len(e.dict) > dictEntryLimit {
				e.fellBack = true
			}
		}

		e.indices = append(e.indices, idx)
	}

	return nil
}

func (e *DictionaryEncoder) Close() error {
	width := rle.DictionaryIndexWidth(len(e.dict))

	if err := writeFull(e.writer, []byte{byte(width)}); err != nil {
		return err
	}

	enc := rle.NewEncoder(width)
	if err := enc.AppendValues(e.indices); err != nil {
		return err
	}

	return enc.Close(e.writer)
}

// DictionaryDecoder translates an RLE-hybrid index stream back into
// values drawn from a dictionary set through the package-internal
// setValues. It does not read a dictionary page itself, and outside
// this package there is no way to supply its dictionary.
type DictionaryDecoder struct {
	values  []interface{}
	decoder *rle.Decoder
	width   int
}

func (d *DictionaryDecoder) setValues(values []interface{}) {
	d.values = values
}

func (d *DictionaryDecoder) Init(reader io.Reader) error {
	buf := make([]byte, 1)

	if _, err := io.ReadFull(reader, buf); err != nil {
		return errors.WithStack(err)
	}

	w := int(buf[0])
	if w < 0 || w > 32 {
		return errors.WithFields(
			errors.New("value: invalid dictionary index bit-width"),
			errors.Fields{"bit-width": w})
	}

	rest, err := io.ReadAll(reader)
	if err != nil {
		return errors.WithStack(err)
	}

	d.width = w
	d.decoder = rle.NewDecoder(w)
	d.decoder.Init(w, rest)

	return nil
}

func (d *DictionaryDecoder) DecodeValues(dest []interface{}) (int, error) {
	if d.decoder == nil {
		return 0, errors.New("value: dictionary decoder not initialized")
	}

	size := int32(len(d.values))

	for i := range dest {
		key, err := d.decoder.Next()
		if err != nil {
			return i, err
		}

		if key < 0 || key >= size {
			return i, errors.WithFields(
				errors.New("value: dictionary index out of range"),
				errors.Fields{"index": key, "values-count": size})
		}

		dest[i] = d.values[key]
	}

	return len(dest), nil
}
