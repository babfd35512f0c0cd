// Package column binds a flattened schema leaf to the concrete value
// codec and block compressor it is written or read with. It is the
// seam between the codec core (bitstream/rle/level/value/schema) and
// a page/column-chunk orchestrator, which is out of scope here.
package column

import (
	"github.com/hexbee-net/errors"

	"github.com/scylladb/parquet4seastar-go/compress"
	"github.com/scylladb/parquet4seastar-go/schema"
	"github.com/scylladb/parquet4seastar-go/value"
)

const (
	ErrDictionarySizeOfRequired = errors.Error("column: RLEDictionary encoding requires a dictionary size estimator")
)

// Descriptor pairs a schema.Leaf with the codec pipeline it is
// encoded or decoded with: a value.Encoder/value.Decoder and a
// compress.Codec, both resolved from the leaf's own Encoding and
// Compression fields.
type Descriptor struct {
	Leaf schema.Leaf
}

// NewDescriptor wraps leaf.
func NewDescriptor(leaf schema.Leaf) Descriptor {
	return Descriptor{Leaf: leaf}
}

// NewEncoder builds the value.Encoder this descriptor's leaf is
// configured for. dictSizeOf estimates a value's PLAIN-encoded byte
// size and is required when Leaf.Encoding is value.RLEDictionary.
func (d Descriptor) NewEncoder(dictSizeOf func(interface{}) int) (value.Encoder, error) {
	if d.Leaf.Encoding == value.RLEDictionary && dictSizeOf == nil {
		return nil, errors.WithStack(ErrDictionarySizeOfRequired)
	}

	return value.NewEncoder(d.Leaf.PhysicalType, d.Leaf.Encoding, d.Leaf.TypeLength, dictSizeOf)
}

// NewDecoder builds the value.Decoder counterpart of NewEncoder.
func (d Descriptor) NewDecoder() (value.Decoder, error) {
	return value.NewDecoder(d.Leaf.PhysicalType, d.Leaf.Encoding, d.Leaf.TypeLength)
}

// Codec resolves this descriptor's block compressor by name.
func (d Descriptor) Codec() (compress.Codec, error) {
	return compress.ByName(d.Leaf.Compression)
}

// RepetitionLevels reports whether this column ever needs a
// repetition-level stream (the column sits below a repeated node).
func (d Descriptor) RepetitionLevels() bool {
	return d.Leaf.MaxRepLevel > 0
}

// DefinitionLevels reports whether this column ever needs a
// definition-level stream (the column or an ancestor is optional).
func (d Descriptor) DefinitionLevels() bool {
	return d.Leaf.MaxDefLevel > 0
}
