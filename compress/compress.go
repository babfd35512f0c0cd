// Package compress adapts the block compression codecs Parquet page
// bodies use to a single Codec interface, so a column's compressor
// choice can be looked up by name.
package compress

import "github.com/hexbee-net/errors"

const ErrUnknownCodec = errors.Error("compress: unknown codec name")

// Codec compresses/decompresses a full page body in one call; Parquet
// never streams compression mid-page. Decompress is given the known
// uncompressed size so implementations that need a destination buffer
// size up front (or want to sanity-check a decompression bomb) can.
type Codec interface {
	Compress(block []byte) ([]byte, error)
	Decompress(block []byte, uncompressedSize int) ([]byte, error)
}

// ByName resolves one of the closed set of codec names Parquet's
// CompressionCodec enum carries ("UNCOMPRESSED", "SNAPPY", "GZIP",
// "ZSTD", "BROTLI", "LZ4") to a Codec.
func ByName(name string) (Codec, error) {
	switch name {
	case "", "UNCOMPRESSED":
		return Uncompressed{}, nil
	case "SNAPPY":
		return Snappy{}, nil
	case "GZIP":
		return GZip{}, nil
	case "ZSTD":
		return ZStd{}, nil
	case "BROTLI":
		return Brotli{}, nil
	case "LZ4":
		return LZ4{}, nil
	default:
		return nil, errors.WithFields(errors.WithStack(ErrUnknownCodec), errors.Fields{"name": name})
	}
}

// Uncompressed is the identity Codec used when a column chunk opts
// out of compression.
type Uncompressed struct{}

func (Uncompressed) Compress(block []byte) ([]byte, error) { return block, nil }

func (Uncompressed) Decompress(block []byte, _ int) ([]byte, error) { return block, nil }
