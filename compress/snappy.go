package compress

import "github.com/golang/snappy"

type Snappy struct{}

func (Snappy) Compress(block []byte) ([]byte, error) {
	return snappy.Encode(nil, block), nil
}

func (Snappy) Decompress(block []byte, _ int) ([]byte, error) {
	return snappy.Decode(nil, block)
}
