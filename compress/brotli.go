package compress

import (
	"bytes"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/hexbee-net/errors"
)

type Brotli struct{}

func (Brotli) Compress(block []byte) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := brotli.NewWriter(buf)

	if _, err := w.Write(block); err != nil {
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (Brotli) Decompress(block []byte, _ int) ([]byte, error) {
	r := brotli.NewReader(bytes.NewReader(block))

	ret, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decompress Brotli data")
	}

	return ret, nil
}
