package compress //nolint:dupl // it's easier to duplicate the algorithm wrappers

import (
	"bytes"
	"io"

	"github.com/hexbee-net/errors"
	"github.com/pierrec/lz4"
)

type LZ4 struct{}

func (LZ4) Compress(block []byte) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := lz4.NewWriter(buf)

	if _, err := w.Write(block); err != nil {
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (LZ4) Decompress(block []byte, _ int) ([]byte, error) {
	r := lz4.NewReader(bytes.NewReader(block))

	ret, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decompress LZ4 data")
	}

	return ret, nil
}
