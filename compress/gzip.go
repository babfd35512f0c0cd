package compress

import (
	"bytes"
	"compress/gzip"
	"io"

	"github.com/hexbee-net/errors"
)

type GZip struct{}

func (GZip) Compress(block []byte) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := gzip.NewWriter(buf)

	if _, err := w.Write(block); err != nil {
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (GZip) Decompress(block []byte, _ int) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(block))
	if err != nil {
		return nil, err
	}

	ret, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decompress GZIP data")
	}

	return ret, r.Close()
}
