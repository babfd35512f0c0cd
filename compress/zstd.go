package compress

import (
	"bytes"
	"io"

	"github.com/hexbee-net/errors"
	"github.com/klauspost/compress/zstd"
)

type ZStd struct{}

func (ZStd) Compress(block []byte) ([]byte, error) {
	buf := &bytes.Buffer{}

	w, err := zstd.NewWriter(buf)
	if err != nil {
		return nil, err
	}

	if _, err := w.Write(block); err != nil {
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (ZStd) Decompress(block []byte, _ int) ([]byte, error) {
	r, err := zstd.NewReader(bytes.NewReader(block))
	if err != nil {
		return nil, err
	}

	defer r.Close()

	ret, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decompress ZSTD data")
	}

	return ret, nil
}
