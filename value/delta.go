package value

import (
	"io"
	"math"
	"math/bits"

	"github.com/hexbee-net/errors"
	"github.com/scylladb/parquet4seastar-go/bitstream"
)

const (
	defaultBlockSize      = 128
	defaultMiniBlockCount = 4

	ErrInvalidBlockSize      = errors.Error("value: block size must be a positive multiple of 128")
	ErrInvalidMiniBlockCount = errors.Error("value: mini-block count must divide the block size into multiples of 8")
	ErrInvalidMiniBlockWidth = errors.Error("value: mini-block bit width exceeds 32")
)

// DeltaBinaryPacked32Encoder implements DELTA_BINARY_PACKED for INT32
// (and, with Unsigned set, unsigned 32-bit values bit-reinterpreted as
// int32). Deltas are accumulated a block at a time; Close flushes any
// partial trailing block and writes the page header.
type DeltaBinaryPacked32Encoder struct {
	BlockSize      int
	MiniBlockCount int
	Unsigned       bool

	w io.Writer

	miniBlockValueCount int
	valuesCount         int
	firstValue          int32
	previousValue       int32
	minDelta            int32
	deltas              []int32
	body                []byte
}

func (e *DeltaBinaryPacked32Encoder) Init(writer io.Writer) error {
	if e.BlockSize == 0 {
		e.BlockSize = defaultBlockSize
	}

	if e.MiniBlockCount == 0 {
		e.MiniBlockCount = defaultMiniBlockCount
	}

	if e.BlockSize <= 0 || e.BlockSize%128 != 0 {
		return errors.WithFields(errors.WithStack(ErrInvalidBlockSize), errors.Fields{"block-size": e.BlockSize})
	}

	if e.MiniBlockCount <= 0 || e.BlockSize%e.MiniBlockCount != 0 {
		return errors.WithFields(errors.WithStack(ErrInvalidMiniBlockCount), errors.Fields{"mini-block-count": e.MiniBlockCount})
	}

	e.miniBlockValueCount = e.BlockSize / e.MiniBlockCount
	if e.miniBlockValueCount%8 != 0 {
		return errors.WithFields(errors.WithStack(ErrInvalidMiniBlockCount), errors.Fields{"mini-block-count": e.MiniBlockCount})
	}

	e.w = writer
	e.valuesCount = 0
	e.minDelta = math.MaxInt32
	e.deltas = e.deltas[:0]
	e.body = nil

	return nil
}

func (e *DeltaBinaryPacked32Encoder) EncodeValues(values []interface{}) error {
	for _, iv := range values {
		var v int32
		if e.Unsigned {
			v = int32(iv.(uint32))
		} else {
			v = iv.(int32)
		}

		if err := e.add(v); err != nil {
			return err
		}
	}

	return nil
}

func (e *DeltaBinaryPacked32Encoder) add(v int32) error {
	e.valuesCount++

	if e.valuesCount == 1 {
		e.firstValue = v
		e.previousValue = v

		return nil
	}

	delta := v - e.previousValue
	e.previousValue = v
	e.deltas = append(e.deltas, delta)

	if delta < e.minDelta {
		e.minDelta = delta
	}

	if len(e.deltas) == e.BlockSize {
		return e.flushBlock()
	}

	return nil
}

func (e *DeltaBinaryPacked32Encoder) flushBlock() error {
	for i := range e.deltas {
		e.deltas[i] -= e.minDelta
	}

	var buf bitstream.Writer
	buf.Reset(make([]byte, bitstream.MaxBitWidth))

	if err := buf.PutZigzagVlq(e.minDelta); err != nil {
		return err
	}

	e.body = append(e.body, buf.Bytes()...)

	bitWidths := make([]byte, e.MiniBlockCount)
	payloads := make([][]byte, e.MiniBlockCount)

	for mb := 0; mb < e.MiniBlockCount; mb++ {
		start := mb * e.miniBlockValueCount
		end := start + e.miniBlockValueCount

		if start >= len(e.deltas) {
			bitWidths[mb] = 0

			continue
		}

		if end > len(e.deltas) {
			end = len(e.deltas)
		}

		var maxDelta uint32
		for _, d := range e.deltas[start:end] {
			if uint32(d) > maxDelta {
				maxDelta = uint32(d)
			}
		}

		w := bits.Len32(maxDelta)
		bitWidths[mb] = byte(w)

		groups := e.miniBlockValueCount / 8
		payload := make([]byte, 0, w*groups)

		for g := 0; g < groups; g++ {
			var group [8]int32

			for k := 0; k < 8; k++ {
				idx := start + g*8 + k
				if idx < end {
					group[k] = e.deltas[idx]
				}
			}

			payload = append(payload, bitstream.Pack8(w, &group)...)
		}

		payloads[mb] = payload
	}

	e.body = append(e.body, bitWidths...)

	for _, p := range payloads {
		e.body = append(e.body, p...)
	}

	e.minDelta = math.MaxInt32
	e.deltas = e.deltas[:0]

	return nil
}

func (e *DeltaBinaryPacked32Encoder) Close() error {
	if len(e.deltas) > 0 {
		if err := e.flushBlock(); err != nil {
			return err
		}
	}

	var header bitstream.Writer
	header.Reset(make([]byte, 5*4))

	if err := header.PutVlq(uint32(e.BlockSize)); err != nil {
		return err
	}

	if err := header.PutVlq(uint32(e.MiniBlockCount)); err != nil {
		return err
	}

	if err := header.PutVlq(uint32(e.valuesCount)); err != nil {
		return err
	}

	if err := header.PutZigzagVlq(e.firstValue); err != nil {
		return err
	}

	if err := writeFull(e.w, header.Bytes()); err != nil {
		return err
	}

	return writeFull(e.w, e.body)
}

// DeltaBinaryPacked32Decoder is the inverse of DeltaBinaryPacked32Encoder.
type DeltaBinaryPacked32Decoder struct {
	Unsigned bool

	r *bitstream.Reader

	blockSize      int
	miniBlockCount int
	miniBlockLen   int
	valuesCount    int

	emitted       int
	previousValue int32
	pendingMinDelta int32

	miniBlockBitWidths []byte
	currentBitWidth    int
	groupValues        [8]int32
	groupPos           int
}

func (d *DeltaBinaryPacked32Decoder) Init(reader io.Reader) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return errors.WithStack(err)
	}

	d.r = bitstream.NewReader(data)
	d.emitted = 0
	d.groupPos = 0

	blockSize, err := d.r.GetVlq()
	if err != nil {
		return errors.Wrap(err, "failed to read block size")
	}

	if blockSize == 0 || blockSize%128 != 0 {
		return errors.WithFields(errors.WithStack(ErrInvalidBlockSize), errors.Fields{"block-size": blockSize})
	}

	miniBlockCount, err := d.r.GetVlq()
	if err != nil {
		return errors.Wrap(err, "failed to read mini-block count")
	}

	if miniBlockCount == 0 || blockSize%miniBlockCount != 0 {
		return errors.WithFields(errors.WithStack(ErrInvalidMiniBlockCount), errors.Fields{"mini-block-count": miniBlockCount})
	}

	d.blockSize = int(blockSize)
	d.miniBlockCount = int(miniBlockCount)
	d.miniBlockLen = d.blockSize / d.miniBlockCount

	if d.miniBlockLen%8 != 0 {
		return errors.WithFields(errors.WithStack(ErrInvalidMiniBlockCount), errors.Fields{"mini-block-count": miniBlockCount})
	}

	valuesCount, err := d.r.GetVlq()
	if err != nil {
		return errors.Wrap(err, "failed to read total value count")
	}

	d.valuesCount = int(valuesCount)

	if d.valuesCount == 0 {
		return nil
	}

	first, err := d.r.GetZigzagVlq()
	if err != nil {
		return errors.Wrap(err, "failed to read first value")
	}

	d.previousValue = first

	return nil
}

func (d *DeltaBinaryPacked32Decoder) DecodeValues(dest []interface{}) (int, error) {
	for i := range dest {
		v, err := d.next()
		if err != nil {
			return i, err
		}

		if d.Unsigned {
			dest[i] = uint32(v)
		} else {
			dest[i] = v
		}
	}

	return len(dest), nil
}

func (d *DeltaBinaryPacked32Decoder) next() (int32, error) {
	if d.emitted >= d.valuesCount {
		return 0, io.EOF
	}

	if d.emitted == 0 {
		d.emitted++

		return d.previousValue, nil
	}

	if d.groupPos == 0 {
		if err := d.loadGroup(); err != nil {
			return 0, err
		}
	}

	delta := d.groupValues[d.groupPos]
	d.groupPos++

	if d.groupPos == 8 {
		d.groupPos = 0
	}

	v := d.previousValue + delta
	d.previousValue = v
	d.emitted++

	return v, nil
}

func (d *DeltaBinaryPacked32Decoder) loadGroup() error {
	pos := d.emitted - 1 // index within the delta stream, 0-based

	if pos%d.blockSize == 0 {
		if err := d.loadBlockHeader(); err != nil {
			return err
		}
	}

	if pos%d.miniBlockLen == 0 {
		miniBlockIdx := (pos % d.blockSize) / d.miniBlockLen
		d.currentBitWidth = int(d.miniBlockBitWidths[miniBlockIdx])
	}

	raw, err := d.r.GetAlignedBytes(d.currentBitWidth)
	if err != nil {
		return errors.Wrap(err, "not enough data to read mini-block")
	}

	unpacked := bitstream.Unpack8(d.currentBitWidth, raw)

	for i := range unpacked {
		unpacked[i] += d.pendingMinDelta
	}

	d.groupValues = unpacked

	return nil
}

func (d *DeltaBinaryPacked32Decoder) loadBlockHeader() error {
	minDelta, err := d.r.GetZigzagVlq()
	if err != nil {
		return errors.Wrap(err, "failed to read min delta")
	}

	d.miniBlockBitWidths = make([]byte, d.miniBlockCount)

	for i := range d.miniBlockBitWidths {
		b, err := d.r.GetAligned(1)
		if err != nil {
			return errors.Wrap(err, "failed to read mini-block bit widths")
		}

		if b > 32 {
			return errors.WithFields(errors.WithStack(ErrInvalidMiniBlockWidth), errors.Fields{"bit-width": b})
		}

		d.miniBlockBitWidths[i] = byte(b)
	}

	d.pendingMinDelta = minDelta

	return nil
}
