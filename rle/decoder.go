package rle

import (
	"io"
	"math/bits"

	"github.com/hexbee-net/errors"
	"github.com/scylladb/parquet4seastar-go/bitstream"
)

// Decoder reads back a stream produced by Encoder, one run at a time.
type Decoder struct {
	bitWidth int
	r        *bitstream.Reader

	runValue     int32
	runRemaining int

	bpGroup         [8]int32
	bpIndex         int
	bpGroupsPending int // groups not yet loaded into bpGroup
	bpActive        bool
}

// NewDecoder creates a Decoder for a stream encoded at bitWidth.
func NewDecoder(bitWidth int) *Decoder {
	return &Decoder{bitWidth: bitWidth}
}

// Init rebinds the decoder to read from data, and switches to a new bit
// width, so it can be reused across pages.
func (d *Decoder) Init(bitWidth int, data []byte) {
	d.bitWidth = bitWidth
	d.r = bitstream.NewReader(data)
	d.runRemaining = 0
	d.bpIndex = 0
	d.bpGroupsPending = 0
	d.bpActive = false
}

// Next returns the next decoded value. It returns io.EOF once no
// further run headers can be read from the underlying bytes. A
// bit-packed run's final group of 8 may contain zero padding past the
// stream's true value count, so a caller that knows that count
// externally (as level.Decode and the dictionary codec do) must stop
// reading once it has that many values rather than calling Next until
// EOF.
func (d *Decoder) Next() (int32, error) {
	if d.bitWidth == 0 {
		return 0, nil
	}

	if d.runRemaining > 0 {
		d.runRemaining--

		return d.runValue, nil
	}

	if d.bpActive {
		if d.bpIndex == 8 {
			if d.bpGroupsPending == 0 {
				d.bpActive = false
			} else {
				d.bpGroupsPending--

				if err := d.loadBitPackedGroup(); err != nil {
					return 0, err
				}
			}
		}
	}

	if d.bpActive {
		v := d.bpGroup[d.bpIndex]
		d.bpIndex++

		return v, nil
	}

	if err := d.readHeader(); err != nil {
		return 0, err
	}

	return d.Next()
}

// NextBatch fills out with up to len(out) decoded values and returns
// the number actually read. A trailing io.EOF is swallowed, matching
// the convention that a partial fill at end of stream is not an error.
func (d *Decoder) NextBatch(out []int32) (int, error) {
	for i := range out {
		v, err := d.Next()
		if err != nil {
			if err == io.EOF {
				return i, nil
			}

			return i, err
		}

		out[i] = v
	}

	return len(out), nil
}

func (d *Decoder) readHeader() error {
	if d.r.BytesLeft() <= 0 {
		return io.EOF
	}

	header, err := d.r.GetVlq()
	if err != nil {
		return errors.Wrap(err, ErrMalformedHeader.Error())
	}

	if header&1 == 0 {
		runLength := int(header >> 1)
		if runLength == 0 {
			return errors.WithStack(ErrMalformedHeader)
		}

		nbytes := (d.bitWidth + 7) / 8

		raw, err := d.r.GetAlignedBytes(nbytes)
		if err != nil {
			return errors.Wrap(err, ErrMalformedHeader.Error())
		}

		var u uint32
		for k := 0; k < nbytes; k++ {
			u |= uint32(raw[k]) << uint(8*k)
		}

		if d.bitWidth < 32 && bits.Len32(u) > d.bitWidth {
			return errors.WithFields(
				errors.WithStack(ErrRunValueTooWide),
				errors.Fields{"value": u, "bit-width": d.bitWidth})
		}

		d.runValue = int32(u)
		d.runRemaining = runLength

		return nil
	}

	numGroups := int(header >> 1)
	if numGroups == 0 {
		return errors.WithStack(ErrMalformedHeader)
	}

	d.bpGroupsPending = numGroups - 1
	d.bpActive = true
	d.bpIndex = 0

	return d.loadBitPackedGroup()
}

func (d *Decoder) loadBitPackedGroup() error {
	raw, err := d.r.GetAlignedBytes(d.bitWidth)
	if err != nil {
		return errors.Wrap(err, ErrMalformedHeader.Error())
	}

	d.bpGroup = bitstream.Unpack8(d.bitWidth, raw)
	d.bpIndex = 0

	return nil
}
