package value

import "github.com/hexbee-net/errors"

// NewEncoder builds an Encoder for physical type pt under encoding enc.
// typeLength is the FIXED_LEN_BYTE_ARRAY declared length (ignored
// otherwise); dictSizeOf estimates a value's PLAIN byte size and is
// only used for RLEDictionary.
func NewEncoder(pt PhysicalType, enc Encoding, typeLength int, dictSizeOf func(interface{}) int) (Encoder, error) {
	if enc == RLEDictionary {
		if pt == Boolean {
			return nil, errors.WithStack(ErrUnsupportedEncoding)
		}

		return NewDictionaryEncoder(dictSizeOf, byteArrayKeyOf(pt)), nil
	}

	switch pt {
	case Boolean:
		if enc != Plain {
			return nil, errors.WithStack(ErrUnsupportedEncoding)
		}

		return &BooleanPlainEncoder{}, nil

	case Int32:
		if enc == DeltaBinaryPacked {
			return &DeltaBinaryPacked32Encoder{}, nil
		}

		return &Int32PlainEncoder{}, nil

	case Int64:
		if enc == DeltaBinaryPacked {
			return &DeltaBinaryPacked64Encoder{}, nil
		}

		return &Int64PlainEncoder{}, nil

	case Int96:
		if enc != Plain {
			return nil, errors.WithStack(ErrUnsupportedEncoding)
		}

		return &Int96PlainEncoder{}, nil

	case Float:
		if enc != Plain {
			return nil, errors.WithStack(ErrUnsupportedEncoding)
		}

		return &FloatPlainEncoder{}, nil

	case Double:
		if enc != Plain {
			return nil, errors.WithStack(ErrUnsupportedEncoding)
		}

		return &DoublePlainEncoder{}, nil

	case ByteArray:
		if enc != Plain {
			return nil, errors.WithStack(ErrUnsupportedEncoding)
		}

		return &ByteArrayPlainEncoder{}, nil

	case FixedLenByteArray:
		if enc != Plain {
			return nil, errors.WithStack(ErrUnsupportedEncoding)
		}

		return &ByteArrayPlainEncoder{Length: typeLength}, nil
	}

	return nil, errors.WithStack(ErrUnsupportedEncoding)
}

// NewDecoder is the decode-side counterpart of NewEncoder.
func NewDecoder(pt PhysicalType, enc Encoding, typeLength int) (Decoder, error) {
	if enc == RLEDictionary {
		if pt == Boolean {
			return nil, errors.WithStack(ErrUnsupportedEncoding)
		}

		return &DictionaryDecoder{}, nil
	}

	switch pt {
	case Boolean:
		if enc != Plain {
			return nil, errors.WithStack(ErrUnsupportedEncoding)
		}

		return &BooleanPlainDecoder{}, nil

	case Int32:
		if enc == DeltaBinaryPacked {
			return &DeltaBinaryPacked32Decoder{}, nil
		}

		return &Int32PlainDecoder{}, nil

	case Int64:
		if enc == DeltaBinaryPacked {
			return &DeltaBinaryPacked64Decoder{}, nil
		}

		return &Int64PlainDecoder{}, nil

	case Int96:
		if enc != Plain {
			return nil, errors.WithStack(ErrUnsupportedEncoding)
		}

		return &Int96PlainDecoder{}, nil

	case Float:
		if enc != Plain {
			return nil, errors.WithStack(ErrUnsupportedEncoding)
		}

		return &FloatPlainDecoder{}, nil

	case Double:
		if enc != Plain {
			return nil, errors.WithStack(ErrUnsupportedEncoding)
		}

		return &DoublePlainDecoder{}, nil

	case ByteArray:
		if enc != Plain {
			return nil, errors.WithStack(ErrUnsupportedEncoding)
		}

		return &ByteArrayPlainDecoder{}, nil

	case FixedLenByteArray:
		if enc != Plain {
			return nil, errors.WithStack(ErrUnsupportedEncoding)
		}

		return &ByteArrayPlainDecoder{Length: typeLength}, nil
	}

	return nil, errors.WithStack(ErrUnsupportedEncoding)
}

// byteArrayKeyOf returns the map-key adapter a dictionary encoder
// needs for pt: []byte values (ByteArray, FixedLenByteArray) are
// mapped through string() since Go slices aren't comparable.
func byteArrayKeyOf(pt PhysicalType) func(interface{}) interface{} {
	if pt != ByteArray && pt != FixedLenByteArray {
		return nil
	}

	return func(v interface{}) interface{} {
		return string(v.([]byte))
	}
}
