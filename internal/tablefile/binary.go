// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

package tablefile

import (
	"github.com/nuclio/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

const (
	fieldMaxValueBits    protowire.Number = 1
	fieldValuesPerLength protowire.Number = 2
	fieldValues          protowire.Number = 3
)

// ErrCorrupt is returned for binary descriptions that cannot be decoded.
var ErrCorrupt = errors.New("corrupt table description")

func marshalBinary(d Description) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldMaxValueBits, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(d.MaxValueBits))
	b = appendPacked(b, fieldValuesPerLength, d.ValuesPerLength)
	b = appendPacked(b, fieldValues, d.Values)
	return b
}

func appendPacked(b []byte, num protowire.Number, values []uint32) []byte {
	if len(values) == 0 {
		return b
	}
	var packed []byte
	for _, v := range values {
		packed = protowire.AppendVarint(packed, uint64(v))
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, packed)
}

func unmarshalBinary(b []byte) (Description, error) {
	var d Description
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Description{}, errors.Wrapf(ErrCorrupt, "Bad tag: %v", protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == fieldMaxValueBits && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return Description{}, errors.Wrapf(ErrCorrupt, "Bad value bits: %v", protowire.ParseError(n))
			}
			d.MaxValueBits = uint32(v)
			b = b[n:]
		case num == fieldValuesPerLength && typ == protowire.BytesType:
			values, n, err := consumePacked(b, d.ValuesPerLength)
			if err != nil {
				return Description{}, errors.Wrap(err, "Bad values per length")
			}
			d.ValuesPerLength = values
			b = b[n:]
		case num == fieldValues && typ == protowire.BytesType:
			values, n, err := consumePacked(b, d.Values)
			if err != nil {
				return Description{}, errors.Wrap(err, "Bad values")
			}
			d.Values = values
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return Description{}, errors.Wrapf(ErrCorrupt, "Bad field %d: %v", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return d, nil
}

func consumePacked(b []byte, values []uint32) ([]uint32, int, error) {
	packed, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, 0, errors.Wrap(ErrCorrupt, protowire.ParseError(n).Error())
	}
	for len(packed) > 0 {
		v, m := protowire.ConsumeVarint(packed)
		if m < 0 {
			return nil, 0, errors.Wrap(ErrCorrupt, protowire.ParseError(m).Error())
		}
		if v > 0xFFFFFFFF {
			return nil, 0, errors.Wrapf(ErrCorrupt, "Value %d overflows 32 bits", v)
		}
		values = append(values, uint32(v))
		packed = packed[m:]
	}
	return values, n, nil
}
