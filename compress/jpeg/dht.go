// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

// Package jpeg carries huffman tables in and out of JPEG streams: DHT
// segments, optimal tables built from symbol statistics and the
// entropy-coded scan data using them.
package jpeg

import (
	"encoding/binary"
	"io"

	"github.com/intel/fasthuff/compress/huffman"
	"github.com/nuclio/errors"
	"github.com/samber/lo"
)

const (
	// MarkerDHT is the second byte of the Define Huffman Table marker.
	MarkerDHT = 0xC4

	// MaxDHTCodeLength is the longest code a DHT segment can describe.
	MaxDHTCodeLength = 16

	// ValueBits is the value width of JPEG tables: 8 bit symbols plus the
	// reserved entry used while building a table.
	ValueBits = 9

	// ClassDC and ClassAC are the table classes of a DHT segment.
	ClassDC = 0
	ClassAC = 1

	maxTableID     = 3
	maxSegmentSize = 0xFFFF
)

// ErrInvalidDHT is returned for malformed DHT segments.
var ErrInvalidDHT = errors.New("invalid DHT segment")

// HuffmanTableSpec is one table of a DHT segment.
type HuffmanTableSpec struct {
	Class uint8
	ID    uint8
	Table *huffman.Table
}

// ParseDHT decodes the payload of a DHT segment, the bytes following the
// segment length. A segment may define several tables.
func ParseDHT(payload []byte) ([]HuffmanTableSpec, error) {
	var specs []HuffmanTableSpec
	for len(payload) != 0 {
		if len(payload) < 1+MaxDHTCodeLength {
			return nil, errors.Wrapf(ErrInvalidDHT, "Table header needs %d bytes, %d left", 1+MaxDHTCodeLength, len(payload))
		}
		class, id := payload[0]>>4, payload[0]&0x0F
		if class > ClassAC || id > maxTableID {
			return nil, errors.Wrapf(ErrInvalidDHT, "Class %d, id %d", class, id)
		}
		counts := payload[1 : 1+MaxDHTCodeLength]
		total := lo.SumBy(counts, func(count byte) int { return int(count) })
		payload = payload[1+MaxDHTCodeLength:]
		if len(payload) < total {
			return nil, errors.Wrapf(ErrInvalidDHT, "Table has %d values, %d bytes left", total, len(payload))
		}

		table, err := huffman.NewTable(ValueBits)
		if err != nil {
			return nil, err
		}
		for i, count := range counts {
			if count == 0 {
				continue
			}
			if err := table.SetValuesPerLength(uint32(i+1), uint32(count)); err != nil {
				return nil, errors.Wrap(err, "Failed to set values per length")
			}
		}
		for i, value := range payload[:total] {
			if err := table.AddOrderedValue(i, uint32(value)); err != nil {
				return nil, errors.Wrap(err, "Failed to add ordered value")
			}
		}
		if err := table.CalcTables(); err != nil {
			return nil, errors.Wrapf(err, "Failed to build table class %d id %d", class, id)
		}
		payload = payload[total:]

		specs = append(specs, HuffmanTableSpec{Class: class, ID: id, Table: table})
	}
	return specs, nil
}

// ReadDHTSegment reads a complete DHT segment, marker included, from r.
func ReadDHTSegment(r io.Reader) ([]HuffmanTableSpec, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, errors.Wrap(err, "Failed to read segment header")
	}
	if header[0] != 0xFF || header[1] != MarkerDHT {
		return nil, errors.Wrapf(ErrInvalidDHT, "Unexpected marker %02X%02X", header[0], header[1])
	}
	length := int(binary.BigEndian.Uint16(header[2:]))
	if length < 2 {
		return nil, errors.Wrapf(ErrInvalidDHT, "Segment length %d", length)
	}
	payload := make([]byte, length-2)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, errors.Wrap(err, "Failed to read segment payload")
	}
	return ParseDHT(payload)
}

// AppendDHT appends the DHT description of table to dst. The table must be
// ready and hold only byte values with codes of at most 16 bits.
func AppendDHT(dst []byte, class, id uint8, table *huffman.Table) ([]byte, error) {
	if class > ClassAC || id > maxTableID {
		return dst, errors.Wrapf(ErrInvalidDHT, "Class %d, id %d", class, id)
	}
	if !table.Ready() {
		return dst, errors.Wrap(huffman.ErrSequence, "Table must be calculated before it is written")
	}
	if length := table.MaxUsedLength(); length > MaxDHTCodeLength {
		return dst, errors.Wrapf(huffman.ErrCodeLengthOutOfRange, "Code length %d does not fit a DHT segment", length)
	}

	dst = append(dst, class<<4|id)
	for length := uint32(1); length <= MaxDHTCodeLength; length++ {
		count := table.ValuesPerLength(length)
		if count > 0xFF {
			return dst, errors.Wrapf(ErrInvalidDHT, "%d values of length %d", count, length)
		}
		dst = append(dst, byte(count))
	}
	for i := 0; i < table.NumOrderedValues(); i++ {
		value, err := table.OrderedValue(i)
		if err != nil {
			return dst, err
		}
		if value > 0xFF {
			return dst, errors.Wrapf(huffman.ErrValueOutOfRange, "Value %d does not fit a DHT segment", value)
		}
		dst = append(dst, byte(value))
	}
	return dst, nil
}

// WriteDHTSegment writes one DHT segment, marker and length included,
// defining all the given tables.
func WriteDHTSegment(w io.Writer, specs ...HuffmanTableSpec) error {
	segment := []byte{0xFF, MarkerDHT, 0, 0}
	var err error
	for _, spec := range specs {
		segment, err = AppendDHT(segment, spec.Class, spec.ID, spec.Table)
		if err != nil {
			return errors.Wrapf(err, "Failed to encode table class %d id %d", spec.Class, spec.ID)
		}
	}
	length := len(segment) - 2
	if length > maxSegmentSize {
		return errors.Wrapf(ErrInvalidDHT, "Segment of %d bytes", length)
	}
	binary.BigEndian.PutUint16(segment[2:], uint16(length))

	if _, err := w.Write(segment); err != nil {
		return errors.Wrap(err, "Failed to write DHT segment")
	}
	return nil
}
