// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

// Package tablefile stores huffman table descriptions on disk.
package tablefile

import (
	"strings"

	"github.com/intel/fasthuff/compress/huffman"
	"github.com/nuclio/errors"
	"github.com/samber/lo"
)

// Description is everything needed to rebuild a table: its value width, the
// number of values per code length and the values in code order.
type Description struct {
	MaxValueBits    uint32   `yaml:"maxValueBits" msgpack:"maxValueBits"`
	ValuesPerLength []uint32 `yaml:"valuesPerLength" msgpack:"valuesPerLength"`
	Values          []uint32 `yaml:"values" msgpack:"values"`
}

// Format is an on-disk encoding of a Description.
type Format string

const (
	FormatBinary  Format = "bin"
	FormatMsgpack Format = "msgpack"
	FormatYAML    Format = "yaml"
)

// Formats lists the supported formats.
var Formats = []Format{FormatBinary, FormatMsgpack, FormatYAML}

// ErrUnknownFormat is returned for format names that are not supported.
var ErrUnknownFormat = errors.New("unknown table format")

// ParseFormat resolves a format name, ignoring case.
func ParseFormat(name string) (Format, error) {
	format := Format(strings.ToLower(name))
	if !lo.Contains(Formats, format) {
		return "", errors.Wrapf(ErrUnknownFormat, "%q, expected one of %v", name, Formats)
	}
	return format, nil
}

// Describe captures a ready table. ValuesPerLength[i] holds the count of
// codes of length i+1, up to the longest used length.
func Describe(table *huffman.Table) (Description, error) {
	if !table.Ready() {
		return Description{}, errors.Wrap(huffman.ErrSequence, "Only calculated tables can be described")
	}

	description := Description{
		MaxValueBits:    table.MaxValueBits(),
		ValuesPerLength: make([]uint32, table.MaxUsedLength()),
		Values:          make([]uint32, table.NumOrderedValues()),
	}
	for i := range description.ValuesPerLength {
		description.ValuesPerLength[i] = table.ValuesPerLength(uint32(i + 1))
	}
	for i := range description.Values {
		value, err := table.OrderedValue(i)
		if err != nil {
			return Description{}, err
		}
		description.Values[i] = value
	}
	return description, nil
}

// Table rebuilds the described table, ready for coding.
func (d Description) Table() (*huffman.Table, error) {
	if len(d.ValuesPerLength) > huffman.MaxCodeLength {
		return nil, errors.Wrapf(huffman.ErrCodeLengthOutOfRange, "%d code lengths described", len(d.ValuesPerLength))
	}
	if total := lo.Sum(d.ValuesPerLength); int(total) != len(d.Values) {
		return nil, errors.Wrapf(huffman.ErrTableMismatch, "Lengths account for %d values, %d values described", total, len(d.Values))
	}

	table, err := huffman.NewTable(d.MaxValueBits)
	if err != nil {
		return nil, err
	}
	for i, count := range d.ValuesPerLength {
		if count == 0 {
			continue
		}
		if err := table.SetValuesPerLength(uint32(i+1), count); err != nil {
			return nil, err
		}
	}
	for i, value := range d.Values {
		if err := table.AddOrderedValue(i, value); err != nil {
			return nil, err
		}
	}
	if err := table.CalcTables(); err != nil {
		return nil, errors.Wrap(err, "Failed to calculate described table")
	}
	return table, nil
}

// Marshal encodes description in the given format.
func Marshal(format Format, description Description) ([]byte, error) {
	switch format {
	case FormatBinary:
		return marshalBinary(description), nil
	case FormatMsgpack:
		return marshalMsgpack(description)
	case FormatYAML:
		return marshalYAML(description)
	}
	return nil, errors.Wrapf(ErrUnknownFormat, "%q", format)
}

// Unmarshal decodes a description stored in the given format.
func Unmarshal(format Format, data []byte) (Description, error) {
	switch format {
	case FormatBinary:
		return unmarshalBinary(data)
	case FormatMsgpack:
		return unmarshalMsgpack(data)
	case FormatYAML:
		return unmarshalYAML(data)
	}
	return Description{}, errors.Wrapf(ErrUnknownFormat, "%q", format)
}
