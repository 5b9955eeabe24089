// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

// Package huffman builds canonical, length-limited Huffman tables from
// observed value frequencies and reads or writes codes against them.
//
// A Table is filled in one direction. From frequencies:
//
//	IncValueFreq ... -> CalcCodesLength -> [RemoveLastCode] -> CalcTables -> ReadCode / WriteCode
//
// or, when the table is transmitted in a stream header (e.g. a JPEG DHT segment):
//
//	SetValuesPerLength ... / AddOrderedValue ... -> CalcTables -> ReadCode / WriteCode
//
// A Table is not safe for concurrent use.
package huffman

import (
	"math"

	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
)

const (
	// MaxCodeLength is the longest code, in bits, a Table can hold.
	MaxCodeLength = 64

	// MaxValueBits is the widest value, in bits, a Table can encode.
	MaxValueBits = 32
)

type tableState int

const (
	stateAccumulating tableState = iota // frequencies are being collected
	stateSolved                         // code lengths derived from frequencies
	stateDirect                         // lengths and values supplied by the caller
)

// valueLink chains the values merged into the same node while solving.
type valueLink struct {
	value uint32
	valid bool
}

type valueStat struct {
	freq       uint64
	codeLength uint32
	next       valueLink
}

type codeEntry struct {
	code   uint64
	length uint32
}

// Table is a canonical Huffman code table.
type Table struct {
	maxValueBits uint32
	state        tableState
	ready        bool
	logger       logger.Logger

	// keyed by value, only values with a frequency have an entry
	stats     map[uint32]*valueStat
	totalFreq uint64

	orderedValues   []uint32
	valuesPerLength [MaxCodeLength + 1]uint32

	// decode tables, indexed by code length
	minCode    [MaxCodeLength + 1]uint64
	maxCode    [MaxCodeLength + 1]uint64
	firstIndex [MaxCodeLength + 1]int
	maxLength  uint32

	// encode table, keyed by value
	codes map[uint32]codeEntry
}

// NewTable creates an empty table for values of at most maxValueBits bits.
// maxValueBits bounds the values, not the length of their codes.
func NewTable(maxValueBits uint32) (*Table, error) {
	if maxValueBits == 0 || maxValueBits > MaxValueBits {
		return nil, errors.Wrapf(ErrValueOutOfRange, "Value bits must be between 1 and %d, got %d", MaxValueBits, maxValueBits)
	}
	return &Table{
		maxValueBits: maxValueBits,
		stats:        map[uint32]*valueStat{},
		codes:        map[uint32]codeEntry{},
	}, nil
}

// SetLogger attaches a logger reporting table construction. It survives Reset.
func (t *Table) SetLogger(l logger.Logger) {
	t.logger = l
}

// Reset drops frequencies, lengths and codes. The value bits and the logger
// are kept.
func (t *Table) Reset() {
	t.state = stateAccumulating
	t.ready = false
	clear(t.stats)
	t.totalFreq = 0
	t.orderedValues = t.orderedValues[:0]
	clear(t.codes)
	t.maxLength = 0
	for i := range t.valuesPerLength {
		t.valuesPerLength[i] = 0
		t.minCode[i] = 0
		t.maxCode[i] = 0
		t.firstIndex[i] = 0
	}
}

// MaxValueBits returns the value width the table was created with.
func (t *Table) MaxValueBits() uint32 {
	return t.maxValueBits
}

// Ready reports whether codes can be read and written.
func (t *Table) Ready() bool {
	return t.ready
}

// IncValueFreq records one more occurrence of value.
func (t *Table) IncValueFreq(value uint32) error {
	return t.AddValueFreq(value, 1)
}

// AddValueFreq records count occurrences of value at once. The sum of all
// frequencies must fit in 64 bits.
func (t *Table) AddValueFreq(value uint32, count uint64) error {
	if t.state != stateAccumulating {
		return errors.Wrap(ErrSequence, "Frequencies can only be accumulated before the table is solved")
	}
	if err := t.checkValue(value); err != nil {
		return err
	}
	if count > math.MaxUint64-t.totalFreq {
		return errors.Wrapf(ErrValueOutOfRange, "Adding %d occurrences of value %d overflows the total frequency", count, value)
	}
	if count != 0 {
		t.stat(value).freq += count
		t.totalFreq += count
	}
	return nil
}

// Frequency returns how many times value was recorded.
func (t *Table) Frequency(value uint32) uint64 {
	if stat, ok := t.stats[value]; ok {
		return stat.freq
	}
	return 0
}

// CodeLength returns the length of the code assigned to value, 0 if it has none.
func (t *Table) CodeLength(value uint32) uint32 {
	if t.ready {
		return t.codes[value].length
	}
	if stat, ok := t.stats[value]; ok {
		return stat.codeLength
	}
	return 0
}

// Code returns the code assigned to value. ok is false until CalcTables has
// succeeded or when value has no code.
func (t *Table) Code(value uint32) (code uint64, length uint32, ok bool) {
	if !t.ready {
		return 0, 0, false
	}
	entry, ok := t.codes[value]
	return entry.code, entry.length, ok
}

// MaxUsedLength returns the longest code length with at least one value.
func (t *Table) MaxUsedLength() uint32 {
	for length := uint32(MaxCodeLength); length > 0; length-- {
		if t.valuesPerLength[length] != 0 {
			return length
		}
	}
	return 0
}

// SetValuesPerLength sets how many values have a code of the given length.
// It switches the table to caller supplied lengths; frequencies cannot be
// mixed in afterwards.
func (t *Table) SetValuesPerLength(length, count uint32) error {
	if length == 0 || length > MaxCodeLength {
		return errors.Wrapf(ErrCodeLengthOutOfRange, "Length %d is not between 1 and %d", length, MaxCodeLength)
	}
	if err := t.enterDirect(); err != nil {
		return err
	}
	t.valuesPerLength[length] = count
	return nil
}

// ValuesPerLength returns how many values have a code of the given length.
func (t *Table) ValuesPerLength(length uint32) uint32 {
	if length == 0 || length > MaxCodeLength {
		return 0
	}
	return t.valuesPerLength[length]
}

// AddOrderedValue stores value at position index of the ordered value list,
// growing the list when needed. Values are ordered by code length and, within
// a length, in code order. The values per length must be set first: index
// must be below their total and below the number of distinct values.
func (t *Table) AddOrderedValue(index int, value uint32) error {
	if err := t.checkValue(value); err != nil {
		return err
	}
	if err := t.enterDirect(); err != nil {
		return err
	}
	if index < 0 || index >= t.totalValues() || uint64(index)>>t.maxValueBits != 0 {
		return errors.Wrapf(ErrIndexOutOfRange, "Index %d, values per length account for %d values of %d bits",
			index, t.totalValues(), t.maxValueBits)
	}
	if index >= len(t.orderedValues) {
		t.orderedValues = append(t.orderedValues, make([]uint32, index+1-len(t.orderedValues))...)
	}
	t.orderedValues[index] = value
	return nil
}

// OrderedValue returns the value stored at position index of the ordered value list.
func (t *Table) OrderedValue(index int) (uint32, error) {
	if index < 0 || index >= len(t.orderedValues) {
		return 0, errors.Wrapf(ErrIndexOutOfRange, "Index %d, table has %d ordered values", index, len(t.orderedValues))
	}
	return t.orderedValues[index], nil
}

// NumOrderedValues returns the length of the ordered value list. It is only
// populated once CalcTables ran or values were supplied directly.
func (t *Table) NumOrderedValues() int {
	return len(t.orderedValues)
}

func (t *Table) enterDirect() error {
	switch t.state {
	case stateDirect:
	case stateAccumulating:
		if len(t.stats) != 0 {
			return errors.Wrap(ErrSequence, "Frequencies were recorded, reset the table before supplying lengths")
		}
		t.state = stateDirect
	default:
		return errors.Wrap(ErrSequence, "Lengths were solved from frequencies, reset the table before supplying lengths")
	}
	t.ready = false
	return nil
}

func (t *Table) checkValue(value uint32) error {
	if t.maxValueBits < MaxValueBits && value>>t.maxValueBits != 0 {
		return errors.Wrapf(ErrValueOutOfRange, "Value %d does not fit in %d bits", value, t.maxValueBits)
	}
	return nil
}

func (t *Table) stat(value uint32) *valueStat {
	stat, ok := t.stats[value]
	if !ok {
		stat = &valueStat{}
		t.stats[value] = stat
	}
	return stat
}

func (t *Table) totalValues() int {
	total := 0
	for _, count := range t.valuesPerLength {
		total += int(count)
	}
	return total
}
