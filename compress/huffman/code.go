// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

package huffman

import (
	"math"
	"sort"

	"github.com/nuclio/errors"
)

// CalcTables assigns canonical codes and builds the encode and decode tables.
// It needs the lengths from CalcCodesLength or values supplied through
// SetValuesPerLength and AddOrderedValue.
func (t *Table) CalcTables() error {
	switch t.state {
	case stateSolved:
		t.orderedValues = t.orderByLength()
	case stateDirect:
	default:
		return errors.Wrap(ErrSequence, "Code lengths must be calculated or supplied before the tables")
	}
	t.ready = false

	if total := t.totalValues(); total != len(t.orderedValues) {
		return errors.Wrapf(ErrTableMismatch, "Lengths account for %d values, %d ordered values given", total, len(t.orderedValues))
	}

	t.codes = make(map[uint32]codeEntry, len(t.orderedValues))

	code := uint64(0)
	exhausted := false
	idx := 0
	t.maxLength = 0
	for length := uint32(1); length <= MaxCodeLength; length++ {
		count := t.valuesPerLength[length]
		t.firstIndex[length] = idx
		t.minCode[length] = code
		t.maxCode[length] = 0
		if count != 0 {
			if exhausted || !codesFit(code, count, length) {
				return errors.Wrapf(ErrCodeLengthOverflow, "No room for %d codes of length %d", count, length)
			}
			for _, value := range t.orderedValues[idx : idx+int(count)] {
				if _, ok := t.codes[value]; ok {
					return errors.Wrapf(ErrDuplicateValue, "Value %d", value)
				}
				t.codes[value] = codeEntry{code: code, length: length}
				code++
			}
			t.maxCode[length] = code - 1
			t.maxLength = length
			idx += int(count)
		}
		if length == MaxCodeLength {
			break
		}
		if code == uint64(1)<<length {
			exhausted = true
		}
		code <<= 1
	}

	t.ready = true
	if t.logger != nil {
		t.logger.DebugWith("Calculated huffman tables",
			"values", len(t.orderedValues),
			"maxLength", t.maxLength)
	}
	return nil
}

// codesFit reports whether count consecutive codes starting at code fit in
// length bits.
func codesFit(code uint64, count uint32, length uint32) bool {
	if length == MaxCodeLength {
		return code <= math.MaxUint64-uint64(count-1)
	}
	return code+uint64(count) <= uint64(1)<<length
}

func (t *Table) orderByLength() []uint32 {
	lengths := make(lengthValues, 0, len(t.stats))
	for value, stat := range t.stats {
		if stat.codeLength != 0 {
			lengths = append(lengths, lengthValue{length: stat.codeLength, value: value})
		}
	}
	sort.Sort(lengths)

	ordered := t.orderedValues[:0]
	for _, lv := range lengths {
		ordered = append(ordered, lv.value)
	}
	return ordered
}

// RemoveLastCode drops the value owning the last code, i.e. the numerically
// highest code of the longest length. The code stays reserved: it is never
// written, and reading it fails with ErrInvalidCode.
//
// It can be called between CalcCodesLength and CalcTables, as the JPEG
// encoder does to keep the all-ones code unused, or once the tables exist.
func (t *Table) RemoveLastCode() error {
	if t.state == stateAccumulating {
		return errors.Wrap(ErrSequence, "No code lengths to remove a code from")
	}
	longest := t.MaxUsedLength()
	if longest == 0 {
		return errors.Wrap(ErrSequence, "The table has no codes")
	}

	var value uint32
	if t.ready || t.state == stateDirect {
		idx := t.totalValues() - 1
		if idx >= len(t.orderedValues) {
			return errors.Wrapf(ErrTableMismatch, "Last code is at index %d, %d ordered values given", idx, len(t.orderedValues))
		}
		value = t.orderedValues[idx]
		t.orderedValues = append(t.orderedValues[:idx], t.orderedValues[idx+1:]...)
	} else {
		value = t.lastValueOfLength(longest)
	}

	if t.state == stateSolved {
		t.stats[value].codeLength = 0
	}
	t.valuesPerLength[longest]--
	if t.ready {
		t.maxCode[longest]--
		delete(t.codes, value)
		t.maxLength = t.MaxUsedLength()
	}

	if t.logger != nil {
		t.logger.DebugWith("Removed last code", "value", value, "length", longest)
	}
	return nil
}

func (t *Table) lastValueOfLength(length uint32) uint32 {
	last := uint32(0)
	for value, stat := range t.stats {
		if stat.codeLength == length && value >= last {
			last = value
		}
	}
	return last
}
