// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

package huffman

import (
	"container/heap"
	"sort"

	"github.com/nuclio/errors"
)

// CalcCodesLength derives a code length for every value with a non-zero
// frequency. No length exceeds maxCodeLength and a more frequent value never
// gets a longer code than a less frequent one.
func (t *Table) CalcCodesLength(maxCodeLength uint32) error {
	if t.state != stateAccumulating {
		return errors.Wrap(ErrSequence, "Code lengths can only be calculated once per reset")
	}
	if maxCodeLength == 0 || maxCodeLength > MaxCodeLength {
		return errors.Wrapf(ErrCodeLengthOutOfRange, "Max code length %d is not between 1 and %d", maxCodeLength, MaxCodeLength)
	}

	counts := t.usedValues()
	if maxCodeLength < 63 && uint64(len(counts)) > uint64(1)<<maxCodeLength {
		return errors.Wrapf(ErrCodeLengthOverflow, "%d values cannot be coded in %d bits", len(counts), maxCodeLength)
	}

	naturalLen := t.mergeLengths(counts)
	lenCounts := make([]uint32, naturalLen+1)
	for _, c := range counts {
		lenCounts[t.stats[c.value].codeLength]++
	}
	if naturalLen > maxCodeLength {
		if err := enforceMaxLen(lenCounts, maxCodeLength); err != nil {
			return errors.Wrapf(err, "Failed to limit %d values to %d bits", len(counts), maxCodeLength)
		}
		if t.logger != nil {
			t.logger.DebugWith("Limited code lengths",
				"values", len(counts),
				"naturalLength", naturalLen,
				"maxCodeLength", maxCodeLength)
		}
	}

	// hand out the lengths again, shortest to the most frequent
	sort.Sort(sort.Reverse(counts))
	idx := 0
	for length := 1; length < len(lenCounts); length++ {
		num := lenCounts[length]
		for j := uint32(0); j < num; j++ {
			t.stats[counts[idx].value].codeLength = uint32(length)
			idx++
		}
		if length <= MaxCodeLength {
			t.valuesPerLength[length] = num
		}
	}

	t.state = stateSolved
	if t.logger != nil {
		t.logger.DebugWith("Calculated code lengths",
			"values", len(counts),
			"maxUsedLength", t.MaxUsedLength())
	}
	return nil
}

func (t *Table) usedValues() freqValues {
	counts := make(freqValues, 0, len(t.stats))
	for value, stat := range t.stats {
		stat.codeLength = 0
		stat.next = valueLink{}
		if stat.freq != 0 {
			counts = append(counts, freqValue{freq: stat.freq, value: value})
		}
	}
	return counts
}

// mergeLengths repeatedly merges the two least entries. No tree is built: a
// merged entry keeps the value of its lesser half, and the leaves it covers
// are chained through valueStat.next so their lengths can be bumped in place.
// It returns the longest length.
func (t *Table) mergeLengths(counts freqValues) uint32 {
	switch len(counts) {
	case 0:
		return 0
	case 1:
		t.stats[counts[0].value].codeLength = 1
		return 1
	}

	work := make(freqValues, len(counts))
	copy(work, counts)
	heap.Init(&work)
	for work.Len() > 1 {
		low := heap.Pop(&work).(freqValue)
		high := heap.Pop(&work).(freqValue)
		t.deepen(low.value)
		t.deepen(high.value)
		t.chain(low.value, high.value)
		heap.Push(&work, freqValue{freq: low.freq + high.freq, value: low.value})
	}

	maxLen := uint32(0)
	for _, c := range counts {
		if l := t.stats[c.value].codeLength; l > maxLen {
			maxLen = l
		}
	}
	return maxLen
}

func (t *Table) deepen(value uint32) {
	for link := (valueLink{value: value, valid: true}); link.valid; link = t.stats[link.value].next {
		t.stats[link.value].codeLength++
	}
}

func (t *Table) chain(head, tail uint32) {
	for t.stats[head].next.valid {
		head = t.stats[head].next.value
	}
	t.stats[head].next = valueLink{value: tail, valid: true}
}

// enforceMaxLen moves codes longer than maxLen up, keeping the Kraft sum of
// lenCounts (index = length) unchanged. Two codes of the deepest level become
// one code a level up plus two children of a shorter code.
func enforceMaxLen(lenCounts []uint32, maxLen uint32) error {
	for i := uint32(len(lenCounts) - 1); i > maxLen; i-- {
		for lenCounts[i] > 0 {
			if lenCounts[i] < 2 {
				return ErrCodeLengthOverflow
			}
			j := i - 2
			for j > 0 && lenCounts[j] == 0 {
				j--
			}
			if j == 0 {
				return ErrCodeLengthOverflow
			}
			lenCounts[i] -= 2
			lenCounts[i-1]++
			lenCounts[j+1] += 2
			lenCounts[j]--
		}
	}
	return nil
}
