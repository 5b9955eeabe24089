// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

package huffman

type freqValue struct {
	freq  uint64
	value uint32
}

// freqValueLess orders entries by ascending frequency. On equal frequency the
// larger value is the lesser one, so it is merged first and ends up with the
// longer code. Peers building the same table rely on this exact order.
func freqValueLess(left, right freqValue) bool {
	return left.freq < right.freq || (left.freq == right.freq && left.value > right.value)
}

// freqValues is a min-heap under freqValueLess.
type freqValues []freqValue

func (f freqValues) Len() int           { return len(f) }
func (f freqValues) Less(i, j int) bool { return freqValueLess(f[i], f[j]) }
func (f freqValues) Swap(i, j int)      { f[i], f[j] = f[j], f[i] }

func (f *freqValues) Push(x any) {
	*f = append(*f, x.(freqValue))
}

func (f *freqValues) Pop() any {
	old := *f
	n := len(old)
	item := old[n-1]
	*f = old[:n-1]
	return item
}

type lengthValue struct {
	length uint32
	value  uint32
}

// lengthValueLess is the canonical assignment order: shorter codes first,
// then ascending value.
func lengthValueLess(left, right lengthValue) bool {
	return left.length < right.length || (left.length == right.length && left.value < right.value)
}

type lengthValues []lengthValue

func (l lengthValues) Len() int           { return len(l) }
func (l lengthValues) Less(i, j int) bool { return lengthValueLess(l[i], l[j]) }
func (l lengthValues) Swap(i, j int)      { l[i], l[j] = l[j], l[i] }
