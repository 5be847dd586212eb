package introspect

import "fmt"

// Sequence is a fixed, ordered list of integer positions.
// Index maps are Sequences of field indices.
type Sequence []int

// Iota returns the sequence 0, 1, ..., n-1.
func Iota(n int) Sequence {
	if n <= 0 {
		return Sequence{}
	}
	seq := make(Sequence, n)
	for i := range seq {
		seq[i] = i
	}
	return seq
}

// Select returns the elements of seq for which keep returns true, in order.
func Select(seq Sequence, keep func(int) bool) Sequence {
	out := make(Sequence, 0, len(seq))
	for _, v := range seq {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// Len returns the number of elements in the sequence.
func (s Sequence) Len() int {
	return len(s)
}

// At returns the element at position i, or -1 when i is out of range.
func (s Sequence) At(i int) int {
	if i < 0 || i >= len(s) {
		return -1
	}
	return s[i]
}

// Array returns an independent copy of the sequence for O(1) lookups.
func (s Sequence) Array() []int {
	arr := make([]int, len(s))
	copy(arr, s)
	return arr
}

// IndexOfElement returns the position of the first occurrence of n in seq.
// It panics if seq is empty or does not contain n: callers use it with
// positions they know to be present.
func IndexOfElement(n int, seq Sequence) int {
	if len(seq) == 0 {
		panic("introspect: IndexOfElement on an empty sequence")
	}
	k := IndexOf(n, seq)
	if k < 0 {
		panic(fmt.Sprintf("introspect: element %d not found in sequence %v", n, []int(seq)))
	}
	return k
}

// IndexOf returns the position of the first occurrence of n in seq, or -1.
func IndexOf(n int, seq Sequence) int {
	for k, v := range seq {
		if v == n {
			return k
		}
	}
	return -1
}
