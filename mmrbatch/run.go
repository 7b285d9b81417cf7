package mmrbatch

import "math"

// Run is a contiguous block of elements staged by a single Append
type Run[E any] struct {
	Start uint64
	Elems []E
}

// End returns the position immediately after the last element of the run.
// A run holding the element at math.MaxUint64 has no such position, End
// returns math.MaxUint64 for it.
func (r Run[E]) End() uint64 {
	n := uint64(len(r.Elems))
	if r.Start > math.MaxUint64-n {
		return math.MaxUint64
	}
	return r.Start + n
}

// Covers reports whether the run holds an element for pos
func (r Run[E]) Covers(pos uint64) bool {
	return pos >= r.Start && pos-r.Start < uint64(len(r.Elems))
}

// last returns the position of the final element. ok is false for an empty
// run.
func (r Run[E]) last() (pos uint64, ok bool) {
	if len(r.Elems) == 0 {
		return 0, false
	}
	return r.Start + uint64(len(r.Elems)-1), true
}
