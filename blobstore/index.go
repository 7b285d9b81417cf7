package blobstore

import "sort"

// runIndex is the set of run names known for a fork, in ascending Seq order
type runIndex []RunName

func (idx runIndex) insert(name RunName) runIndex {
	i := sort.Search(len(idx), func(i int) bool { return idx[i].Seq >= name.Seq })
	if i < len(idx) && idx[i].Seq == name.Seq {
		idx[i] = name
		return idx
	}
	idx = append(idx, RunName{})
	copy(idx[i+1:], idx[i:])
	idx[i] = name
	return idx
}

// nextSeq returns the sequence number for the next run committed to the fork
func (idx runIndex) nextSeq() uint64 {
	if len(idx) == 0 {
		return 0
	}
	return idx[len(idx)-1].Seq + 1
}

// newest returns the most recently committed run covering pos
func (idx runIndex) newest(pos uint64) (RunName, bool) {
	for i := len(idx) - 1; i >= 0; i-- {
		if idx[i].Covers(pos) {
			return idx[i], true
		}
	}
	return RunName{}, false
}

func (idx runIndex) remove(seq uint64) runIndex {
	i := sort.Search(len(idx), func(i int) bool { return idx[i].Seq >= seq })
	if i == len(idx) || idx[i].Seq != seq {
		return idx
	}
	return append(idx[:i], idx[i+1:]...)
}
