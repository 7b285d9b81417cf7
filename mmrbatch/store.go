package mmrbatch

import (
	"context"
)

// ReadOps is the read capability of a backing store.
//
// GetElem returns the element durably stored at pos. The boolean is false,
// and the error nil, when the store has no element at that position.
type ReadOps[E any] interface {
	GetElem(ctx context.Context, pos uint64) (E, bool, error)
}

// WriteOps is the write capability of a backing store.
//
// Append durably stores the contiguous run elems at [pos, pos+len(elems))
// on behalf of fork. Ownership of elems passes to the store.
type WriteOps[E, F any] interface {
	Append(ctx context.Context, pos uint64, elems []E, fork F) error
}

type ReadWriteOps[E, F any] interface {
	ReadOps[E]
	WriteOps[E, F]
}
