package mmrbatch

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("mmr node not found in the batch or the store")
	ErrCommitIncomplete  = errors.New("the batch commit did not complete")
	ErrReadUnsupported   = errors.New("the backing store does not provide the read capability")
	ErrWriteUnsupported  = errors.New("the backing store does not provide the write capability")
	ErrForkIDUnavailable = errors.New("failed to generate a fork identifier")
)

// CommitError reports a commit that stopped part way through.
//
// Committed runs are durable. Pending runs are still held by the batch, and
// Discarded runs were dropped without being written (only when the batch is
// configured WithLegacyDrain). Pos is the start of the run whose write failed
// and Err is the failure reported by the store (or the context).
type CommitError struct {
	Committed int
	Pending   int
	Discarded int
	Pos       uint64
	Err       error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf(
		"%v: run at %d failed after %d committed (%d pending, %d discarded): %v",
		ErrCommitIncomplete, e.Pos, e.Committed, e.Pending, e.Discarded, e.Err)
}

// Unwrap makes both ErrCommitIncomplete and the underlying store error
// matchable with errors.Is and errors.As
func (e *CommitError) Unwrap() []error {
	return []error{ErrCommitIncomplete, e.Err}
}
