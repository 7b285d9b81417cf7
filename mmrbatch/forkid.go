package mmrbatch

import (
	"fmt"

	"github.com/google/uuid"
)

// ForkID is the fork identifier used by the durable stores in this module.
// The batch itself accepts any fork type.
type ForkID = uuid.UUID

// CanonicalFork identifies the non speculative branch. Stores fall back to
// it when the fork they read from has no element at a position.
var CanonicalFork = uuid.Nil

// NewForkID returns a time ordered fork identifier, so forks sort by the
// order they were started in.
func NewForkID() (ForkID, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrForkIDUnavailable, err)
	}
	return id, nil
}
