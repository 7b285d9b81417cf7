package mmrbatch

import (
	"context"
	"fmt"
)

// Nodes adapts a byte slice batch to the node store interface the mmr
// algorithm appends through:
//
//	Get(i uint64) ([]byte, error)
//	Append(value []byte) (uint64, error)
//
// Appended nodes are held by the adapter until Stage or Flush, which add
// them to the batch as a single run. Adding a leaf appends the leaf and then
// back fills its parents, so staging per node would give the store one run,
// and for blobstore one blob, per node. Get sees the held nodes first, then
// the batch and its store.
//
// The interface has no context parameter, so the context given to NewNodes
// is used for store reads and for Flush.
type Nodes[F, S any] struct {
	ctx   context.Context
	batch *Batch[[]byte, F, S]

	// held are the nodes appended since the last Stage, the first at start
	start uint64
	held  [][]byte
}

// NewNodes returns an adapter whose first Append lands at position next,
// which is normally the size of the durably stored mmr.
func NewNodes[F, S any](ctx context.Context, batch *Batch[[]byte, F, S], next uint64) *Nodes[F, S] {
	return &Nodes[F, S]{ctx: ctx, batch: batch, start: next}
}

// Next returns the position the next Append will use, which is also the
// current mmr size including unflushed nodes.
func (n *Nodes[F, S]) Next() uint64 {
	return n.start + uint64(len(n.held))
}

func (n *Nodes[F, S]) Batch() *Batch[[]byte, F, S] {
	return n.batch
}

func (n *Nodes[F, S]) Get(i uint64) ([]byte, error) {
	if i >= n.start && i-n.start < uint64(len(n.held)) {
		return n.batch.cloneElem(n.held[i-n.start]), nil
	}
	value, ok, err := n.batch.GetElem(n.ctx, i)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: position %d", ErrNotFound, i)
	}
	return value, nil
}

// Append holds value at the next position and returns the position
// following it.
func (n *Nodes[F, S]) Append(value []byte) (uint64, error) {
	n.held = append(n.held, value)
	return n.Next(), nil
}

// Stage adds the held nodes to the batch as one run
func (n *Nodes[F, S]) Stage() {
	if len(n.held) == 0 {
		return
	}
	n.batch.Append(n.start, n.held)
	n.start += uint64(len(n.held))
	n.held = nil
}

// Flush stages the held nodes and commits the batch under fork.
func (n *Nodes[F, S]) Flush(fork F) error {
	n.Stage()
	return n.batch.Commit(n.ctx, fork)
}
