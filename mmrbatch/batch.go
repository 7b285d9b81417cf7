package mmrbatch

import (
	"context"

	"github.com/datatrails/go-datatrails-common/logger"
)

// Batch buffers appended runs of mmr nodes until they are committed to the
// backing store S.
//
// E is the element type and F the fork identifier type. S is whatever the
// caller provides as the store: reads require S to implement ReadOps[E] and
// commits require it to implement WriteOps[E, F].
//
// A Batch is not safe for concurrent use.
type Batch[E, F, S any] struct {
	pending []Run[E]
	store   S

	log         logger.Logger
	legacyDrain bool
	cloneElem   func(E) E
	cloneFork   func(F) F

	// maxLast is the highest element position among the pending runs, valid
	// when staged is true. ordered is false once a run has started at or
	// below it.
	maxLast uint64
	staged  bool
	ordered bool
}

func New[E, F, S any](store S, opts ...Option) *Batch[E, F, S] {
	b := &Batch[E, F, S]{
		store:     store,
		cloneElem: identity[E],
		cloneFork: identity[F],
		ordered:   true,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NewBytes returns a batch of byte slice elements which copies elements out
// on read.
func NewBytes[F, S any](store S, opts ...Option) *Batch[[]byte, F, S] {
	opts = append([]Option{WithCloneElem(CloneBytes)}, opts...)
	return New[[]byte, F](store, opts...)
}

func (b *Batch[E, F, S]) setLogger(log logger.Logger)  { b.log = log }
func (b *Batch[E, F, S]) setLegacyDrain(legacy bool)   { b.legacyDrain = legacy }
func (b *Batch[E, F, S]) setCloneElem(clone func(E) E) { b.cloneElem = clone }
func (b *Batch[E, F, S]) setCloneFork(clone func(F) F) { b.cloneFork = clone }

// Store returns the backing store. No I/O is performed.
func (b *Batch[E, F, S]) Store() S {
	return b.store
}

// Append stages elems as a run starting at pos. The caller must not modify
// elems afterwards. Empty runs are accepted.
//
// Runs are not merged or validated. Appending a run that starts below the
// end of an earlier pending run is permitted, the newer run shadows the older
// one for the positions it covers, but see Ordered.
func (b *Batch[E, F, S]) Append(pos uint64, elems []E) {
	run := Run[E]{Start: pos, Elems: elems}
	if b.ordered && b.overlaps(run) {
		b.ordered = false
		if b.log != nil {
			b.log.Infof(
				"mmrbatch: run [%d, %d) starts at or below pending position %d, reads may not see older runs",
				run.Start, run.End(), b.maxLast)
		}
	}
	b.push(run)
}

// overlaps reports whether run starts at or below an element position that
// is already pending.
func (b *Batch[E, F, S]) overlaps(run Run[E]) bool {
	return b.staged && run.Start <= b.maxLast
}

func (b *Batch[E, F, S]) push(run Run[E]) {
	b.pending = append(b.pending, run)
	if last, ok := run.last(); ok && (!b.staged || last > b.maxLast) {
		b.maxLast = last
		b.staged = true
	}
}

// Extend appends runs, typically drained from another batch, in order.
func (b *Batch[E, F, S]) Extend(runs []Run[E]) {
	for _, run := range runs {
		b.Append(run.Start, run.Elems)
	}
}

// Ordered reports whether every pending run starts at or after the end of
// all runs appended before it. When true, reads are guaranteed to see the
// newest pending value for every staged position.
func (b *Batch[E, F, S]) Ordered() bool {
	return b.ordered
}

// Len returns the number of pending runs
func (b *Batch[E, F, S]) Len() int {
	return len(b.pending)
}

// Size returns the number of pending elements, counting shadowed elements
func (b *Batch[E, F, S]) Size() int {
	n := 0
	for _, run := range b.pending {
		n += len(run.Elems)
	}
	return n
}

// Runs returns the pending runs in append order without removing them. The
// returned slice is a copy, the element slices are shared.
func (b *Batch[E, F, S]) Runs() []Run[E] {
	runs := make([]Run[E], len(b.pending))
	copy(runs, b.pending)
	return runs
}

// Drain removes and returns all pending runs in append order. The store is
// not contacted.
func (b *Batch[E, F, S]) Drain() []Run[E] {
	runs := b.pending
	b.reset(nil)
	return runs
}

// GetElem returns the element at pos.
//
// Pending runs are searched newest first. The first run that covers pos
// provides the result. The search stops, and falls through to the store,
// at the first run that starts at or below pos but ends before it.
func (b *Batch[E, F, S]) GetElem(ctx context.Context, pos uint64) (E, bool, error) {

	if elem, ok := b.pendingElem(pos); ok {
		return elem, true, nil
	}

	reader, ok := any(b.store).(ReadOps[E])
	if !ok {
		var zero E
		return zero, false, ErrReadUnsupported
	}
	return reader.GetElem(ctx, pos)
}

func (b *Batch[E, F, S]) pendingElem(pos uint64) (E, bool) {
	for i := len(b.pending) - 1; i >= 0; i-- {
		run := b.pending[i]
		if pos < run.Start {
			continue
		}
		if run.Covers(pos) {
			return b.cloneElem(run.Elems[pos-run.Start]), true
		}
		break
	}
	var zero E
	return zero, false
}

// Commit writes the pending runs to the store, oldest first, each tagged
// with its own copy of fork.
//
// Commit is not transactional. If a write fails, or ctx is done before a
// write is attempted, Commit stops and returns a *CommitError. The runs
// written before the failure are durable and are removed from the batch.
// The failed run and those after it stay pending, in order, so a later
// Commit retries them (unless the batch was created WithLegacyDrain, in
// which case they are discarded).
//
// Commit on an empty batch does nothing and returns nil.
func (b *Batch[E, F, S]) Commit(ctx context.Context, fork F) error {

	if len(b.pending) == 0 {
		return nil
	}

	writer, ok := any(b.store).(WriteOps[E, F])
	if !ok {
		return ErrWriteUnsupported
	}

	for i, run := range b.pending {

		err := ctx.Err()
		if err == nil {
			err = writer.Append(ctx, run.Start, run.Elems, b.cloneFork(fork))
		}
		if err == nil {
			if b.log != nil {
				b.log.Debugf("mmrbatch: committed run [%d, %d)", run.Start, run.End())
			}
			continue
		}

		cerr := &CommitError{Committed: i, Pos: run.Start, Err: err}
		if b.legacyDrain {
			cerr.Discarded = len(b.pending) - i
			b.reset(nil)
		} else {
			cerr.Pending = len(b.pending) - i
			b.reset(b.pending[i:])
		}
		if b.log != nil {
			b.log.Infof("mmrbatch: %v", cerr)
		}
		return cerr
	}

	b.reset(nil)
	return nil
}

// reset replaces the pending runs with a fresh copy of remaining and
// recomputes the ordering state for them.
func (b *Batch[E, F, S]) reset(remaining []Run[E]) {
	b.pending = nil
	b.maxLast = 0
	b.staged = false
	b.ordered = true
	if len(remaining) == 0 {
		return
	}
	b.pending = make([]Run[E], 0, len(remaining))
	for _, run := range remaining {
		if b.overlaps(run) {
			b.ordered = false
		}
		b.push(run)
	}
}
