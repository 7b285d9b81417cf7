package mmrbatch

import (
	"bytes"

	"github.com/datatrails/go-datatrails-common/logger"
)

// Option is a generic option type for batches. Each option type asserts the
// target for the setting it cares about and ignores targets that don't
// provide it.
type Option func(any)

type logSetter interface{ setLogger(log logger.Logger) }
type legacyDrainSetter interface{ setLegacyDrain(legacy bool) }
type elemCloneSetter[E any] interface{ setCloneElem(clone func(E) E) }
type forkCloneSetter[F any] interface{ setCloneFork(clone func(F) F) }

// WithLogger enables debug logging of commits and reporting of appends that
// break the ordering contract.
func WithLogger(log logger.Logger) Option {
	return func(target any) {
		if s, ok := target.(logSetter); ok {
			s.setLogger(log)
		}
	}
}

// WithLegacyDrain restores the drain-then-write commit behaviour: when a
// write fails, the failed run and every run not yet attempted are dropped
// from the batch rather than being kept for a later commit.
func WithLegacyDrain(legacy bool) Option {
	return func(target any) {
		if s, ok := target.(legacyDrainSetter); ok {
			s.setLegacyDrain(legacy)
		}
	}
}

// WithCloneElem sets the function used to copy an element out of a pending
// run on read. The default is plain assignment.
func WithCloneElem[E any](clone func(E) E) Option {
	return func(target any) {
		if s, ok := target.(elemCloneSetter[E]); ok {
			s.setCloneElem(clone)
		}
	}
}

// WithCloneFork sets the function used to copy the fork identifier for each
// committed run. The default is plain assignment.
func WithCloneFork[F any](clone func(F) F) Option {
	return func(target any) {
		if s, ok := target.(forkCloneSetter[F]); ok {
			s.setCloneFork(clone)
		}
	}
}

// CloneBytes copies a byte slice element. nil stays nil.
func CloneBytes(b []byte) []byte {
	return bytes.Clone(b)
}

func identity[T any](v T) T { return v }
