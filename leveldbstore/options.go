package leveldbstore

import (
	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/forestrie/go-merklelog/mmrbatch"
)

type Options struct {
	Log      logger.Logger
	ReadFork mmrbatch.ForkID
	Prefix   []byte
	Sync     bool
}

// Option is a generic option type used for storage implementations.
// Implementations type assert to Options target record and if that fails the
// expectation they ignore the options
type Option func(any)

func WithLogger(log logger.Logger) Option {
	return func(opts any) {
		if o, ok := opts.(*Options); ok {
			o.Log = log
		}
	}
}

// WithReadFork selects the fork GetElem reads from. Positions absent from
// that fork are read from the canonical fork.
func WithReadFork(fork mmrbatch.ForkID) Option {
	return func(opts any) {
		if o, ok := opts.(*Options); ok {
			o.ReadFork = fork
		}
	}
}

// WithPrefix namespaces every key the store uses, so that several stores can
// share one database.
func WithPrefix(prefix []byte) Option {
	return func(opts any) {
		if o, ok := opts.(*Options); ok {
			o.Prefix = append([]byte(nil), prefix...)
		}
	}
}

// WithSync makes every committed run an fsync'd write
func WithSync(sync bool) Option {
	return func(opts any) {
		if o, ok := opts.(*Options); ok {
			o.Sync = sync
		}
	}
}
