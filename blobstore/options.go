package blobstore

import (
	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/forestrie/go-merklelog/mmrbatch"
)

const (
	DefaultRunCacheSize = 64
)

type Options struct {
	Log          logger.Logger
	ReadFork     mmrbatch.ForkID
	Prefix       string
	RunCacheSize int
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

// WithPrefix sets the blob path prefix, V1MMRBatchPrefix by default
func WithPrefix(prefix string) Option {
	return func(opts any) {
		if o, ok := opts.(*Options); ok {
			o.Prefix = prefix
		}
	}
}

// WithRunCacheSize sets how many decoded run blobs are kept in memory
func WithRunCacheSize(n int) Option {
	return func(opts any) {
		if o, ok := opts.(*Options); ok {
			o.RunCacheSize = n
		}
	}
}
