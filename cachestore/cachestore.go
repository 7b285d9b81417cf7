// Package cachestore keeps recently read mmr elements in memory in front of
// a slower backing store.
//
// Only elements the backing store reported as present are cached. Appends
// pass straight through and evict the positions they write, so a cached
// value is never older than the last write made through this store.
package cachestore

import (
	"context"
	"errors"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/forestrie/go-merklelog/mmrbatch"
	lru "github.com/hashicorp/golang-lru"
)

var ErrCacheSize = errors.New("the cache size must be positive")

type Store[E, F any] struct {
	inner mmrbatch.ReadWriteOps[E, F]
	cache *lru.Cache
	log   logger.Logger

	hits   uint64
	misses uint64
}

func New[E, F any](inner mmrbatch.ReadWriteOps[E, F], size int, log logger.Logger) (*Store[E, F], error) {
	if size <= 0 {
		return nil, ErrCacheSize
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &Store[E, F]{inner: inner, cache: cache, log: log}, nil
}

func (s *Store[E, F]) GetElem(ctx context.Context, pos uint64) (E, bool, error) {
	if v, ok := s.cache.Get(pos); ok {
		s.hits++
		return v.(E), true, nil
	}
	s.misses++

	elem, ok, err := s.inner.GetElem(ctx, pos)
	if err != nil || !ok {
		return elem, ok, err
	}
	s.cache.Add(pos, elem)
	return elem, true, nil
}

func (s *Store[E, F]) Append(ctx context.Context, pos uint64, elems []E, fork F) error {
	// evict first, a failed append may still have written some of the run
	for i := range elems {
		s.cache.Remove(pos + uint64(i))
	}
	err := s.inner.Append(ctx, pos, elems, fork)
	if err != nil && s.log != nil {
		s.log.Infof("cachestore: append at %d: %v", pos, err)
	}
	return err
}

// Purge empties the cache, for example after the read fork of the inner
// store is changed.
func (s *Store[E, F]) Purge() {
	s.cache.Purge()
}

// Stats returns the cache hit and miss counts
func (s *Store[E, F]) Stats() (hits, misses uint64) {
	return s.hits, s.misses
}

func (s *Store[E, F]) Len() int {
	return s.cache.Len()
}
