// Package leveldbstore is a durable mmr backing store on goleveldb.
//
// Elements are keyed by fork and position:
//
//	prefix | 'e' | fork (16 bytes) | position (8 bytes, big endian)
//
// and each fork records its size, one more than the highest position
// written, under
//
//	prefix | 's' | fork (16 bytes)
//
// A run is written with a single leveldb batch, so each run is either
// entirely durable or not at all.
package leveldbstore

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/forestrie/go-merklelog/elemcodec"
	"github.com/forestrie/go-merklelog/mmrbatch"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

const (
	elemTag = 'e'
	sizeTag = 's'
)

type Store[E any] struct {
	Options
	db     *leveldb.DB
	owned  bool
	codec  elemcodec.Codec[E]
	closed bool
}

// Open opens, or creates, the database at path. Close releases it.
func Open[E any](path string, codec elemcodec.Codec[E], opts ...Option) (*Store[E], error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	s := New(db, codec, opts...)
	s.owned = true
	if s.Log != nil {
		s.Log.Infof("leveldbstore: opened %s", path)
	}
	return s, nil
}

// New returns a store on an already open database. Close does not close db.
func New[E any](db *leveldb.DB, codec elemcodec.Codec[E], opts ...Option) *Store[E] {
	s := &Store[E]{db: db, codec: codec}
	for _, o := range opts {
		o(&s.Options)
	}
	return s
}

func (s *Store[E]) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if !s.owned {
		return nil
	}
	return s.db.Close()
}

func (s *Store[E]) SelectFork(fork mmrbatch.ForkID) {
	s.ReadFork = fork
}

func (s *Store[E]) GetElem(ctx context.Context, pos uint64) (E, bool, error) {
	var zero E
	if err := s.ready(ctx); err != nil {
		return zero, false, err
	}

	data, err := s.db.Get(s.elemKey(s.ReadFork, pos), nil)
	if errors.Is(err, leveldb.ErrNotFound) && s.ReadFork != mmrbatch.CanonicalFork {
		data, err = s.db.Get(s.elemKey(mmrbatch.CanonicalFork, pos), nil)
	}
	if errors.Is(err, leveldb.ErrNotFound) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, err
	}

	elem, err := s.codec.Decode(data)
	if err != nil {
		return zero, false, fmt.Errorf("position %d: %w", pos, err)
	}
	return elem, true, nil
}

func (s *Store[E]) Append(ctx context.Context, pos uint64, elems []E, fork mmrbatch.ForkID) error {
	if err := s.ready(ctx); err != nil {
		return err
	}

	size, err := s.Size(fork)
	if err != nil {
		return err
	}

	batch := new(leveldb.Batch)
	for i, elem := range elems {
		data, err := s.codec.Encode(elem)
		if err != nil {
			return fmt.Errorf("position %d: %w", pos+uint64(i), err)
		}
		batch.Put(s.elemKey(fork, pos+uint64(i)), data)
	}
	if end := pos + uint64(len(elems)); end > size {
		value := make([]byte, 8)
		binary.BigEndian.PutUint64(value, end)
		batch.Put(s.sizeKey(fork), value)
	}

	err = s.db.Write(batch, &opt.WriteOptions{Sync: s.Sync})
	if err != nil && s.Log != nil {
		s.Log.Infof("leveldbstore: append [%d, %d) fork %s: %v", pos, pos+uint64(len(elems)), fork, err)
	}
	return err
}

// Size returns one more than the highest position written for fork, zero if
// nothing has been written.
func (s *Store[E]) Size(fork mmrbatch.ForkID) (uint64, error) {
	if s.closed {
		return 0, ErrStoreClosed
	}
	value, err := s.db.Get(s.sizeKey(fork), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if len(value) != 8 {
		return 0, fmt.Errorf("%w: fork %s", ErrSizeCorrupt, fork)
	}
	return binary.BigEndian.Uint64(value), nil
}

func (s *Store[E]) ready(ctx context.Context) error {
	if s.closed {
		return ErrStoreClosed
	}
	return ctx.Err()
}

func (s *Store[E]) elemKey(fork mmrbatch.ForkID, pos uint64) []byte {
	key := make([]byte, 0, len(s.Prefix)+1+len(fork)+8)
	key = append(key, s.Prefix...)
	key = append(key, elemTag)
	key = append(key, fork[:]...)
	return binary.BigEndian.AppendUint64(key, pos)
}

func (s *Store[E]) sizeKey(fork mmrbatch.ForkID) []byte {
	key := make([]byte, 0, len(s.Prefix)+1+len(fork))
	key = append(key, s.Prefix...)
	key = append(key, sizeTag)
	return append(key, fork[:]...)
}
