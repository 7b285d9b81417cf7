// Package blobstore is a durable mmr backing store on azure blob storage.
//
// Each committed run is written to its own blob under a per fork prefix. The
// blob name records the run's sequence number within the fork, its start
// position and its element count (see RunBlobPath), the blob holds a CBOR
// run record. A read returns the element from the most recently committed
// run covering the position, first in the read fork and then in the
// canonical fork, which matches a store that overwrites each position in
// place.
//
// The run names for a fork are listed once, on the first read or append for
// that fork, and then maintained from this store's own appends. Run blobs
// are created with a none-match condition, so a writer whose listing is
// stale fails with ErrRunConflict instead of replacing a run. Call Refresh
// to pick up runs written by other processes.
package blobstore

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/datatrails/go-datatrails-common/azblob"
	"github.com/forestrie/go-merklelog/elemcodec"
	"github.com/forestrie/go-merklelog/mmrbatch"
	lru "github.com/hashicorp/golang-lru"
)

// Storer is the subset of the azblob storer the store needs
type Storer interface {
	Put(ctx context.Context, identity string, source io.ReadSeekCloser, opts ...azblob.Option) (*azblob.WriteResponse, error)
	Reader(ctx context.Context, identity string, opts ...azblob.Option) (*azblob.ReaderResponse, error)
	List(ctx context.Context, opts ...azblob.Option) (*azblob.ListerResponse, error)
}

type Store[E any] struct {
	Options
	storer Storer
	codec  elemcodec.Codec[E]
	runs   runCodec

	// decoded run records by blob path
	cache *lru.Cache
	index map[mmrbatch.ForkID]runIndex
}

func New[E any](storer Storer, codec elemcodec.Codec[E], opts ...Option) (*Store[E], error) {
	s := &Store[E]{
		Options: Options{
			Prefix:       V1MMRBatchPrefix,
			RunCacheSize: DefaultRunCacheSize,
		},
		storer: storer,
		codec:  codec,
		index:  make(map[mmrbatch.ForkID]runIndex),
	}
	for _, o := range opts {
		o(&s.Options)
	}
	if s.RunCacheSize <= 0 {
		return nil, ErrRunCacheConfig
	}

	var err error
	if s.runs, err = newRunCodec(); err != nil {
		return nil, err
	}
	if s.cache, err = lru.New(s.RunCacheSize); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store[E]) SelectFork(fork mmrbatch.ForkID) {
	s.ReadFork = fork
}

// Refresh forgets the run lists and cached runs, so the next reads list the
// blob store again.
func (s *Store[E]) Refresh() {
	s.index = make(map[mmrbatch.ForkID]runIndex)
	s.cache.Purge()
}

func (s *Store[E]) GetElem(ctx context.Context, pos uint64) (E, bool, error) {
	var zero E

	forks := []mmrbatch.ForkID{s.ReadFork}
	if s.ReadFork != mmrbatch.CanonicalFork {
		forks = append(forks, mmrbatch.CanonicalFork)
	}

	for _, fork := range forks {
		r, ok, err := s.findRun(ctx, fork, pos)
		if err != nil {
			return zero, false, err
		}
		if !ok {
			continue
		}
		elem, err := s.codec.Decode(r.Elems[pos-r.Start])
		if err != nil {
			return zero, false, fmt.Errorf("position %d: %w", pos, err)
		}
		return elem, true, nil
	}
	return zero, false, nil
}

// Append writes elems as a new run blob for fork. An empty run has nothing
// to read back and is not written.
func (s *Store[E]) Append(ctx context.Context, pos uint64, elems []E, fork mmrbatch.ForkID) error {

	if len(elems) == 0 {
		return nil
	}

	encoded, err := elemcodec.EncodeAll(s.codec, elems)
	if err != nil {
		return err
	}
	r := runRecord{Start: pos, Fork: fork[:], Elems: encoded}
	data, err := s.runs.marshal(r)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRunRecord, err)
	}

	idx, err := s.forkIndex(ctx, fork)
	if err != nil {
		return err
	}
	name := RunName{Seq: idx.nextSeq(), Start: pos, Count: uint64(len(elems))}
	blobPath := RunBlobPath(s.Prefix, fork, name)
	tags := map[string]string{
		TagKeyFork:  fork.String(),
		TagKeyCount: fmt.Sprintf("%d", len(elems)),
	}
	_, err = s.storer.Put(
		ctx, blobPath, azblob.NewBytesReaderCloser(data),
		azblob.WithTags(tags), azblob.WithEtagNoneMatch("*"))
	if err != nil {
		err = wrapRunConflict(blobPath, err)
		if s.Log != nil {
			s.Log.Infof("blobstore: put %s: %v", blobPath, err)
		}
		return err
	}

	s.index[fork] = idx.insert(name)
	s.cache.Add(blobPath, r)
	return nil
}

func (s *Store[E]) findRun(ctx context.Context, fork mmrbatch.ForkID, pos uint64) (runRecord, bool, error) {
	idx, err := s.forkIndex(ctx, fork)
	if err != nil {
		return runRecord{}, false, err
	}
	for {
		name, ok := idx.newest(pos)
		if !ok {
			return runRecord{}, false, nil
		}
		r, ok, err := s.readRun(ctx, fork, name)
		if err != nil {
			return runRecord{}, false, err
		}
		if ok {
			return r, true, nil
		}
		// readRun dropped the missing run, try the next newest
		idx = s.index[fork]
	}
}

func (s *Store[E]) readRun(ctx context.Context, fork mmrbatch.ForkID, name RunName) (runRecord, bool, error) {
	blobPath := RunBlobPath(s.Prefix, fork, name)
	if v, ok := s.cache.Get(blobPath); ok {
		return v.(runRecord), true, nil
	}

	rr, err := s.storer.Reader(ctx, blobPath)
	if err != nil {
		err = wrapBlobNotFound(blobPath, err)
		if IsBlobNotFound(err) {
			// removed since the runs were listed
			if s.Log != nil {
				s.Log.Infof("blobstore: %v", err)
			}
			s.index[fork] = s.index[fork].remove(name.Seq)
			return runRecord{}, false, nil
		}
		return runRecord{}, false, err
	}
	defer rr.Reader.Close()

	data, err := io.ReadAll(rr.Reader)
	if err != nil {
		return runRecord{}, false, err
	}
	r, err := s.runs.unmarshal(blobPath, data)
	if err != nil {
		return runRecord{}, false, err
	}
	s.cache.Add(blobPath, r)
	return r, true, nil
}

func (s *Store[E]) forkIndex(ctx context.Context, fork mmrbatch.ForkID) (runIndex, error) {
	if idx, ok := s.index[fork]; ok {
		return idx, nil
	}

	var idx runIndex
	var marker azblob.ListMarker
	prefix := ForkRunsPrefix(s.Prefix, fork)
	for {
		r, err := s.storer.List(ctx, azblob.WithListPrefix(prefix), azblob.WithListMarker(marker))
		if err != nil {
			return nil, err
		}
		for _, i := range r.Items {
			if i == nil || i.Name == nil || !strings.HasPrefix(*i.Name, prefix) {
				continue
			}
			name, err := ParseRunBlobPath(*i.Name)
			if err != nil {
				if s.Log != nil {
					s.Log.Infof("blobstore: ignoring %v", err)
				}
				continue
			}
			idx = idx.insert(name)
		}
		if len(r.Items) == 0 || r.Marker == nil {
			break
		}
		marker = r.Marker
	}

	s.index[fork] = idx
	return idx, nil
}
