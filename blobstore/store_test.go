package blobstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"testing"

	azStorageBlob "github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/datatrails/go-datatrails-common/azblob"
	"github.com/forestrie/go-merklelog/elemcodec"
	"github.com/forestrie/go-merklelog/memstore"
	"github.com/forestrie/go-merklelog/mmrbatch"
	"github.com/forestrie/go-merklelog/mmrtesting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ mmrbatch.ReadWriteOps[[]byte, mmrbatch.ForkID] = (*Store[[]byte])(nil)
	_ mmrbatch.ReadWriteOps[string, mmrbatch.ForkID] = (*Store[string])(nil)
)

const (
	methodPut    = "Put"
	methodReader = "Reader"
	methodList   = "List"
)

var errBlobExists = errors.New("blob exists")

// memStorer keeps blobs in a map. Puts never replace an existing blob,
// matching the none-match condition the store always sets. List returns
// every blob in one page, in name order, and leaves prefix filtering to the
// caller.
type memStorer struct {
	mmrtesting.TestCallCounter
	blobs map[string][]byte
}

func newMemStorer() *memStorer {
	return &memStorer{blobs: make(map[string][]byte)}
}

func (m *memStorer) Put(
	_ context.Context, identity string, source io.ReadSeekCloser, _ ...azblob.Option,
) (*azblob.WriteResponse, error) {
	m.IncMethodCall(methodPut)
	if _, ok := m.blobs[identity]; ok {
		return nil, errBlobExists
	}
	data, err := io.ReadAll(source)
	if err != nil {
		return nil, err
	}
	m.blobs[identity] = data
	return &azblob.WriteResponse{Size: int64(len(data))}, nil
}

func (m *memStorer) Reader(_ context.Context, identity string, _ ...azblob.Option) (*azblob.ReaderResponse, error) {
	m.IncMethodCall(methodReader)
	data, ok := m.blobs[identity]
	if !ok {
		return nil, ErrBlobNotFound
	}
	return &azblob.ReaderResponse{Reader: io.NopCloser(bytes.NewReader(data))}, nil
}

func (m *memStorer) List(_ context.Context, _ ...azblob.Option) (*azblob.ListerResponse, error) {
	m.IncMethodCall(methodList)
	names := make([]string, 0, len(m.blobs))
	for name := range m.blobs {
		names = append(names, name)
	}
	sort.Strings(names)

	var items []*azStorageBlob.BlobItemInternal
	for i := range names {
		items = append(items, &azStorageBlob.BlobItemInternal{
			Name: &names[i],
		})
	}
	return &azblob.ListerResponse{Items: items}, nil
}

func newStringStore(t *testing.T, storer Storer, opts ...Option) *Store[string] {
	tc := mmrtesting.NewTestContext(t, mmrtesting.TestConfig{TestLabelPrefix: "blobstore"})
	codec, err := elemcodec.NewCBOR[string]()
	require.NoError(t, err)
	opts = append([]Option{WithLogger(tc.GetLog())}, opts...)
	s, err := New[string](storer, codec, opts...)
	require.NoError(t, err)
	return s
}

// TestStore_overlappingRuns commits runs that start inside, or at the same
// position as, an earlier run and checks every position reads the same as
// it does from a store that overwrites positions in place.
func TestStore_overlappingRuns(t *testing.T) {
	tests := []struct {
		name string
		runs []mmrbatch.Run[string]
		want map[uint64]string
	}{
		{
			name: "shorter run at the same start",
			runs: []mmrbatch.Run[string]{
				{Start: 10, Elems: []string{"a", "b", "c", "d"}},
				{Start: 10, Elems: []string{"x", "y"}},
			},
			want: map[uint64]string{10: "x", 11: "y", 12: "c", 13: "d"},
		},
		{
			name: "inner run",
			runs: []mmrbatch.Run[string]{
				{Start: 10, Elems: []string{"a", "b", "c", "d"}},
				{Start: 11, Elems: []string{"y"}},
			},
			want: map[uint64]string{10: "a", 11: "y", 12: "c", 13: "d"},
		},
		{
			name: "longer run at the same start",
			runs: []mmrbatch.Run[string]{
				{Start: 10, Elems: []string{"a", "b"}},
				{Start: 10, Elems: []string{"x", "y", "z"}},
			},
			want: map[uint64]string{10: "x", 11: "y", 12: "z"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			fork := mmrbatch.CanonicalFork

			s := newStringStore(t, newMemStorer())
			mem := memstore.New[string, mmrbatch.ForkID](fork)
			for _, store := range []mmrbatch.ReadWriteOps[string, mmrbatch.ForkID]{s, mem} {
				b := mmrbatch.New[string, mmrbatch.ForkID](store)
				b.Extend(tt.runs)
				require.NoError(t, b.Commit(ctx, fork))
			}

			for pos := uint64(9); pos <= 14; pos++ {
				want, wantOk := mem.Get(fork, pos)
				got, ok, err := s.GetElem(ctx, pos)
				require.NoError(t, err)
				assert.Equal(t, wantOk, ok, "pos %d", pos)
				assert.Equal(t, want, got, "pos %d", pos)
				if w, written := tt.want[pos]; written {
					assert.Equal(t, w, got, "pos %d", pos)
				}
			}
		})
	}
}

func TestStore_forkFallback(t *testing.T) {
	ctx := context.Background()
	storer := newMemStorer()
	fork := uuidFromByte(1)
	other := uuidFromByte(2)

	s := newStringStore(t, storer, WithReadFork(fork))
	require.NoError(t, s.Append(ctx, 0, []string{"c0", "c1", "c2"}, mmrbatch.CanonicalFork))
	require.NoError(t, s.Append(ctx, 1, []string{"f1"}, fork))
	require.NoError(t, s.Append(ctx, 2, []string{"o2"}, other))

	tests := []struct {
		name   string
		pos    uint64
		want   string
		wantOk bool
	}{
		{"canonical fallback", 0, "c0", true},
		{"read fork shadows canonical", 1, "f1", true},
		{"other fork not visible", 2, "c2", true},
		{"absent everywhere", 3, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := s.GetElem(ctx, tt.pos)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	s.SelectFork(other)
	got, ok, err := s.GetElem(ctx, 2)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "o2", got)
}

// TestStore_index checks the run names are listed once per fork, kept up
// to date by Append, and that appended runs are read from the cache.
func TestStore_index(t *testing.T) {
	ctx := context.Background()
	storer := newMemStorer()
	s := newStringStore(t, storer)
	fork := mmrbatch.CanonicalFork

	require.NoError(t, s.Append(ctx, 0, []string{"a", "b"}, fork))
	assert.Equal(t, 1, storer.MethodCallCount(methodList))

	require.NoError(t, s.Append(ctx, 2, []string{"c"}, fork))
	for pos, want := range []string{"a", "b", "c"} {
		got, ok, err := s.GetElem(ctx, uint64(pos))
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
	assert.Equal(t, 1, storer.MethodCallCount(methodList))
	assert.Equal(t, 0, storer.MethodCallCount(methodReader))
	assert.Len(t, storer.blobs, 2)

	// a fresh listing sees the same runs, each blob is read once
	s.Refresh()
	for i := 0; i < 2; i++ {
		got, ok, err := s.GetElem(ctx, 1)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "b", got)
	}
	assert.Equal(t, 2, storer.MethodCallCount(methodList))
	assert.Equal(t, 1, storer.MethodCallCount(methodReader))

	// appends continue the sequence found by the listing
	require.NoError(t, s.Append(ctx, 1, []string{"x"}, fork))
	assert.Contains(t, storer.blobs, RunBlobPath(V1MMRBatchPrefix, fork, RunName{Seq: 2, Start: 1, Count: 1}))
}

func TestStore_blobRemoved(t *testing.T) {
	ctx := context.Background()
	storer := newMemStorer()
	s := newStringStore(t, storer)
	fork := mmrbatch.CanonicalFork

	require.NoError(t, s.Append(ctx, 0, []string{"a", "b"}, fork))
	require.NoError(t, s.Append(ctx, 1, []string{"x"}, fork))
	s.Refresh()

	delete(storer.blobs, RunBlobPath(V1MMRBatchPrefix, fork, RunName{Seq: 1, Start: 1, Count: 1}))

	// listed before the blob went away
	_, _, err := s.GetElem(ctx, 0)
	require.NoError(t, err)

	got, ok, err := s.GetElem(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "b", got)
	assert.Equal(t, 1, storer.MethodCallCount(methodList))
}

func TestStore_staleListing(t *testing.T) {
	ctx := context.Background()
	storer := newMemStorer()
	fork := mmrbatch.CanonicalFork

	first := newStringStore(t, storer)
	second := newStringStore(t, storer)

	_, ok, err := second.GetElem(ctx, 0)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, first.Append(ctx, 0, []string{"a"}, fork))

	err = second.Append(ctx, 0, []string{"b"}, fork)
	assert.ErrorIs(t, err, errBlobExists)

	second.Refresh()
	require.NoError(t, second.Append(ctx, 0, []string{"b"}, fork))
	got, ok, err := second.GetElem(ctx, 0)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "b", got)
	assert.Len(t, storer.blobs, 2)
}

func TestStore_emptyRunNotWritten(t *testing.T) {
	storer := newMemStorer()
	s := newStringStore(t, storer)

	require.NoError(t, s.Append(context.Background(), 4, nil, mmrbatch.CanonicalFork))
	assert.Equal(t, 0, storer.MethodCallCount(methodPut))
}

func TestNew_runCacheSize(t *testing.T) {
	_, err := New[[]byte](newMemStorer(), elemcodec.Bytes{}, WithRunCacheSize(0))
	assert.ErrorIs(t, err, ErrRunCacheConfig)
}

func uuidFromByte(b byte) mmrbatch.ForkID {
	var id mmrbatch.ForkID
	id[15] = b
	return id
}
