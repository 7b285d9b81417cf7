package storemetrics

import (
	"context"
	"errors"
	"testing"

	"github.com/forestrie/go-merklelog/memstore"
	"github.com/forestrie/go-merklelog/mmrbatch"
	"github.com/forestrie/go-merklelog/mmrtesting"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ mmrbatch.ReadWriteOps[[]byte, mmrbatch.ForkID] = (*Store[[]byte, mmrbatch.ForkID])(nil)

func TestNewMetrics_duplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMetrics(reg, "test")
	require.NoError(t, err)
	_, err = NewMetrics(reg, "test")
	assert.Error(t, err)
}

func TestStore_countsThroughBatch(t *testing.T) {
	ctx := context.Background()
	m, err := NewMetrics(prometheus.NewRegistry(), "test")
	require.NoError(t, err)

	injected := errors.New("injected")
	faulty := mmrtesting.NewFaultyStore[string, string](memstore.New[string, string](""), injected)
	faulty.FailAppendOn = 3

	b := mmrbatch.New[string, string](New[string, string](faulty, m))
	b.Append(0, []string{"a", "b"})
	b.Append(2, []string{"c"})
	b.Append(3, []string{"d"})

	assert.ErrorIs(t, b.Commit(ctx, ""), injected)
	assert.Equal(t, float64(2), testutil.ToFloat64(m.Appends.WithLabelValues(ResultOK)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Appends.WithLabelValues(ResultError)))

	faulty.FailGetOn = 3
	for _, pos := range []uint64{0, 9, 1} {
		_, _, _ = b.GetElem(ctx, pos)
	}
	// pos 3 is still pending and never reaches the store
	_, _, _ = b.GetElem(ctx, 3)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.Reads.WithLabelValues(ResultFound)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Reads.WithLabelValues(ResultAbsent)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Reads.WithLabelValues(ResultError)))
}
