// Package storemetrics instruments an mmr backing store with prometheus
// metrics.
package storemetrics

import (
	"context"

	"github.com/forestrie/go-merklelog/mmrbatch"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	ResultFound  = "found"
	ResultAbsent = "absent"
	ResultError  = "error"
	ResultOK     = "ok"
)

type Metrics struct {
	Reads       *prometheus.CounterVec
	Appends     *prometheus.CounterVec
	RunElements prometheus.Histogram
}

// NewMetrics creates the store metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	m := &Metrics{
		Reads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mmrstore",
			Name:      "reads_total",
			Help:      "Element reads served by the backing store, by result.",
		}, []string{"result"}),
		Appends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mmrstore",
			Name:      "appends_total",
			Help:      "Runs appended to the backing store, by result.",
		}, []string{"result"}),
		RunElements: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "mmrstore",
			Name:      "run_elements",
			Help:      "Number of elements in each successfully appended run.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
	}
	for _, c := range []prometheus.Collector{m.Reads, m.Appends, m.RunElements} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

type Store[E, F any] struct {
	inner   mmrbatch.ReadWriteOps[E, F]
	metrics *Metrics
}

func New[E, F any](inner mmrbatch.ReadWriteOps[E, F], metrics *Metrics) *Store[E, F] {
	return &Store[E, F]{inner: inner, metrics: metrics}
}

func (s *Store[E, F]) GetElem(ctx context.Context, pos uint64) (E, bool, error) {
	elem, ok, err := s.inner.GetElem(ctx, pos)
	switch {
	case err != nil:
		s.metrics.Reads.WithLabelValues(ResultError).Inc()
	case ok:
		s.metrics.Reads.WithLabelValues(ResultFound).Inc()
	default:
		s.metrics.Reads.WithLabelValues(ResultAbsent).Inc()
	}
	return elem, ok, err
}

func (s *Store[E, F]) Append(ctx context.Context, pos uint64, elems []E, fork F) error {
	if err := s.inner.Append(ctx, pos, elems, fork); err != nil {
		s.metrics.Appends.WithLabelValues(ResultError).Inc()
		return err
	}
	s.metrics.Appends.WithLabelValues(ResultOK).Inc()
	s.metrics.RunElements.Observe(float64(len(elems)))
	return nil
}
