package mmrtesting

import (
	"context"

	"github.com/forestrie/go-merklelog/mmrbatch"
)

const (
	MethodGetElem = "GetElem"
	MethodAppend  = "Append"
)

type TestCallCounter struct {
	MethodCalls map[string]int
}

func (r *TestCallCounter) IncMethodCall(name string) int {
	if r.MethodCalls == nil {
		r.MethodCalls = make(map[string]int)
	}

	cur, ok := r.MethodCalls[name]
	if !ok {
		r.MethodCalls[name] = 1
		return 1
	}
	r.MethodCalls[name] = cur + 1
	return cur + 1
}

func (r *TestCallCounter) Reset() {
	r.MethodCalls = make(map[string]int)
}

func (r *TestCallCounter) MethodCallCount(name string) int {
	if r.MethodCalls == nil {
		return 0
	}
	return r.MethodCalls[name]
}

// FaultyStore wraps a backing store, counting calls and optionally failing
// them.
//
// FailAppendOn and FailGetOn are 1 based call numbers; the call with that
// number returns Err instead of reaching the wrapped store. Zero disables
// the fault.
type FaultyStore[E, F any] struct {
	TestCallCounter
	Inner        mmrbatch.ReadWriteOps[E, F]
	FailAppendOn int
	FailGetOn    int
	Err          error
}

func NewFaultyStore[E, F any](inner mmrbatch.ReadWriteOps[E, F], err error) *FaultyStore[E, F] {
	return &FaultyStore[E, F]{Inner: inner, Err: err}
}

func (s *FaultyStore[E, F]) GetElem(ctx context.Context, pos uint64) (E, bool, error) {
	if s.IncMethodCall(MethodGetElem) == s.FailGetOn {
		var zero E
		return zero, false, s.Err
	}
	return s.Inner.GetElem(ctx, pos)
}

func (s *FaultyStore[E, F]) Append(ctx context.Context, pos uint64, elems []E, fork F) error {
	if s.IncMethodCall(MethodAppend) == s.FailAppendOn {
		return s.Err
	}
	return s.Inner.Append(ctx, pos, elems, fork)
}
