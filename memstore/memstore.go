// Package memstore provides an in memory, fork aware backing store for
// mmr batches.
//
// Writes are kept per fork. Reads come from the selected read fork and fall
// back to the canonical fork, identified by the zero value of F.
package memstore

import (
	"context"
)

// Write records a single run handed to Append
type Write[F any] struct {
	Pos  uint64
	Len  int
	Fork F
}

type Store[E any, F comparable] struct {
	readFork F
	forks    map[F]map[uint64]E
	writes   []Write[F]
	reads    int
}

func New[E any, F comparable](readFork F) *Store[E, F] {
	return &Store[E, F]{
		readFork: readFork,
		forks:    make(map[F]map[uint64]E),
	}
}

// SelectFork changes the fork that GetElem reads from
func (s *Store[E, F]) SelectFork(fork F) {
	s.readFork = fork
}

func (s *Store[E, F]) ReadFork() F {
	return s.readFork
}

func (s *Store[E, F]) GetElem(_ context.Context, pos uint64) (E, bool, error) {
	s.reads++
	if elem, ok := s.Get(s.readFork, pos); ok {
		return elem, true, nil
	}
	var canonical F
	if s.readFork != canonical {
		if elem, ok := s.Get(canonical, pos); ok {
			return elem, true, nil
		}
	}
	var zero E
	return zero, false, nil
}

func (s *Store[E, F]) Append(_ context.Context, pos uint64, elems []E, fork F) error {
	m, ok := s.forks[fork]
	if !ok {
		m = make(map[uint64]E)
		s.forks[fork] = m
	}
	for i, elem := range elems {
		m[pos+uint64(i)] = elem
	}
	s.writes = append(s.writes, Write[F]{Pos: pos, Len: len(elems), Fork: fork})
	return nil
}

// Get returns the element written at pos for exactly fork, without fallback
func (s *Store[E, F]) Get(fork F, pos uint64) (E, bool) {
	elem, ok := s.forks[fork][pos]
	return elem, ok
}

// Size returns one more than the highest position written for fork
func (s *Store[E, F]) Size(fork F) uint64 {
	var size uint64
	for pos := range s.forks[fork] {
		if pos+1 > size {
			size = pos + 1
		}
	}
	return size
}

// Writes returns the runs appended so far, in the order they were written
func (s *Store[E, F]) Writes() []Write[F] {
	return append([]Write[F](nil), s.writes...)
}

// Reads returns the number of GetElem calls served
func (s *Store[E, F]) Reads() int {
	return s.reads
}
