// Package hset implements a set of hashable elements for values whose
// identity is not the Go-comparable `==` operator, such as structural
// symbol references whose Hash() may collide across distinct holder types.
package hset

import (
	"iter"

	"github.com/benbjohnson/immutable"
)

// HSet is a shallow wrapper around a map keyed by a caller-supplied hash.
// Use immutable.Set if you are not going to be modifying this, as it is
// more copy efficient.
type HSet[A any] struct {
	hasher     immutable.Hasher[A]
	underlying map[uint32]A
}

func Empty[A any](hasher immutable.Hasher[A]) HSet[A] {
	return HSet[A]{
		hasher:     hasher,
		underlying: make(map[uint32]A),
	}
}

func New[A any](hasher immutable.Hasher[A], elems ...A) HSet[A] {
	n := Empty(hasher)
	n.Add(elems...)
	return n
}

func (s HSet[A]) Add(elems ...A) {
	for _, elem := range elems {
		s.underlying[s.hasher.Hash(elem)] = elem
	}
}

func (s HSet[A]) Remove(elems ...A) {
	for _, elem := range elems {
		delete(s.underlying, s.hasher.Hash(elem))
	}
}

func (s HSet[A]) Contains(elem A) bool {
	_, ok := s.underlying[s.hasher.Hash(elem)]
	return ok
}

func (s HSet[A]) Len() int {
	return len(s.underlying)
}

func (s HSet[A]) All() iter.Seq[A] {
	return func(yield func(A) bool) {
		for _, elem := range s.underlying {
			if !yield(elem) {
				return
			}
		}
	}
}
