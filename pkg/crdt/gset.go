package crdt

import (
	"cmp"
	"slices"
)

// GSet is a grow-only set.
type GSet[T cmp.Ordered] struct {
	items map[T]struct{}
}

// NewGSet creates a set holding values.
func NewGSet[T cmp.Ordered](values ...T) *GSet[T] {
	s := &GSet[T]{items: make(map[T]struct{}, len(values))}
	s.Merge(values...)
	return s
}

// Add inserts v and reports whether it was new.
func (s *GSet[T]) Add(v T) bool {
	if _, ok := s.items[v]; ok {
		return false
	}
	s.items[v] = struct{}{}
	return true
}

// Merge unions values into s and returns how many were new.
func (s *GSet[T]) Merge(values ...T) int {
	added := 0
	for _, v := range values {
		if s.Add(v) {
			added++
		}
	}
	return added
}

// MergeSet unions other into s and returns how many values were new.
func (s *GSet[T]) MergeSet(other *GSet[T]) int {
	added := 0
	for v := range other.items {
		if s.Add(v) {
			added++
		}
	}
	return added
}

// Contains reports whether v is in s.
func (s *GSet[T]) Contains(v T) bool {
	_, ok := s.items[v]
	return ok
}

// Len returns the number of values.
func (s *GSet[T]) Len() int {
	return len(s.items)
}

// Values returns a sorted copy of the set.
func (s *GSet[T]) Values() []T {
	out := make([]T, 0, len(s.items))
	for v := range s.items {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

// Missing returns, sorted, the values of s that known does not hold.
// A nil known is treated as empty.
func (s *GSet[T]) Missing(known *GSet[T]) []T {
	if known == nil {
		return s.Values()
	}
	var out []T
	for v := range s.items {
		if !known.Contains(v) {
			out = append(out, v)
		}
	}
	slices.Sort(out)
	return out
}

// Clone returns an independent copy of s.
func (s *GSet[T]) Clone() *GSet[T] {
	c := &GSet[T]{items: make(map[T]struct{}, len(s.items))}
	for v := range s.items {
		c.items[v] = struct{}{}
	}
	return c
}

// Equal reports whether s and other hold the same values.
func (s *GSet[T]) Equal(other *GSet[T]) bool {
	if s.Len() != other.Len() {
		return false
	}
	for v := range s.items {
		if !other.Contains(v) {
			return false
		}
	}
	return true
}
