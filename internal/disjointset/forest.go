// Package disjointset implements a union-find forest over ids [0, n) where
// every root owns the ordered collection of its members.
package disjointset

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is the parent of every error returned by Forest.
	ErrInvalidArgument = errors.New("disjointset: invalid argument")
	// ErrOutOfRange is returned for ids outside [0, n).
	ErrOutOfRange = fmt.Errorf("%w: id out of range", ErrInvalidArgument)
	// ErrNotRoot is returned when Union receives an id that is not a root.
	ErrNotRoot = fmt.Errorf("%w: not a root", ErrInvalidArgument)
)

// Forest is a disjoint-set forest with path compression and union by size.
//
// parent[i] >= 0 is a parent pointer; parent[i] < 0 marks a root holding
// -parent[i] elements. members[root] always has exactly that many entries and
// non-roots hold nil.
type Forest[T any] struct {
	parent  []int
	members [][]T
	count   int
}

// New creates a forest with one singleton set per element; elems[i] gets id i.
func New[T any](elems []T) *Forest[T] {
	n := len(elems)
	f := &Forest[T]{
		parent:  make([]int, n),
		members: make([][]T, n),
		count:   n,
	}
	for i := range f.parent {
		f.parent[i] = -1
		f.members[i] = []T{elems[i]}
	}
	return f
}

// Len returns the number of elements.
func (f *Forest[T]) Len() int {
	return len(f.parent)
}

// Count returns the number of disjoint sets.
func (f *Forest[T]) Count() int {
	return f.count
}

// Find returns the root of the set containing x, with full path compression.
func (f *Forest[T]) Find(x int) (int, error) {
	if err := f.check(x); err != nil {
		return 0, err
	}
	// Walk to the root.
	root := x
	for f.parent[root] >= 0 {
		root = f.parent[root]
	}
	// Point every node on the path directly at root.
	for f.parent[x] >= 0 {
		x, f.parent[x] = f.parent[x], root
	}
	return root, nil
}

// IsRoot reports whether x is currently a root.
func (f *Forest[T]) IsRoot(x int) bool {
	return x >= 0 && x < len(f.parent) && f.parent[x] < 0
}

// Union merges the sets rooted at root1 and root2 and returns the new root.
// Both arguments must be roots. The smaller set is attached under the larger;
// on equal sizes root1 survives. The absorbed root's members are appended to
// the survivor's collection and the absorbed collection is released.
func (f *Forest[T]) Union(root1, root2 int) (int, error) {
	if err := f.check(root1); err != nil {
		return 0, err
	}
	if err := f.check(root2); err != nil {
		return 0, err
	}
	if f.parent[root1] >= 0 {
		return 0, fmt.Errorf("union %d: %w", root1, ErrNotRoot)
	}
	if f.parent[root2] >= 0 {
		return 0, fmt.Errorf("union %d: %w", root2, ErrNotRoot)
	}
	if root1 == root2 {
		return root1, nil
	}

	// parent holds -size, so the more negative value is the larger set.
	survivor, absorbed := root1, root2
	if f.parent[root2] < f.parent[root1] {
		survivor, absorbed = root2, root1
	}
	f.parent[survivor] += f.parent[absorbed]
	f.parent[absorbed] = survivor
	f.members[survivor] = append(f.members[survivor], f.members[absorbed]...)
	f.members[absorbed] = nil
	f.count--
	return survivor, nil
}

// Get returns the members currently held by id. Non-roots return an empty
// collection; call Find first for the live membership of any element.
// The returned slice must not be modified.
func (f *Forest[T]) Get(id int) ([]T, error) {
	if err := f.check(id); err != nil {
		return nil, err
	}
	return f.members[id], nil
}

// Size returns the number of elements held by id (0 for non-roots).
func (f *Forest[T]) Size(id int) (int, error) {
	if err := f.check(id); err != nil {
		return 0, err
	}
	return len(f.members[id]), nil
}

func (f *Forest[T]) check(x int) error {
	if x < 0 || x >= len(f.parent) {
		return fmt.Errorf("id %d not in [0,%d): %w", x, len(f.parent), ErrOutOfRange)
	}
	return nil
}
