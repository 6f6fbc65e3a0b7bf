// Package collection provides order-maintaining containers that the
// translator can copy without losing their ordering.
package collection

import (
	"cmp"
	"errors"
	"reflect"
)

// ErrNoOrdering is returned when a sorted container has no comparator and its
// element type has no natural ordering.
var ErrNoOrdering = errors.New("collection: element type has no natural ordering")

// Container is implemented by container types the translator handles
// through their own insertion rules rather than by reflection.
type Container interface {
	Len() int
	// Range calls fn for each element in iteration order until fn returns false.
	Range(fn func(item any) bool)
	// Insert adds an element, converting it to the element type.
	Insert(item any) error
	// EmptyCopy returns a new, empty container with the same ordering.
	EmptyCopy() Container
	// ElemType reports the element type.
	ElemType() reflect.Type
}

// Orderable is implemented by sorted containers whose ordering can be set
// after construction.
type Orderable interface {
	Container
	// Ordered reports whether the container can order its elements.
	Ordered() bool
	// OrderBy sets the ordering used for elements inserted from now on.
	OrderBy(compare func(a, b any) int)
}

// InsertionOrder returns a comparator that ranks elements by the order in
// which it first sees them. Filling a container in a source's iteration
// order through it reproduces that order. Elements must be comparable.
func InsertionOrder() func(a, b any) int {
	ranks := make(map[any]int)
	rank := func(v any) int {
		r, ok := ranks[v]
		if !ok {
			r = len(ranks)
			ranks[v] = r
		}
		return r
	}
	return func(a, b any) int {
		ra := rank(a)
		return cmp.Compare(ra, rank(b))
	}
}
