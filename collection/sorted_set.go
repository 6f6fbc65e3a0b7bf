package collection

import (
	"cmp"
	"fmt"
	"iter"
	"reflect"
	"slices"
)

// SortedSet is a set kept in comparator order. Copies made with EmptyCopy
// (and therefore by the translator) keep the comparator, so elements added
// to a translated set still land in sorted position.
//
// The zero value orders elements naturally: types with a Compare(T) int
// method (time.Time, for one) use it, and numeric and string kinds compare by
// value. Adding to a zero-value set of any other type panics with
// ErrNoOrdering.
type SortedSet[T any] struct {
	compare func(a, b T) int
	items   []T
}

// NewSortedSet returns a set ordered by compare, seeded with items.
func NewSortedSet[T any](compare func(a, b T) int, items ...T) *SortedSet[T] {
	s := &SortedSet[T]{compare: compare}
	for _, v := range items {
		s.Add(v)
	}
	return s
}

// NewOrderedSet returns a set in ascending natural order.
func NewOrderedSet[T cmp.Ordered](items ...T) *SortedSet[T] {
	return NewSortedSet(cmp.Compare[T], items...)
}

// Comparator returns the ordering in effect, or nil if there is none.
func (s *SortedSet[T]) Comparator() func(a, b T) int {
	if s.compare == nil {
		s.compare = naturalCompare[T]()
	}
	return s.compare
}

// Add inserts v unless an equal element is present and reports whether the
// set changed.
func (s *SortedSet[T]) Add(v T) bool {
	added, err := s.add(v)
	if err != nil {
		panic(err)
	}
	return added
}

func (s *SortedSet[T]) add(v T) (bool, error) {
	compare := s.Comparator()
	if compare == nil {
		return false, fmt.Errorf("%w: %s", ErrNoOrdering, reflect.TypeFor[T]())
	}
	i, found := slices.BinarySearchFunc(s.items, v, compare)
	if found {
		return false, nil
	}
	s.items = slices.Insert(s.items, i, v)
	return true, nil
}

// Remove deletes v and reports whether it was present.
func (s *SortedSet[T]) Remove(v T) bool {
	compare := s.Comparator()
	if compare == nil {
		return false
	}
	i, found := slices.BinarySearchFunc(s.items, v, compare)
	if found {
		s.items = slices.Delete(s.items, i, i+1)
	}
	return found
}

// Contains reports whether an element equal to v is present.
func (s *SortedSet[T]) Contains(v T) bool {
	compare := s.Comparator()
	if compare == nil {
		return false
	}
	_, found := slices.BinarySearchFunc(s.items, v, compare)
	return found
}

func (s *SortedSet[T]) Len() int { return len(s.items) }

// Values returns the elements in order. The slice is a copy.
func (s *SortedSet[T]) Values() []T { return slices.Clone(s.items) }

// All iterates the elements in order.
func (s *SortedSet[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, v := range s.items {
			if !yield(v) {
				return
			}
		}
	}
}

func (s *SortedSet[T]) Range(fn func(item any) bool) {
	for _, v := range s.items {
		if !fn(v) {
			return
		}
	}
}

func (s *SortedSet[T]) Insert(item any) error {
	v, ok := item.(T)
	if !ok {
		rv := reflect.ValueOf(item)
		t := reflect.TypeFor[T]()
		switch {
		case !rv.IsValid():
			v = *new(T)
		case rv.Type().ConvertibleTo(t):
			v = rv.Convert(t).Interface().(T)
		default:
			return fmt.Errorf("collection: cannot insert %s into SortedSet[%s]", rv.Type(), t)
		}
	}
	_, err := s.add(v)
	return err
}

func (s *SortedSet[T]) EmptyCopy() Container {
	return &SortedSet[T]{compare: s.compare}
}

func (s *SortedSet[T]) ElemType() reflect.Type { return reflect.TypeFor[T]() }

// Ordered reports whether the set has a comparator or a natural ordering.
func (s *SortedSet[T]) Ordered() bool { return s.Comparator() != nil }

// OrderBy replaces the ordering. Existing elements are re-sorted.
func (s *SortedSet[T]) OrderBy(compare func(a, b any) int) {
	s.compare = func(a, b T) int { return compare(a, b) }
	slices.SortStableFunc(s.items, s.compare)
}

type comparer[T any] interface {
	Compare(other T) int
}

func naturalCompare[T any]() func(a, b T) int {
	var zero T
	if _, ok := any(zero).(comparer[T]); ok {
		return func(a, b T) int { return any(a).(comparer[T]).Compare(b) }
	}
	switch reflect.TypeFor[T]().Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(a, b T) int { return cmp.Compare(reflect.ValueOf(a).Int(), reflect.ValueOf(b).Int()) }
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return func(a, b T) int { return cmp.Compare(reflect.ValueOf(a).Uint(), reflect.ValueOf(b).Uint()) }
	case reflect.Float32, reflect.Float64:
		return func(a, b T) int { return cmp.Compare(reflect.ValueOf(a).Float(), reflect.ValueOf(b).Float()) }
	case reflect.String:
		return func(a, b T) int { return cmp.Compare(reflect.ValueOf(a).String(), reflect.ValueOf(b).String()) }
	}
	return nil
}
