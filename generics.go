package translator

import (
	"fmt"
	"iter"
	"reflect"
)

// Generic helpers as top-level functions (methods cannot have type parameters yet)

// Copy populates dst from src in a new session.
func Copy[T any](c *Configuration, dst *T, src any) error { return NewSession(c).Update(src, dst) }

// TranslateTo translates src into a new *T in a new session.
func TranslateTo[T any](c *Configuration, src any) (*T, error) {
	return As[*T](NewSession(c), src)
}

// Make translates src into a T in a new session.
func Make[T any](c *Configuration, src any) (T, error) {
	return As[T](NewSession(c), src)
}

// As translates src into a T within s, sharing its identity cache.
func As[T any](s *Session, src any) (T, error) {
	out, err := s.translate(reflect.ValueOf(src), reflect.TypeFor[T]())
	if err != nil {
		var zero T
		return zero, err
	}
	return valueAs[T](out), nil
}

// EachSlice translates every item of sources into a D, resolving
// itemExpression against each item first when it is not empty.
func EachSlice[D, S any](s *Session, sources []S, itemExpression string) ([]D, error) {
	if sources == nil {
		return nil, nil
	}
	return EachSeq[D, S](s, func(yield func(S) bool) {
		for _, v := range sources {
			if !yield(v) {
				return
			}
		}
	}, itemExpression)
}

// EachSet is EachSlice for sets.
func EachSet[D, S comparable](s *Session, sources map[S]struct{}, itemExpression string) (map[D]struct{}, error) {
	if sources == nil {
		return nil, nil
	}
	dt := reflect.TypeFor[D]()
	out := make(map[D]struct{}, len(sources))
	for v := range sources {
		item, err := s.eachItem(reflect.ValueOf(v), dt, itemExpression)
		if err != nil {
			return nil, fmt.Errorf("translating item %v: %w", v, err)
		}
		out[valueAs[D](item)] = struct{}{}
	}
	return out, nil
}

// EachSeq is EachSlice for iterators, such as SortedSet.All.
func EachSeq[D, S any](s *Session, sources iter.Seq[S], itemExpression string) ([]D, error) {
	dt := reflect.TypeFor[D]()
	var out []D
	i := 0
	for v := range sources {
		item, err := s.eachItem(reflect.ValueOf(v), dt, itemExpression)
		if err != nil {
			return nil, fmt.Errorf("translating item %d: %w", i, err)
		}
		out = append(out, valueAs[D](item))
		i++
	}
	if out == nil {
		out = []D{}
	}
	return out, nil
}

func valueAs[T any](v reflect.Value) T {
	if !v.IsValid() || !v.CanInterface() {
		var zero T
		return zero
	}
	out, _ := v.Interface().(T)
	return out
}
