package translator

import (
	"fmt"
	"reflect"

	"github.com/Station-Manager/translator/collection"
	"github.com/Station-Manager/translator/source"
)

var emptyStructType = reflect.TypeFor[struct{}]()

// isSetType reports whether t is a set, a map[K]struct{}.
func isSetType(t reflect.Type) bool {
	return t.Kind() == reflect.Map && t.Elem() == emptyStructType
}

// elemTypeOf returns the item type of a collection type: the element of a
// slice or array, the key of a set, the value of a map, or a Container's
// ElemType.
func elemTypeOf(t reflect.Type) reflect.Type {
	if t.Implements(containerType) {
		if t.Kind() == reflect.Ptr {
			if c, ok := reflect.New(t.Elem()).Interface().(collection.Container); ok {
				return c.ElemType()
			}
		}
		return reflect.TypeFor[any]()
	}
	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		return t.Elem()
	case reflect.Map:
		if isSetType(t) {
			return t.Key()
		}
		return t.Elem()
	}
	return nil
}

// translateCollection copies or translates src into a new collection of
// type dst. Items are translated when cd forces it, when cd names an item
// source, or when the source items are not assignable to the destination
// item type. Otherwise items are copied by reference into a new collection,
// or, with defensive copies disabled, src itself is returned when dst can
// hold it.
func (s *Session) translateCollection(src reflect.Value, dst reflect.Type, cd CollectionDescriptor) (reflect.Value, error) {
	if isNilValue(src) {
		return reflect.Zero(dst), nil
	}
	if src.Kind() == reflect.Interface {
		src = src.Elem()
	}
	if !isCollection(src.Type()) {
		return reflect.Value{}, &TypeMismatchError{Expected: dst, Actual: src.Type()}
	}
	itemType := cd.ItemType
	if itemType == nil {
		itemType = elemTypeOf(dst)
	}
	srcItemType := elemTypeOf(src.Type())
	if c, ok := asContainer(src); ok {
		srcItemType = c.ElemType()
	}
	translateItems := cd.TranslateItems || cd.ItemSource != "" || !srcItemType.AssignableTo(itemType)
	if !translateItems && !s.cfg.options.PerformDefensiveCopies && src.Type().AssignableTo(dst) {
		return src, nil
	}

	if dst.Kind() == reflect.Map && !isSetType(dst) {
		return s.translateMap(src, dst, itemType, translateItems, cd)
	}

	items, err := itemsOf(src)
	if err != nil {
		return reflect.Value{}, err
	}
	out, err := s.newCollection(src, dst, len(items))
	if err != nil {
		return reflect.Value{}, err
	}
	for i, item := range items {
		if translateItems {
			if item, err = s.translateItem(item, itemType, cd); err != nil {
				return reflect.Value{}, fmt.Errorf("translating item %d: %w", i, err)
			}
		}
		if out, err = addItem(out, i, item); err != nil {
			return reflect.Value{}, err
		}
	}
	return out, nil
}

// newCollection returns an empty collection of type dst able to hold n items.
// A Container copied from a Container of the same type keeps its ordering.
func (s *Session) newCollection(src reflect.Value, dst reflect.Type, n int) (reflect.Value, error) {
	if dst.Implements(containerType) {
		if c, ok := asContainer(src); ok && src.Type() == dst {
			return reflect.ValueOf(c.EmptyCopy()), nil
		}
		if dst.Kind() != reflect.Ptr {
			return reflect.Value{}, &TypeMismatchError{Expected: dst, Actual: src.Type()}
		}
		out := reflect.New(dst.Elem())
		// Without an ordering of their own, elements keep the source's
		// iteration order.
		if o, ok := out.Interface().(collection.Orderable); ok && !o.Ordered() && o.ElemType().Comparable() {
			o.OrderBy(collection.InsertionOrder())
		}
		return out, nil
	}
	switch dst.Kind() {
	case reflect.Slice:
		return reflect.MakeSlice(dst, 0, n), nil
	case reflect.Array:
		if n > dst.Len() {
			return reflect.Value{}, fmt.Errorf("%w: %d items do not fit %s", &TypeMismatchError{Expected: dst, Actual: src.Type()}, n, dst)
		}
		return reflect.New(dst).Elem(), nil
	case reflect.Map:
		return reflect.MakeMapWithSize(dst, n), nil
	}
	return reflect.Value{}, &TypeMismatchError{Expected: dst, Actual: src.Type()}
}

// addItem stores item at position i of out, returning the possibly grown
// collection.
func addItem(out reflect.Value, i int, item reflect.Value) (reflect.Value, error) {
	if c, ok := asContainer(out); ok {
		var v any
		if item.IsValid() {
			v = item.Interface()
		}
		if err := c.Insert(v); err != nil {
			return reflect.Value{}, err
		}
		return out, nil
	}
	item, err := fitItem(item, elemTypeOf(out.Type()))
	if err != nil {
		return reflect.Value{}, err
	}
	switch out.Kind() {
	case reflect.Slice:
		return reflect.Append(out, item), nil
	case reflect.Array:
		out.Index(i).Set(item)
	case reflect.Map:
		out.SetMapIndex(item, reflect.Zero(emptyStructType))
	}
	return out, nil
}

// fitItem makes item storable as t.
func fitItem(item reflect.Value, t reflect.Type) (reflect.Value, error) {
	switch {
	case !item.IsValid():
		return reflect.Zero(t), nil
	case item.Type().AssignableTo(t):
		return item, nil
	case item.Kind() == reflect.Interface && !item.IsNil() && item.Elem().Type().AssignableTo(t):
		return item.Elem(), nil
	}
	return reflect.Value{}, &TypeMismatchError{Expected: t, Actual: item.Type()}
}

// translateItem resolves the item source, if any, then translates the item.
// An extracted value already assignable to the item type is used as is
// unless translation is forced.
func (s *Session) translateItem(item reflect.Value, itemType reflect.Type, cd CollectionDescriptor) (reflect.Value, error) {
	if cd.ItemSource != "" && !isNilValue(item) {
		ctx := source.Context{Variables: s.variables, Access: s.cfg.options.DefaultAccessMode}
		v, err := s.cfg.resolve(cd.ItemSource, item.Interface(), ctx)
		if err != nil {
			return reflect.Value{}, err
		}
		item = reflect.ValueOf(v)
		if !cd.TranslateItems && item.IsValid() && item.Type().AssignableTo(itemType) {
			return item, nil
		}
	}
	return s.translate(item, itemType)
}

// translateMap builds a new map of type dst from a map source. Keys are
// converted or translated to the destination key type; values follow the
// item rules.
func (s *Session) translateMap(src reflect.Value, dst, itemType reflect.Type, translateItems bool, cd CollectionDescriptor) (reflect.Value, error) {
	if src.Kind() != reflect.Map || isSetType(src.Type()) {
		return reflect.Value{}, &TypeMismatchError{Expected: dst, Actual: src.Type()}
	}
	out := reflect.MakeMapWithSize(dst, src.Len())
	iter := src.MapRange()
	for iter.Next() {
		k := iter.Key()
		if !k.Type().AssignableTo(dst.Key()) {
			var err error
			if k, err = s.translate(k, dst.Key()); err != nil {
				return reflect.Value{}, fmt.Errorf("translating key %v: %w", iter.Key(), err)
			}
		}
		v := iter.Value()
		if translateItems {
			var err error
			if v, err = s.translateItem(v, itemType, cd); err != nil {
				return reflect.Value{}, fmt.Errorf("translating value for key %v: %w", iter.Key(), err)
			}
		}
		fv, err := fitItem(v, dst.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		out.SetMapIndex(k, fv)
	}
	return out, nil
}
