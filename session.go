package translator

import (
	"fmt"
	"reflect"

	"github.com/Station-Manager/translator/collection"
	"github.com/Station-Manager/translator/source"
)

// Session is one translation run. It owns the identity cache that maps each
// source reference to the destination made from it, so shared references
// stay shared and cycles terminate. A Session is not safe for concurrent
// use; create one per goroutine from a shared Configuration.
type Session struct {
	cfg       *Configuration
	cache     *translationCache
	variables map[string]any
}

// NewSession creates a session with an empty cache and no variables.
func NewSession(cfg *Configuration) *Session {
	return NewSessionWithVariables(cfg, nil)
}

// NewSessionWithVariables creates a session whose variables are visible to
// source expressions ("var:name", or by name in "expr:" expressions). The
// session keeps vars itself, not a copy: entries the caller adds later are
// visible to later translations. The session never writes to it.
func NewSessionWithVariables(cfg *Configuration, vars map[string]any) *Session {
	if cfg == nil {
		cfg = New()
	}
	if vars == nil {
		vars = make(map[string]any)
	}
	return &Session{cfg: cfg, cache: newTranslationCache(), variables: vars}
}

// Configuration returns the configuration the session translates with.
func (s *Session) Configuration() *Configuration { return s.cfg }

// Variables returns the map passed to NewSessionWithVariables, or an empty
// map owned by the session.
func (s *Session) Variables() map[string]any { return s.variables }

// Translate translates src into a new value of dstType. Struct destinations
// are returned as *T; translating the same pointer to the same struct type
// twice in a session returns the same *T. A nil src yields nil.
func (s *Session) Translate(src any, dstType reflect.Type) (any, error) {
	if dstType == nil {
		return nil, ErrNoDestination
	}
	sv := reflect.ValueOf(src)
	if isNilValue(sv) {
		return nil, nil
	}
	want := dstType
	if s.isObjectType(dstType) && dstType.Kind() == reflect.Struct {
		want = reflect.PointerTo(dstType)
	}
	out, err := s.translate(sv, want)
	if err != nil {
		return nil, err
	}
	return out.Interface(), nil
}

// Update populates the existing struct dst points to from src, in place.
// dst is registered in the cache as the translation of src, so references
// back to src inside the graph resolve to dst. A nil src leaves dst as is.
func (s *Session) Update(src, dst any) error {
	dv := reflect.ValueOf(dst)
	if isNilValue(dv) {
		return ErrNoDestination
	}
	if dv.Kind() != reflect.Ptr || dv.Elem().Kind() != reflect.Struct {
		return &TypeMismatchError{Expected: reflect.PointerTo(dv.Type()), Actual: dv.Type()}
	}
	sv := reflect.ValueOf(src)
	if isNilValue(sv) {
		return nil
	}
	return s.update(sv, dv)
}

func (s *Session) update(src, dstPtr reflect.Value) error {
	typ := dstPtr.Type().Elem()
	t, err := s.cfg.translatorFor(typ)
	if err != nil {
		return err
	}
	if _, ok := s.cache.get(src, typ); !ok {
		s.cache.put(src, typ, dstPtr)
	}
	return t.castAndUpdate(src, dstPtr.Interface(), s)
}

// EachTranslation translates every item of sources into dstType, first
// resolving itemExpression against each item when it is not empty.
//
// Slices, arrays and Containers produce a []dstType in iteration order;
// sets (map[K]struct{}) produce a map[dstType]struct{}. Struct destinations
// become pointers, as with Translate. A nil sources yields nil.
func (s *Session) EachTranslation(sources any, dstType reflect.Type, itemExpression string) (any, error) {
	if dstType == nil {
		return nil, ErrNoDestination
	}
	sv := reflect.ValueOf(sources)
	if isNilValue(sv) {
		return nil, nil
	}
	itemType := dstType
	if s.isObjectType(dstType) && dstType.Kind() == reflect.Struct {
		itemType = reflect.PointerTo(dstType)
	}
	items, err := itemsOf(sv)
	if err != nil {
		return nil, err
	}
	var out reflect.Value
	set := isSetType(sv.Type())
	if set {
		if !itemType.Comparable() {
			return nil, &TypeMismatchError{Expected: reflect.MapOf(itemType, emptyStructType), Actual: sv.Type()}
		}
		out = reflect.MakeMapWithSize(reflect.MapOf(itemType, emptyStructType), len(items))
	} else {
		out = reflect.MakeSlice(reflect.SliceOf(itemType), 0, len(items))
	}
	for i, item := range items {
		v, err := s.eachItem(item, itemType, itemExpression)
		if err != nil {
			return nil, fmt.Errorf("translating item %d: %w", i, err)
		}
		if set {
			out.SetMapIndex(v, reflect.Zero(emptyStructType))
		} else {
			out = reflect.Append(out, v)
		}
	}
	return out.Interface(), nil
}

func (s *Session) eachItem(item reflect.Value, itemType reflect.Type, expression string) (reflect.Value, error) {
	if expression != "" && !isNilValue(item) {
		ctx := source.Context{Variables: s.variables, Access: s.cfg.options.DefaultAccessMode}
		v, err := s.cfg.resolve(expression, item.Interface(), ctx)
		if err != nil {
			return reflect.Value{}, err
		}
		item = reflect.ValueOf(v)
	}
	return s.translate(item, itemType)
}

// translate returns the translation of src as a value of exactly dst.
// Struct destinations go through the identity cache.
func (s *Session) translate(src reflect.Value, dst reflect.Type) (reflect.Value, error) {
	if isNilValue(src) {
		return reflect.Zero(dst), nil
	}
	if src.Kind() == reflect.Interface {
		src = src.Elem()
	}
	if vt, ok := s.cfg.valueTypeFor(dst); ok {
		return vt(src.Interface(), dst)
	}
	if isCollection(dst) {
		return s.translateCollection(src, dst, CollectionDescriptor{})
	}
	if dst.Kind() == reflect.Interface {
		if src.Type().Implements(dst) {
			out := reflect.New(dst).Elem()
			out.Set(src)
			return out, nil
		}
		return reflect.Value{}, &TypeMismatchError{Expected: dst, Actual: src.Type()}
	}
	if dst.Kind() == reflect.Ptr {
		if vt, ok := s.cfg.valueTypeFor(dst.Elem()); ok {
			v, err := vt(src.Interface(), dst.Elem())
			if err != nil {
				return reflect.Value{}, err
			}
			p := reflect.New(dst.Elem())
			p.Elem().Set(v)
			return p, nil
		}
	}
	st, ptr := dst, false
	if dst.Kind() == reflect.Ptr {
		st, ptr = dst.Elem(), true
	}
	if st.Kind() != reflect.Struct || !isObjectSource(src.Type()) {
		return reflect.Value{}, &TypeMismatchError{Expected: dst, Actual: src.Type()}
	}
	out, err := s.translation(src, st)
	if err != nil {
		return reflect.Value{}, err
	}
	if ptr {
		return out, nil
	}
	return out.Elem(), nil
}

// translation returns the cached *st made from src, or creates, registers
// and then populates a new one.
func (s *Session) translation(src reflect.Value, st reflect.Type) (reflect.Value, error) {
	if cached, ok := s.cache.get(src, st); ok {
		return cached, nil
	}
	t, err := s.cfg.translatorFor(st)
	if err != nil {
		return reflect.Value{}, err
	}
	out := t.create()
	s.cache.put(src, st, out)
	if err := t.update(src, out, s); err != nil {
		return reflect.Value{}, err
	}
	return out, nil
}

// isObjectType reports whether t is translated by an object translator.
func (s *Session) isObjectType(t reflect.Type) bool {
	if _, ok := s.cfg.valueTypeFor(t); ok || isCollection(t) {
		return false
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}

// isObjectSource reports whether fields can be read from values of type t:
// structs and maps, or pointers to them.
func isObjectSource(t reflect.Type) bool {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct || t.Kind() == reflect.Map
}

// itemsOf lists the items of a slice, array, set or Container in iteration
// order. Sets yield their keys; other maps yield their values.
func itemsOf(v reflect.Value) ([]reflect.Value, error) {
	if c, ok := asContainer(v); ok {
		items := make([]reflect.Value, 0, c.Len())
		c.Range(func(item any) bool {
			items = append(items, reflect.ValueOf(item))
			return true
		})
		return items, nil
	}
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		items := make([]reflect.Value, v.Len())
		for i := range items {
			items[i] = v.Index(i)
		}
		return items, nil
	case reflect.Map:
		items := make([]reflect.Value, 0, v.Len())
		set := isSetType(v.Type())
		iter := v.MapRange()
		for iter.Next() {
			if set {
				items = append(items, iter.Key())
			} else {
				items = append(items, iter.Value())
			}
		}
		return items, nil
	}
	return nil, &TypeMismatchError{Expected: reflect.TypeFor[[]any](), Actual: v.Type()}
}

func asContainer(v reflect.Value) (collection.Container, bool) {
	if !v.IsValid() || !v.Type().Implements(containerType) || isNilValue(v) {
		return nil, false
	}
	c, ok := v.Interface().(collection.Container)
	return c, ok
}
