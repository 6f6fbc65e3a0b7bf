package translator

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/Station-Manager/translator/collection"
	"github.com/Station-Manager/translator/source"
)

var containerType = reflect.TypeFor[collection.Container]()

type fieldInfo struct {
	FieldDescriptor
	index []int
	depth int
	typ   reflect.Type
	expr  string
}

// objectTranslator populates one destination struct type. It is built once
// per type and shared by every session of the configuration.
type objectTranslator struct {
	typ    reflect.Type
	fields []fieldInfo
}

func (c *Configuration) buildTranslator(typ reflect.Type) (*objectTranslator, error) {
	if typ.Kind() != reflect.Struct {
		return nil, &TypeMismatchError{Expected: reflect.TypeFor[struct{}](), Actual: typ}
	}
	t := &objectTranslator{typ: typ, fields: make([]fieldInfo, 0, c.countFields(typ))}
	byName := make(map[string]int)
	if err := c.buildFields(typ, t, byName, nil); err != nil {
		return nil, fmt.Errorf("describing %s: %w", typ, err)
	}
	named := c.named[typ.String()]
	overrides := c.overrides[typ]
	for _, m := range []map[string]FieldDescriptor{named, overrides} {
		for name, fd := range m {
			i, ok := byName[name]
			if !ok {
				return nil, fmt.Errorf("describing %s: no field %s", typ, name)
			}
			fd.Name = name
			t.fields[i].FieldDescriptor = fd
		}
	}
	for name, fn := range c.fieldConverters[typ] {
		i, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("describing %s: no field %s", typ, name)
		}
		t.fields[i].Converter = fn
	}
	for i := range t.fields {
		fi := &t.fields[i]
		fi.expr = fi.expression()
		if fi.Converter == nil {
			fi.Converter = c.converters[fi.Name]
		}
	}
	return t, nil
}

func (c *Configuration) countFields(typ reflect.Type) int {
	n := 0
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		if ft, ok := c.embeddedStruct(f); ok {
			n += c.countFields(ft)
			continue
		}
		if f.PkgPath == "" {
			n++
		}
	}
	return n
}

// embeddedStruct reports whether f is an embedded struct (or pointer to one)
// whose fields are flattened into the parent. Embedded value types are kept
// as ordinary fields. Pointers to unexported embedded structs cannot be
// allocated through reflection, so they are not flattened.
func (c *Configuration) embeddedStruct(f reflect.StructField) (reflect.Type, bool) {
	if !f.Anonymous || f.Tag.Get(TagName) != "" {
		return nil, false
	}
	ft := f.Type
	if ft.Kind() == reflect.Ptr {
		if !f.IsExported() {
			return nil, false
		}
		ft = ft.Elem()
	}
	if ft.Kind() != reflect.Struct {
		return nil, false
	}
	if _, ok := c.valueTypeFor(ft); ok {
		return nil, false
	}
	return ft, true
}

// buildFields collects exported fields, flattening embedded structs. A
// shallower field shadows a deeper one of the same name, as in Go selectors.
func (c *Configuration) buildFields(typ reflect.Type, t *objectTranslator, byName map[string]int, prefix []int) error {
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		idx := append(append([]int(nil), prefix...), i)
		if ft, ok := c.embeddedStruct(f); ok {
			if err := c.buildFields(ft, t, byName, idx); err != nil {
				return err
			}
			continue
		}
		if f.PkgPath != "" {
			continue
		}
		fd := FieldDescriptor{Name: f.Name}
		if err := parseTag(f.Tag.Get(TagName), &fd); err != nil {
			return fmt.Errorf("field %s: %w", f.Name, err)
		}
		fi := fieldInfo{FieldDescriptor: fd, index: idx, depth: len(idx), typ: f.Type}
		if j, seen := byName[f.Name]; seen {
			if t.fields[j].depth > fi.depth {
				t.fields[j] = fi
			}
			continue
		}
		byName[f.Name] = len(t.fields)
		t.fields = append(t.fields, fi)
	}
	return nil
}

// create returns a new zero destination, ready to be cached before update.
func (t *objectTranslator) create() reflect.Value {
	return reflect.New(t.typ)
}

// castAndUpdate checks that dst is a *T for this translator's T before
// populating it.
func (t *objectTranslator) castAndUpdate(src reflect.Value, dst any, s *Session) error {
	dv := reflect.ValueOf(dst)
	if !dv.IsValid() {
		return ErrNoDestination
	}
	if dv.Kind() != reflect.Ptr || dv.Type().Elem() != t.typ {
		return &TypeMismatchError{Expected: reflect.PointerTo(t.typ), Actual: dv.Type()}
	}
	if dv.IsNil() {
		return ErrNoDestination
	}
	return t.update(src, dv, s)
}

// update populates the struct dstPtr points to from src.
func (t *objectTranslator) update(src reflect.Value, dstPtr reflect.Value, s *Session) error {
	var srcAny any
	if src.IsValid() && src.CanInterface() {
		srcAny = src.Interface()
	}
	dst := dstPtr.Elem()
	for i := range t.fields {
		fi := &t.fields[i]
		if fi.Ignore {
			continue
		}
		ctx := source.Context{Variables: s.variables, Access: fi.access(s.cfg)}
		val, err := s.cfg.resolve(fi.expr, srcAny, ctx)
		if err != nil {
			var missing *MissingSourcePropertyError
			if errors.As(err, &missing) && !fi.required(s.cfg) {
				continue
			}
			return fmt.Errorf("translating field %s: %w", fi.Name, err)
		}
		if fi.Converter != nil {
			if val, err = fi.Converter(val); err != nil {
				return fmt.Errorf("translating field %s: %w", fi.Name, err)
			}
		}
		field := fieldForWrite(dst, fi.index)
		if err := s.assign(field, val, &fi.FieldDescriptor); err != nil {
			return fmt.Errorf("translating field %s: %w", fi.Name, err)
		}
	}
	return nil
}

// fieldForWrite walks index, allocating nil embedded pointers on the way.
func fieldForWrite(val reflect.Value, index []int) reflect.Value {
	for i, x := range index {
		if i > 0 && val.Kind() == reflect.Ptr {
			if val.IsNil() {
				val.Set(reflect.New(val.Type().Elem()))
			}
			val = val.Elem()
		}
		val = val.Field(x)
	}
	return val
}

// assign stores a resolved source value into a destination field:
//  1. nil clears the field;
//  2. update-in-place fields with an existing object are updated;
//  3. value types are converted directly;
//  4. collections, arrays and containers go to the collection translator;
//  5. assignable values are copied by reference unless translation is forced;
//  6. pointers to value types are converted and allocated;
//  7. struct and pointer-to-struct fields are translated recursively.
//
// Anything else is a type mismatch.
func (s *Session) assign(field reflect.Value, val any, fd *FieldDescriptor) error {
	if !field.CanSet() {
		return fmt.Errorf("cannot set field %s (unexported or unsettable)", fd.Name)
	}
	dt := field.Type()
	sv := reflect.ValueOf(val)
	if isNilValue(sv) {
		field.Set(reflect.Zero(dt))
		return nil
	}
	if fd.Update {
		if target, ok := s.updateTarget(field); ok {
			return s.update(sv, target)
		}
	}
	if vt, ok := s.cfg.valueTypeFor(dt); ok {
		out, err := vt(val, dt)
		if err != nil {
			return err
		}
		field.Set(out)
		return nil
	}
	if isCollection(dt) {
		out, err := s.translateCollection(sv, dt, fd.Item)
		if err != nil {
			return err
		}
		field.Set(out)
		return nil
	}
	if !fd.Translate && sv.Type().AssignableTo(dt) {
		field.Set(sv)
		return nil
	}
	out, err := s.translate(sv, dt)
	if err != nil {
		return err
	}
	field.Set(out)
	return nil
}

// updateTarget returns a pointer to the existing object held by field, if
// it holds one that can be updated in place.
func (s *Session) updateTarget(field reflect.Value) (reflect.Value, bool) {
	dt := field.Type()
	if _, ok := s.cfg.valueTypeFor(dt); ok || isCollection(dt) {
		return reflect.Value{}, false
	}
	switch {
	case dt.Kind() == reflect.Ptr && dt.Elem().Kind() == reflect.Struct && !field.IsNil():
		return field, true
	case dt.Kind() == reflect.Struct && field.CanAddr():
		return field.Addr(), true
	}
	return reflect.Value{}, false
}

func isCollection(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return true
	}
	return t.Implements(containerType)
}

func isNilValue(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}
