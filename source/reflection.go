package source

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Prefixes claimed by the reflection provider.
const (
	PrefixField    = "field"
	PrefixProperty = "property"
	PrefixVariable = "var"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Reflection resolves dotted paths of Go identifiers ("Customer.Address.City")
// against struct fields, string-keyed maps and, in property mode, accessor
// methods.
type Reflection struct{}

// NewReflection returns the conventional field/accessor provider.
func NewReflection() *Reflection { return &Reflection{} }

func (r *Reflection) SupportsPrefix(prefix string) bool {
	switch prefix {
	case PrefixField, PrefixProperty, PrefixVariable:
		return true
	}
	return false
}

func (r *Reflection) Resolve(expression string, src any, ctx Context) (any, bool, error) {
	path, ok := SplitPath(expression)
	if !ok {
		return nil, false, nil
	}
	mode := ctx.Access
	switch ctx.Prefix {
	case PrefixField:
		mode = FieldAccess
	case PrefixProperty:
		mode = PropertyAccess
	case PrefixVariable:
		v, found := ctx.Variables[path[0]]
		if !found {
			return nil, false, nil
		}
		if len(path) == 1 {
			return v, true, nil
		}
		return Walk(v, path[1:], mode)
	}
	return Walk(src, path, mode)
}

// Lookup resolves a dotted path against src.
func Lookup(src any, expression string, mode AccessMode) (any, bool, error) {
	path, ok := SplitPath(expression)
	if !ok {
		return nil, false, nil
	}
	return Walk(src, path, mode)
}

// SplitPath splits a dotted expression into identifier segments. It reports
// false when any segment is not a Go identifier.
func SplitPath(expression string) ([]string, bool) {
	if expression == "" {
		return nil, false
	}
	path := strings.Split(expression, ".")
	for _, seg := range path {
		if !isIdent(seg) {
			return nil, false
		}
	}
	return path, true
}

// Walk follows path from src. A nil pointer met before the last segment
// resolves to nil: the property exists but has no value.
func Walk(src any, path []string, mode AccessMode) (any, bool, error) {
	cur := reflect.ValueOf(src)
	for i, seg := range path {
		next, found, err := lookup(cur, seg, mode)
		if err != nil || !found {
			return nil, found, err
		}
		if i < len(path)-1 && isNil(next) {
			return nil, true, nil
		}
		cur = next
	}
	if !cur.IsValid() || !cur.CanInterface() {
		return nil, true, nil
	}
	return cur.Interface(), true, nil
}

func lookup(cur reflect.Value, name string, mode AccessMode) (reflect.Value, bool, error) {
	for cur.IsValid() && cur.Kind() == reflect.Interface {
		cur = cur.Elem()
	}
	if !cur.IsValid() {
		return reflect.Value{}, false, nil
	}
	if mode == PropertyAccess {
		if v, ok, err := callAccessor(cur, name); ok || err != nil {
			return v, ok, err
		}
	}
	for cur.Kind() == reflect.Ptr {
		if cur.IsNil() {
			return reflect.Value{}, true, nil
		}
		cur = cur.Elem()
	}
	switch cur.Kind() {
	case reflect.Struct:
		sf, ok := cur.Type().FieldByName(name)
		if !ok || !sf.IsExported() {
			sf, ok = cur.Type().FieldByNameFunc(func(n string) bool { return strings.EqualFold(n, name) })
		}
		if !ok || !sf.IsExported() {
			return reflect.Value{}, false, nil
		}
		return safeFieldByIndex(cur, sf.Index)
	case reflect.Map:
		if cur.Type().Key().Kind() != reflect.String {
			return reflect.Value{}, false, nil
		}
		v := cur.MapIndex(reflect.ValueOf(name).Convert(cur.Type().Key()))
		if !v.IsValid() {
			return reflect.Value{}, false, nil
		}
		return v, true, nil
	}
	return reflect.Value{}, false, nil
}

// safeFieldByIndex walks embedded pointers without panicking on nil.
func safeFieldByIndex(val reflect.Value, index []int) (reflect.Value, bool, error) {
	for i, x := range index {
		if i > 0 && val.Kind() == reflect.Ptr {
			if val.IsNil() {
				return reflect.Value{}, true, nil
			}
			val = val.Elem()
		}
		val = val.Field(x)
	}
	return val, true, nil
}

func callAccessor(cur reflect.Value, name string) (reflect.Value, bool, error) {
	upper := upperFirst(name)
	for _, candidate := range []string{upper, "Get" + upper} {
		m := cur.MethodByName(candidate)
		if !m.IsValid() {
			continue
		}
		mt := m.Type()
		if mt.NumIn() != 0 || mt.NumOut() == 0 || mt.NumOut() > 2 {
			continue
		}
		if mt.NumOut() == 2 && mt.Out(1) != errorType {
			continue
		}
		out := m.Call(nil)
		if len(out) == 2 && !out[1].IsNil() {
			return reflect.Value{}, true, fmt.Errorf("calling %s: %w", candidate, out[1].Interface().(error))
		}
		return out[0], true, nil
	}
	return reflect.Value{}, false, nil
}

func isNil(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}

func upperFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[n:]
}
