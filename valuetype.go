package translator

import (
	stdjson "encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/aarondl/null/v8"
	boilertypes "github.com/aarondl/sqlboiler/v4/types"
	"github.com/spf13/cast"

	"github.com/Station-Manager/translator/converters"
	"github.com/Station-Manager/translator/converters/boiler"
	"github.com/Station-Manager/translator/converters/nullable"
)

// valueTranslator performs a direct, non-recursive conversion into one
// destination type. Results are never cached.
type valueTranslator func(src any, dst reflect.Type) (reflect.Value, error)

func defaultValueTypes() map[reflect.Type]ConverterFunc {
	return map[reflect.Type]ConverterFunc{
		reflect.TypeFor[time.Time]():               converters.ToTime,
		reflect.TypeFor[time.Duration]():           converters.ToDuration,
		reflect.TypeFor[null.String]():             nullable.ToString,
		reflect.TypeFor[null.Bool]():               nullable.ToBool,
		reflect.TypeFor[null.Int]():                nullable.ToInt,
		reflect.TypeFor[null.Int64]():              nullable.ToInt64,
		reflect.TypeFor[null.Float64]():            nullable.ToFloat64,
		reflect.TypeFor[null.Time]():               nullable.ToTime,
		reflect.TypeFor[null.JSON]():               nullable.ToJSON,
		reflect.TypeFor[boilertypes.Decimal]():     boiler.ToDecimal,
		reflect.TypeFor[boilertypes.NullDecimal](): boiler.ToNullDecimal,
		reflect.TypeFor[boilertypes.JSON]():        boiler.ToJSON,
		reflect.TypeFor[stdjson.RawMessage]():      toRawMessage,
	}
}

func toRawMessage(src any) (any, error) {
	out, err := boiler.ToJSON(src)
	if err != nil {
		return nil, err
	}
	return stdjson.RawMessage(out.(boilertypes.JSON)), nil
}

// valueTypeFor returns the value translator for dst, if dst is a value type.
// Registered types take precedence over the basic kinds.
func (c *Configuration) valueTypeFor(dst reflect.Type) (valueTranslator, bool) {
	if fn, ok := c.valueTypes[dst]; ok {
		return registeredTranslator(fn), true
	}
	if isBasicKind(dst.Kind()) {
		return convertBasic, true
	}
	return nil, false
}

func registeredTranslator(fn ConverterFunc) valueTranslator {
	return func(src any, dst reflect.Type) (reflect.Value, error) {
		if sv := reflect.ValueOf(src); sv.IsValid() && sv.Type() == dst {
			return sv, nil
		}
		out, err := fn(src)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("%w: %w", &TypeMismatchError{Expected: dst, Actual: reflect.TypeOf(src)}, err)
		}
		return fitValue(out, dst)
	}
}

// fitValue assigns or converts out to dst.
func fitValue(out any, dst reflect.Type) (reflect.Value, error) {
	ov := reflect.ValueOf(out)
	switch {
	case !ov.IsValid():
		return reflect.Zero(dst), nil
	case ov.Type().AssignableTo(dst):
		return ov, nil
	case sameFamily(ov.Kind(), dst.Kind()) && ov.Type().ConvertibleTo(dst):
		return ov.Convert(dst), nil
	}
	return reflect.Value{}, &TypeMismatchError{Expected: dst, Actual: ov.Type()}
}

// convertBasic handles bool, numeric, complex and string kinds, named types
// included. Nullable and driver.Valuer sources are unwrapped first; nil
// yields the zero value. Strings are parsed with spf13/cast.
func convertBasic(src any, dst reflect.Type) (reflect.Value, error) {
	if sv := reflect.ValueOf(src); sv.IsValid() && sv.Type() == dst {
		return sv, nil
	}
	v, err := converters.Unwrap(src)
	if err != nil {
		return reflect.Value{}, err
	}
	if v == nil {
		return reflect.Zero(dst), nil
	}
	sv := reflect.ValueOf(v)
	if sameFamily(sv.Kind(), dst.Kind()) && sv.Type().ConvertibleTo(dst) {
		return sv.Convert(dst), nil
	}
	var out any
	switch dst.Kind() {
	case reflect.String:
		out, err = cast.ToStringE(v)
	case reflect.Bool:
		out, err = cast.ToBoolE(v)
	case reflect.Int:
		out, err = cast.ToIntE(v)
	case reflect.Int8:
		out, err = cast.ToInt8E(v)
	case reflect.Int16:
		out, err = cast.ToInt16E(v)
	case reflect.Int32:
		out, err = cast.ToInt32E(v)
	case reflect.Int64:
		out, err = cast.ToInt64E(v)
	case reflect.Uint:
		out, err = cast.ToUintE(v)
	case reflect.Uint8:
		out, err = cast.ToUint8E(v)
	case reflect.Uint16:
		out, err = cast.ToUint16E(v)
	case reflect.Uint32:
		out, err = cast.ToUint32E(v)
	case reflect.Uint64, reflect.Uintptr:
		out, err = cast.ToUint64E(v)
	case reflect.Float32:
		out, err = cast.ToFloat32E(v)
	case reflect.Float64:
		out, err = cast.ToFloat64E(v)
	default:
		return reflect.Value{}, &TypeMismatchError{Expected: dst, Actual: sv.Type()}
	}
	if err != nil {
		return reflect.Value{}, fmt.Errorf("%w: %w", &TypeMismatchError{Expected: dst, Actual: sv.Type()}, err)
	}
	return reflect.ValueOf(out).Convert(dst), nil
}

func isBasicKind(k reflect.Kind) bool {
	switch k {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	}
	return false
}

type kindFamily int

const (
	otherFamily kindFamily = iota
	boolFamily
	numberFamily
	complexFamily
	stringFamily
)

func familyOf(k reflect.Kind) kindFamily {
	switch k {
	case reflect.Bool:
		return boolFamily
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return numberFamily
	case reflect.Complex64, reflect.Complex128:
		return complexFamily
	case reflect.String:
		return stringFamily
	}
	return otherFamily
}

// sameFamily reports whether a reflect conversion between the kinds keeps
// the value's meaning (int to string, for instance, does not).
func sameFamily(a, b reflect.Kind) bool {
	fa := familyOf(a)
	return fa != otherFamily && fa == familyOf(b)
}
