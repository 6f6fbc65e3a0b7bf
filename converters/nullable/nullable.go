// Package nullable converts arbitrary source values into the nullable types
// of github.com/aarondl/null. A nil source, a nil pointer, an invalid
// nullable or an empty string yields the invalid (null) value.
package nullable

import (
	"reflect"
	"time"

	"github.com/Station-Manager/errors"
	"github.com/aarondl/null/v8"
	boilertypes "github.com/aarondl/sqlboiler/v4/types"
	"github.com/goccy/go-json"
	"github.com/spf13/cast"

	"github.com/Station-Manager/translator/converters"
)

// ToString converts src to a null.String.
func ToString(src any) (any, error) {
	const op errors.Op = "converters.nullable.ToString"
	v, err := converters.Unwrap(src)
	if err != nil || v == nil {
		return null.String{}, err
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return null.String{}, errors.New(op).Err(err)
	}
	if s == "" {
		return null.String{}, nil
	}
	return null.StringFrom(s), nil
}

// ToBool converts src to a null.Bool.
func ToBool(src any) (any, error) {
	const op errors.Op = "converters.nullable.ToBool"
	v, err := converters.Unwrap(src)
	if err != nil || isBlank(v) {
		return null.Bool{}, err
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return null.Bool{}, errors.New(op).Err(err)
	}
	return null.BoolFrom(b), nil
}

// ToInt converts src to a null.Int.
func ToInt(src any) (any, error) {
	const op errors.Op = "converters.nullable.ToInt"
	v, err := converters.Unwrap(src)
	if err != nil || isBlank(v) {
		return null.Int{}, err
	}
	i, err := cast.ToIntE(v)
	if err != nil {
		return null.Int{}, errors.New(op).Err(err)
	}
	return null.IntFrom(i), nil
}

// ToInt64 converts src to a null.Int64.
func ToInt64(src any) (any, error) {
	const op errors.Op = "converters.nullable.ToInt64"
	v, err := converters.Unwrap(src)
	if err != nil || isBlank(v) {
		return null.Int64{}, err
	}
	i, err := cast.ToInt64E(v)
	if err != nil {
		return null.Int64{}, errors.New(op).Err(err)
	}
	return null.Int64From(i), nil
}

// ToFloat64 converts src to a null.Float64.
func ToFloat64(src any) (any, error) {
	const op errors.Op = "converters.nullable.ToFloat64"
	v, err := converters.Unwrap(src)
	if err != nil || isBlank(v) {
		return null.Float64{}, err
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return null.Float64{}, errors.New(op).Err(err)
	}
	return null.Float64From(f), nil
}

// ToTime converts src to a null.Time. The zero time stays valid.
func ToTime(src any) (any, error) {
	const op errors.Op = "converters.nullable.ToTime"
	v, err := converters.Unwrap(src)
	if err != nil || isBlank(v) {
		return null.Time{}, err
	}
	t, err := converters.ToTime(v)
	if err != nil {
		return null.Time{}, errors.New(op).Err(err)
	}
	return null.TimeFrom(t.(time.Time)), nil
}

// ToJSON converts src to a null.JSON. Byte slices and strings are taken as
// already-encoded JSON; any other value is marshaled.
func ToJSON(src any) (any, error) {
	const op errors.Op = "converters.nullable.ToJSON"
	switch v := src.(type) {
	case null.JSON:
		return v, nil
	case boilertypes.JSON:
		if len(v) == 0 {
			return null.JSON{}, nil
		}
		return null.JSONFrom(v), nil
	}
	raw, err := encode(src)
	if err != nil {
		return null.JSON{}, errors.New(op).Err(err)
	}
	if raw == nil {
		return null.JSON{}, nil
	}
	return null.JSONFrom(raw), nil
}

// encode returns src as JSON bytes, or nil when src carries no value.
func encode(src any) ([]byte, error) {
	rv := reflect.ValueOf(src)
	if !rv.IsValid() {
		return nil, nil
	}
	switch {
	case rv.Kind() == reflect.Ptr && rv.IsNil():
		return nil, nil
	case rv.Kind() == reflect.String:
		if rv.Len() == 0 {
			return nil, nil
		}
		return []byte(rv.String()), nil
	case rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8:
		if rv.Len() == 0 {
			return nil, nil
		}
		return append([]byte(nil), rv.Bytes()...), nil
	}
	return json.Marshal(src)
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}
