package converters

import (
	"database/sql/driver"
	"math"
	"reflect"
	"time"

	"github.com/Station-Manager/errors"
)

// CheckString asserts that src is a non-empty string.
func CheckString(op errors.Op, src any) (string, error) {
	srcVal, ok := src.(string)
	if !ok {
		return "", errors.New(op).Errorf("Given parameter not a string, got %T", src)
	}
	if srcVal == "" {
		return "", errors.New(op).Msg(ErrMsgEmptyParam)
	}
	return srcVal, nil
}

// CheckInt64 accepts any integer kind, and floats without a fractional part
// (numbers decoded from JSON arrive as float64).
func CheckInt64(op errors.Op, src any) (int64, error) {
	switch v := src.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case uint:
		return int64(v), nil
	case uint64:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint8:
		return int64(v), nil
	case float64:
		if v != math.Trunc(v) {
			return -1, errors.New(op).Msg(ErrMsgNotIntegral)
		}
		return int64(v), nil
	}
	return -1, errors.New(op).Errorf("Given parameter not an integer, got %T", src)
}

// CheckTime asserts that src is a time.Time.
func CheckTime(op errors.Op, src any) (time.Time, error) {
	srcVal, ok := src.(time.Time)
	if !ok {
		return time.Time{}, errors.New(op).Errorf("Given parameter not a time.Time, got %T", src)
	}
	return srcVal, nil
}

// Unwrap reduces src to a plain value: driver.Valuer implementations (the
// null and sqlboiler types among them) yield their driver value, and non-nil
// pointers are dereferenced. A nil pointer or invalid nullable yields nil.
func Unwrap(src any) (any, error) {
	const op errors.Op = "converters.Unwrap"
	for {
		if src == nil {
			return nil, nil
		}
		if valuer, ok := src.(driver.Valuer); ok {
			rv := reflect.ValueOf(src)
			if rv.Kind() == reflect.Ptr && rv.IsNil() {
				return nil, nil
			}
			v, err := valuer.Value()
			if err != nil {
				return nil, errors.New(op).Err(err)
			}
			return v, nil
		}
		rv := reflect.ValueOf(src)
		if rv.Kind() != reflect.Ptr {
			return src, nil
		}
		if rv.IsNil() {
			return nil, nil
		}
		src = rv.Elem().Interface()
	}
}
