// Package boiler converts source values into the column types of
// github.com/aarondl/sqlboiler/v4/types.
package boiler

import (
	"reflect"
	"strconv"

	"github.com/Station-Manager/errors"
	"github.com/aarondl/null/v8"
	boilertypes "github.com/aarondl/sqlboiler/v4/types"
	"github.com/ericlagergren/decimal"
	"github.com/goccy/go-json"

	"github.com/Station-Manager/translator/converters"
)

const ErrMsgBadDecimal = "Given value is not a decimal number"

// ToDecimal converts src to a types.Decimal. Strings are parsed exactly;
// floats go through their shortest decimal representation.
func ToDecimal(src any) (any, error) {
	const op errors.Op = "converters.boiler.ToDecimal"
	if d, ok := src.(boilertypes.Decimal); ok {
		return d, nil
	}
	big, err := toBig(op, src)
	if err != nil {
		return boilertypes.Decimal{}, err
	}
	if big == nil {
		return boilertypes.NewDecimal(new(decimal.Big)), nil
	}
	return boilertypes.NewDecimal(big), nil
}

// ToNullDecimal converts src to a types.NullDecimal; absent values are null.
func ToNullDecimal(src any) (any, error) {
	const op errors.Op = "converters.boiler.ToNullDecimal"
	if d, ok := src.(boilertypes.NullDecimal); ok {
		return d, nil
	}
	big, err := toBig(op, src)
	if err != nil {
		return boilertypes.NullDecimal{}, err
	}
	return boilertypes.NewNullDecimal(big), nil
}

// ToJSON converts src to types.JSON. Byte slices and strings are taken as
// already-encoded JSON; any other value is marshaled.
func ToJSON(src any) (any, error) {
	const op errors.Op = "converters.boiler.ToJSON"
	switch v := src.(type) {
	case nil:
		return boilertypes.JSON(nil), nil
	case boilertypes.JSON:
		return v, nil
	case null.JSON:
		if !v.Valid {
			return boilertypes.JSON(nil), nil
		}
		return boilertypes.JSON(v.JSON), nil
	case string:
		return boilertypes.JSON(v), nil
	case []byte:
		return boilertypes.JSON(append([]byte(nil), v...)), nil
	}
	raw, err := json.Marshal(src)
	if err != nil {
		return boilertypes.JSON(nil), errors.New(op).Err(err)
	}
	return boilertypes.JSON(raw), nil
}

func toBig(op errors.Op, src any) (*decimal.Big, error) {
	v, err := converters.Unwrap(src)
	if err != nil {
		return nil, errors.New(op).Err(err)
	}
	switch val := v.(type) {
	case nil:
		return nil, nil
	case *decimal.Big:
		return new(decimal.Big).Copy(val), nil
	case string:
		if val == "" {
			return nil, nil
		}
		d, ok := new(decimal.Big).SetString(val)
		if !ok {
			return nil, errors.New(op).Msg(ErrMsgBadDecimal)
		}
		return d, nil
	case []byte:
		d, ok := new(decimal.Big).SetString(string(val))
		if !ok {
			return nil, errors.New(op).Msg(ErrMsgBadDecimal)
		}
		return d, nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return new(decimal.Big).SetMantScale(rv.Int(), 0), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		d, ok := new(decimal.Big).SetString(strconv.FormatUint(rv.Uint(), 10))
		if !ok {
			return nil, errors.New(op).Msg(ErrMsgBadDecimal)
		}
		return d, nil
	case reflect.Float32, reflect.Float64:
		d, ok := new(decimal.Big).SetString(strconv.FormatFloat(rv.Float(), 'f', -1, 64))
		if !ok {
			return nil, errors.New(op).Msg(ErrMsgBadDecimal)
		}
		return d, nil
	}
	return nil, errors.New(op).Errorf("Given parameter not a decimal source, got %T", src)
}
