package converters

import (
	"time"

	"github.com/Station-Manager/errors"
	"github.com/spf13/cast"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"20060102",
}

// ToTime converts src to a time.Time. Strings are parsed with the layouts
// above, integers are Unix seconds, and nullable sources yield the zero time
// when invalid.
func ToTime(src any) (any, error) {
	const op errors.Op = "converters.ToTime"
	v, err := Unwrap(src)
	if err != nil {
		return time.Time{}, errors.New(op).Err(err)
	}
	if t, err := CheckTime(op, v); err == nil {
		return t, nil
	}
	switch val := v.(type) {
	case nil:
		return time.Time{}, nil
	case string:
		return ParseTime(val)
	case []byte:
		return ParseTime(string(val))
	}
	secs, err := CheckInt64(op, v)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(secs, 0).UTC(), nil
}

// ParseTime parses s with the first matching supported layout.
func ParseTime(s string) (time.Time, error) {
	const op errors.Op = "converters.ParseTime"
	if s == "" {
		return time.Time{}, errors.New(op).Msg(ErrMsgEmptyParam)
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New(op).Msg(ErrMsgBadTimeFormat)
}

// ToDuration converts strings such as "1h30m", integers (nanoseconds) and
// durations to a time.Duration.
func ToDuration(src any) (any, error) {
	const op errors.Op = "converters.ToDuration"
	v, err := Unwrap(src)
	if err != nil {
		return time.Duration(0), errors.New(op).Err(err)
	}
	if v == nil {
		return time.Duration(0), nil
	}
	d, err := cast.ToDurationE(v)
	if err != nil {
		return time.Duration(0), errors.New(op).Err(err)
	}
	return d, nil
}
