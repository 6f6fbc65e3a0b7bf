package converters

const (
	ErrMsgEmptyParam    = "Parameter cannot be empty."
	ErrMsgBadTimeFormat = "Bad time format, expected RFC3339, YYYY-MM-DD HH:MM:SS, YYYY-MM-DD or YYYYMMDD"
	ErrMsgNotIntegral   = "Given float has a fractional part"
)
