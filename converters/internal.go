package converters

import (
	"encoding/json"

	"github.com/Station-Manager/errors"
	"github.com/spf13/cast"
)

// CheckString asserts src is a non-empty string.
func CheckString(op errors.Op, src any) (string, error) {
	srcVal, ok := src.(string)
	if !ok {
		return "", errors.New(op).Errorf("Given parameter not a string, got %T", src)
	}
	if srcVal == "" {
		return "", errors.New(op).Msg(ErrMsgParamEmpty)
	}
	return srcVal, nil
}

// CheckInt64 coerces any integral number (including json.Number and integral floats) to int64.
// Strings are rejected: callers decide whether text is a pattern or a number.
func CheckInt64(op errors.Op, src any) (int64, error) {
	if num, ok := src.(json.Number); ok {
		if n, err := num.Int64(); err == nil {
			return n, nil
		}
		f, err := num.Float64()
		if err != nil {
			return 0, errors.New(op).Err(err).Msg(ErrMsgBadEpochValue)
		}
		src = f
	}
	switch v := src.(type) {
	case nil, bool, string:
		return 0, errors.New(op).Errorf("Given parameter not a number, got %T", src)
	case float32:
		if float32(int64(v)) != v {
			return 0, errors.New(op).Msg(ErrMsgBadEpochValue)
		}
	case float64:
		if float64(int64(v)) != v {
			return 0, errors.New(op).Msg(ErrMsgBadEpochValue)
		}
	}
	n, err := cast.ToInt64E(src)
	if err != nil {
		return 0, errors.New(op).Err(err).Msg(ErrMsgBadEpochValue)
	}
	return n, nil
}
