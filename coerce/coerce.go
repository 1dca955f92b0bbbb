// Package coerce provides the stock coercion capability consumed by the
// modelmap engine: best-effort conversion of a discovered value to a field's
// declared type.
package coerce

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/reoring/modelmap"
)

// ErrCannotCoerce wraps every conversion failure so callers can test for the
// class with errors.Is.
var ErrCannotCoerce = errors.New("coerce: value not convertible to declared type")

// Default returns the built-in Coercer. Conversions are deliberately narrow:
// numeric widening, lossless float/int crossover, string parsing for numbers
// and bools, and RFC3339 strings for time. Structured values never coerce to
// scalars.
func Default() modelmap.Coercer { return defaultCoercer{} }

type defaultCoercer struct{}

func (defaultCoercer) Coerce(v any, tag modelmap.TypeTag) (any, error) {
	switch tag {
	case modelmap.TagAny:
		return v, nil
	case modelmap.TagString:
		return toString(v)
	case modelmap.TagInt:
		return toInt(v)
	case modelmap.TagFloat:
		return toFloat(v)
	case modelmap.TagBool:
		return toBool(v)
	case modelmap.TagTime:
		return toTime(v)
	default:
		return nil, fmt.Errorf("%w: unknown type tag %q", ErrCannotCoerce, tag)
	}
}

func toString(v any) (any, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	return nil, failure(v, modelmap.TagString)
}

func toInt(v any) (any, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint:
		return int64(n), nil
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint64:
		if n > math.MaxInt64 {
			return nil, failure(v, modelmap.TagInt)
		}
		return int64(n), nil
	case float32:
		return floatToInt(float64(n))
	case float64:
		return floatToInt(n)
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return nil, failure(v, modelmap.TagInt)
		}
		return i, nil
	}
	return nil, failure(v, modelmap.TagInt)
}

// floatToInt only accepts integral floats; precision loss is a mismatch, not
// a rounding decision the engine is allowed to make.
func floatToInt(f float64) (any, error) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return nil, failure(f, modelmap.TagInt)
	}
	return int64(f), nil
}

func toFloat(v any) (any, error) {
	switch n := v.(type) {
	case float32:
		return float64(n), nil
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int8:
		return float64(n), nil
	case int16:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint8:
		return float64(n), nil
	case uint16:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return nil, failure(v, modelmap.TagFloat)
		}
		return f, nil
	}
	return nil, failure(v, modelmap.TagFloat)
}

func toBool(v any) (any, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		parsed, err := strconv.ParseBool(b)
		if err != nil {
			return nil, failure(v, modelmap.TagBool)
		}
		return parsed, nil
	}
	return nil, failure(v, modelmap.TagBool)
}

func toTime(v any) (any, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		parsed, err := parseRFC3339(t)
		if err != nil {
			return nil, failure(v, modelmap.TagTime)
		}
		return parsed, nil
	}
	return nil, failure(v, modelmap.TagTime)
}

func parseRFC3339(s string) (time.Time, error) {
	// Accept RFC3339Nano (trailing zeros optional)
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}

func failure(v any, tag modelmap.TypeTag) error {
	return fmt.Errorf("%w: %T -> %s", ErrCannotCoerce, v, tag)
}
