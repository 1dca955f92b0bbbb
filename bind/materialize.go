package bind

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/reoring/modelmap"
)

// ErrPartialResult indicates an attempt to materialize an incomplete build.
// Partial results stay as their flattened mapping form.
var ErrPartialResult = errors.New("bind: cannot materialize a partial result")

// Materialize fills dst, a pointer to a struct (or to a slice of structs for
// BuildList results), from a complete BuildResult.
func Materialize(res *modelmap.BuildResult, dst any) error {
	if res == nil || dst == nil {
		return ErrNilValue
	}
	if !res.Complete {
		return ErrPartialResult
	}
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("bind: dst must be a non-nil pointer, got %T", dst)
	}
	ev := rv.Elem()
	switch {
	case ev.Kind() == reflect.Struct && res.Value != nil:
		return setStruct(ev, res.Value)
	case ev.Kind() == reflect.Slice && res.Items != nil:
		return setValue(ev, []any(res.Items), res.Target)
	}
	return fmt.Errorf("bind: result for '%s' does not fit a %s", res.Target, ev.Kind())
}

func setStruct(dst reflect.Value, m map[string]any) error {
	t := dst.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name, skip := fieldName(sf)
		if skip {
			continue
		}
		v, ok := m[name]
		if !ok || v == nil {
			continue
		}
		if err := setValue(dst.Field(i), v, name); err != nil {
			return err
		}
	}
	return nil
}

func setValue(dst reflect.Value, v any, name string) error {
	if dst.Kind() == reflect.Pointer {
		p := reflect.New(dst.Type().Elem())
		if err := setValue(p.Elem(), v, name); err != nil {
			return err
		}
		dst.Set(p)
		return nil
	}
	switch {
	case dst.Type() == timeType:
		t, ok := v.(time.Time)
		if !ok {
			return mismatch(name, v, dst.Type())
		}
		dst.Set(reflect.ValueOf(t))
		return nil

	case dst.Kind() == reflect.Struct:
		m, ok := v.(map[string]any)
		if !ok {
			return mismatch(name, v, dst.Type())
		}
		return setStruct(dst, m)

	case dst.Kind() == reflect.Slice:
		items, ok := v.([]any)
		if !ok {
			// primitive lists travel whole
			rv := reflect.ValueOf(v)
			if rv.Type().AssignableTo(dst.Type()) {
				dst.Set(rv)
				return nil
			}
			return mismatch(name, v, dst.Type())
		}
		out := reflect.MakeSlice(dst.Type(), len(items), len(items))
		for i, it := range items {
			if err := setValue(out.Index(i), it, fmt.Sprintf("%s[%d]", name, i)); err != nil {
				return err
			}
		}
		dst.Set(out)
		return nil

	default:
		rv := reflect.ValueOf(v)
		if rv.Type().AssignableTo(dst.Type()) {
			dst.Set(rv)
			return nil
		}
		// numeric widening/narrowing between coerced and declared widths;
		// string<->number conversions are the coercer's job, not reflect's
		if numeric(rv.Kind()) && numeric(dst.Kind()) && rv.Type().ConvertibleTo(dst.Type()) {
			dst.Set(rv.Convert(dst.Type()))
			return nil
		}
		return mismatch(name, v, dst.Type())
	}
}

func numeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func mismatch(name string, v any, t reflect.Type) error {
	return fmt.Errorf("bind: field '%s': cannot place %T into %s", name, v, t)
}
