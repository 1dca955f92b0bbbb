package bind

import (
	"fmt"
	"reflect"

	"github.com/reoring/modelmap"
)

// Instance wraps a populated struct value as a modelmap.Instance so the
// engine's Traverser can walk it. The view is read-only and lazy: field
// values are extracted on each Fields call.
func Instance(v any) (modelmap.Instance, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, ErrNilValue
	}
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, ErrNilValue
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s", ErrNotAStruct, rv.Kind())
	}
	return structInstance{v: rv}, nil
}

type structInstance struct {
	v reflect.Value
}

func (s structInstance) Name() string { return s.v.Type().Name() }

func (s structInstance) Fields() []modelmap.FieldValue {
	t := s.v.Type()
	out := make([]modelmap.FieldValue, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name, skip := fieldName(sf)
		if skip {
			continue
		}
		out = append(out, fieldValue(name, s.v.Field(i)))
	}
	return out
}

func fieldValue(name string, v reflect.Value) modelmap.FieldValue {
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			// nil is absent: the matcher skips it
			return modelmap.FieldValue{Name: name, Kind: kindOfType(v.Type().Elem()), Value: nil}
		}
		v = v.Elem()
	}
	switch {
	case v.Type() == timeType:
		return modelmap.FieldValue{Name: name, Kind: modelmap.KindPrimitive, Value: v.Interface()}
	case v.Kind() == reflect.Struct:
		return modelmap.FieldValue{Name: name, Kind: modelmap.KindModel, Value: modelmap.Instance(structInstance{v: v})}
	case v.Kind() == reflect.Slice || v.Kind() == reflect.Array:
		if et := baseElem(v.Type()); et.Kind() == reflect.Struct && et != timeType {
			items := make([]modelmap.Instance, 0, v.Len())
			for i := 0; i < v.Len(); i++ {
				ev := v.Index(i)
				for ev.Kind() == reflect.Pointer {
					if ev.IsNil() {
						break
					}
					ev = ev.Elem()
				}
				if ev.Kind() != reflect.Struct {
					continue
				}
				items = append(items, structInstance{v: ev})
			}
			return modelmap.FieldValue{Name: name, Kind: modelmap.KindModelList, Value: items}
		}
		if v.Kind() == reflect.Slice && v.IsNil() {
			return modelmap.FieldValue{Name: name, Kind: modelmap.KindPrimitive, Value: nil}
		}
		return modelmap.FieldValue{Name: name, Kind: modelmap.KindPrimitive, Value: v.Interface()}
	default:
		return modelmap.FieldValue{Name: name, Kind: modelmap.KindPrimitive, Value: v.Interface()}
	}
}

func kindOfType(t reflect.Type) modelmap.ValueKind {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch {
	case t == timeType:
		return modelmap.KindPrimitive
	case t.Kind() == reflect.Struct:
		return modelmap.KindModel
	case t.Kind() == reflect.Slice || t.Kind() == reflect.Array:
		if et := baseElem(t); et.Kind() == reflect.Struct && et != timeType {
			return modelmap.KindModelList
		}
	}
	return modelmap.KindPrimitive
}

func baseElem(t reflect.Type) reflect.Type {
	et := t.Elem()
	for et.Kind() == reflect.Pointer {
		et = et.Elem()
	}
	return et
}
