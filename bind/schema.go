// Package bind adapts plain Go structs to the modelmap capabilities: it
// derives target Descriptors, wraps populated values as source Instances, and
// materializes complete build results back into typed structs.
package bind

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/reoring/modelmap"
)

var (
	// ErrNotAStruct indicates the given value is not a struct or a pointer
	// to one.
	ErrNotAStruct = errors.New("bind: value is not a struct")

	// ErrNilValue indicates a nil value or nil pointer was passed in.
	ErrNilValue = errors.New("bind: nil value")
)

var timeType = reflect.TypeOf(time.Time{})

// SchemaOf derives a modelmap.Descriptor from a struct type. Field names
// come from the json tag when present, falling back to the Go name; a field
// is optional when it is a pointer or its json tag carries omitempty.
// Recursive struct types are rejected with modelmap.ErrCyclicSchema.
func SchemaOf(v any) (modelmap.Descriptor, error) {
	t := reflect.TypeOf(v)
	if t == nil {
		return nil, ErrNilValue
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s", ErrNotAStruct, t.Kind())
	}
	return schemaOfType(t, nil)
}

func schemaOfType(t reflect.Type, path []reflect.Type) (modelmap.Descriptor, error) {
	for _, seen := range path {
		if seen == t {
			return nil, fmt.Errorf("%w: %s", modelmap.ErrCyclicSchema, t.Name())
		}
	}
	path = append(path, t)

	var fields []modelmap.FieldDescriptor
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name, skip := fieldName(sf)
		if skip {
			continue
		}
		fd := modelmap.FieldDescriptor{
			Name:     name,
			Required: !optional(sf),
		}

		ft := sf.Type
		for ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		switch {
		case ft == timeType:
			fd.Type = modelmap.TagTime
		case ft.Kind() == reflect.Struct:
			nested, err := schemaOfType(ft, path)
			if err != nil {
				return nil, err
			}
			fd.Schema = nested
		case ft.Kind() == reflect.Slice || ft.Kind() == reflect.Array:
			et := ft.Elem()
			for et.Kind() == reflect.Pointer {
				et = et.Elem()
			}
			fd.IsList = true
			if et.Kind() == reflect.Struct && et != timeType {
				nested, err := schemaOfType(et, path)
				if err != nil {
					return nil, err
				}
				fd.Schema = nested
			} else {
				// lists of primitives match as whole values
				fd.Type = modelmap.TagAny
			}
		default:
			fd.Type = tagOfKind(ft.Kind())
		}
		fields = append(fields, fd)
	}
	return modelmap.NewDescriptor(t.Name(), fields), nil
}

func tagOfKind(k reflect.Kind) modelmap.TypeTag {
	switch k {
	case reflect.String:
		return modelmap.TagString
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return modelmap.TagInt
	case reflect.Float32, reflect.Float64:
		return modelmap.TagFloat
	case reflect.Bool:
		return modelmap.TagBool
	default:
		return modelmap.TagAny
	}
}

// fieldName resolves the mapping name of a struct field. A json tag of "-"
// excludes the field.
func fieldName(sf reflect.StructField) (name string, skip bool) {
	tag := sf.Tag.Get("json")
	if tag == "-" {
		return "", true
	}
	if tag != "" {
		if idx := strings.IndexByte(tag, ','); idx >= 0 {
			tag = tag[:idx]
		}
		if tag != "" {
			return tag, false
		}
	}
	return sf.Name, false
}

func optional(sf reflect.StructField) bool {
	if sf.Type.Kind() == reflect.Pointer {
		return true
	}
	tag := sf.Tag.Get("json")
	if idx := strings.IndexByte(tag, ','); idx >= 0 {
		return strings.Contains(tag[idx:], "omitempty")
	}
	return false
}
