// Package schemayaml loads target Descriptors from YAML documents, so mapping
// targets can be declared in configuration instead of code.
//
// Document shape:
//
//	name: TargetOrder
//	fields:
//	  - name: id
//	    type: string
//	    required: true
//	  - name: payment
//	    required: true
//	    schema:
//	      name: Payment
//	      fields:
//	        - {name: total, type: float, required: true}
//	  - name: items
//	    list: true
//	    schema:
//	      name: Item
//	      fields:
//	        - {name: sku, type: string, required: true}
package schemayaml

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/reoring/modelmap"
)

// ErrInvalidSchema wraps every structural problem of a schema document.
var ErrInvalidSchema = errors.New("schemayaml: invalid schema document")

type doc struct {
	Name   string     `yaml:"name"`
	Fields []fieldDoc `yaml:"fields"`
}

type fieldDoc struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Required bool   `yaml:"required"`
	List     bool   `yaml:"list"`
	Schema   *doc   `yaml:"schema"`
}

// Load parses one YAML schema document into a Descriptor.
func Load(data []byte) (modelmap.Descriptor, error) {
	var d doc
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
	}
	return build(&d, "")
}

func build(d *doc, at string) (modelmap.Descriptor, error) {
	if d.Name == "" {
		return nil, fmt.Errorf("%w: model name missing at %s", ErrInvalidSchema, orTop(at))
	}
	if len(d.Fields) == 0 {
		return nil, fmt.Errorf("%w: model '%s' declares no fields", ErrInvalidSchema, d.Name)
	}
	seen := map[string]struct{}{}
	fields := make([]modelmap.FieldDescriptor, 0, len(d.Fields))
	for _, f := range d.Fields {
		if f.Name == "" {
			return nil, fmt.Errorf("%w: unnamed field on model '%s'", ErrInvalidSchema, d.Name)
		}
		if _, dup := seen[f.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate field '%s' on model '%s'", ErrInvalidSchema, f.Name, d.Name)
		}
		seen[f.Name] = struct{}{}

		fd := modelmap.FieldDescriptor{Name: f.Name, Required: f.Required, IsList: f.List}
		switch {
		case f.Schema != nil:
			if f.Type != "" {
				return nil, fmt.Errorf("%w: field '%s' on model '%s' declares both type and schema", ErrInvalidSchema, f.Name, d.Name)
			}
			nested, err := build(f.Schema, d.Name+"."+f.Name)
			if err != nil {
				return nil, err
			}
			fd.Schema = nested
		default:
			tag, err := tagOf(f.Type)
			if err != nil {
				return nil, fmt.Errorf("%w on field '%s' of model '%s'", err, f.Name, d.Name)
			}
			fd.Type = tag
		}
		fields = append(fields, fd)
	}
	return modelmap.NewDescriptor(d.Name, fields), nil
}

func tagOf(s string) (modelmap.TypeTag, error) {
	switch s {
	case "string":
		return modelmap.TagString, nil
	case "int":
		return modelmap.TagInt, nil
	case "float":
		return modelmap.TagFloat, nil
	case "bool":
		return modelmap.TagBool, nil
	case "time":
		return modelmap.TagTime, nil
	case "any", "":
		// untyped fields accept whatever was discovered
		return modelmap.TagAny, nil
	}
	return "", fmt.Errorf("%w: unknown type '%s'", ErrInvalidSchema, s)
}

func orTop(at string) string {
	if at == "" {
		return "top level"
	}
	return at
}
