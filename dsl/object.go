// Package dsl provides a fluent builder for declaring target schemas by hand
// when there is no Go struct to derive one from.
package dsl

import (
	"fmt"

	"github.com/reoring/modelmap"
)

// ObjectBuilder accumulates field declarations for one model shape.
type ObjectBuilder struct {
	name   string
	fields []modelmap.FieldDescriptor
	err    error
}

// FieldStep scopes Required/Optional to the field just declared.
type FieldStep struct {
	b *ObjectBuilder
}

// Object creates a new builder for a model named name. Fields default to
// optional.
func Object(name string) *ObjectBuilder {
	return &ObjectBuilder{name: name}
}

// Field declares a scalar field with its declared type.
func (b *ObjectBuilder) Field(name string, tag modelmap.TypeTag) *FieldStep {
	return b.add(modelmap.FieldDescriptor{Name: name, Type: tag})
}

// Model declares a single nested model field.
func (b *ObjectBuilder) Model(name string, schema modelmap.Descriptor) *FieldStep {
	return b.add(modelmap.FieldDescriptor{Name: name, Schema: schema})
}

// ListOf declares a list-of-models field.
func (b *ObjectBuilder) ListOf(name string, elem modelmap.Descriptor) *FieldStep {
	return b.add(modelmap.FieldDescriptor{Name: name, Schema: elem, IsList: true})
}

func (b *ObjectBuilder) add(fd modelmap.FieldDescriptor) *FieldStep {
	for _, f := range b.fields {
		if f.Name == fd.Name && b.err == nil {
			b.err = fmt.Errorf("dsl: duplicate field %q on %q", fd.Name, b.name)
		}
	}
	b.fields = append(b.fields, fd)
	return &FieldStep{b: b}
}

// Required marks the field just declared as required and returns the builder.
func (f *FieldStep) Required() *ObjectBuilder {
	f.b.fields[len(f.b.fields)-1].Required = true
	return f.b
}

// Optional marks the field just declared as optional (the default) and
// returns the builder.
func (f *FieldStep) Optional() *ObjectBuilder {
	f.b.fields[len(f.b.fields)-1].Required = false
	return f.b
}

// Chaining helpers so a declaration can continue without closing the step.
func (f *FieldStep) Field(name string, tag modelmap.TypeTag) *FieldStep {
	return f.b.Field(name, tag)
}
func (f *FieldStep) Model(name string, schema modelmap.Descriptor) *FieldStep {
	return f.b.Model(name, schema)
}
func (f *FieldStep) ListOf(name string, elem modelmap.Descriptor) *FieldStep {
	return f.b.ListOf(name, elem)
}
func (f *FieldStep) Build() (modelmap.Descriptor, error) { return f.b.Build() }
func (f *FieldStep) MustBuild() modelmap.Descriptor      { return f.b.MustBuild() }

// Build validates the declaration and returns a Descriptor.
func (b *ObjectBuilder) Build() (modelmap.Descriptor, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.name == "" {
		return nil, fmt.Errorf("dsl: model name must not be empty")
	}
	return modelmap.NewDescriptor(b.name, b.fields), nil
}

// MustBuild is like Build but panics on error.
func (b *ObjectBuilder) MustBuild() modelmap.Descriptor {
	d, err := b.Build()
	if err != nil {
		panic(err)
	}
	return d
}
