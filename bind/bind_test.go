package bind_test

import (
	"context"
	"errors"
	"testing"
	"time"

	modelmap "github.com/reoring/modelmap"
	"github.com/reoring/modelmap/bind"
	"github.com/reoring/modelmap/coerce"
)

type address struct {
	Street string `json:"street"`
	City   string `json:"city,omitempty"`
}

type person struct {
	Name     string    `json:"name"`
	Age      *int      `json:"age"`
	Joined   time.Time `json:"joined"`
	Address  address   `json:"address"`
	Tags     []string  `json:"tags"`
	Friends  []address `json:"friends"`
	Internal string    `json:"-"`
	hidden   int
}

// TestSchemaOf_FieldShapes derives names, optionality and nesting from tags
// and types.
func TestSchemaOf_FieldShapes(t *testing.T) {
	d, err := bind.SchemaOf(&person{})
	if err != nil {
		t.Fatalf("SchemaOf: %v", err)
	}
	if d.Name() != "person" {
		t.Fatalf("unexpected name: %s", d.Name())
	}
	byName := map[string]modelmap.FieldDescriptor{}
	for _, f := range d.Fields() {
		byName[f.Name] = f
	}
	if _, ok := byName["Internal"]; ok {
		t.Fatalf("json:\"-\" must exclude the field")
	}
	if _, ok := byName["hidden"]; ok {
		t.Fatalf("unexported fields must be excluded")
	}
	if f := byName["name"]; f.Type != modelmap.TagString || !f.Required {
		t.Fatalf("name derived wrong: %+v", f)
	}
	if f := byName["age"]; f.Type != modelmap.TagInt || f.Required {
		t.Fatalf("pointer fields must be optional: %+v", f)
	}
	if f := byName["joined"]; f.Type != modelmap.TagTime {
		t.Fatalf("time.Time must map to the time tag: %+v", f)
	}
	if f := byName["address"]; !f.IsModel() || f.Schema.Name() != "address" {
		t.Fatalf("nested struct derived wrong: %+v", f)
	}
	if f := byName["tags"]; !f.IsList || f.Schema != nil || f.Type != modelmap.TagAny {
		t.Fatalf("primitive list derived wrong: %+v", f)
	}
	if f := byName["friends"]; !f.IsModelList() {
		t.Fatalf("struct list derived wrong: %+v", f)
	}

	// omitempty makes a value field optional
	ad, err := bind.SchemaOf(address{})
	if err != nil {
		t.Fatalf("SchemaOf(address): %v", err)
	}
	for _, f := range ad.Fields() {
		if f.Name == "city" && f.Required {
			t.Fatalf("omitempty must make the field optional: %+v", f)
		}
	}
}

// TestSchemaOf_RejectsNonStructsAndCycles reports the two hard failures.
func TestSchemaOf_RejectsNonStructsAndCycles(t *testing.T) {
	if _, err := bind.SchemaOf(42); !errors.Is(err, bind.ErrNotAStruct) {
		t.Fatalf("expected ErrNotAStruct, got %v", err)
	}
	if _, err := bind.SchemaOf(nil); !errors.Is(err, bind.ErrNilValue) {
		t.Fatalf("expected ErrNilValue, got %v", err)
	}
	type node struct {
		Next *node `json:"next"`
	}
	if _, err := bind.SchemaOf(node{}); !errors.Is(err, modelmap.ErrCyclicSchema) {
		t.Fatalf("expected ErrCyclicSchema, got %v", err)
	}
}

// TestInstance_FieldValues exposes populated values with their kinds; nil
// pointers read as absent.
func TestInstance_FieldValues(t *testing.T) {
	age := 30
	p := person{
		Name:    "a",
		Age:     &age,
		Address: address{Street: "s"},
		Friends: []address{{Street: "f1"}, {Street: "f2"}},
	}
	inst, err := bind.Instance(&p)
	if err != nil {
		t.Fatalf("Instance: %v", err)
	}
	if inst.Name() != "person" {
		t.Fatalf("unexpected name: %s", inst.Name())
	}
	byName := map[string]modelmap.FieldValue{}
	for _, fv := range inst.Fields() {
		byName[fv.Name] = fv
	}
	if byName["age"].Value != 30 {
		t.Fatalf("pointer must deref: %v", byName["age"].Value)
	}
	if byName["address"].Kind != modelmap.KindModel {
		t.Fatalf("nested struct must be a model value: %+v", byName["address"])
	}
	friends, ok := byName["friends"].Value.([]modelmap.Instance)
	if !ok || len(friends) != 2 {
		t.Fatalf("struct list must be a model list: %+v", byName["friends"])
	}

	// nil pointer reads as absent
	p.Age = nil
	inst, _ = bind.Instance(&p)
	for _, fv := range inst.Fields() {
		if fv.Name == "age" && fv.Value != nil {
			t.Fatalf("nil pointer must read as nil, got %v", fv.Value)
		}
	}
}

// TestInstance_RejectsNonStructs mirrors SchemaOf's input validation.
func TestInstance_RejectsNonStructs(t *testing.T) {
	if _, err := bind.Instance("x"); !errors.Is(err, bind.ErrNotAStruct) {
		t.Fatalf("expected ErrNotAStruct, got %v", err)
	}
	var p *person
	if _, err := bind.Instance(p); !errors.Is(err, bind.ErrNilValue) {
		t.Fatalf("expected ErrNilValue, got %v", err)
	}
}

// TestMaterialize_RoundTrip runs a real build and fills a typed struct.
func TestMaterialize_RoundTrip(t *testing.T) {
	ctx := context.Background()
	type flatSource struct {
		Name   string    `json:"name"`
		Age    int       `json:"age"`
		Joined time.Time `json:"joined"`
		Street string    `json:"street"`
	}
	type dest struct {
		Name    string    `json:"name"`
		Age     *int      `json:"age"`
		Joined  time.Time `json:"joined"`
		Address address   `json:"address"`
	}

	target, err := bind.SchemaOf(dest{})
	if err != nil {
		t.Fatalf("SchemaOf: %v", err)
	}
	joined := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	src, err := bind.Instance(flatSource{Name: "a", Age: 30, Joined: joined, Street: "s"})
	if err != nil {
		t.Fatalf("Instance: %v", err)
	}
	res, err := modelmap.Build(ctx, src, target, modelmap.WithCoercer(coerce.Default()))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !res.Complete {
		t.Fatalf("expected complete result:\n%s", res.Report())
	}

	var out dest
	if err := bind.Materialize(res, &out); err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if out.Name != "a" || out.Age == nil || *out.Age != 30 {
		t.Fatalf("unexpected output: %+v", out)
	}
	if !out.Joined.Equal(joined) || out.Address.Street != "s" {
		t.Fatalf("unexpected output: %+v", out)
	}
}

// TestMaterialize_RefusesPartial keeps incomplete results in their flattened
// form.
func TestMaterialize_RefusesPartial(t *testing.T) {
	res := &modelmap.BuildResult{Target: "dest", Value: map[string]any{"name": "a"}, Complete: false}
	var out person
	if err := bind.Materialize(res, &out); !errors.Is(err, bind.ErrPartialResult) {
		t.Fatalf("expected ErrPartialResult, got %v", err)
	}
}

// TestMaterialize_TypeGuard rejects values that do not fit the destination
// field instead of converting blindly.
func TestMaterialize_TypeGuard(t *testing.T) {
	type dest struct {
		Name string `json:"name"`
	}
	res := &modelmap.BuildResult{Target: "dest", Value: map[string]any{"name": int64(5)}, Complete: true}
	var out dest
	if err := bind.Materialize(res, &out); err == nil {
		t.Fatalf("an int must not land in a string field")
	}
}
