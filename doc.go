// Package modelmap builds an instance of one structured model from the data
// held in a differently shaped one, matching fields by name across every
// nesting level instead of relying on hand-written per-field conversions.
//
// The engine provides:
//
//   - A depth-first Traverser over a source graph (Discover)
//   - Name matching with pluggable tie-break policies (TiePolicy)
//   - Recursive building of nested models and lists of models from scattered
//     source data (Build / BuildList)
//   - A stable error model via Records (JSON Pointer, kind, message) with
//     partial-success semantics: one failing field never aborts the build
//
// Design policy:
//   - Keep only public APIs in the root package; adapters live in subpackages.
//   - Place reflect binding under bind/, coercion under coerce/, the schema
//     builder under dsl/, YAML schema loading under schemayaml/, and the slog
//     sink under slogsink/.
//   - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	schema, _ := bind.SchemaOf(Target{})
//	src, _ := bind.Instance(populatedSource)
//	res, err := modelmap.Build(ctx, src, schema, modelmap.WithCoercer(coerce.Default()))
//	if res.Complete {
//		var out Target
//		err = bind.Materialize(res, &out)
//	}
package modelmap
