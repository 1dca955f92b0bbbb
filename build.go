package modelmap

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/reoring/modelmap/i18n"
)

// Build constructs one instance of the target schema from the data held in
// src, matching fields by name across every nesting level. It returns a
// BuildResult that is complete when no blocking record was added, or the
// largest valid partial mapping otherwise. The only fatal conditions are
// ErrCyclicSchema, ErrNoMappableData and ErrInvalidArguments; every per-field
// failure is recorded and recovered locally.
func Build(ctx context.Context, src Instance, target Descriptor, opts ...Option) (*BuildResult, error) {
	if src == nil || target == nil {
		return nil, ErrInvalidArguments
	}
	o := buildOptions(opts)
	em := NewManager(o.Sink)
	b := newBuilder(src, em, o, nil)

	value, err := b.buildModel(ctx, target, "")
	if err != nil {
		return nil, err
	}
	// An empty value with records behind it is a partial result, not a dead
	// end: every failure is accounted for and the caller can inspect it.
	if len(value) == 0 && em.Len() == 0 {
		return nil, fmt.Errorf("%w ('%s' -> '%s')", ErrNoMappableData, src.Name(), target.Name())
	}
	return &BuildResult{
		Target:   target.Name(),
		Value:    value,
		Complete: !em.HasBlockingErrors(),
		Errors:   em.Errors(),
	}, nil
}

// BuildList is the root-list variant of Build: it builds a list of elem
// instances directly, for "list of models in root" use.
func BuildList(ctx context.Context, src Instance, elem Descriptor, opts ...Option) (*BuildResult, error) {
	if src == nil || elem == nil {
		return nil, ErrInvalidArguments
	}
	o := buildOptions(opts)
	em := NewManager(o.Sink)
	b := newBuilder(src, em, o, nil)

	fd := FieldDescriptor{Schema: elem, IsList: true, Required: true}
	items, ok, err := b.buildModelList(ctx, fd, "")
	if err != nil {
		return nil, err
	}
	if !ok {
		if em.Len() == 0 {
			return nil, fmt.Errorf("%w ('%s' -> '%s')", ErrNoMappableData, src.Name(), elem.Name())
		}
		return &BuildResult{Target: elem.Name(), Complete: false, Errors: em.Errors()}, nil
	}
	return &BuildResult{
		Target:   elem.Name(),
		Items:    items,
		Complete: !em.HasBlockingErrors(),
		Errors:   em.Errors(),
	}, nil
}

// builder carries the state of one build call: the source root, the call's
// Manager and matcher, and the target recursion stack for cycle detection.
// Nothing here is shared between calls.
type builder struct {
	src   Instance
	em    *Manager
	mt    matcher
	opts  Options
	stack []string
}

func newBuilder(src Instance, em *Manager, opts Options, stack []string) *builder {
	return &builder{
		src:   src,
		em:    em,
		mt:    matcher{policy: opts.Tie, coercer: opts.Coercer, em: em, source: src.Name()},
		opts:  opts,
		stack: stack,
	}
}

// fork returns a builder rooted at a different source instance with a fresh,
// silent Manager. Callers merge the fork's records back when they decide the
// attempt counts.
func (b *builder) fork(src Instance) *builder {
	return newBuilder(src, NewManager(nil), b.opts, slices.Clone(b.stack))
}

// quietMatcher is the builder's matcher pointed at a different Manager, for
// speculative picks whose records may be thrown away.
func (b *builder) quietMatcher(em *Manager) matcher {
	return matcher{policy: b.mt.policy, coercer: b.mt.coercer, em: em, source: b.mt.source}
}

// buildModel maps every field of target against the graph rooted at b.src,
// recording failures under base. Returns only resolved fields.
func (b *builder) buildModel(ctx context.Context, target Descriptor, base string) (map[string]any, error) {
	if slices.Contains(b.stack, target.Name()) {
		// recorded before aborting so the sink sees the fatal condition too
		b.em.Record(ctx, Record{
			Path:    orRoot(base),
			Kind:    KindCyclicSchema,
			Message: i18n.T(KindCyclicSchema, map[string]string{"model": target.Name()}),
		})
		return nil, fmt.Errorf("%w: '%s' at %s", ErrCyclicSchema, target.Name(), orRoot(base))
	}
	b.stack = append(b.stack, target.Name())
	defer func() { b.stack = b.stack[:len(b.stack)-1] }()

	fields := target.Fields()
	out := make(map[string]any, len(fields))
	for _, fd := range fields {
		if b.opts.FailFast && b.em.HasBlockingErrors() {
			break
		}
		p := childPath(base, fd.Name)
		switch {
		case fd.IsModelList():
			items, ok, err := b.buildModelList(ctx, fd, p)
			if err != nil {
				return nil, err
			}
			if ok {
				out[fd.Name] = items
			} else if fd.Required {
				b.recordMissing(ctx, fd, target, p)
			}
		case fd.IsModel():
			v, ok, err := b.buildNested(ctx, fd, p)
			if err != nil {
				return nil, err
			}
			if ok {
				out[fd.Name] = v
			} else if fd.Required {
				b.recordMissing(ctx, fd, target, p)
			}
		default:
			oc := b.mt.match(ctx, fd, p, Discover(b.src))
			switch {
			case oc.Found:
				out[fd.Name] = flattenValue(oc.Value)
			case oc.Failed:
				// type_mismatch already recorded; the field stays absent
			case fd.Required:
				b.recordMissing(ctx, fd, target, p)
			}
		}
	}
	return out, nil
}

// buildNested maps a single nested model field. A same-named source model is
// tried first as an exact sub-build; when that does not produce a complete
// value, the nested fields are matched against the whole source graph so new
// models can be assembled from scattered branches.
func (b *builder) buildNested(ctx context.Context, fd FieldDescriptor, path string) (map[string]any, bool, error) {
	// The pick runs against a silent manager: its records only count when
	// the trial build is kept.
	pickEm := NewManager(nil)
	pmt := b.quietMatcher(pickEm)
	if oc := pmt.pick(ctx, fd.Name, path, Discover(b.src)); oc.Found {
		if inst, ok := oc.Value.(Instance); ok {
			trial := b.fork(inst)
			m, err := trial.buildModel(ctx, fd.Schema, path)
			if err != nil {
				return nil, false, err
			}
			if len(m) > 0 && !trial.em.HasBlockingErrors() {
				b.em.merge(pickEm)
				b.em.merge(trial.em) // keep informational records
				return m, true, nil
			}
		}
	}

	blockedBefore := b.em.blocking
	m, err := b.buildModel(ctx, fd.Schema, path)
	if err != nil {
		return nil, false, err
	}
	if len(m) == 0 {
		// The per-field records of an empty nested build are redundant next
		// to a single empty_model notice; the parent decides whether the
		// field itself was required.
		b.em.discard(KindMissingRequired, path, true)
		b.em.Record(ctx, Record{
			Path:    path,
			Kind:    KindEmptyModel,
			Message: i18n.T(KindEmptyModel, map[string]string{"model": fd.Schema.Name()}),
		})
		return nil, false, nil
	}
	if b.em.blocking > blockedBefore {
		b.em.Record(ctx, Record{
			Path:    path,
			Kind:    KindPartialModel,
			Message: i18n.T(KindPartialModel, map[string]string{"model": fd.Schema.Name()}),
		})
	}
	return m, true, nil
}

// buildModelList maps a list-of-models field: locate the source elements,
// then build one target element per source element. A failing element is
// recorded and omitted (partial-list semantics) unless StrictLists is set.
func (b *builder) buildModelList(ctx context.Context, fd FieldDescriptor, path string) ([]any, bool, error) {
	elem := fd.Schema
	src := b.locateElements(ctx, fd, path)
	if len(src) == 0 {
		return nil, false, nil
	}

	var out []any
	for i, inst := range src {
		if i >= b.opts.MaxListLen {
			b.em.Record(ctx, Record{
				Path: path,
				Kind: KindListLimit,
				Message: i18n.T(KindListLimit, map[string]string{
					"limit": strconv.Itoa(b.opts.MaxListLen),
					"model": elem.Name(),
				}),
				Params: map[string]any{"limit": b.opts.MaxListLen},
			})
			break
		}
		trial := b.fork(inst)
		m, err := trial.buildModel(ctx, elem, indexPath(path, i))
		if err != nil {
			return nil, false, err
		}
		b.em.merge(trial.em)
		if len(m) == 0 || trial.em.HasBlockingErrors() {
			if b.opts.StrictLists {
				return nil, false, nil
			}
			continue
		}
		out = append(out, m)
	}
	if len(out) == 0 {
		return nil, false, nil
	}
	return out, true, nil
}

// locateElements finds the source instances list elements are built from:
// a name-matched source list first, then direct instances of the element
// schema anywhere in the graph, then the structured list with the highest
// field-name overlap, and finally same-level sibling sub-objects when no
// explicit list exists.
func (b *builder) locateElements(ctx context.Context, fd FieldDescriptor, path string) []Instance {
	if fd.Name != "" {
		pickEm := NewManager(nil)
		pmt := b.quietMatcher(pickEm)
		if oc := pmt.pick(ctx, fd.Name, path, Discover(b.src)); oc.Found {
			if items, ok := oc.Value.([]Instance); ok && len(items) > 0 {
				b.em.merge(pickEm)
				return items
			}
		}
	}
	if items := b.instancesNamed(fd.Schema.Name()); len(items) > 0 {
		return items
	}
	want := fieldNameSet(fd.Schema)
	if items := b.bestOverlapList(want); len(items) > 0 {
		return items
	}
	return b.siblingModels(want)
}

// instancesNamed collects every source model named name, the root included.
func (b *builder) instancesNamed(name string) []Instance {
	var out []Instance
	if b.src.Name() == name {
		out = append(out, b.src)
	}
	for d := range Discover(b.src) {
		switch v := d.Value.(type) {
		case Instance:
			if v != nil && v.Name() == name {
				out = append(out, v)
			}
		case []Instance:
			for _, it := range v {
				if it != nil && it.Name() == name {
					out = append(out, it)
				}
			}
		}
	}
	return out
}

// bestOverlapList picks the structured list whose elements share the most
// field names with the target element schema.
func (b *builder) bestOverlapList(want map[string]struct{}) []Instance {
	var best []Instance
	bestScore := 0
	for d := range Discover(b.src) {
		items, ok := d.Value.([]Instance)
		if !ok || len(items) == 0 || items[0] == nil {
			continue
		}
		if score := overlap(items[0], want); score > bestScore {
			best, bestScore = items, score
		}
	}
	return best
}

// siblingModels collects the direct sub-objects of the level holding the
// most shape-compatible models, in field order.
func (b *builder) siblingModels(want map[string]struct{}) []Instance {
	var best []Instance
	collect := func(inst Instance) {
		var sibs []Instance
		for _, fv := range inst.Fields() {
			child, ok := fv.Value.(Instance)
			if !ok || child == nil || fv.Kind != KindModel {
				continue
			}
			if overlap(child, want) > 0 {
				sibs = append(sibs, child)
			}
		}
		if len(sibs) > len(best) {
			best = sibs
		}
	}
	collect(b.src)
	for d := range Discover(b.src) {
		if inst, ok := d.Value.(Instance); ok && inst != nil {
			collect(inst)
		}
	}
	return best
}

func (b *builder) recordMissing(ctx context.Context, fd FieldDescriptor, parent Descriptor, path string) {
	b.em.Record(ctx, Record{
		Path: path,
		Kind: KindMissingRequired,
		Message: i18n.T(KindMissingRequired, map[string]string{
			"field":  fd.Name,
			"parent": parent.Name(),
			"source": b.mt.source,
		}),
	})
}

func fieldNameSet(d Descriptor) map[string]struct{} {
	out := make(map[string]struct{}, len(d.Fields()))
	for _, f := range d.Fields() {
		out[f.Name] = struct{}{}
	}
	return out
}

func overlap(inst Instance, want map[string]struct{}) int {
	n := 0
	for _, fv := range inst.Fields() {
		if _, ok := want[fv.Name]; ok {
			n++
		}
	}
	return n
}

// flattenValue keeps result values serializable on their own: a model-valued
// winner becomes a plain mapping, a model list a slice of mappings. Source
// views never leak into a BuildResult as opaque objects.
func flattenValue(v any) any {
	switch t := v.(type) {
	case Instance:
		return flattenInstance(t)
	case []Instance:
		out := make([]any, 0, len(t))
		for _, it := range t {
			if it == nil {
				continue
			}
			out = append(out, flattenInstance(it))
		}
		return out
	}
	return v
}

func flattenInstance(inst Instance) map[string]any {
	out := map[string]any{}
	for _, fv := range inst.Fields() {
		if fv.Value == nil {
			continue
		}
		out[fv.Name] = flattenValue(fv.Value)
	}
	return out
}

func orRoot(p string) string {
	if p == "" {
		return "/"
	}
	return p
}
