package modelmap

import (
	"context"
	"fmt"
	"iter"

	"github.com/reoring/modelmap/i18n"
)

// MatchOutcome is the result of resolving one target field against the
// discoveries of a source graph.
type MatchOutcome struct {
	Found     bool
	Value     any
	Path      []string // source-side nesting trail of the winning discovery
	Depth     int
	Ambiguous bool // the tie-break had to choose among equally valid candidates
	Failed    bool // a candidate existed but could not be coerced
}

// matcher resolves single target fields. One matcher exists per build call
// and shares the call's Manager; it holds no other state.
type matcher struct {
	policy  TiePolicy
	coercer Coercer
	em      *Manager
	source  string // source model name, used in messages
}

// match resolves one scalar field: filter discoveries by name, tie-break,
// then coerce the winner to the declared type. A coercion failure converts
// the outcome to notFound and records a type_mismatch; the raw value is never
// passed through.
func (mt matcher) match(ctx context.Context, fd FieldDescriptor, path string, seq iter.Seq[Discovery]) MatchOutcome {
	oc := mt.pick(ctx, fd.Name, path, seq)
	if !oc.Found {
		return oc
	}
	coerced, err, crashed := coerceValue(mt.coercer, oc.Value, fd.Type)
	if crashed != nil {
		mt.em.Record(ctx, Record{
			Path: path,
			Kind: KindBuildFailure,
			Message: i18n.T(KindBuildFailure, map[string]string{
				"field": fd.Name,
				"error": crashed.Error(),
			}),
			SourceValue: oc.Value,
			Cause:       crashed,
		})
		// treated as notFound: a required field still reports missing
		return MatchOutcome{}
	}
	if err != nil {
		mt.em.Record(ctx, Record{
			Path: path,
			Kind: KindTypeMismatch,
			Message: i18n.T(KindTypeMismatch, map[string]string{
				"field":       fd.Name,
				"target_type": string(fd.Type),
				"value":       fmt.Sprintf("%v", oc.Value),
				"value_type":  fmt.Sprintf("%T", oc.Value),
			}),
			SourceValue: oc.Value,
			Params:      map[string]any{"target_type": string(fd.Type)},
			Cause:       err,
		})
		return MatchOutcome{Failed: true}
	}
	oc.Value = coerced
	return oc
}

// pick filters by name and applies the tie-break policy, without coercion.
// Candidates carrying a nil value are treated as absent: required fields fall
// through to the missing-required handling, optional fields are omitted with
// no record.
func (mt matcher) pick(ctx context.Context, name, path string, seq iter.Seq[Discovery]) MatchOutcome {
	var cands []Discovery
	for d := range seq {
		if d.Name != name || d.Value == nil {
			continue
		}
		cands = append(cands, d)
	}
	switch len(cands) {
	case 0:
		return MatchOutcome{}
	case 1:
		c := cands[0]
		return MatchOutcome{Found: true, Value: c.Value, Path: c.Path, Depth: c.Depth}
	}

	switch mt.policy {
	case FirstSeenWins:
		c := cands[0]
		mt.recordAmbiguous(ctx, name, path, c, len(cands))
		return MatchOutcome{Found: true, Value: c.Value, Path: c.Path, Depth: c.Depth, Ambiguous: true}

	case RejectAmbiguous:
		mt.em.Record(ctx, Record{
			Path: path,
			Kind: KindAmbiguousMatch,
			Message: i18n.T(KindAmbiguousMatch, map[string]string{
				"field":  name,
				"chosen": "none (rejected)",
			}),
			Params: map[string]any{"candidates": len(cands)},
		})
		return MatchOutcome{Ambiguous: true}

	default: // ShallowestWins
		winner := cands[0]
		atDepth := 1
		for _, c := range cands[1:] {
			switch {
			case c.Depth < winner.Depth:
				winner = c
				atDepth = 1
			case c.Depth == winner.Depth:
				atDepth++
			}
		}
		// Depth disambiguates; only ties at the winning depth are ambiguous.
		ambiguous := atDepth >= 2
		if ambiguous {
			mt.recordAmbiguous(ctx, name, path, winner, atDepth)
		}
		return MatchOutcome{Found: true, Value: winner.Value, Path: winner.Path, Depth: winner.Depth, Ambiguous: ambiguous}
	}
}

// coerceValue shields the engine from a panicking Coercer implementation:
// the crash is reported separately from an ordinary conversion failure.
func coerceValue(c Coercer, v any, tag TypeTag) (out any, err error, crashed error) {
	defer func() {
		if r := recover(); r != nil {
			crashed = fmt.Errorf("coercer panic: %v", r)
		}
	}()
	out, err = c.Coerce(v, tag)
	return
}

func (mt matcher) recordAmbiguous(ctx context.Context, name, path string, chosen Discovery, n int) {
	mt.em.Record(ctx, Record{
		Path: path,
		Kind: KindAmbiguousMatch,
		Message: i18n.T(KindAmbiguousMatch, map[string]string{
			"field":  name,
			"chosen": Pointer(chosen.Path...),
		}),
		Params: map[string]any{"candidates": n, "chosen": Pointer(chosen.Path...)},
	})
}
