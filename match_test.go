package modelmap_test

import (
	"context"
	"testing"

	modelmap "github.com/reoring/modelmap"
	"github.com/reoring/modelmap/coerce"
	g "github.com/reoring/modelmap/dsl"
)

type tieBranch struct {
	V string `json:"v"`
}

type tieSource struct {
	V     string    `json:"v"`
	Left  tieBranch `json:"left"`
	Right tieBranch `json:"right"`
}

type tieDeepOnly struct {
	Left  tieBranch `json:"left"`
	Right tieBranch `json:"right"`
}

// TestTiePolicy_ShallowestWins prefers the lowest depth; depth alone
// disambiguates, so no ambiguity record is emitted.
func TestTiePolicy_ShallowestWins(t *testing.T) {
	ctx := context.Background()
	target := g.Object("T").Field("v", modelmap.TagString).Required().MustBuild()
	src := srcOf(t, tieSource{V: "top", Left: tieBranch{V: "l"}, Right: tieBranch{V: "r"}})

	res, err := modelmap.Build(ctx, src, target, modelmap.WithCoercer(coerce.Default()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Value["v"] != "top" {
		t.Fatalf("expected the shallowest candidate, got %v", res.Value["v"])
	}
	if len(res.Errors) != 0 {
		t.Fatalf("depth disambiguated, no record expected: %v", res.Errors)
	}
}

// TestTiePolicy_ShallowestWins_EqualDepth breaks the tie by traversal order
// and records the ambiguity.
func TestTiePolicy_ShallowestWins_EqualDepth(t *testing.T) {
	ctx := context.Background()
	target := g.Object("T").Field("v", modelmap.TagString).Required().MustBuild()
	src := srcOf(t, tieDeepOnly{Left: tieBranch{V: "l"}, Right: tieBranch{V: "r"}})

	res, err := modelmap.Build(ctx, src, target, modelmap.WithCoercer(coerce.Default()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Value["v"] != "l" {
		t.Fatalf("expected traversal order to break the tie, got %v", res.Value["v"])
	}
	if len(res.Errors) != 1 || res.Errors[0].Kind != modelmap.KindAmbiguousMatch {
		t.Fatalf("expected one ambiguous_match record, got %v", res.Errors)
	}
	if !res.Complete {
		t.Fatalf("ambiguity is informational, not blocking")
	}
}

// TestTiePolicy_FirstSeenWins takes the first candidate in traversal order
// regardless of depth.
func TestTiePolicy_FirstSeenWins(t *testing.T) {
	ctx := context.Background()
	target := g.Object("T").Field("v", modelmap.TagString).Required().MustBuild()
	src := srcOf(t, tieSource{V: "top", Left: tieBranch{V: "l"}, Right: tieBranch{V: "r"}})

	res, err := modelmap.Build(ctx, src, target,
		modelmap.WithCoercer(coerce.Default()),
		modelmap.WithTiePolicy(modelmap.FirstSeenWins))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Value["v"] != "top" {
		t.Fatalf("expected the first-seen candidate, got %v", res.Value["v"])
	}
	if len(res.Errors) != 1 || res.Errors[0].Kind != modelmap.KindAmbiguousMatch {
		t.Fatalf("expected one ambiguous_match record, got %v", res.Errors)
	}
}

// TestTiePolicy_RejectAmbiguous leaves the field unresolved; a required
// field then also reports missing.
func TestTiePolicy_RejectAmbiguous(t *testing.T) {
	ctx := context.Background()
	target := g.Object("T").Field("v", modelmap.TagString).Required().MustBuild()
	src := srcOf(t, tieDeepOnly{Left: tieBranch{V: "l"}, Right: tieBranch{V: "r"}})

	res, err := modelmap.Build(ctx, src, target,
		modelmap.WithCoercer(coerce.Default()),
		modelmap.WithTiePolicy(modelmap.RejectAmbiguous))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, present := res.Value["v"]; present {
		t.Fatalf("rejected field must stay absent, got %v", res.Value["v"])
	}
	kinds := map[string]int{}
	for _, r := range res.Errors {
		kinds[r.Kind]++
	}
	if kinds[modelmap.KindAmbiguousMatch] != 1 || kinds[modelmap.KindMissingRequired] != 1 {
		t.Fatalf("expected ambiguous_match + missing_required, got %v", res.Errors)
	}
	if res.Complete {
		t.Fatalf("the unresolved required field must block completeness")
	}
}

// TestMatch_SingleCandidateUnambiguous resolves a lone nested candidate
// without any record.
func TestMatch_SingleCandidateUnambiguous(t *testing.T) {
	ctx := context.Background()
	target := g.Object("T").Field("v", modelmap.TagString).Required().MustBuild()
	src := srcOf(t, struct {
		Left tieBranch `json:"left"`
	}{Left: tieBranch{V: "only"}})

	res, err := modelmap.Build(ctx, src, target, modelmap.WithCoercer(coerce.Default()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Value["v"] != "only" || len(res.Errors) != 0 {
		t.Fatalf("unexpected outcome: value=%v errors=%v", res.Value, res.Errors)
	}
}
