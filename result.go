package modelmap

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
)

// BuildResult is what a build hands back to the caller. Value (or Items for
// the root-list variant) only ever holds nested mappings, lists and
// primitives, so a partial result stays independently serializable without
// touching the source schema's own serialization.
type BuildResult struct {
	Target   string         `json:"target"`
	Value    map[string]any `json:"value,omitempty"` // set by Build
	Items    []any          `json:"items,omitempty"` // set by BuildList
	Complete bool           `json:"complete"`
	Errors   Records        `json:"errors,omitempty"`
}

// Err returns the accumulated records as an error, or nil when the build was
// clean.
func (r *BuildResult) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	return r.Errors
}

// Report renders the human-readable summary of everything that was lost,
// grouped by kind with counts.
func (r *BuildResult) Report() string {
	return reportRecords(r.Target, r.Errors)
}

// MarshalJSON serializes the result envelope, partial or complete.
func (r *BuildResult) MarshalJSON() ([]byte, error) {
	type alias BuildResult // strip the method to avoid recursion
	return json.Marshal((*alias)(r))
}

// reportRecords is the single rendering path for reports, shared by Manager
// and BuildResult.
func reportRecords(target string, recs Records) string {
	if len(recs) == 0 {
		return fmt.Sprintf("no records found while mapping '%s'", target)
	}
	b := &strings.Builder{}
	fmt.Fprintf(b, "'%d' record(s) found while mapping '%s':\n\n", len(recs), target)

	// counts per kind in first-seen order
	var order []string
	counts := map[string]int{}
	for _, r := range recs {
		if _, ok := counts[r.Kind]; !ok {
			order = append(order, r.Kind)
		}
		counts[r.Kind]++
	}
	for _, k := range order {
		fmt.Fprintf(b, "  > %d %s\n", counts[k], k)
	}
	b.WriteString("\n")
	for _, r := range recs {
		fmt.Fprintf(b, "      + Field: %s\n        Kind: %s\n        Message: %s\n", r.Path, r.Kind, r.Message)
	}
	return b.String()
}
