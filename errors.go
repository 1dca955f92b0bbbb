package modelmap

import (
	"errors"
	"fmt"
	"strings"
)

// Record kinds.
const (
	KindMissingRequired = "missing_required_field"
	KindTypeMismatch    = "type_mismatch"
	KindCyclicSchema    = "cyclic_schema"
	KindAmbiguousMatch  = "ambiguous_match"
	KindPartialModel    = "partial_model"
	KindEmptyModel      = "empty_model"
	KindListLimit       = "list_limit_reached"
	KindBuildFailure    = "build_failure"
)

// Blocking reports whether a record kind makes the build result incomplete.
// Everything else is informational and leaves Complete untouched.
func Blocking(kind string) bool {
	return kind == KindMissingRequired || kind == KindTypeMismatch
}

// Record represents a single mapping failure or notice. Records are created
// once and only appended; they are never mutated afterwards.
type Record struct {
	Path        string         `json:"path"` // JSON Pointer of the target field (for example: /payment_info/total).
	Kind        string         `json:"kind"` // One of the kinds listed above.
	Message     string         `json:"message"`
	SourceValue any            `json:"source_value,omitempty"` // Optional: the offending source value.
	Params      map[string]any `json:"params,omitempty"`       // Structured parameters for i18n and observability.
	Cause       error          `json:"-"`                      // Optional: underlying error.
}

// Records is a collection of mapping records that implements error.
type Records []Record

// Error summarizes the first few records.
func (rs Records) Error() string {
	if len(rs) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(rs)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		r := rs[i]
		// e.g. missing_required_field at /age
		fmt.Fprintf(b, "%s at %s", r.Kind, r.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AsRecords extracts Records from an error using errors.As internally.
func AsRecords(err error) (Records, bool) {
	if err == nil {
		return nil, false
	}
	var rs Records
	if errors.As(err, &rs) {
		return rs, true
	}
	return nil, false
}

// Fatal conditions. Everything else is recovered locally: the record is
// kept, the field is omitted, and the build carries on.
var (
	// ErrCyclicSchema indicates the target schema graph references itself.
	// Cyclic schemas are unsupported and abort the call immediately rather
	// than recursing without bound.
	ErrCyclicSchema = errors.New("modelmap: cyclic target schema")

	// ErrNoMappableData indicates not a single target field could be
	// resolved from the source graph and no failure was recorded either:
	// the two shapes share nothing.
	ErrNoMappableData = errors.New("modelmap: no mappable data between source and target")

	// ErrInvalidArguments indicates a nil source or target was passed in.
	ErrInvalidArguments = errors.New("modelmap: source and target must be non-nil")
)
