package modelmap

import (
	"context"
	"strings"
)

// Manager accumulates Records for exactly one top-level build. It is passed
// by reference through the recursion instead of living in package state, so
// independent builds can run concurrently without sharing anything.
type Manager struct {
	recs     Records
	seen     map[string]struct{}
	blocking int
	sink     Sink
}

// NewManager returns an empty Manager emitting to the given sink. A nil sink
// discards events.
func NewManager(sink Sink) *Manager {
	if sink == nil {
		sink = DiscardSink()
	}
	return &Manager{seen: map[string]struct{}{}, sink: sink}
}

// Record appends r and emits it to the sink. A field fails at most once per
// kind: a duplicate (path, kind) pair is dropped and false is returned.
func (m *Manager) Record(ctx context.Context, r Record) bool {
	key := r.Path + "\x00" + r.Kind
	if _, dup := m.seen[key]; dup {
		return false
	}
	m.seen[key] = struct{}{}
	m.recs = append(m.recs, r)
	if Blocking(r.Kind) {
		m.blocking++
	}
	m.sink.Emit(ctx, r)
	return true
}

// Errors returns the accumulated records in insertion order.
func (m *Manager) Errors() Records { return m.recs }

// Len returns the number of accumulated records.
func (m *Manager) Len() int { return len(m.recs) }

// HasBlockingErrors reports whether any record would make the result
// incomplete.
func (m *Manager) HasBlockingErrors() bool { return m.blocking > 0 }

// merge appends every record of other, keeping the per-(path, kind) dedupe.
// The sink is not re-notified: other already emitted on append.
func (m *Manager) merge(other *Manager) {
	for _, r := range other.recs {
		key := r.Path + "\x00" + r.Kind
		if _, dup := m.seen[key]; dup {
			continue
		}
		m.seen[key] = struct{}{}
		m.recs = append(m.recs, r)
		if Blocking(r.Kind) {
			m.blocking++
		}
	}
}

// discard drops records of the given kind at path, or under it when children
// is set. Used when a nested build turns out empty: its per-field records are
// redundant next to the single empty_model record.
func (m *Manager) discard(kind, path string, children bool) {
	kept := m.recs[:0]
	for _, r := range m.recs {
		if r.Kind == kind && pathMatches(r.Path, path, children) {
			delete(m.seen, r.Path+"\x00"+r.Kind)
			if Blocking(r.Kind) {
				m.blocking--
			}
			continue
		}
		kept = append(kept, r)
	}
	m.recs = kept
}

func pathMatches(p, base string, children bool) bool {
	if !children {
		return p == base
	}
	return p == base || strings.HasPrefix(p, base+"/")
}

// Report renders a human-readable summary of everything that was lost while
// mapping, grouping records by kind with counts before the per-record detail.
func (m *Manager) Report(target string) string {
	return reportRecords(target, m.recs)
}
