package modelmap

import "context"

// Sink receives one structured event per Record as it is added to the error
// manager. Implementations decide level and destination; blocking kinds
// (see Blocking) warrant error level, the rest warning. slogsink provides the
// stock slog-backed implementation.
type Sink interface {
	Emit(ctx context.Context, r Record)
}

// DiscardSink returns a Sink that drops every event.
func DiscardSink() Sink { return discardSink{} }

type discardSink struct{}

func (discardSink) Emit(context.Context, Record) {}
