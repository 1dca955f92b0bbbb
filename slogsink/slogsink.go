// Package slogsink emits mapping records as structured log events through
// log/slog, with an environment-driven configuration for services that want
// build telemetry without wiring a sink by hand.
package slogsink

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/davecgh/go-spew/spew"

	"github.com/reoring/modelmap"
)

// Config controls the sink's handler. All fields are also settable through
// the environment (see the env tags).
type Config struct {
	// Level is the minimum level emitted: debug, info, warn or error.
	Level string `env:"MODELMAP_LOG_LEVEL" envDefault:"info"`

	// Format selects the slog handler: text or json.
	Format string `env:"MODELMAP_LOG_FORMAT" envDefault:"text"`

	// Destination is stderr, stdout, or a file path.
	Destination string `env:"MODELMAP_LOG_DEST" envDefault:"stderr"`

	// Verbose includes a spew dump of the offending source value on records
	// that carry one. Dumps are multi-line; keep this off in production.
	Verbose bool `env:"MODELMAP_LOG_VERBOSE" envDefault:"false"`
}

// ConfigFromEnv reads Config from MODELMAP_LOG_* variables.
func ConfigFromEnv() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("slogsink: %w", err)
	}
	return cfg, nil
}

// New builds a Sink from cfg. The returned closer is non-nil only when
// Destination opened a file.
func New(cfg Config) (modelmap.Sink, io.Closer, error) {
	w, closer, err := destination(cfg.Destination)
	if err != nil {
		return nil, nil, err
	}
	lvl, err := level(cfg.Level)
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}
	var h slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		h = slog.NewTextHandler(w, opts)
	case "json":
		h = slog.NewJSONHandler(w, opts)
	default:
		if closer != nil {
			closer.Close()
		}
		return nil, nil, fmt.Errorf("slogsink: unknown format %q", cfg.Format)
	}
	return &sink{log: slog.New(h), verbose: cfg.Verbose}, closer, nil
}

// FromLogger wraps an existing slog.Logger as a Sink, for callers that
// already own their logging setup.
func FromLogger(log *slog.Logger) modelmap.Sink {
	return &sink{log: log}
}

type sink struct {
	log     *slog.Logger
	verbose bool
}

// Emit logs one record. Blocking kinds log at error, everything else at warn.
func (s *sink) Emit(ctx context.Context, r modelmap.Record) {
	attrs := []any{
		slog.String("path", r.Path),
		slog.String("kind", r.Kind),
	}
	for k, v := range r.Params {
		attrs = append(attrs, slog.Any(k, v))
	}
	if r.Cause != nil {
		attrs = append(attrs, slog.String("cause", r.Cause.Error()))
	}
	if s.verbose && r.SourceValue != nil {
		attrs = append(attrs, slog.String("source_value", spew.Sdump(r.SourceValue)))
	}
	if modelmap.Blocking(r.Kind) {
		s.log.ErrorContext(ctx, r.Message, attrs...)
		return
	}
	s.log.WarnContext(ctx, r.Message, attrs...)
}

func level(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("slogsink: unknown level %q", s)
}

func destination(s string) (io.Writer, io.Closer, error) {
	switch s {
	case "", "stderr":
		return os.Stderr, nil, nil
	case "stdout":
		return os.Stdout, nil, nil
	}
	f, err := os.OpenFile(s, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("slogsink: open %s: %w", s, err)
	}
	return f, f, nil
}
