package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"bodylab/internal/config"
)

// process holds the logger installed by InitializeLogger and the file it
// writes to, if any
var process struct {
	mu     sync.Mutex
	logger *slog.Logger
	sink   io.Closer
}

// InitializeLogger builds the logger described by cfg and installs it as the
// slog default. Once a logger is installed later calls return it unchanged.
func InitializeLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	process.mu.Lock()
	defer process.mu.Unlock()

	if process.logger != nil {
		return process.logger, nil
	}

	w, sink, err := openSink(cfg)
	if err != nil {
		return nil, err
	}

	process.logger = NewLogger(w, cfg.Level)
	process.sink = sink
	slog.SetDefault(process.logger)
	return process.logger, nil
}

// NewLogger returns a JSON logger with source locations that writes records
// at or above level to w. A trace ID carried by the context of a *Context
// call is added as trace_id.
func NewLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(traceIDHandler{
		Handler: slog.NewJSONHandler(w, &slog.HandlerOptions{
			AddSource: true,
			Level:     levelFor(level),
		}),
	})
}

// CloseLogFile closes the log file opened by InitializeLogger, if any.
func CloseLogFile() error {
	process.mu.Lock()
	defer process.mu.Unlock()

	if process.sink == nil {
		return nil
	}
	err := process.sink.Close()
	process.sink = nil
	return err
}

// ResetLoggerForTesting forgets the installed logger so the next
// InitializeLogger builds a fresh one.
func ResetLoggerForTesting() {
	_ = CloseLogFile()

	process.mu.Lock()
	process.logger = nil
	process.mu.Unlock()
}

// openSink resolves cfg.Output to a writer. sink is nil for console output.
func openSink(cfg config.LoggingConfig) (w io.Writer, sink io.Closer, err error) {
	output := strings.ToLower(cfg.Output)
	if output != "file" && output != "both" {
		return os.Stdout, nil, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory for %s: %w", cfg.FilePath, err)
	}
	file, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	if output == "both" {
		return io.MultiWriter(os.Stdout, file), file, nil
	}
	return file, file, nil
}

// levelFor maps a configured level name to a slog.Level, falling back to info
func levelFor(name string) slog.Level {
	if strings.EqualFold(name, "warning") {
		return slog.LevelWarn
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// traceIDHandler adds the context's trace ID to every record it handles
type traceIDHandler struct {
	slog.Handler
}

func (h traceIDHandler) Handle(ctx context.Context, r slog.Record) error {
	if traceID := GetTraceID(ctx); traceID != "" {
		r.AddAttrs(slog.String("trace_id", traceID))
	}
	return h.Handler.Handle(ctx, r)
}

func (h traceIDHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return traceIDHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h traceIDHandler) WithGroup(name string) slog.Handler {
	return traceIDHandler{Handler: h.Handler.WithGroup(name)}
}
