package log

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Default rotation settings of the log file.
const (
	DefaultMaxSizeMB  = 10
	DefaultMaxBackups = 3
	DefaultMaxAgeDays = 28
)

// Options configures a logger built by New.
type Options struct {
	// Verbose sets the level to Debug; otherwise Warn.
	Verbose bool

	// JSON selects the JSON handler instead of the text handler.
	JSON bool

	// File is an optional log file. Records are written to it in addition
	// to the terminal writer, and the file is rotated by size.
	File string

	// MaxSizeMB is the size at which the log file is rotated.
	MaxSizeMB int

	// MaxBackups is the number of rotated files kept.
	MaxBackups int

	// MaxAgeDays is the number of days rotated files are kept.
	MaxAgeDays int
}

// New creates a secure logger writing to w and, when opts.File is set, to a
// rotating log file. The returned closer releases the log file; it is a
// no-op when no file is used.
func New(w io.Writer, opts Options) (*slog.Logger, io.Closer, error) {
	out, closer, err := buildWriter(w, opts)
	if err != nil {
		return nil, nil, err
	}

	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(out, handlerOpts)
	} else {
		handler = slog.NewTextHandler(out, handlerOpts)
	}

	return slog.New(NewSecureHandler(handler)), closer, nil
}

// NewSecureLogger creates a new slog.Logger with secure handling.
// The logger sanitizes sensitive information in all log output.
// If verbose is true the level is Debug; otherwise Warn.
func NewSecureLogger(w io.Writer, verbose bool) *slog.Logger {
	logger, _, _ := New(w, Options{Verbose: verbose}) //nolint:errcheck // no file, cannot fail
	return logger
}

// NewSecureJSONLogger creates a new slog.Logger with secure handling
// that outputs JSON format. Useful for structured log aggregation.
func NewSecureJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	logger, _, _ := New(w, Options{Verbose: verbose, JSON: true}) //nolint:errcheck // no file, cannot fail
	return logger
}

// nopCloser is returned when no log file is open.
type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// buildWriter returns w alone, or w combined with a lumberjack logger when
// a file is configured.
func buildWriter(w io.Writer, opts Options) (io.Writer, io.Closer, error) {
	if opts.File == "" {
		if w == nil {
			return nil, nil, ErrNoWriter
		}
		return w, nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0o750); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	lj := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    positiveOr(opts.MaxSizeMB, DefaultMaxSizeMB),
		MaxBackups: positiveOr(opts.MaxBackups, DefaultMaxBackups),
		MaxAge:     positiveOr(opts.MaxAgeDays, DefaultMaxAgeDays),
	}

	if w == nil {
		return lj, lj, nil
	}
	return io.MultiWriter(w, lj), lj, nil
}

func positiveOr(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// ErrNoWriter is returned by New when neither a writer nor a file is given.
var ErrNoWriter = errors.New("log: no writer or file configured")
