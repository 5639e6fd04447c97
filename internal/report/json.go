package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/codescan/internal/model"
)

// JSONWriter outputs reports in JSON format.
// This format is designed for tool integration and programmatic processing.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string

	// version is the codescan version recorded in the report.
	version string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithVersion records the codescan version in the report.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output, nil),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// JSONReport wraps the snapshots of a run with metadata.
type JSONReport struct {
	// Version is the codescan version that generated this report.
	Version string `json:"version,omitempty"`

	// Attempts holds the final snapshot of every attempt.
	Attempts []model.Snapshot `json:"attempts"`

	// Summary counts the attempt outcomes.
	Summary Summary `json:"summary"`
}

// Write outputs the report of one attempt.
func (w *JSONWriter) Write(snapshot model.Snapshot) (int, error) {
	return w.WriteAll([]model.Snapshot{snapshot})
}

// WriteAll outputs the reports of every attempt with their summary.
func (w *JSONWriter) WriteAll(snapshots []model.Snapshot) (int, error) {
	if snapshots == nil {
		snapshots = []model.Snapshot{}
	}
	return w.writeJSON(JSONReport{
		Version:  w.version,
		Attempts: snapshots,
		Summary:  Summarize(snapshots),
	})
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	data = append(data, '\n')

	return w.output.Write(data)
}
