package report

import (
	"io"

	"github.com/nao1215/codescan/internal/i18n"
	"github.com/nao1215/codescan/internal/model"
)

// Writer defines the interface for report output.
// Implementations render the final snapshot of an attempt in one format.
type Writer interface {
	// Write outputs the report of one attempt.
	// Returns the number of bytes written and any error encountered.
	Write(snapshot model.Snapshot) (int, error)

	// WriteAll outputs the reports of a batch of attempts followed by a
	// summary of their outcomes.
	WriteAll(snapshots []model.Snapshot) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(snapshot model.Snapshot) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(snapshot)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteAll outputs the batch reports to all configured Writers.
func (m *MultiWriter) WriteAll(snapshots []model.Snapshot) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteAll(snapshots)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
	tr     *i18n.Translator
}

// newBaseWriter creates a baseWriter with the given output destination.
// A nil translator renders English labels.
func newBaseWriter(output io.Writer, tr *i18n.Translator) baseWriter {
	if tr == nil {
		tr = i18n.MustNew(i18n.DefaultLanguage)
	}
	return baseWriter{output: output, tr: tr}
}

// Summary counts the outcomes of a batch of attempts.
type Summary struct {
	Total   int `json:"total"`
	Decoded int `json:"decoded"`
	NoCode  int `json:"noCode"`
	Failed  int `json:"failed"`
}

// Summarize counts the outcomes of snapshots.
func Summarize(snapshots []model.Snapshot) Summary {
	s := Summary{Total: len(snapshots)}
	for _, snap := range snapshots {
		switch {
		case snap.Failed():
			s.Failed++
		case snap.NoCode():
			s.NoCode++
		case snap.State == model.StateDone:
			s.Decoded++
		}
	}
	return s
}
