package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/codescan/internal/i18n"
	"github.com/nao1215/codescan/internal/model"
)

// ruleWidth is the width of the section separators.
const ruleWidth = 70

// SimpleWriter outputs human-readable text reports for terminal display.
// A report has a header followed by two sections: the displayed content of
// the attempt and its debug trace.
type SimpleWriter struct {
	baseWriter

	// showDebug controls whether the debug trace section is written.
	showDebug bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithDebug configures whether the debug trace is written.
func WithDebug(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showDebug = show
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, tr *i18n.Translator, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output, tr),
		showDebug:  true,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report of one attempt.
func (w *SimpleWriter) Write(snapshot model.Snapshot) (int, error) {
	var sb strings.Builder
	w.writeReport(&sb, snapshot)
	return io.WriteString(w.output, sb.String())
}

// WriteAll outputs every report followed by the outcome summary.
func (w *SimpleWriter) WriteAll(snapshots []model.Snapshot) (int, error) {
	var sb strings.Builder
	for _, snapshot := range snapshots {
		w.writeReport(&sb, snapshot)
	}
	w.writeSummary(&sb, Summarize(snapshots))
	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) writeReport(sb *strings.Builder, snapshot model.Snapshot) {
	w.writeHeader(sb, snapshot)

	w.writeSection(sb, w.tr.Text(i18n.LabelContent))
	if snapshot.Result != "" {
		sb.WriteString(snapshot.Result)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	if w.showDebug {
		w.writeSection(sb, w.tr.Text(i18n.LabelDebug))
		if text := snapshot.LogText(); text != "" {
			sb.WriteString(text)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
}

// writeHeader writes the title and the attempt properties.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, snapshot model.Snapshot) {
	title := w.tr.Text(i18n.LabelTitle)
	pad := max((ruleWidth-len([]rune(title)))/2, 0)

	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat(" ", pad))
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n\n")

	for _, row := range propertyRows(w.tr, snapshot) {
		fmt.Fprintf(sb, "%-12s %s\n", row[0]+":", row[1])
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString(strings.ToUpper(title))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n\n")
}

func (w *SimpleWriter) writeSummary(sb *strings.Builder, s Summary) {
	w.writeSection(sb, w.tr.Text(i18n.LabelSummary))
	fmt.Fprintf(sb, "  %-14s %d\n", w.tr.Text(i18n.LabelDecoded)+":", s.Decoded)
	fmt.Fprintf(sb, "  %-14s %d\n", w.tr.Text(i18n.LabelNoCode)+":", s.NoCode)
	fmt.Fprintf(sb, "  %-14s %d\n", w.tr.Text(i18n.LabelFailed)+":", s.Failed)
	fmt.Fprintf(sb, "  %-14s %d\n", w.tr.Text(i18n.LabelTotal)+":", s.Total)
	sb.WriteString("\n")
}

// propertyRows returns the label/value pairs describing an attempt. Empty
// values are left out.
func propertyRows(tr *i18n.Translator, snapshot model.Snapshot) [][2]string {
	rows := [][2]string{
		{tr.Text(i18n.LabelAttempt), fmt.Sprintf("%s (#%d)", snapshot.AttemptID, snapshot.Seq)},
		{tr.Text(i18n.LabelPlatform), snapshot.Platform.String()},
	}
	if snapshot.Source != "" {
		rows = append(rows, [2]string{tr.Text(i18n.LabelSource), snapshot.Source})
	}
	rows = append(rows, [2]string{tr.Text(i18n.LabelState), snapshot.State.String()})
	if snapshot.Barcode != nil && snapshot.Barcode.Format != "" {
		rows = append(rows, [2]string{tr.Text(i18n.LabelFormat), snapshot.Barcode.Format.String()})
	}
	return rows
}
