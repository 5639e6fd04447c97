package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/codescan/internal/i18n"
	"github.com/nao1215/codescan/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, tr *i18n.Translator) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output, tr),
	}
}

// Write outputs the report of one attempt.
func (w *MarkdownWriter) Write(snapshot model.Snapshot) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1(w.tr.Text(i18n.LabelTitle))
	md.PlainText("")
	w.writeAttempt(md, snapshot)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteAll outputs every attempt and the outcome summary.
func (w *MarkdownWriter) WriteAll(snapshots []model.Snapshot) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1(w.tr.Text(i18n.LabelTitle))
	md.PlainText("")
	w.writeSummary(md, Summarize(snapshots))

	for _, snapshot := range snapshots {
		title := snapshot.Source
		if title == "" {
			title = fmt.Sprintf("%s #%d", w.tr.Text(i18n.LabelAttempt), snapshot.Seq)
		}
		md.H2(title)
		md.PlainText("")
		w.writeAttempt(md, snapshot)
	}
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeAttempt writes the property table, the content and the debug trace.
func (w *MarkdownWriter) writeAttempt(md *markdown.Markdown, snapshot model.Snapshot) {
	rows := make([][]string, 0, 5)
	for _, row := range propertyRows(w.tr, snapshot) {
		rows = append(rows, []string{row[0], row[1]})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	md.H3(w.tr.Text(i18n.LabelContent))
	md.PlainText("")
	switch {
	case snapshot.Failed():
		md.Caution(snapshot.Result)
	case snapshot.NoCode():
		md.Note(snapshot.Result)
	default:
		md.CodeBlocks(markdown.SyntaxHighlightText, snapshot.Result)
	}
	md.PlainText("")

	md.H3(w.tr.Text(i18n.LabelDebug))
	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightText, snapshot.LogText())
	md.PlainText("")
}

// writeSummary writes the outcome table and, when there is more than one
// outcome kind, a pie chart of the distribution.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, s Summary) {
	md.H2(w.tr.Text(i18n.LabelSummary))
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{w.tr.Text(i18n.LabelState), "#"},
		Rows: [][]string{
			{w.tr.Text(i18n.LabelDecoded), strconv.Itoa(s.Decoded)},
			{w.tr.Text(i18n.LabelNoCode), strconv.Itoa(s.NoCode)},
			{w.tr.Text(i18n.LabelFailed), strconv.Itoa(s.Failed)},
			{"**" + w.tr.Text(i18n.LabelTotal) + "**", "**" + strconv.Itoa(s.Total) + "**"},
		},
	})
	md.PlainText("")

	if s.Total == 0 {
		return
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle(w.tr.Text(i18n.LabelSummary)),
		piechart.WithShowData(true),
	)
	if s.Decoded > 0 {
		chart.LabelAndIntValue(w.tr.Text(i18n.LabelDecoded), uint64(s.Decoded))
	}
	if s.NoCode > 0 {
		chart.LabelAndIntValue(w.tr.Text(i18n.LabelNoCode), uint64(s.NoCode))
	}
	if s.Failed > 0 {
		chart.LabelAndIntValue(w.tr.Text(i18n.LabelFailed), uint64(s.Failed))
	}
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")

	if s.Failed > 0 {
		md.Warningf("%d/%d %s", s.Failed, s.Total, w.tr.Text(i18n.LabelFailed))
		md.PlainText("")
	}
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by [codescan](https://github.com/nao1215/codescan)*")
}
