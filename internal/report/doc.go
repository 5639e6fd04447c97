// Package report renders the final snapshots of scan attempts.
//
// This package contains writers for different output formats:
//   - SimpleWriter: Human-readable text output for terminal display
//   - JSONWriter: Structured JSON output for tool integration
//   - MarkdownWriter: Markdown output for sharing
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output. TerminalSink
// connects a Writer to the orchestrator as its presentation layer.
package report
