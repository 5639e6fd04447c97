package report

import (
	"fmt"
	"io"
	"sync"

	"github.com/nao1215/codescan/internal/model"
)

// TerminalSink presents attempts on a terminal. It streams trace lines as
// they appear and writes the final report once an attempt reaches a
// terminal state. It is safe for concurrent use, so one sink can serve a
// batch of attempts.
type TerminalSink struct {
	mu sync.Mutex

	// trace receives trace lines as they are appended. Nil disables streaming.
	trace io.Writer

	// writer renders the final report. Nil disables reports.
	writer Writer

	// printed counts the trace lines already streamed per attempt.
	printed map[string]int

	// err is the first error returned by a write.
	err error
}

// TerminalSinkOption configures a TerminalSink.
type TerminalSinkOption func(*TerminalSink)

// WithTrace streams trace lines to w.
func WithTrace(w io.Writer) TerminalSinkOption {
	return func(s *TerminalSink) {
		s.trace = w
	}
}

// WithReportWriter writes the final report of every attempt with w.
func WithReportWriter(w Writer) TerminalSinkOption {
	return func(s *TerminalSink) {
		s.writer = w
	}
}

// NewTerminalSink creates a TerminalSink.
func NewTerminalSink(opts ...TerminalSinkOption) *TerminalSink {
	s := &TerminalSink{
		printed: make(map[string]int),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Present implements orchestrator.Sink.
func (s *TerminalSink) Present(snapshot model.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.trace != nil {
		s.streamTrace(snapshot)
	}

	if !snapshot.State.Terminal() {
		return
	}
	delete(s.printed, snapshot.AttemptID)

	if s.writer != nil {
		if _, err := s.writer.Write(snapshot); err != nil && s.err == nil {
			s.err = fmt.Errorf("failed to write report: %w", err)
		}
	}
}

// Err returns the first error that occurred while writing.
func (s *TerminalSink) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// streamTrace prints the lines of snapshot that were not printed before.
func (s *TerminalSink) streamTrace(snapshot model.Snapshot) {
	done := s.printed[snapshot.AttemptID]
	if done > len(snapshot.Log) {
		done = 0
	}

	prefix := ""
	if snapshot.Source != "" {
		prefix = "[" + snapshot.Source + "] "
	}

	for _, line := range snapshot.Log[done:] {
		if _, err := fmt.Fprintln(s.trace, prefix+line); err != nil && s.err == nil {
			s.err = fmt.Errorf("failed to write trace: %w", err)
		}
	}
	s.printed[snapshot.AttemptID] = len(snapshot.Log)
}
