package orchestrator

import "github.com/nao1215/codescan/internal/model"

// Sink is the presentation layer. It receives a snapshot on every state
// change of the current attempt.
type Sink interface {
	Present(snapshot model.Snapshot)
}

// SinkFunc adapts an ordinary function to the Sink interface.
type SinkFunc func(snapshot model.Snapshot)

// Present calls f(snapshot).
func (f SinkFunc) Present(snapshot model.Snapshot) {
	f(snapshot)
}

// discardSink drops every snapshot.
type discardSink struct{}

func (discardSink) Present(model.Snapshot) {}
