// Package orchestrator drives scan attempts end to end.
//
// An Orchestrator owns one capability.Scanner. Each call to RunAttempt resets
// the display, runs the support, permission and scan steps, and turns every
// outcome (a decoded record, no record, or any failure) into text. Progress
// reaches the presentation layer as immutable model.Snapshot values, one per
// state transition, delivered to a Sink.
//
// Attempts are numbered. When a newer attempt has started, snapshots of the
// older one are no longer delivered, so a late answer from the capability
// can never overwrite the display of the current attempt.
package orchestrator
