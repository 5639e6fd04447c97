package model

import (
	"fmt"
	"strings"
	"time"
)

// State is the position of an attempt in the scan state machine:
//
//	idle -> checking-support -> checking-permission -> (requesting-permission)?
//	     -> scanning -> done | failed
//
// done and failed are terminal; the next attempt starts again at idle.
type State string

const (
	// StateIdle is the reset state emitted at the start of every attempt.
	StateIdle State = "idle"
	// StateCheckingSupport is active while the support query runs.
	StateCheckingSupport State = "checking-support"
	// StateCheckingPermission is active while the permission check runs.
	StateCheckingPermission State = "checking-permission"
	// StateRequestingPermission is active while a permission request runs.
	StateRequestingPermission State = "requesting-permission"
	// StateScanning is active while the scan call runs.
	StateScanning State = "scanning"
	// StateDone means the attempt finished with a result (possibly "no code").
	StateDone State = "done"
	// StateFailed means the attempt finished with an error message.
	StateFailed State = "failed"
)

// String returns the string representation of the State.
func (s State) String() string {
	return string(s)
}

// Terminal reports whether no further transition follows this state.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// FailureKind classifies why an attempt failed.
type FailureKind string

const (
	// FailureNone means the attempt has not failed.
	FailureNone FailureKind = ""
	// FailureUnsupportedPlatform means the capability is not available here.
	FailureUnsupportedPlatform FailureKind = "unsupported-platform"
	// FailurePermissionDenied means camera access was not granted.
	FailurePermissionDenied FailureKind = "permission-denied"
	// FailureCapability means the capability itself reported an error.
	FailureCapability FailureKind = "capability-failure"
)

// String returns the string representation of the FailureKind.
func (k FailureKind) String() string {
	if k == FailureNone {
		return "none"
	}
	return string(k)
}

// Attempt is the working state of one scan attempt. It is owned by a single
// orchestrator run and is never shared; the outside world only sees
// Snapshot copies of it.
type Attempt struct {
	// Seq is the attempt sequence number within its orchestrator.
	Seq uint64

	// ID uniquely identifies the attempt across runs.
	ID string

	// Platform is the capability platform recorded in the first trace line.
	Platform Platform

	// State is the current state machine position.
	State State

	// StartedAt is when the attempt was reset.
	StartedAt time.Time

	// Support holds the answer to the support query once it ran.
	Support SupportStatus

	// Permission holds the most recent permission answer (check or request).
	Permission PermissionStatus

	// Outcome holds the scan result once the scan ran.
	Outcome ScanOutcome

	// Result is the text to display: the first record's content, the
	// no-code message, or the failure message.
	Result string

	// Failure classifies the error when State is StateFailed.
	Failure FailureKind

	// Err is the error that ended the attempt, if any.
	Err error

	log []string
}

// NewAttempt creates a reset attempt in StateIdle.
func NewAttempt(seq uint64, id string, platform Platform, startedAt time.Time) *Attempt {
	return &Attempt{
		Seq:       seq,
		ID:        id,
		Platform:  platform,
		State:     StateIdle,
		StartedAt: startedAt,
		log:       make([]string, 0, 8),
	}
}

// Log appends one trace line.
func (a *Attempt) Log(line string) {
	a.log = append(a.log, line)
}

// Logf appends one formatted trace line.
func (a *Attempt) Logf(format string, args ...any) {
	a.Log(fmt.Sprintf(format, args...))
}

// Lines returns a copy of the trace lines in the order they were appended.
func (a *Attempt) Lines() []string {
	lines := make([]string, len(a.log))
	copy(lines, a.log)
	return lines
}

// Fail ends the attempt with a displayed error message and an "error" trace
// line carrying the same message.
func (a *Attempt) Fail(kind FailureKind, err error, message string) {
	a.State = StateFailed
	a.Failure = kind
	a.Err = err
	a.Result = message
	a.Log("error: " + message)
}

// Complete ends the attempt successfully with the given displayed result.
func (a *Attempt) Complete(result string) {
	a.State = StateDone
	a.Result = result
}

// Snapshot returns an immutable copy of the attempt.
func (a *Attempt) Snapshot(at time.Time) Snapshot {
	s := Snapshot{
		AttemptID: a.ID,
		Seq:       a.Seq,
		Platform:  a.Platform,
		State:     a.State,
		Result:    a.Result,
		Log:       a.Lines(),
		Failure:   a.Failure,
		Barcodes:  len(a.Outcome.Barcodes),
		StartedAt: a.StartedAt,
		UpdatedAt: at,
	}
	if first, ok := a.Outcome.First(); ok {
		s.Barcode = &first
	}
	return s
}

// Snapshot is what the presentation layer receives on every state
// transition: the two display values (result and log) plus enough context to
// render a report. Snapshots are values; receivers may keep them.
type Snapshot struct {
	AttemptID string      `json:"attemptId"`
	Seq       uint64      `json:"seq"`
	Platform  Platform    `json:"platform"`
	State     State       `json:"state"`
	Result    string      `json:"result"`
	Log       []string    `json:"log"`
	Failure   FailureKind `json:"failure,omitempty"`
	Barcodes  int         `json:"barcodes"`
	Barcode   *Barcode    `json:"barcode,omitempty"`
	StartedAt time.Time   `json:"startedAt"`
	UpdatedAt time.Time   `json:"updatedAt"`

	// Source names the input the attempt scanned when several attempts run
	// in one batch (an image path); empty for a single camera attempt.
	Source string `json:"source,omitempty"`
}

// LogText returns the trace lines joined by newlines, the form shown in the
// debug panel.
func (s Snapshot) LogText() string {
	return strings.Join(s.Log, "\n")
}

// Failed reports whether the attempt ended with an error message.
func (s Snapshot) Failed() bool {
	return s.State == StateFailed
}

// NoCode reports whether the attempt finished without decoding anything.
func (s Snapshot) NoCode() bool {
	return s.State == StateDone && s.Barcodes == 0
}
