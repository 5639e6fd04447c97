package capability

import (
	"errors"
	"fmt"
)

// Operation names used in Error.Op and in fixture failure scripts.
const (
	OpIsSupported        = "isSupported"
	OpCheckPermissions   = "checkPermissions"
	OpRequestPermissions = "requestPermissions"
	OpScan               = "scan"
)

var (
	// ErrUnknownSource is returned when a zbar source is neither camera nor image.
	ErrUnknownSource = errors.New("unknown zbar source: must be camera or image")

	// ErrNoImage is returned when the image source is used without an image path.
	ErrNoImage = errors.New("image source requires an image path")

	// ErrUnexpectedOutput is returned when zbar prints something that is not
	// its XML result document.
	ErrUnexpectedOutput = errors.New("unexpected zbar output")
)

// Error is a failure reported by a capability call.
//
// Message is the human readable description shown to the user. It may be
// empty, in which case callers fall back to Error().
type Error struct {
	// Op is the capability operation that failed (OpScan, ...).
	Op string

	// Message describes the failure for display.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return e.Op + ": capability failure"
	}
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Description returns the display message of the failure.
func (e *Error) Description() string {
	return e.Message
}
