package pipeline

import "errors"

var (
	// ErrUnsupportedPlatform is returned when the capability reports that
	// scanning is not available on this platform.
	ErrUnsupportedPlatform = errors.New("scanning capability not supported on this platform")

	// ErrPermissionDenied is returned when camera access is still not
	// accepted after a permission request.
	ErrPermissionDenied = errors.New("camera permission not granted")
)
