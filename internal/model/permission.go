package model

// PermissionState is the camera permission state reported by a scanning
// capability. Values are produced only by the capability boundary adapter,
// so the rest of the application compares against this closed set and never
// against raw platform values.
type PermissionState string

const (
	// PermissionGranted means the camera may be used.
	PermissionGranted PermissionState = "granted"

	// PermissionLimited means access was granted with platform restrictions.
	// It is accepted like PermissionGranted.
	PermissionLimited PermissionState = "limited"

	// PermissionDenied means the user or the system refused access.
	PermissionDenied PermissionState = "denied"

	// PermissionPrompt means the user has not decided yet.
	PermissionPrompt PermissionState = "prompt"

	// PermissionPromptWithRationale means the platform wants the application
	// to explain why it needs the camera before asking again.
	PermissionPromptWithRationale PermissionState = "prompt-with-rationale"

	// PermissionRestricted means access is blocked by policy (parental
	// controls, device management) and cannot be requested.
	PermissionRestricted PermissionState = "restricted"

	// PermissionUnavailable means no camera permission exists on this
	// platform or the value could not be interpreted.
	PermissionUnavailable PermissionState = "unavailable"
)

// String returns the string representation of the PermissionState.
func (s PermissionState) String() string {
	if s == "" {
		return string(PermissionUnavailable)
	}
	return string(s)
}

// Accepted reports whether a scan may proceed with this state.
func (s PermissionState) Accepted() bool {
	return s == PermissionGranted || s == PermissionLimited
}

// IsValid returns true if this is a known state.
func (s PermissionState) IsValid() bool {
	switch s {
	case PermissionGranted, PermissionLimited, PermissionDenied, PermissionPrompt,
		PermissionPromptWithRationale, PermissionRestricted, PermissionUnavailable:
		return true
	default:
		return false
	}
}

// PermissionStatus is the answer to a permission check or request.
type PermissionStatus struct {
	Camera PermissionState `json:"camera"`

	// reported is the platform answer serialized before adaptation.
	reported string
}

// WithReported returns a copy of s that remembers the serialized answer the
// platform returned before it was adapted.
func (s PermissionStatus) WithReported(reported string) PermissionStatus {
	s.reported = reported
	return s
}

// Reported returns the serialized platform answer, or "" when s was not
// adapted from one.
func (s PermissionStatus) Reported() string {
	return s.reported
}

// SupportStatus is the answer to a support query.
type SupportStatus struct {
	Supported bool `json:"supported"`
}
