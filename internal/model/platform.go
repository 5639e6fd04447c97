package model

import "runtime"

// Platform identifies where a scanning capability runs. It is informational
// only and is written to the first trace line of every attempt.
type Platform string

// Well-known platform identifiers.
const (
	// PlatformUnknown represents an unknown platform.
	PlatformUnknown Platform = ""
	// PlatformAndroid represents a native Android host.
	PlatformAndroid Platform = "android"
	// PlatformIOS represents a native iOS host.
	PlatformIOS Platform = "ios"
	// PlatformWeb represents a browser host, where native scanning is
	// normally unavailable.
	PlatformWeb Platform = "web"
)

// String returns the string representation of the Platform.
func (p Platform) String() string {
	if p == PlatformUnknown {
		return "unknown"
	}
	return string(p)
}

// CurrentPlatform returns the platform of the running process
// (linux, darwin, windows, ...).
func CurrentPlatform() Platform {
	return Platform(runtime.GOOS)
}
