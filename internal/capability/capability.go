package capability

import (
	"context"

	"github.com/nao1215/codescan/internal/model"
)

// Scanner is the scanning capability consumed by the orchestrator.
//
// Every method may block on the platform (a permission dialog, a camera
// frame); implementations honour ctx cancellation where the platform allows.
type Scanner interface {
	// Platform identifies the host platform. Informational only.
	Platform() model.Platform

	// IsSupported reports whether scanning is possible on this platform.
	IsSupported(ctx context.Context) (model.SupportStatus, error)

	// CheckPermissions returns the current camera permission without asking
	// the user.
	CheckPermissions(ctx context.Context) (model.PermissionStatus, error)

	// RequestPermissions asks for camera permission and returns the result.
	RequestPermissions(ctx context.Context) (model.PermissionStatus, error)

	// Scan performs one scan and returns every decoded record.
	Scan(ctx context.Context, opts ScanOptions) (model.ScanOutcome, error)
}

// ScanOptions narrows a scan. The zero value requests unfiltered detection.
type ScanOptions struct {
	// Formats restricts detection to the listed symbologies. Empty means all.
	Formats []model.BarcodeFormat `json:"formats,omitempty"`
}
