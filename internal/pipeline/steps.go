package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nao1215/codescan/internal/capability"
	"github.com/nao1215/codescan/internal/model"
)

// StepOption configures the steps built by ScanSteps.
type StepOption func(*stepConfig)

type stepConfig struct {
	logger *slog.Logger
}

// WithStepLogger sets a custom logger for the scan steps.
func WithStepLogger(logger *slog.Logger) StepOption {
	return func(c *stepConfig) {
		c.logger = logger
	}
}

// ScanSteps returns the steps of one attempt in execution order.
func ScanSteps(scanner capability.Scanner, opts ...StepOption) []Step {
	cfg := &stepConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	return []Step{
		NewSupportStep(scanner),
		NewPermissionCheckStep(scanner),
		NewPermissionRequestStep(scanner),
		NewScanStep(scanner, cfg.logger),
	}
}

// SupportStep asks the capability whether scanning is available.
type SupportStep struct {
	scanner capability.Scanner
}

// NewSupportStep creates a new support query step.
func NewSupportStep(scanner capability.Scanner) *SupportStep {
	return &SupportStep{scanner: scanner}
}

// Name returns the step name.
func (s *SupportStep) Name() string {
	return "support"
}

// State returns the state active during the step.
func (s *SupportStep) State() model.State {
	return model.StateCheckingSupport
}

// Do executes the support query.
func (s *SupportStep) Do(ctx context.Context, attempt *model.Attempt) error {
	support, err := s.scanner.IsSupported(ctx)
	if err != nil {
		return err
	}
	attempt.Support = support
	attempt.Log("isSupported: " + compactJSON(support))

	if !support.Supported {
		return ErrUnsupportedPlatform
	}
	return nil
}

// PermissionCheckStep reads the current camera permission without prompting.
type PermissionCheckStep struct {
	scanner capability.Scanner
}

// NewPermissionCheckStep creates a new permission check step.
func NewPermissionCheckStep(scanner capability.Scanner) *PermissionCheckStep {
	return &PermissionCheckStep{scanner: scanner}
}

// Name returns the step name.
func (s *PermissionCheckStep) Name() string {
	return "check_permissions"
}

// State returns the state active during the step.
func (s *PermissionCheckStep) State() model.State {
	return model.StateCheckingPermission
}

// Do executes the permission check. A permission that is not accepted is
// not an error here; the request step handles it.
func (s *PermissionCheckStep) Do(ctx context.Context, attempt *model.Attempt) error {
	status, err := s.scanner.CheckPermissions(ctx)
	if err != nil {
		return err
	}
	attempt.Permission = status
	attempt.Log("checkPermissions: " + permissionJSON(status))
	return nil
}

// PermissionRequestStep asks for camera permission. It only runs when the
// preceding check did not yield an accepted state.
type PermissionRequestStep struct {
	scanner capability.Scanner
}

// NewPermissionRequestStep creates a new permission request step.
func NewPermissionRequestStep(scanner capability.Scanner) *PermissionRequestStep {
	return &PermissionRequestStep{scanner: scanner}
}

// Name returns the step name.
func (s *PermissionRequestStep) Name() string {
	return "request_permissions"
}

// State returns the state active during the step.
func (s *PermissionRequestStep) State() model.State {
	return model.StateRequestingPermission
}

// Skip reports whether the permission was already accepted.
func (s *PermissionRequestStep) Skip(attempt *model.Attempt) bool {
	return attempt.Permission.Camera.Accepted()
}

// Do executes the permission request.
func (s *PermissionRequestStep) Do(ctx context.Context, attempt *model.Attempt) error {
	status, err := s.scanner.RequestPermissions(ctx)
	if err != nil {
		return err
	}
	attempt.Permission = status
	attempt.Log("requestPermissions: " + permissionJSON(status))

	if !status.Camera.Accepted() {
		return ErrPermissionDenied
	}
	return nil
}

// ScanStep performs one scan with no format filter and records the outcome.
type ScanStep struct {
	scanner capability.Scanner
	logger  *slog.Logger
}

// NewScanStep creates a new scan step.
func NewScanStep(scanner capability.Scanner, logger *slog.Logger) *ScanStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScanStep{scanner: scanner, logger: logger}
}

// Name returns the step name.
func (s *ScanStep) Name() string {
	return "scan"
}

// State returns the state active during the step.
func (s *ScanStep) State() model.State {
	return model.StateScanning
}

// Do executes the scan. Zero records is a valid outcome.
func (s *ScanStep) Do(ctx context.Context, attempt *model.Attempt) error {
	outcome, err := s.scanner.Scan(ctx, capability.ScanOptions{})
	if err != nil {
		return err
	}
	attempt.Outcome = outcome
	attempt.Logf("barcodes.length=%d", len(outcome.Barcodes))

	first, ok := outcome.First()
	if !ok {
		return nil
	}

	data, err := json.MarshalIndent(first, "", "  ")
	if err != nil {
		// Barcode only holds marshalable fields
		return fmt.Errorf("failed to encode barcode: %w", err)
	}
	attempt.Log("barcode JSON:\n" + string(data))

	s.logger.Debug("barcode decoded",
		"attempt", attempt.ID,
		"format", first.Format,
		"content", first.Text(),
	)
	return nil
}

// permissionJSON renders a permission answer for the trace as the platform
// returned it, falling back to the adapted status.
func permissionJSON(status model.PermissionStatus) string {
	if reported := status.Reported(); reported != "" {
		return reported
	}
	return compactJSON(status)
}

// compactJSON renders a capability answer for the trace. The answers are
// plain structs, so encoding cannot fail.
func compactJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return string(data)
}
