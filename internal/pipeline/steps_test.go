package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nao1215/codescan/internal/capability"
	"github.com/nao1215/codescan/internal/model"
)

func boolPtr(b bool) *bool {
	return &b
}

// runSteps executes the standard steps against a fixture scenario.
func runSteps(t *testing.T, scenario model.Scenario) (*model.Attempt, *capability.Fixture, error) {
	t.Helper()

	fixture := capability.NewFixture(scenario)
	p := New()
	p.AddSteps(ScanSteps(fixture)...)

	attempt := newTestAttempt()
	err := p.Execute(context.Background(), attempt)
	return attempt, fixture, err
}

// TestScanSteps tests the step list built for an attempt.
func TestScanSteps(t *testing.T) {
	t.Parallel()

	steps := ScanSteps(capability.NewFixture(model.Scenario{}))

	expected := []struct {
		name  string
		state model.State
	}{
		{"support", model.StateCheckingSupport},
		{"check_permissions", model.StateCheckingPermission},
		{"request_permissions", model.StateRequestingPermission},
		{"scan", model.StateScanning},
	}
	if len(steps) != len(expected) {
		t.Fatalf("expected %d steps, got %d", len(expected), len(steps))
	}
	for i, e := range expected {
		if steps[i].Name() != e.name || steps[i].State() != e.state {
			t.Errorf("step %d: got %s/%s, expected %s/%s", i, steps[i].Name(), steps[i].State(), e.name, e.state)
		}
	}
}

// TestStepsDo tests the steps against scripted capabilities.
func TestStepsDo(t *testing.T) {
	t.Parallel()

	t.Run("unsupported platform stops after the support query", func(t *testing.T) {
		t.Parallel()

		attempt, fixture, err := runSteps(t, model.Scenario{Supported: boolPtr(false)})

		if !errors.Is(err, ErrUnsupportedPlatform) {
			t.Fatalf("expected ErrUnsupportedPlatform, got %v", err)
		}
		lines := attempt.Lines()
		if len(lines) != 1 || lines[0] != `isSupported: {"supported":false}` {
			t.Errorf("unexpected trace %q", lines)
		}
		if calls := fixture.Calls(); calls.CheckPermissions != 0 || calls.Scan != 0 {
			t.Errorf("expected no further calls, got %+v", calls)
		}
	})

	t.Run("granted permission skips the request", func(t *testing.T) {
		t.Parallel()

		attempt, fixture, err := runSteps(t, model.Scenario{
			Check:    "granted",
			Barcodes: []model.ScriptedBarcode{{RawValue: model.StringPtr("HELLO"), Format: "QR_CODE"}},
		})

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if fixture.Calls().RequestPermissions != 0 {
			t.Error("request should have been skipped")
		}
		lines := attempt.Lines()
		if len(lines) != 4 {
			t.Fatalf("expected 4 trace lines, got %q", lines)
		}
		if lines[1] != `checkPermissions: {"camera":"granted"}` {
			t.Errorf("unexpected check line %q", lines[1])
		}
		if lines[2] != "barcodes.length=1" {
			t.Errorf("unexpected count line %q", lines[2])
		}
		if !strings.HasPrefix(lines[3], "barcode JSON:\n{") || !strings.Contains(lines[3], `"rawValue": "HELLO"`) {
			t.Errorf("unexpected record line %q", lines[3])
		}
	})

	t.Run("limited permission is accepted", func(t *testing.T) {
		t.Parallel()

		_, fixture, err := runSteps(t, model.Scenario{Check: "limited"})

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if fixture.Calls().RequestPermissions != 0 {
			t.Error("request should have been skipped")
		}
	})

	t.Run("scan runs without a format filter", func(t *testing.T) {
		t.Parallel()

		_, fixture, err := runSteps(t, model.Scenario{Check: "granted"})

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if fixture.Calls().Scan != 1 {
			t.Fatalf("expected one scan call, got %d", fixture.Calls().Scan)
		}
		if formats := fixture.LastScanOptions().Formats; len(formats) != 0 {
			t.Errorf("expected no format filter, got %v", formats)
		}
	})

	t.Run("trace keeps the reported permission answers", func(t *testing.T) {
		t.Parallel()

		attempt, _, err := runSteps(t, model.Scenario{Check: false, Request: true})

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		lines := attempt.Lines()
		if lines[1] != `checkPermissions: {"camera":false}` {
			t.Errorf("unexpected check line %q", lines[1])
		}
		if lines[2] != `requestPermissions: {"camera":true}` {
			t.Errorf("unexpected request line %q", lines[2])
		}
		if attempt.Permission.Camera != model.PermissionGranted {
			t.Errorf("expected adapted state granted, got %q", attempt.Permission.Camera)
		}
	})

	t.Run("prompt then granted requests once", func(t *testing.T) {
		t.Parallel()

		attempt, fixture, err := runSteps(t, model.Scenario{Check: "prompt", Request: "granted"})

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if fixture.Calls().RequestPermissions != 1 {
			t.Errorf("expected one request, got %d", fixture.Calls().RequestPermissions)
		}
		lines := attempt.Lines()
		if lines[2] != `requestPermissions: {"camera":"granted"}` {
			t.Errorf("unexpected request line %q", lines[2])
		}
		if lines[len(lines)-1] != "barcodes.length=0" {
			t.Errorf("expected zero records line last, got %q", lines)
		}
	})

	t.Run("denied after request fails without scanning", func(t *testing.T) {
		t.Parallel()

		attempt, fixture, err := runSteps(t, model.Scenario{Check: "prompt", Request: "denied"})

		if !errors.Is(err, ErrPermissionDenied) {
			t.Fatalf("expected ErrPermissionDenied, got %v", err)
		}
		if fixture.Calls().Scan != 0 {
			t.Error("scan should not have been called")
		}
		if len(attempt.Lines()) != 3 {
			t.Errorf("expected 3 trace lines, got %q", attempt.Lines())
		}
	})

	t.Run("capability error is returned unchanged", func(t *testing.T) {
		t.Parallel()

		_, _, err := runSteps(t, model.Scenario{
			Check: true,
			Fail:  &model.ScriptedFailure{Step: capability.OpScan, Description: "camera closed"},
		})

		var capErr *capability.Error
		if !errors.As(err, &capErr) {
			t.Fatalf("expected *capability.Error, got %v", err)
		}
		if capErr.Description() != "camera closed" {
			t.Errorf("unexpected description %q", capErr.Description())
		}
	})
}

// TestPermissionJSON tests the trace form of permission answers.
func TestPermissionJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   model.PermissionStatus
		expected string
	}{
		{"adapted status without reported answer", model.PermissionStatus{Camera: model.PermissionDenied}, `{"camera":"denied"}`},
		{"reported boolean", capability.AdaptCameraPermission(true), `{"camera":true}`},
		{"reported missing value", capability.AdaptCameraPermission(nil), `{"camera":null}`},
		{"reported map", capability.AdaptPermissionStatus(map[string]any{"camera": "limited", "photos": "denied"}), `{"camera":"limited","photos":"denied"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := permissionJSON(tt.status); got != tt.expected {
				t.Errorf("permissionJSON() = %q, expected %q", got, tt.expected)
			}
		})
	}
}
