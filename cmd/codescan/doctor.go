package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/nao1215/codescan/internal/capability"
	"github.com/nao1215/codescan/internal/model"
	"github.com/nao1215/codescan/internal/pipeline"
	"github.com/spf13/cobra"
)

// ErrNotReady is returned by doctor when scanning would fail before the scan.
var ErrNotReady = errors.New("scanner is not ready")

// NewDoctorCmd creates the doctor command.
func NewDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check scanning support and camera permission without scanning",
		Long: `Doctor runs the first steps of a scan attempt: it asks the capability
whether scanning is supported and reads the current camera permission. It
never prompts for permission and never opens the camera for a scan.

The command exits with an error when scanning is unsupported or the
permission is not granted, so it can gate scripts and CI jobs.

Examples:
  # Check the first camera
  codescan doctor

  # Check a specific device
  codescan doctor --device /dev/video2

  # Check a scripted scenario
  codescan doctor --driver fixture --scenario denied`,
		Args: cobra.NoArgs,
		RunE: runDoctorCmd,
	}

	addCapabilityFlags(cmd)

	return cmd
}

// runDoctorCmd executes the doctor command.
func runDoctorCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger, closer, err := setupLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, cancel := signalContext(cmd.Context(), logger)
	defer cancel()

	image := ""
	if len(cfg.Images) > 0 {
		image = cfg.Images[0]
	}
	scanner, err := newScanner(cfg, image, logger)
	if err != nil {
		return err
	}

	attempt := model.NewAttempt(1, uuid.NewString(), scanner.Platform(), time.Now())
	attempt.Log("platform: " + attempt.Platform.String())

	p := pipeline.New(pipeline.WithLogger(logger))
	p.AddSteps(
		pipeline.NewSupportStep(scanner),
		pipeline.NewPermissionCheckStep(scanner),
	)
	execErr := p.Execute(ctx, attempt)

	writeDiagnosis(cmd.OutOrStdout(), attempt, execErr)

	if execErr != nil {
		return fmt.Errorf("%w: %w", ErrNotReady, execErr)
	}
	if !attempt.Permission.Camera.Accepted() {
		return fmt.Errorf("%w: camera permission is %s", ErrNotReady, attempt.Permission.Camera)
	}
	logger.Debug("scanner ready", "platform", attempt.Platform, "target", describeTarget(scanner))
	return nil
}

// describeTarget names what a scanner reads from, when it knows.
func describeTarget(scanner capability.Scanner) string {
	if z, ok := scanner.(*capability.Zbar); ok {
		return z.Target()
	}
	return ""
}

// writeDiagnosis prints the findings of doctor followed by its trace.
func writeDiagnosis(w io.Writer, attempt *model.Attempt, err error) {
	fmt.Fprintf(w, "Platform:   %s\n", attempt.Platform)
	fmt.Fprintf(w, "Supported:  %t\n", attempt.Support.Supported)

	permission := "unknown"
	if attempt.Permission.Camera != "" {
		permission = attempt.Permission.Camera.String()
	}
	fmt.Fprintf(w, "Permission: %s\n", permission)

	if err != nil {
		fmt.Fprintf(w, "Error:      %v\n", err)
	}

	fmt.Fprintln(w, "\nTrace:")
	for _, line := range attempt.Lines() {
		fmt.Fprintf(w, "  %s\n", line)
	}
}
