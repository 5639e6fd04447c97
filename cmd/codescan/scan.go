package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/nao1215/codescan/internal/capability"
	"github.com/nao1215/codescan/internal/config"
	"github.com/nao1215/codescan/internal/i18n"
	"github.com/nao1215/codescan/internal/log"
	"github.com/nao1215/codescan/internal/model"
	"github.com/nao1215/codescan/internal/orchestrator"
	"github.com/nao1215/codescan/internal/report"
	"github.com/spf13/cobra"
)

// ErrAttemptFailed is returned by scan --strict when an attempt failed.
var ErrAttemptFailed = errors.New("scan attempt failed")

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run a scan attempt and show the decoded content",
		Long: `Scan runs one scan attempt and prints the decoded content together with
the trace of the attempt.

An attempt checks that scanning is supported, checks camera permission,
requests it when it is not granted yet, scans once and shows the first
decoded record. When nothing is decoded the attempt still succeeds and
reports that no code was detected.

With the image source, every --image is scanned in its own attempt and
the attempts run concurrently (see --batch).

Examples:
  # Scan with the first camera
  codescan scan

  # Scan with another video device
  codescan scan --device /dev/video2

  # Decode image files
  codescan scan --source image --image front.png --image back.jpg

  # Replay a scripted scenario from the configuration file
  codescan scan --driver fixture --scenario denied

  # Output a JSON report to a file, failing on failed attempts
  codescan scan --json -o report.json --strict`,
		Args: cobra.NoArgs,
		RunE: runScanCmd,
	}

	addCapabilityFlags(cmd)

	cmd.Flags().StringP("lang", "l", i18n.DefaultLanguage,
		"Language of displayed messages (en, es)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Upper bound of a single attempt (0 waits as long as it takes)")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of images scanned concurrently")
	cmd.Flags().Bool("strict", false,
		"Exit with an error when an attempt fails")

	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// addCapabilityFlags registers the flags shared by scan and doctor.
func addCapabilityFlags(cmd *cobra.Command) {
	cmd.Flags().String("driver", config.DefaultDriver,
		"Capability driver (zbar, fixture)")
	cmd.Flags().String("source", config.DefaultSource,
		"zbar input (camera, image)")
	cmd.Flags().String("device", config.DefaultDevice,
		"Video device scanned by the camera source")
	cmd.Flags().StringArrayP("image", "i", nil,
		"Image file scanned by the image source (repeatable)")
	cmd.Flags().String("scenario", config.DefaultScenario,
		"Fixture scenario used by the fixture driver")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .codescan in current or home directory)")

	cmd.Flags().String("log-file", "",
		"Also write logs to a rotating file (--log-file=PATH, or the XDG state dir when no path is given)")
	cmd.Flags().Lookup("log-file").NoOptDefVal = config.DefaultLogFilePath()
	cmd.Flags().Bool("log-json", false,
		"Write logs as JSON")
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, _ []string) error {
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
	slog.SetDefault(logger)

	ctx, cancel := signalContext(cmd.Context(), logger)
	defer cancel()

	return runScan(ctx, cmd, cfg, logger)
}

// buildConfig creates a Config from the configuration file and the cobra
// command flags. Flags that were set explicitly override file defaults.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}

	// If the user explicitly specified a config file path, error if not found.
	// If no path was specified, silently use built-in defaults.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		cfg.File, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.ApplyDefaults(cfg.File.Defaults)
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	cfg.Verbose = getVerboseFlag(cmd)

	stringFlags := map[string]*string{
		"driver":   &cfg.Driver,
		"source":   &cfg.Source,
		"device":   &cfg.Device,
		"scenario": &cfg.Scenario,
		"lang":     &cfg.Language,
		"output":   &cfg.ReportFile,
		"log-file": &cfg.LogFile,
	}
	for name, dst := range stringFlags {
		if err := overrideString(cmd, name, dst); err != nil {
			return nil, err
		}
	}

	if flags.Changed("image") {
		cfg.Images, err = flags.GetStringArray("image")
		if err != nil {
			return nil, err
		}
		// Passing images implies the image source
		if !flags.Changed("source") {
			cfg.Source = config.SourceImage
		}
	}

	if f := flags.Lookup("timeout"); f != nil && f.Changed {
		cfg.Timeout, err = flags.GetDuration("timeout")
		if err != nil {
			return nil, err
		}
	}

	if f := flags.Lookup("batch"); f != nil && f.Changed {
		cfg.BatchSize, err = flags.GetInt("batch")
		if err != nil {
			return nil, err
		}
	}

	boolFlags := map[string]*bool{
		"strict":   &cfg.Strict,
		"json":     &cfg.JSONReport,
		"markdown": &cfg.MarkdownReport,
		"log-json": &cfg.LogJSON,
	}
	for name, dst := range boolFlags {
		if flags.Lookup(name) == nil {
			continue
		}
		if *dst, err = flags.GetBool(name); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// overrideString copies a string flag into dst when the command has the
// flag and the user set it.
func overrideString(cmd *cobra.Command, name string, dst *string) error {
	f := cmd.Flags().Lookup(name)
	if f == nil || !f.Changed {
		return nil
	}
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates the secure logger described by cfg. Logs go to the
// command's standard error and, when configured, to a rotating file.
func setupLogger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, io.Closer, error) {
	logger, closer, err := log.New(cmd.ErrOrStderr(), log.Options{
		Verbose:    cfg.Verbose,
		JSON:       cfg.LogJSON,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	return logger, closer, nil
}

// signalContext returns a context that is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context, logger *slog.Logger) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// runScan runs a single attempt, or one attempt per image.
func runScan(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) error {
	tr, err := i18n.New(cfg.Language)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	output, closeOutput, err := openReportOutput(cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer closeOutput()

	writer := newReportWriter(cfg, output, tr)

	attemptOpts := []orchestrator.Option{
		orchestrator.WithTranslator(tr),
		orchestrator.WithTimeout(cfg.Timeout),
	}

	logger.Info("starting scan",
		"driver", cfg.Driver,
		"source", cfg.Source,
		"images", len(cfg.Images),
		"language", cfg.Language,
	)

	var snapshots []model.Snapshot
	if cfg.Driver == config.DriverZbar && cfg.Source == config.SourceImage {
		snapshots, err = runBatchScan(ctx, cmd, cfg, writer, logger, attemptOpts)
	} else {
		snapshots, err = runSingleScan(ctx, cmd, cfg, writer, logger, attemptOpts)
	}
	if err != nil {
		return err
	}

	if cfg.Strict {
		if s := report.Summarize(snapshots); s.Failed > 0 {
			return fmt.Errorf("%w: %d of %d attempts failed", ErrAttemptFailed, s.Failed, s.Total)
		}
	}
	return nil
}

// runSingleScan runs one attempt. The terminal sink streams the trace in
// verbose mode and writes the report when the attempt ends.
func runSingleScan(ctx context.Context, cmd *cobra.Command, cfg *config.Config, writer report.Writer, logger *slog.Logger, attemptOpts []orchestrator.Option) ([]model.Snapshot, error) {
	scanner, err := newScanner(cfg, "", logger)
	if err != nil {
		return nil, err
	}

	sinkOpts := []report.TerminalSinkOption{report.WithReportWriter(writer)}
	if cfg.Verbose {
		sinkOpts = append(sinkOpts, report.WithTrace(cmd.ErrOrStderr()))
	}
	sink := report.NewTerminalSink(sinkOpts...)

	opts := append([]orchestrator.Option{
		orchestrator.WithSink(sink),
		orchestrator.WithLogger(logger),
	}, attemptOpts...)

	snapshot := orchestrator.New(scanner, opts...).RunAttempt(ctx)
	if err := sink.Err(); err != nil {
		return nil, err
	}
	return []model.Snapshot{snapshot}, nil
}

// runBatchScan scans every image in its own attempt and writes one report
// covering all of them.
func runBatchScan(ctx context.Context, cmd *cobra.Command, cfg *config.Config, writer report.Writer, logger *slog.Logger, attemptOpts []orchestrator.Option) ([]model.Snapshot, error) {
	batchOpts := []orchestrator.BatchOption{
		orchestrator.WithConcurrency(cfg.BatchSize),
		orchestrator.WithBatchLogger(logger),
		orchestrator.WithAttemptOptions(attemptOpts...),
	}
	if cfg.Verbose {
		sink := report.NewTerminalSink(report.WithTrace(cmd.ErrOrStderr()))
		batchOpts = append(batchOpts, orchestrator.WithBatchSink(sink))
	}

	batch := orchestrator.NewBatch(
		func(source string) (capability.Scanner, error) {
			return newScanner(cfg, source, logger)
		},
		batchOpts...,
	)

	startTime := time.Now()
	snapshots, err := batch.Run(ctx, cfg.Images)
	if err != nil {
		return nil, fmt.Errorf("batch scan interrupted: %w", err)
	}
	logger.Info("batch scan completed", "elapsed", time.Since(startTime).Round(time.Millisecond))

	if _, err := writer.WriteAll(snapshots); err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}
	return snapshots, nil
}

// newScanner builds the capability selected by cfg. image is the file
// scanned by the zbar image source.
func newScanner(cfg *config.Config, image string, logger *slog.Logger) (capability.Scanner, error) {
	switch cfg.Driver {
	case config.DriverFixture:
		scenario, ok := cfg.File.GetScenario(cfg.Scenario)
		if !ok {
			return nil, fmt.Errorf("%w: %q", config.ErrUnknownScenario, cfg.Scenario)
		}
		return capability.NewFixture(scenario), nil
	case config.DriverZbar:
		opts := []capability.ZbarOption{
			capability.WithDevice(cfg.Device),
			capability.WithExecutables(cfg.ZbarImgPath, cfg.ZbarCamPath),
			capability.WithEXIF(cfg.ReadEXIF),
			capability.WithLogger(logger),
		}
		source := capability.SourceCamera
		if cfg.Source == config.SourceImage {
			source = capability.SourceImage
			opts = append(opts, capability.WithImage(image))
		}
		return capability.NewZbar(source, opts...)
	default:
		return nil, config.ErrUnknownDriver
	}
}

// newReportWriter selects the report format requested by cfg.
func newReportWriter(cfg *config.Config, output io.Writer, tr *i18n.Translator) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(output, report.WithPrettyPrint(), report.WithVersion(getVersion()))
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output, tr)
	default:
		return report.NewSimpleWriter(output, tr)
	}
}

// openReportOutput returns the report destination: the --output file or
// stdout. The returned function closes the file.
func openReportOutput(cfg *config.Config, stdout io.Writer) (io.Writer, func(), error) {
	if cfg.ReportFile == "" {
		return stdout, func() {}, nil
	}

	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Decoded payloads may be secrets (Wi-Fi passwords, OTP seeds), so the
	// report is only readable by the owner
	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
