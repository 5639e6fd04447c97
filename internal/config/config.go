package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/nao1215/codescan/internal/i18n"
)

// Drivers select the scanning capability implementation.
const (
	// DriverZbar delegates decoding to the zbar command line tools.
	DriverZbar = "zbar"
	// DriverFixture answers from a scripted scenario in the config file.
	DriverFixture = "fixture"
)

// Sources select the zbar input.
const (
	// SourceCamera reads frames from a video device with zbarcam.
	SourceCamera = "camera"
	// SourceImage decodes image files with zbarimg.
	SourceImage = "image"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "codescan"

	// DefaultDriver scans with real hardware.
	DefaultDriver = DriverZbar

	// DefaultSource scans from the camera.
	DefaultSource = SourceCamera

	// DefaultDevice is the first V4L2 video device on Linux.
	DefaultDevice = "/dev/video0"

	// DefaultScenario is the fixture scenario used when none is named.
	DefaultScenario = "default"

	// DefaultTimeout of zero means an attempt waits for the capability as
	// long as it takes. A stalled camera can be aborted with Ctrl+C.
	DefaultTimeout time.Duration = 0

	// DefaultBatchSize is the number of image attempts run concurrently.
	DefaultBatchSize = 4

	// DefaultZbarImg is the zbarimg executable looked up on PATH.
	DefaultZbarImg = "zbarimg"

	// DefaultZbarCam is the zbarcam executable looked up on PATH.
	DefaultZbarCam = "zbarcam"

	// DefaultLogMaxSizeMB is the size at which the log file is rotated.
	DefaultLogMaxSizeMB = 10

	// DefaultLogMaxBackups is the number of rotated log files kept.
	DefaultLogMaxBackups = 3

	// DefaultLogMaxAgeDays is how long rotated log files are kept.
	DefaultLogMaxAgeDays = 28
)

// Config holds all configuration options for codescan.
// This struct is populated from the configuration file and CLI flags and
// passed through the application rather than kept in global state.
type Config struct {
	// Driver selects the capability implementation (DriverZbar, DriverFixture).
	Driver string

	// Source selects the zbar input (SourceCamera, SourceImage).
	Source string

	// Device is the video device scanned by the camera source.
	Device string

	// Images are the files scanned by the image source. Each image is one
	// attempt.
	Images []string

	// Scenario names the fixture scenario used by the fixture driver.
	Scenario string

	// Language selects the language of displayed messages ("en", "es").
	Language string

	// Verbose enables debug logging and live trace output.
	Verbose bool

	// Timeout bounds a single attempt. Zero disables the bound.
	Timeout time.Duration

	// BatchSize is the number of image attempts run concurrently.
	BatchSize int

	// JSONReport selects JSON report output. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown report output. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report. Empty means stdout.
	ReportFile string

	// Strict makes the scan command exit with an error when an attempt fails.
	Strict bool

	// ReadEXIF copies EXIF tags of scanned images into record metadata.
	ReadEXIF bool

	// ZbarImgPath is the zbarimg executable.
	ZbarImgPath string

	// ZbarCamPath is the zbarcam executable.
	ZbarCamPath string

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches the usual locations (see FindConfigFile).
	ConfigFilePath string

	// File holds the parsed configuration file, or an empty File.
	File *File

	// LogFile is a path that receives a rotated copy of the log output.
	// Empty disables file logging.
	LogFile string

	// LogJSON switches log output to JSON.
	LogJSON bool

	// LogMaxSizeMB, LogMaxBackups and LogMaxAgeDays control log rotation.
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Driver:        DefaultDriver,
		Source:        DefaultSource,
		Device:        DefaultDevice,
		Scenario:      DefaultScenario,
		Language:      i18n.DefaultLanguage,
		Timeout:       DefaultTimeout,
		BatchSize:     DefaultBatchSize,
		ReadEXIF:      true,
		ZbarImgPath:   DefaultZbarImg,
		ZbarCamPath:   DefaultZbarCam,
		File:          NewFile(),
		LogMaxSizeMB:  DefaultLogMaxSizeMB,
		LogMaxBackups: DefaultLogMaxBackups,
		LogMaxAgeDays: DefaultLogMaxAgeDays,
	}
}

// ApplyDefaults copies the non-zero values of a configuration file's
// defaults section into c. CLI flags are applied afterwards and win.
func (c *Config) ApplyDefaults(d Defaults) {
	if d.Driver != "" {
		c.Driver = d.Driver
	}
	if d.Source != "" {
		c.Source = d.Source
	}
	if d.Device != "" {
		c.Device = d.Device
	}
	if d.Scenario != "" {
		c.Scenario = d.Scenario
	}
	if d.Language != "" {
		c.Language = d.Language
	}
	if d.Timeout != 0 {
		c.Timeout = d.Timeout
	}
	if d.BatchSize != 0 {
		c.BatchSize = d.BatchSize
	}
	if d.ReadEXIF != nil {
		c.ReadEXIF = *d.ReadEXIF
	}
	if d.ZbarImgPath != "" {
		c.ZbarImgPath = d.ZbarImgPath
	}
	if d.ZbarCamPath != "" {
		c.ZbarCamPath = d.ZbarCamPath
	}
	if d.LogFile != "" {
		c.LogFile = d.LogFile
	}
	if d.LogMaxSizeMB != 0 {
		c.LogMaxSizeMB = d.LogMaxSizeMB
	}
	if d.LogMaxBackups != 0 {
		c.LogMaxBackups = d.LogMaxBackups
	}
	if d.LogMaxAgeDays != 0 {
		c.LogMaxAgeDays = d.LogMaxAgeDays
	}
}

// XDGConfigDir returns the XDG config directory for codescan.
// On Linux: ~/.config/codescan
// On macOS: ~/Library/Application Support/codescan
// On Windows: %APPDATA%\codescan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGStateDir returns the XDG state directory for codescan, where the
// default log file lives.
// On Linux: ~/.local/state/codescan
// On macOS: ~/Library/Application Support/codescan
// On Windows: %LOCALAPPDATA%\codescan
func XDGStateDir() string {
	return filepath.Join(xdg.StateHome, AppName)
}

// DefaultLogFilePath returns the log file used when --log-file is given
// without a value.
func DefaultLogFilePath() string {
	return filepath.Join(XDGStateDir(), AppName+".log")
}

// Validate checks if the configuration is valid.
// It returns the first problem found.
func (c *Config) Validate() error {
	switch c.Driver {
	case DriverZbar:
		if c.Source != SourceCamera && c.Source != SourceImage {
			return ErrInvalidSource
		}
		if c.Source == SourceImage && len(c.Images) == 0 {
			return ErrNoImage
		}
	case DriverFixture:
		if _, ok := c.File.GetScenario(c.Scenario); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownScenario, c.Scenario)
		}
	default:
		return ErrUnknownDriver
	}

	// Zero means "no timeout"; only negative values are rejected
	if c.Timeout < 0 {
		return ErrInvalidTimeout
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if !i18n.IsSupported(c.Language) {
		return ErrUnsupportedLanguage
	}

	if c.LogMaxSizeMB < 0 || c.LogMaxBackups < 0 || c.LogMaxAgeDays < 0 {
		return ErrInvalidLogRotation
	}

	return nil
}
