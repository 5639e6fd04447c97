package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
var (
	// ErrUnknownDriver is returned when the driver is neither zbar nor fixture.
	ErrUnknownDriver = errors.New("unknown driver: must be zbar or fixture")

	// ErrInvalidSource is returned when the zbar source is neither camera nor image.
	ErrInvalidSource = errors.New("invalid source: must be camera or image")

	// ErrNoImage is returned when the image source is selected without any --image.
	ErrNoImage = errors.New("no image specified: the image source needs at least one --image")

	// ErrInvalidTimeout is returned when the attempt timeout is negative.
	// Zero means no timeout.
	ErrInvalidTimeout = errors.New("invalid timeout: must be non-negative")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrUnsupportedLanguage is returned when no translation exists for the
	// requested language.
	ErrUnsupportedLanguage = errors.New("unsupported language: must be en or es")

	// ErrUnknownScenario is returned when the fixture driver names a scenario
	// that the configuration file does not define.
	ErrUnknownScenario = errors.New("unknown fixture scenario")

	// ErrInvalidLogRotation is returned when log rotation limits are negative.
	ErrInvalidLogRotation = errors.New("invalid log rotation settings: must be non-negative")
)
