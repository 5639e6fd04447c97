package model

import "time"

// Scenario scripts the answers of a fixture scanning capability. Scenarios
// are read from the configuration file.
//
// Check and Request hold raw values (a string such as "granted" or a
// boolean), interpreted by the capability adapter like platform answers.
type Scenario struct {
	// Platform is reported as the capability platform. Empty means "fixture".
	Platform string `yaml:"platform,omitempty"`

	// Supported is the support answer. Nil means supported.
	Supported *bool `yaml:"supported,omitempty"`

	// Check is the raw answer of the permission check.
	Check any `yaml:"check,omitempty"`

	// Request is the raw answer of the permission request.
	Request any `yaml:"request,omitempty"`

	// Barcodes are returned by the scan call.
	Barcodes []ScriptedBarcode `yaml:"barcodes,omitempty"`

	// Fail makes one capability call return an error.
	Fail *ScriptedFailure `yaml:"fail,omitempty"`

	// Delay is waited before every answer, to imitate a slow device.
	Delay time.Duration `yaml:"delay,omitempty"`
}

// IsSupported returns the scripted support answer.
func (s Scenario) IsSupported() bool {
	return s.Supported == nil || *s.Supported
}

// ScriptedBarcode describes one scripted decoded record.
type ScriptedBarcode struct {
	// RawValue is the decoded text. Omit it to script a record without text.
	RawValue     *string           `yaml:"rawValue,omitempty"`
	DisplayValue string            `yaml:"displayValue,omitempty"`
	Format       string            `yaml:"format,omitempty"`
	ValueType    string            `yaml:"valueType,omitempty"`
	Metadata     map[string]string `yaml:"metadata,omitempty"`
}

// ScriptedFailure makes one capability call fail.
type ScriptedFailure struct {
	// Step is the failing call: isSupported, checkPermissions,
	// requestPermissions or scan.
	Step string `yaml:"step"`

	// Description is the human readable failure description. When empty the
	// failure only has its technical string form.
	Description string `yaml:"description,omitempty"`

	// Error is the technical error text.
	Error string `yaml:"error,omitempty"`
}
