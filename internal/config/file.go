package config

import (
	"time"

	"github.com/nao1215/codescan/internal/model"
)

// Defaults holds settings from the defaults section of the configuration
// file. Zero values leave the built-in default in place.
type Defaults struct {
	Driver      string        `yaml:"driver,omitempty"`
	Source      string        `yaml:"source,omitempty"`
	Device      string        `yaml:"device,omitempty"`
	Scenario    string        `yaml:"scenario,omitempty"`
	Language    string        `yaml:"language,omitempty"`
	Timeout     time.Duration `yaml:"timeout,omitempty"`
	BatchSize   int           `yaml:"batch,omitempty"`
	ReadEXIF    *bool         `yaml:"exif,omitempty"`
	ZbarImgPath string        `yaml:"zbarimg,omitempty"`
	ZbarCamPath string        `yaml:"zbarcam,omitempty"`

	LogFile       string `yaml:"logFile,omitempty"`
	LogMaxSizeMB  int    `yaml:"logMaxSizeMB,omitempty"`
	LogMaxBackups int    `yaml:"logMaxBackups,omitempty"`
	LogMaxAgeDays int    `yaml:"logMaxAgeDays,omitempty"`
}

// File represents the structure of the .codescan configuration file.
type File struct {
	// Defaults contains settings applied before CLI flags.
	Defaults Defaults `yaml:"defaults,omitempty"`

	// Scenarios maps scenario names to fixture capability scripts.
	Scenarios map[string]model.Scenario `yaml:"scenarios,omitempty"`
}

// NewFile returns an empty File with initialized maps.
func NewFile() *File {
	return &File{Scenarios: make(map[string]model.Scenario)}
}

// GetScenario returns the named fixture scenario.
func (f *File) GetScenario(name string) (model.Scenario, bool) {
	if f == nil {
		return model.Scenario{}, false
	}
	s, ok := f.Scenarios[name]
	return s, ok
}
