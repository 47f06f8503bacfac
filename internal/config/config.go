// Package config holds the run configuration: input and output locations,
// logging, the record schema and the analysis dimensions.
package config

import (
	"errors"
	"fmt"
	"path/filepath"

	"jsoncollate/internal/analyze"
	"jsoncollate/internal/curate"
	"jsoncollate/internal/logging"
)

// Defaults for a run with no config file and no flags.
const (
	DefaultInputDir  = "./json_files"
	DefaultOutput    = "combined.json"
	DefaultReport    = "combined_analysis.xlsx"
	DefaultLogFile   = "collate_json_files.log"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// EnvConfigPath names the environment variable holding a default config path.
const EnvConfigPath = "JSONCOLLATE_CONFIG"

// Config is one run's configuration.
type Config struct {
	InputDir  string          `json:"input_dir" yaml:"input_dir"`
	Output    string          `json:"output" yaml:"output"`
	Report    string          `json:"report" yaml:"report"`
	LogFile   string          `json:"log_file" yaml:"log_file"`
	LogLevel  string          `json:"log_level" yaml:"log_level"`
	LogFormat string          `json:"log_format" yaml:"log_format"`
	Schema    curate.Schema   `json:"schema" yaml:"schema"`
	Analysis  analyze.Options `json:"analysis" yaml:"analysis"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		InputDir:  DefaultInputDir,
		Output:    DefaultOutput,
		Report:    DefaultReport,
		LogFile:   DefaultLogFile,
		LogLevel:  DefaultLogLevel,
		LogFormat: DefaultLogFormat,
	}
}

// Validate checks the configuration for structural correctness.
func (c Config) Validate() []error {
	var errs []error

	if c.InputDir == "" {
		errs = append(errs, errors.New("input_dir is required"))
	}
	if c.Output == "" {
		errs = append(errs, errors.New("output is required"))
	}
	if c.Report == "" {
		errs = append(errs, errors.New("report is required"))
	}
	files := []struct{ key, path string }{
		{"output", c.Output},
		{"report", c.Report},
		{"log_file", c.LogFile},
	}
	for i, a := range files {
		for _, b := range files[i+1:] {
			if a.path != "" && filepath.Clean(a.path) == filepath.Clean(b.path) {
				errs = append(errs, fmt.Errorf("%s and %s must be different files; both are %q", a.key, b.key, a.path))
			}
		}
	}
	if filepath.Ext(c.Report) != ".xlsx" {
		errs = append(errs, fmt.Errorf("report must be an .xlsx file; got %q", c.Report))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.LogFormat != "" && c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("log_format must be text or json; got %q", c.LogFormat))
	}

	errs = append(errs, c.Schema.Validate()...)
	errs = append(errs, c.Analysis.Validate()...)
	return errs
}
