// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Default values applied by Defaults
const (
	DefaultDataDir  = "data"
	DefaultOutDir   = "."
	DefaultTemplate = "templates/resume.html"
	DefaultLogLevel = "info"
	DefaultAddr     = ":8080"
)

// Config represents the CLI configuration that can be loaded from a JSON or YAML file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Paths
	DataDir   string `json:"data_dir,omitempty" yaml:"data_dir,omitempty"`     // Directory holding index.json and resumes/
	OutDir    string `json:"out_dir,omitempty" yaml:"out_dir,omitempty"`       // Site output root
	Template  string `json:"template,omitempty" yaml:"template,omitempty"`     // Path to the HTML template
	SchemaDir string `json:"schema_dir,omitempty" yaml:"schema_dir,omitempty"` // Directory holding the JSON schemas

	// Publishing
	BasePath      string `json:"base_path,omitempty" yaml:"base_path,omitempty"`           // Prefix for site-relative URLs
	Concurrency   int    `json:"concurrency,omitempty" yaml:"concurrency,omitempty" validate:"min=0,max=256"`
	UntrustedData bool   `json:"untrusted_data,omitempty" yaml:"untrusted_data,omitempty"` // Strip markup from document strings
	PDF           bool   `json:"pdf,omitempty" yaml:"pdf,omitempty"`                       // Also print each variant to PDF

	// Storage
	DatabaseURL string `json:"database_url,omitempty" yaml:"database_url,omitempty"` // PostgreSQL connection URL

	// Server
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"` // Preview server listen address

	// Behavior
	LogLevel string `json:"log_level,omitempty" yaml:"log_level,omitempty" validate:"omitempty,oneof=debug info warn error"`
	LogFile  string `json:"log_file,omitempty" yaml:"log_file,omitempty"`
	Verbose  bool   `json:"verbose,omitempty" yaml:"verbose,omitempty"` // Print detailed reports
}

// Defaults returns the configuration used when neither file nor flags set a value.
func Defaults() Config {
	return Config{
		DataDir:  DefaultDataDir,
		OutDir:   DefaultOutDir,
		Template: DefaultTemplate,
		LogLevel: DefaultLogLevel,
		Addr:     DefaultAddr,
	}
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	// Validate file paths exist (if specified)
	if c.Template != "" {
		if _, err := os.Stat(c.Template); os.IsNotExist(err) {
			return fmt.Errorf("config error: template file not found: %s", c.Template)
		}
	}
	if c.DataDir != "" {
		if info, err := os.Stat(c.DataDir); err != nil || !info.IsDir() {
			return fmt.Errorf("config error: data directory not found: %s", c.DataDir)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.DataDir == "" {
		result.DataDir = defaults.DataDir
	}
	if result.OutDir == "" {
		result.OutDir = defaults.OutDir
	}
	if result.Template == "" {
		result.Template = defaults.Template
	}
	if result.SchemaDir == "" {
		result.SchemaDir = defaults.SchemaDir
	}
	if result.BasePath == "" {
		result.BasePath = defaults.BasePath
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.Addr == "" {
		result.Addr = defaults.Addr
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.LogFile == "" {
		result.LogFile = defaults.LogFile
	}

	// Int fields: use default if zero
	if result.Concurrency == 0 {
		result.Concurrency = defaults.Concurrency
	}

	// Bool fields: true in either source wins
	result.UntrustedData = result.UntrustedData || defaults.UntrustedData
	result.PDF = result.PDF || defaults.PDF
	result.Verbose = result.Verbose || defaults.Verbose

	return result
}
