package jsonconv

import (
	"fmt"
	"os"
	"time"

	"github.com/hengadev/errsx"
	"gopkg.in/yaml.v3"
)

// FileConfig is the YAML form of Config.
//
//	date_format: "yyyy-MM-dd HH:mm:ss"
//	ignore_conversion_errors: true
//	key_ordering: natural
type FileConfig struct {
	DateFormat             string `yaml:"date_format"`
	IgnoreConversionErrors bool   `yaml:"ignore_conversion_errors"`
	KeyOrdering            string `yaml:"key_ordering"` // "sorted" (default) or "natural"
	CaseInsensitiveKeys    bool   `yaml:"case_insensitive_keys"`
	IgnoreNullFields       bool   `yaml:"ignore_null_fields"`
	MaxDepth               int    `yaml:"max_depth"`
	Location               string `yaml:"location"`
	BatchLimit             int    `yaml:"batch_limit"`
}

// LoadConfig loads configuration from a YAML file.
func LoadConfig(path string) (*FileConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes and validates YAML configuration.
func ParseConfig(data []byte) (*FileConfig, error) {
	config := &FileConfig{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// SaveConfig writes configuration to a YAML file.
func SaveConfig(config *FileConfig, path string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate reports every invalid setting, keyed by its YAML name.
func (c *FileConfig) Validate() error {
	var errs errsx.Map
	switch c.KeyOrdering {
	case "", "sorted", "natural":
	default:
		errs.Set("key_ordering", fmt.Errorf("key_ordering must be sorted or natural, got %q", c.KeyOrdering))
	}
	if c.MaxDepth < 0 {
		errs.Set("max_depth", fmt.Errorf("max_depth must not be negative, got %d", c.MaxDepth))
	}
	if c.BatchLimit < 0 {
		errs.Set("batch_limit", fmt.Errorf("batch_limit must not be negative, got %d", c.BatchLimit))
	}
	if c.Location != "" {
		if _, err := time.LoadLocation(c.Location); err != nil {
			errs.Set("location", err)
		}
	}
	if errs.IsEmpty() {
		return nil
	}
	return errs.AsError()
}

// Options turns the file settings into engine options.
func (c *FileConfig) Options() ([]Option, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	opts := []Option{
		WithDateFormat(c.DateFormat),
		WithIgnoreConversionErrors(c.IgnoreConversionErrors),
		WithCaseInsensitiveKeys(c.CaseInsensitiveKeys),
		WithIgnoreNullFields(c.IgnoreNullFields),
		WithMaxDepth(c.MaxDepth),
		WithBatchLimit(c.BatchLimit),
	}
	if c.KeyOrdering == "natural" {
		opts = append(opts, WithKeyOrdering(KeyOrderNatural))
	} else {
		opts = append(opts, WithKeyOrdering(KeyOrderSorted))
	}
	if c.Location != "" {
		loc, _ := time.LoadLocation(c.Location)
		opts = append(opts, WithLocation(loc))
	}
	return opts, nil
}
