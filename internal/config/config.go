package config

import (
	"fmt"
	"strings"
	"time"
)

// Config holds the complete application configuration
type Config struct {
	Version       string              `yaml:"version" json:"version"`
	Normalization NormalizationConfig `yaml:"normalization" json:"normalization"`
	Input         InputConfig         `yaml:"input" json:"input"`
	Grouping      GroupingConfig      `yaml:"grouping" json:"grouping"`
	Output        OutputConfig        `yaml:"output" json:"output"`
}

// NormalizationConfig configures the rollout of experimental patterns
type NormalizationConfig struct {
	Rollouts     map[string]int `yaml:"rollouts" json:"rollouts"`           // gate key -> percentage
	RolloutID    string         `yaml:"rollout_id" json:"rollout_id"`       // identifier hashed into a bucket
	RolloutsFile string         `yaml:"rollouts_file" json:"rollouts_file"` // hot-reloaded rollouts file
	CacheTTL     time.Duration  `yaml:"cache_ttl" json:"cache_ttl"`         // memoization of rollout lookups
	CacheSize    int            `yaml:"cache_size" json:"cache_size"`
}

// InputConfig configures how log input is read and parsed
type InputConfig struct {
	Format        string `yaml:"format" json:"format"` // auto|json|logfmt|text
	MaxLines      int    `yaml:"max_lines" json:"max_lines"`
	MaxLineLength int    `yaml:"max_line_length" json:"max_line_length"`
}

// GroupingConfig configures fingerprint grouping
type GroupingConfig struct {
	Workers     int           `yaml:"workers" json:"workers"`
	MaxExamples int           `yaml:"max_examples" json:"max_examples"` // distinct raw messages kept per group
	Top         int           `yaml:"top" json:"top"`                   // groups shown in reports, 0 = all
	Timeout     time.Duration `yaml:"timeout" json:"timeout"`
	MinLevel    string        `yaml:"min_level" json:"min_level"` // debug|info|warn|error|fatal
}

// OutputConfig configures output formatting and display
type OutputConfig struct {
	DefaultFormat   string `yaml:"default_format" json:"default_format"`     // text|json|markdown|csv|prompt
	ColorMode       string `yaml:"color_mode" json:"color_mode"`             // auto|always|never
	Verbose         bool   `yaml:"verbose" json:"verbose"`                   // default verbosity
	TimestampFormat string `yaml:"timestamp_format" json:"timestamp_format"` // time format string
}

// ValidFormats lists the accepted output formats.
var ValidFormats = []string{"text", "json", "markdown", "csv", "prompt"}

// ValidInputFormats lists the accepted input formats.
var ValidInputFormats = []string{"auto", "json", "logfmt", "text"}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Normalization: NormalizationConfig{
			Rollouts:  make(map[string]int),
			RolloutID: "default",
			CacheTTL:  30 * time.Second,
			CacheSize: 256,
		},
		Input: InputConfig{
			Format:        "auto",
			MaxLines:      1000000,
			MaxLineLength: 1024 * 1024, // 1MB
		},
		Grouping: GroupingConfig{
			Workers:     4,
			MaxExamples: 3,
			Top:         20,
			Timeout:     60 * time.Second,
			MinLevel:    "",
		},
		Output: OutputConfig{
			DefaultFormat:   "text",
			ColorMode:       "auto",
			Verbose:         false,
			TimestampFormat: "2006-01-02 15:04:05",
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.validateOutputConfig(); err != nil {
		return err
	}
	if err := c.validateNormalizationConfig(); err != nil {
		return err
	}
	if err := c.validateInputConfig(); err != nil {
		return err
	}
	if err := c.validateGroupingConfig(); err != nil {
		return err
	}
	return nil
}

// validateNormalizationConfig validates rollout settings
func (c *Config) validateNormalizationConfig() error {
	for key, pct := range c.Normalization.Rollouts {
		if pct < 0 || pct > 100 {
			return fmt.Errorf("rollout %s: percentage %d must be between 0 and 100", key, pct)
		}
	}
	if c.Normalization.CacheTTL < 0 {
		return fmt.Errorf("cache_ttl must be non-negative")
	}
	if c.Normalization.CacheSize < 0 {
		return fmt.Errorf("cache_size must be non-negative")
	}
	return nil
}

// validateInputConfig validates input-related configuration
func (c *Config) validateInputConfig() error {
	if c.Input.Format != "" && !contains(ValidInputFormats, c.Input.Format) {
		return fmt.Errorf("invalid input format: %s (must be one of: %s)", c.Input.Format, strings.Join(ValidInputFormats, ", "))
	}
	if c.Input.MaxLines < 1 {
		return fmt.Errorf("max_lines must be greater than 0")
	}
	if c.Input.MaxLineLength < 1 {
		return fmt.Errorf("max_line_length must be greater than 0")
	}
	return nil
}

// validateGroupingConfig validates grouping-related configuration
func (c *Config) validateGroupingConfig() error {
	if c.Grouping.Workers < 1 {
		return fmt.Errorf("workers must be greater than 0")
	}
	if c.Grouping.MaxExamples < 0 {
		return fmt.Errorf("max_examples must be non-negative")
	}
	if c.Grouping.Top < 0 {
		return fmt.Errorf("top must be non-negative")
	}
	if c.Grouping.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative")
	}
	if c.Grouping.MinLevel != "" {
		validLevels := []string{"debug", "info", "warn", "error", "fatal"}
		if !contains(validLevels, strings.ToLower(c.Grouping.MinLevel)) {
			return fmt.Errorf("invalid min_level: %s (must be one of: %s)", c.Grouping.MinLevel, strings.Join(validLevels, ", "))
		}
	}
	return nil
}

// validateOutputConfig validates output-related configuration
func (c *Config) validateOutputConfig() error {
	if c.Output.DefaultFormat != "" && !contains(ValidFormats, c.Output.DefaultFormat) {
		return fmt.Errorf("invalid output format: %s (must be one of: %s)", c.Output.DefaultFormat, strings.Join(ValidFormats, ", "))
	}
	if c.Output.ColorMode != "" {
		validColorModes := map[string]bool{
			"auto":   true,
			"always": true,
			"never":  true,
		}
		if !validColorModes[c.Output.ColorMode] {
			return fmt.Errorf("invalid color mode: %s (must be one of: auto, always, never)", c.Output.ColorMode)
		}
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
