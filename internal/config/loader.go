package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigPaths defines the config file search paths in priority order
var ConfigPaths = []string{
	"./.msgnorm.yaml",               // Project-specific config (highest priority)
	"~/.config/msgnorm/config.yaml", // User config
	"/etc/msgnorm/config.yaml",      // System config (lowest priority)
}

// Loader handles configuration loading with priority merging
type Loader struct {
	configPaths []string
}

// NewLoader creates a new config loader
func NewLoader() *Loader {
	return &Loader{
		configPaths: ConfigPaths,
	}
}

// LoadConfig loads configuration from multiple sources with priority order:
// 1. Command line flags (handled by caller)
// 2. Environment variables
// 3. ./.msgnorm.yaml
// 4. ~/.config/msgnorm/config.yaml
// 5. /etc/msgnorm/config.yaml
// 6. Built-in defaults
func (l *Loader) LoadConfig(customPath string) (*Config, error) {
	// Start with defaults
	config := DefaultConfig()

	// If custom path is provided, use only that path
	if customPath != "" {
		// Validate the custom path for security
		if err := validateConfigPath(customPath); err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		if err := l.loadFromFile(config, customPath); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", customPath, err)
		}
	} else {
		// Load from standard paths in reverse priority order (lowest to highest)
		paths := make([]string, len(l.configPaths))
		copy(paths, l.configPaths)
		// Reverse the slice to load lowest priority first
		for i := len(paths)/2 - 1; i >= 0; i-- {
			opp := len(paths) - 1 - i
			paths[i], paths[opp] = paths[opp], paths[i]
		}

		for _, path := range paths {
			expandedPath := expandPath(path)
			if fileExists(expandedPath) {
				if err := l.loadFromFile(config, expandedPath); err != nil {
					// Log warning but continue with other config files
					fmt.Fprintf(os.Stderr, "Warning: Failed to load config from %s: %v\n", expandedPath, err)
				}
			}
		}
	}

	// Apply environment variable overrides
	if err := l.applyEnvOverrides(config); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	// Validate the final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// loadFromFile loads configuration from a YAML file and merges it with existing config
func (l *Loader) loadFromFile(config *Config, path string) error {
	// #nosec G304 - path is validated by validateConfigPath() before reaching here
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	// Create a temporary config to unmarshal into
	var fileConfig Config
	if err := yaml.Unmarshal(data, &fileConfig); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Merge the file config into the existing config
	mergeConfigs(config, &fileConfig)

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config
func (l *Loader) applyEnvOverrides(config *Config) error {
	envMappings := map[string]func(string) error{
		// Normalization Config
		"MSGNORM_NORMALIZATION_ROLLOUT_ID":    func(v string) error { config.Normalization.RolloutID = v; return nil },
		"MSGNORM_NORMALIZATION_ROLLOUTS_FILE": func(v string) error { config.Normalization.RolloutsFile = v; return nil },
		"MSGNORM_NORMALIZATION_CACHE_TTL":     func(v string) error { return parseDuration(v, &config.Normalization.CacheTTL) },
		"MSGNORM_NORMALIZATION_CACHE_SIZE":    func(v string) error { return parseInt(v, &config.Normalization.CacheSize) },

		// Input Config
		"MSGNORM_INPUT_FORMAT":          func(v string) error { config.Input.Format = v; return nil },
		"MSGNORM_INPUT_MAX_LINES":       func(v string) error { return parseInt(v, &config.Input.MaxLines) },
		"MSGNORM_INPUT_MAX_LINE_LENGTH": func(v string) error { return parseInt(v, &config.Input.MaxLineLength) },

		// Grouping Config
		"MSGNORM_GROUPING_WORKERS":      func(v string) error { return parseInt(v, &config.Grouping.Workers) },
		"MSGNORM_GROUPING_MAX_EXAMPLES": func(v string) error { return parseInt(v, &config.Grouping.MaxExamples) },
		"MSGNORM_GROUPING_TOP":          func(v string) error { return parseInt(v, &config.Grouping.Top) },
		"MSGNORM_GROUPING_TIMEOUT":      func(v string) error { return parseDuration(v, &config.Grouping.Timeout) },
		"MSGNORM_GROUPING_MIN_LEVEL":    func(v string) error { config.Grouping.MinLevel = v; return nil },

		// Output Config
		"MSGNORM_OUTPUT_DEFAULT_FORMAT":   func(v string) error { config.Output.DefaultFormat = v; return nil },
		"MSGNORM_OUTPUT_COLOR_MODE":       func(v string) error { config.Output.ColorMode = v; return nil },
		"MSGNORM_OUTPUT_VERBOSE":          func(v string) error { return parseBool(v, &config.Output.Verbose) },
		"MSGNORM_OUTPUT_TIMESTAMP_FORMAT": func(v string) error { config.Output.TimestampFormat = v; return nil },
	}

	for envVar, setter := range envMappings {
		if value := os.Getenv(envVar); value != "" {
			if err := setter(value); err != nil {
				return fmt.Errorf("invalid value for %s: %w", envVar, err)
			}
		}
	}

	// Handle special case for rollouts (comma-separated key=percentage list)
	if rollouts := os.Getenv("MSGNORM_NORMALIZATION_ROLLOUTS"); rollouts != "" {
		if config.Normalization.Rollouts == nil {
			config.Normalization.Rollouts = make(map[string]int)
		}
		for _, pair := range strings.Split(rollouts, ",") {
			key, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
			if !ok || key == "" {
				return fmt.Errorf("invalid value for MSGNORM_NORMALIZATION_ROLLOUTS: %q is not key=percentage", pair)
			}
			var pct int
			if err := parseInt(strings.TrimSpace(value), &pct); err != nil {
				return fmt.Errorf("invalid value for MSGNORM_NORMALIZATION_ROLLOUTS: %w", err)
			}
			config.Normalization.Rollouts[strings.TrimSpace(key)] = pct
		}
	}

	return nil
}

// GetConfigPaths returns the list of configuration file paths that will be searched
func GetConfigPaths() []string {
	paths := make([]string, 0, len(ConfigPaths))
	for _, path := range ConfigPaths {
		paths = append(paths, expandPath(path))
	}
	return paths
}

// FindConfigFile finds the first existing config file in the search paths
func FindConfigFile() (string, bool) {
	for _, path := range ConfigPaths {
		expandedPath := expandPath(path)
		if fileExists(expandedPath) {
			return expandedPath, true
		}
	}
	return "", false
}

// Helper functions

// validateConfigPath validates that a config path is safe to read
func validateConfigPath(path string) error {
	// Clean the path to resolve any ".." components
	cleanPath := filepath.Clean(path)

	// Check for path traversal attempts
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	// Ensure it's a YAML file
	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("config file must have .yaml or .yml extension")
	}

	// Convert to absolute path for additional validation
	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	// Basic sanity check - ensure it's not in sensitive system directories
	if strings.HasPrefix(absPath, "/etc/passwd") ||
		strings.HasPrefix(absPath, "/etc/shadow") ||
		strings.HasPrefix(absPath, "/proc/") ||
		strings.HasPrefix(absPath, "/sys/") {
		return fmt.Errorf("access to system files not allowed")
	}

	return nil
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// mergeConfigs merges source config into destination config
// Only non-zero values from source overwrite destination
func mergeConfigs(dst, src *Config) {
	// Version
	if src.Version != "" {
		dst.Version = src.Version
	}

	mergeNormalizationConfig(&dst.Normalization, &src.Normalization)
	mergeInputConfig(&dst.Input, &src.Input)
	mergeGroupingConfig(&dst.Grouping, &src.Grouping)
	mergeOutputConfig(&dst.Output, &src.Output)
}

// mergeNormalizationConfig merges rollout configuration; rollout keys are
// merged individually so lower priority files can contribute other keys
func mergeNormalizationConfig(dst, src *NormalizationConfig) {
	if len(src.Rollouts) > 0 {
		if dst.Rollouts == nil {
			dst.Rollouts = make(map[string]int)
		}
		for k, v := range src.Rollouts {
			dst.Rollouts[k] = v
		}
	}
	if src.RolloutID != "" {
		dst.RolloutID = src.RolloutID
	}
	if src.RolloutsFile != "" {
		dst.RolloutsFile = src.RolloutsFile
	}
	if src.CacheTTL != 0 {
		dst.CacheTTL = src.CacheTTL
	}
	if src.CacheSize != 0 {
		dst.CacheSize = src.CacheSize
	}
}

// mergeInputConfig merges input configuration
func mergeInputConfig(dst, src *InputConfig) {
	if src.Format != "" {
		dst.Format = src.Format
	}
	if src.MaxLines != 0 {
		dst.MaxLines = src.MaxLines
	}
	if src.MaxLineLength != 0 {
		dst.MaxLineLength = src.MaxLineLength
	}
}

// mergeGroupingConfig merges grouping configuration
func mergeGroupingConfig(dst, src *GroupingConfig) {
	if src.Workers != 0 {
		dst.Workers = src.Workers
	}
	if src.MaxExamples != 0 {
		dst.MaxExamples = src.MaxExamples
	}
	if src.Top != 0 {
		dst.Top = src.Top
	}
	if src.Timeout != 0 {
		dst.Timeout = src.Timeout
	}
	if src.MinLevel != "" {
		dst.MinLevel = src.MinLevel
	}
}

// mergeOutputConfig merges output configuration
func mergeOutputConfig(dst, src *OutputConfig) {
	if src.DefaultFormat != "" {
		dst.DefaultFormat = src.DefaultFormat
	}
	if src.ColorMode != "" {
		dst.ColorMode = src.ColorMode
	}
	if src.TimestampFormat != "" {
		dst.TimestampFormat = src.TimestampFormat
	}
	// A false in a file cannot be told apart from an absent key, so only
	// true is merged; MSGNORM_OUTPUT_VERBOSE=false still turns it off.
	if src.Verbose {
		dst.Verbose = true
	}
}

// Type conversion helpers

func parseInt(s string, dst *int) error {
	val, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseBool(s string, dst *bool) error {
	val, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseDuration(s string, dst *time.Duration) error {
	val, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}
