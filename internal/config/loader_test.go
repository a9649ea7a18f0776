package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewLoader(t *testing.T) {
	loader := NewLoader()
	if loader == nil {
		t.Fatal("NewLoader returned nil")
	}
	if len(loader.configPaths) != 3 {
		t.Errorf("Expected 3 config paths, got %d", len(loader.configPaths))
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	loader := NewLoader()

	// Test loading with no config files (should use defaults)
	cfg, err := loader.LoadConfig("")
	if err != nil {
		t.Fatalf("Failed to load default config: %v", err)
	}

	// Verify it's using defaults
	if cfg.Grouping.MaxExamples != 3 {
		t.Errorf("Expected default max examples 3, got %d", cfg.Grouping.MaxExamples)
	}
	if cfg.Output.DefaultFormat != "text" {
		t.Errorf("Expected default output format text, got %s", cfg.Output.DefaultFormat)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	// Create a temporary config file
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test-config.yaml")

	configContent := `version: "1.0"
normalization:
  rollouts:
    grouping.experiments.parameterization.uniq_id: 25
  rollout_id: "org-42"
  cache_ttl: 5s
input:
  format: logfmt
grouping:
  workers: 2
  min_level: warn
output:
  default_format: "json"
  verbose: true
`

	err := os.WriteFile(configPath, []byte(configContent), 0o600)
	if err != nil {
		t.Fatalf("Failed to write test config file: %v", err)
	}

	loader := NewLoader()
	cfg, err := loader.LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config from file: %v", err)
	}

	// Verify the config was loaded correctly
	if got := cfg.Normalization.Rollouts["grouping.experiments.parameterization.uniq_id"]; got != 25 {
		t.Errorf("Expected uniq_id rollout 25, got %d", got)
	}
	if cfg.Normalization.RolloutID != "org-42" {
		t.Errorf("Expected rollout id org-42, got %s", cfg.Normalization.RolloutID)
	}
	if cfg.Normalization.CacheTTL != 5*time.Second {
		t.Errorf("Expected cache ttl 5s, got %v", cfg.Normalization.CacheTTL)
	}
	if cfg.Input.Format != "logfmt" {
		t.Errorf("Expected input format logfmt, got %s", cfg.Input.Format)
	}
	if cfg.Grouping.Workers != 2 {
		t.Errorf("Expected 2 workers, got %d", cfg.Grouping.Workers)
	}
	if cfg.Grouping.MinLevel != "warn" {
		t.Errorf("Expected min level warn, got %s", cfg.Grouping.MinLevel)
	}
	if cfg.Output.DefaultFormat != "json" {
		t.Errorf("Expected output format json, got %s", cfg.Output.DefaultFormat)
	}
	if !cfg.Output.Verbose {
		t.Errorf("Expected verbose to be true")
	}
	if cfg.Grouping.MaxExamples != 3 {
		t.Errorf("Expected default max examples to survive, got %d", cfg.Grouping.MaxExamples)
	}
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "bad.yaml")
	content := "normalization:\n  rollouts:\n    some.key: 150\n"
	if err := os.WriteFile(configPath, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write test config file: %v", err)
	}

	_, err := NewLoader().LoadConfig(configPath)
	if err == nil || !strings.Contains(err.Error(), "configuration validation failed") {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	// Create a temporary config file with invalid YAML
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "invalid-config.yaml")

	invalidConfigContent := `version: "1.0"
normalization:
  rollout_id: "x"
  # Invalid YAML - missing closing quote
output:
  default_format: "json
  verbose: true
`

	err := os.WriteFile(configPath, []byte(invalidConfigContent), 0o600)
	if err != nil {
		t.Fatalf("Failed to write test config file: %v", err)
	}

	loader := NewLoader()
	_, err = loader.LoadConfig(configPath)
	if err == nil {
		t.Error("Expected error loading invalid YAML config, but got none")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	// Set environment variables
	envVars := map[string]string{
		"MSGNORM_NORMALIZATION_ROLLOUT_ID": "tenant-9",
		"MSGNORM_NORMALIZATION_ROLLOUTS":   "grouping.experiments.parameterization.uniq_id=30, other=100",
		"MSGNORM_OUTPUT_VERBOSE":           "true",
		"MSGNORM_GROUPING_WORKERS":         "16",
		"MSGNORM_GROUPING_TIMEOUT":         "2m",
		"MSGNORM_INPUT_FORMAT":             "json",
	}

	// Set environment variables
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	loader := NewLoader()
	cfg := DefaultConfig()

	err := loader.applyEnvOverrides(cfg)
	if err != nil {
		t.Fatalf("Failed to apply env overrides: %v", err)
	}

	// Check that environment variables were applied
	if cfg.Normalization.RolloutID != "tenant-9" {
		t.Errorf("Expected rollout id tenant-9, got %s", cfg.Normalization.RolloutID)
	}
	wantRollouts := map[string]int{
		"grouping.experiments.parameterization.uniq_id": 30,
		"other":                                         100,
	}
	for key, want := range wantRollouts {
		if got := cfg.Normalization.Rollouts[key]; got != want {
			t.Errorf("Expected rollout %s=%d, got %d", key, want, got)
		}
	}
	if !cfg.Output.Verbose {
		t.Errorf("Expected verbose to be true")
	}
	if cfg.Grouping.Workers != 16 {
		t.Errorf("Expected 16 workers, got %d", cfg.Grouping.Workers)
	}
	if cfg.Grouping.Timeout != 2*time.Minute {
		t.Errorf("Expected timeout 2m, got %v", cfg.Grouping.Timeout)
	}
	if cfg.Input.Format != "json" {
		t.Errorf("Expected input format json, got %s", cfg.Input.Format)
	}
}

func TestApplyEnvOverridesInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		envVar string
		value  string
	}{
		{"invalid int", "MSGNORM_GROUPING_WORKERS", "not-a-number"},
		{"invalid bool", "MSGNORM_OUTPUT_VERBOSE", "not-a-bool"},
		{"invalid duration", "MSGNORM_NORMALIZATION_CACHE_TTL", "not-a-duration"},
		{"rollout without percentage", "MSGNORM_NORMALIZATION_ROLLOUTS", "just-a-key"},
		{"rollout with bad percentage", "MSGNORM_NORMALIZATION_ROLLOUTS", "k=lots"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.envVar, tt.value)

			loader := NewLoader()
			cfg := DefaultConfig()

			err := loader.applyEnvOverrides(cfg)
			if err == nil {
				t.Error("Expected error for invalid env var value, but got none")
			}
		})
	}
}

func TestParseDuration(t *testing.T) {
	var duration time.Duration

	err := parseDuration("30s", &duration)
	if err != nil {
		t.Errorf("Failed to parse duration: %v", err)
	}
	if duration != 30*time.Second {
		t.Errorf("Expected 30s, got %v", duration)
	}

	err = parseDuration("invalid", &duration)
	if err == nil {
		t.Error("Expected error for invalid duration, but got none")
	}
}

func TestParseInt(t *testing.T) {
	var value int

	err := parseInt("42", &value)
	if err != nil {
		t.Errorf("Failed to parse int: %v", err)
	}
	if value != 42 {
		t.Errorf("Expected 42, got %d", value)
	}

	err = parseInt("not-a-number", &value)
	if err == nil {
		t.Error("Expected error for invalid int, but got none")
	}
}

func TestParseBool(t *testing.T) {
	var value bool

	err := parseBool("true", &value)
	if err != nil {
		t.Errorf("Failed to parse bool: %v", err)
	}
	if !value {
		t.Errorf("Expected true, got %v", value)
	}

	err = parseBool("false", &value)
	if err != nil {
		t.Errorf("Failed to parse bool: %v", err)
	}
	if value {
		t.Errorf("Expected false, got %v", value)
	}

	err = parseBool("not-a-bool", &value)
	if err == nil {
		t.Error("Expected error for invalid bool, but got none")
	}
}

func TestFindConfigFile(t *testing.T) {
	// Test when no config file exists
	_, found := FindConfigFile()
	if found {
		t.Error("Expected no config file to be found, but one was found")
	}

	// Create a temporary config file in current directory
	tempConfigPath := "./.msgnorm.yaml"
	err := os.WriteFile(tempConfigPath, []byte("version: 1.0"), 0o600)
	if err != nil {
		t.Fatalf("Failed to create temp config file: %v", err)
	}
	defer func() { _ = os.Remove(tempConfigPath) }()

	configPath, found := FindConfigFile()
	if !found {
		t.Error("Expected config file to be found, but none was found")
	}
	if configPath != tempConfigPath {
		t.Errorf("Expected config path %s, got %s", tempConfigPath, configPath)
	}
}

func TestFileExists(t *testing.T) {
	// Test with non-existent file
	if fileExists("/path/that/does/not/exist") {
		t.Error("Expected file to not exist, but fileExists returned true")
	}

	// Create a temporary file
	tempFile := filepath.Join(t.TempDir(), "test-file")
	err := os.WriteFile(tempFile, []byte("test"), 0o600)
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}

	if !fileExists(tempFile) {
		t.Error("Expected file to exist, but fileExists returned false")
	}
}

func TestValidateConfigPath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid yaml file",
			path:    "config.yaml",
			wantErr: false,
		},
		{
			name:    "valid yml file",
			path:    "config.yml",
			wantErr: false,
		},
		{
			name:    "path traversal attempt",
			path:    "../../../etc/passwd",
			wantErr: true,
			errMsg:  "path traversal not allowed",
		},
		{
			name:    "non-yaml file",
			path:    "config.txt",
			wantErr: true,
			errMsg:  "config file must have .yaml or .yml extension",
		},
		{
			name:    "system file access",
			path:    "/etc/passwd.yaml",
			wantErr: true,
			errMsg:  "access to system files not allowed",
		},
		{
			name:    "proc filesystem access",
			path:    "/proc/version.yaml",
			wantErr: true,
			errMsg:  "access to system files not allowed",
		},
		{
			name:    "relative path with valid extension",
			path:    "./configs/app.yaml",
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateConfigPath(tt.path)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error but got none")
				} else if tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("Expected error message to contain '%s', got '%s'", tt.errMsg, err.Error())
				}
			} else {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
			}
		})
	}
}
