package config

// SampleConfig returns a fully documented configuration file.
func SampleConfig() string {
	return `# msgnorm configuration
version: "1.0"

normalization:
  # Rollout percentage per experimental pattern group (0 = off, 100 = on).
  rollouts:
    grouping.experiments.parameterization.uniq_id: 0
  # Identifier hashed into a rollout bucket; use a project or tenant id.
  rollout_id: "default"
  # Optional YAML file with a top-level "rollouts:" map, reloaded on change.
  rollouts_file: ""
  # How long rollout lookups are memoized.
  cache_ttl: 30s
  cache_size: 256

input:
  # auto, json, logfmt or text
  format: auto
  max_lines: 1000000
  max_line_length: 1048576

grouping:
  workers: 4
  # Distinct raw messages kept per group.
  max_examples: 3
  # Groups shown in reports (0 = all).
  top: 20
  timeout: 60s
  # Ignore entries below this level: debug, info, warn, error, fatal.
  min_level: ""

output:
  # text, json, markdown, csv or prompt
  default_format: text
  # auto, always or never
  color_mode: auto
  verbose: false
  timestamp_format: "2006-01-02 15:04:05"
`
}

// MinimalSampleConfig returns a configuration with only essential settings.
func MinimalSampleConfig() string {
	return `version: "1.0"
normalization:
  rollouts:
    grouping.experiments.parameterization.uniq_id: 0
  rollout_id: "default"
output:
  default_format: text
`
}
