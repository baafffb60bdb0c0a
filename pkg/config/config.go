// Package config provides configuration loading, validation, and encrypted
// secrets management for langops.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Project config constants.
const (
	ProjectConfigFilename = "config.yaml"
	ProjectConfigDir      = ".langops"
)

// Secret name constants for provider API keys.
const (
	SecretAnthropicAPIKey = "ANTHROPIC_API_KEY"
	SecretOpenAIAPIKey    = "OPENAI_API_KEY"
	SecretGeminiAPIKey    = "GEMINI_API_KEY"
)

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// MetricsConfig holds Prometheus settings.
type MetricsConfig struct {
	Enabled       bool   `yaml:"enabled"`
	PrometheusURL string `yaml:"prometheus_url"`
}

// RetryConfig holds retry policy overrides. Zero values fall back to the
// built-in defaults.
type RetryConfig struct {
	MaxAttempts    int     `yaml:"max_attempts"`
	InitialDelayMS int     `yaml:"initial_delay_ms"`
	MaxDelayMS     int     `yaml:"max_delay_ms"`
	BackoffFactor  float64 `yaml:"backoff_factor"`
}

// Config represents the main langops configuration.
type Config struct {
	ProfilesPath string         `yaml:"profiles"`
	Database     DatabaseConfig `yaml:"database"`
	Metrics      MetricsConfig  `yaml:"metrics"`
	Retry        RetryConfig    `yaml:"retry"`
	OllamaHost   string         `yaml:"ollama_host"`
}

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} references with environment values.
// Unset variables expand to the empty string.
func expandEnvVars(data []byte) []byte {
	return envVarPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		name := envVarPattern.FindSubmatch(match)[1]
		return []byte(os.Getenv(string(name)))
	})
}

// DefaultConfig returns a config with sensible defaults for a project dir.
func DefaultConfig(projectDir string) *Config {
	return &Config{
		ProfilesPath: filepath.Join(projectDir, ProjectConfigDir, "profiles.yaml"),
		Database: DatabaseConfig{
			Path: filepath.Join(projectDir, ProjectConfigDir, "langops.db"),
		},
		Metrics: MetricsConfig{
			Enabled:       false,
			PrometheusURL: "http://localhost:9090",
		},
	}
}

// LoadConfig reads the project config from projectDir/.langops/config.yaml,
// applying env var expansion and defaults. A missing file returns defaults.
func LoadConfig(projectDir string) (*Config, error) {
	cfg := DefaultConfig(projectDir)

	path := filepath.Join(projectDir, ProjectConfigDir, ProjectConfigFilename)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(expandEnvVars(data), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config in %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks the loaded configuration for obvious mistakes.
func (c *Config) Validate() error {
	if c.ProfilesPath == "" {
		return fmt.Errorf("profiles path must not be empty")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database path must not be empty")
	}
	if c.Retry.MaxAttempts < 0 {
		return fmt.Errorf("retry max_attempts must not be negative")
	}
	if c.Retry.BackoffFactor < 0 {
		return fmt.Errorf("retry backoff_factor must not be negative")
	}
	return nil
}
