package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds harness-wide settings loaded from .envgauge/config.yaml
type Config struct {
	// Build controls docker image builds
	Build BuildConfig `yaml:"build"`

	// Tests controls per-test defaults
	Tests TestConfig `yaml:"tests"`

	// Paths controls where rubrics and reports live
	Paths PathConfig `yaml:"paths"`
}

// BuildConfig controls the docker build step
type BuildConfig struct {
	// TimeoutSeconds bounds a docker build (default 3600)
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// DataDir is where repository source trees live (data/<repo>)
	DataDir string `yaml:"data_dir"`
}

// TestConfig holds per-test defaults
type TestConfig struct {
	// DefaultTimeoutSeconds applies when a rubric test omits timeout (default 30)
	DefaultTimeoutSeconds int `yaml:"default_timeout_seconds"`

	// RequireExitZero makes output_contains demand exit status 0
	// in addition to the substring match
	RequireExitZero bool `yaml:"require_exit_zero"`
}

// PathConfig holds directory conventions
type PathConfig struct {
	RubricDir          string `yaml:"rubric_dir"`
	ReportsByModelDir  string `yaml:"reports_by_model_dir"`
	ReportsByRepoDir   string `yaml:"reports_by_repo_dir"`
	BaselineDir        string `yaml:"baseline_dir"`
	DockerfileBasename string `yaml:"dockerfile_basename"`
}

// DefaultConfigPath is where Load looks when no path is given
const DefaultConfigPath = ".envgauge/config.yaml"

// Default returns the harness defaults
func Default() *Config {
	return &Config{
		Build: BuildConfig{
			TimeoutSeconds: 3600,
			DataDir:        "data",
		},
		Tests: TestConfig{
			DefaultTimeoutSeconds: 30,
			RequireExitZero:       true,
		},
		Paths: PathConfig{
			RubricDir:          "rubrics/manual",
			ReportsByModelDir:  "reports-by-model",
			ReportsByRepoDir:   "reports-by-repo",
			BaselineDir:        "ENVGYM-baseline",
			DockerfileBasename: "envgym.dockerfile",
		},
	}
}

// Load reads a Config from a YAML file, filling unset fields with defaults
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault loads the config at path and falls back to defaults
// when the file does not exist
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// Save writes a Config to a YAML file
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks the config for nonsensical values
func (c *Config) Validate() error {
	if c.Build.TimeoutSeconds <= 0 {
		return fmt.Errorf("build.timeout_seconds must be positive, got %d", c.Build.TimeoutSeconds)
	}
	if c.Tests.DefaultTimeoutSeconds <= 0 {
		return fmt.Errorf("tests.default_timeout_seconds must be positive, got %d", c.Tests.DefaultTimeoutSeconds)
	}
	return nil
}
