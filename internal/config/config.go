package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is looked up in the working directory when no --config is given.
const DefaultFileName = "codelinks.yaml"

// Config holds all codelinks configuration.
type Config struct {
	// Project name, used as the default RST title.
	Project string `yaml:"project"`

	// Source discovery
	Source SourceConfig `yaml:"source"`

	// Marker analysis
	Analyse AnalyseConfig `yaml:"analyse"`

	// Output files
	Output OutputConfig `yaml:"output"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// OutputConfig configures where results are written.
type OutputConfig struct {
	// Dir receives marked_content.json.
	Dir string `yaml:"dir"`
	// SQLitePath, when set, also stores results in an SQLite database.
	SQLitePath string `yaml:"sqlite_path"`
	// RemoteURLField is the need option written by write-rst.
	RemoteURLField string `yaml:"remote_url_field"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Project: "codelinks",
		Source:  DefaultSourceConfig(),
		Analyse: DefaultAnalyseConfig(),
		Output: OutputConfig{
			Dir:            "output",
			RemoteURLField: "remote-url",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the defaults.
// A relative source.src_dir read from the file is resolved against the file's
// directory. Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
		cfg.resolvePaths(filepath.Dir(path))
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// resolvePaths joins paths that are relative to the config file onto base.
func (c *Config) resolvePaths(base string) {
	if c.Source.SrcDir != "" && !filepath.IsAbs(c.Source.SrcDir) {
		c.Source.SrcDir = filepath.Join(base, c.Source.SrcDir)
	}
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	if dir := os.Getenv("CODELINKS_SRC_DIR"); dir != "" {
		c.Source.SrcDir = dir
	}
	if dir := os.Getenv("CODELINKS_OUTDIR"); dir != "" {
		c.Output.Dir = dir
	}
	if path := os.Getenv("CODELINKS_SQLITE"); path != "" {
		c.Output.SQLitePath = path
	}
	if level := os.Getenv("CODELINKS_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if env := os.Getenv("CODELINKS_WORKERS"); env != "" {
		v, err := strconv.Atoi(env)
		if err != nil || v <= 0 {
			return fmt.Errorf("invalid CODELINKS_WORKERS %q: must be a positive integer", env)
		}
		c.Analyse.Workers = v
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	var errs []error
	if c.Source.SrcDir == "" {
		errs = append(errs, errors.New("source.src_dir must not be empty"))
	}
	if c.Output.Dir == "" {
		errs = append(errs, errors.New("output.dir must not be empty"))
	}
	if err := c.Analyse.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
