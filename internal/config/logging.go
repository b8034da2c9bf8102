package config

import "codelinks/internal/logging"

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level      string          `yaml:"level" json:"level,omitempty"`           // debug, info, warn, error
	JSON       bool            `yaml:"json" json:"json,omitempty"`             // structured output instead of console
	Categories map[string]bool `yaml:"categories" json:"categories,omitempty"` // Per-category toggles
}

// IsCategoryEnabled returns whether logging is enabled for a category.
// Categories are enabled unless explicitly set to false.
func (c *LoggingConfig) IsCategoryEnabled(category string) bool {
	enabled, exists := c.Categories[category]
	return !exists || enabled
}

// Validate checks the log level.
func (c *LoggingConfig) Validate() error {
	_, err := logging.ParseLevel(c.Level)
	return err
}

// Options converts the configuration for logging.Initialize.
func (c *LoggingConfig) Options() logging.Options {
	return logging.Options{Level: c.Level, JSON: c.JSON, Categories: c.Categories}
}
