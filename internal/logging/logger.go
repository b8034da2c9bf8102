// Package logging provides categorized structured logging for codelinks.
// Every category is a named child of one zap root logger; until Initialize
// is called all categories log nowhere.
package logging

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot     Category = "boot"     // Startup and configuration
	CategoryDiscover Category = "discover" // Source discovery
	CategorySource   Category = "source"   // Comment extraction
	CategoryAnalyse  Category = "analyse"  // Marker analysis
	CategoryGit      Category = "git"      // Repository metadata
	CategoryExport   Category = "export"   // JSON, RST and SQLite writers
	CategoryWatch    Category = "watch"    // File watching
)

// Options configures the root logger.
type Options struct {
	Level string // debug, info, warn, error
	JSON  bool
	// Categories disables a category when mapped to false.
	Categories map[string]bool
}

var (
	mu       sync.RWMutex
	root     = zap.NewNop()
	loggers  = make(map[Category]*zap.Logger)
	disabled = make(map[Category]bool)
)

// Initialize builds the root logger. It writes to stderr so command output on
// stdout stays machine readable.
func Initialize(opts Options) (*zap.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	if !opts.JSON {
		cfg.Encoding = "console"
		cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.DisableStacktrace = level > zapcore.DebugLevel

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	off := make(map[Category]bool)
	for cat, enabled := range opts.Categories {
		if !enabled {
			off[Category(cat)] = true
		}
	}
	setRoot(logger, off)
	return logger, nil
}

// SetLogger replaces the root logger, e.g. with zaptest or zap.NewNop in tests.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	setRoot(l, nil)
}

func setRoot(l *zap.Logger, off map[Category]bool) {
	mu.Lock()
	defer mu.Unlock()
	root = l
	loggers = make(map[Category]*zap.Logger)
	disabled = off
	if disabled == nil {
		disabled = make(map[Category]bool)
	}
}

// ParseLevel maps a level name to a zap level. Empty means info.
func ParseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	}
	return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", s)
}

// Get returns (or creates) the logger for a category.
func Get(category Category) *zap.Logger {
	mu.RLock()
	l, ok := loggers[category]
	mu.RUnlock()
	if ok {
		return l
	}

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}
	if disabled[category] {
		l = zap.NewNop()
	} else {
		l = root.Named(string(category))
	}
	loggers[category] = l
	return l
}

// Sync flushes the root logger.
func Sync() {
	mu.RLock()
	l := root
	mu.RUnlock()
	_ = l.Sync()
}
