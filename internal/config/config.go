// Package config loads plugin settings from TOML or YAML files with
// environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds every tunable of the plugin. The zero value is not usable;
// start from Default.
type Config struct {
	// Highlight is the group ghost text is drawn with.
	Highlight string `toml:"highlight" yaml:"highlight"`

	// Namespace scopes the overlay marks the plugin creates.
	Namespace string `toml:"namespace" yaml:"namespace"`

	// Nudge pokes attached tooling after a commit so stale popups close.
	Nudge bool `toml:"nudge" yaml:"nudge"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level" yaml:"log_level"`

	// LogFile receives log output; empty logs to stderr.
	LogFile string `toml:"log_file" yaml:"log_file"`

	// HookPath points at an optional Lua script that can rewrite
	// suggestions before they render.
	HookPath string `toml:"hook" yaml:"hook"`

	// DebounceMS is how long the config watcher waits after the last
	// write before reloading.
	DebounceMS int `toml:"reload_debounce_ms" yaml:"reload_debounce_ms"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Highlight:  "FittenSuggestion",
		Namespace:  "fittencode",
		Nudge:      true,
		LogLevel:   "info",
		DebounceMS: 100,
	}
}

// ReloadDebounce returns the watcher debounce as a duration.
func (c Config) ReloadDebounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// ParseError reports a malformed configuration file.
type ParseError struct {
	Path    string
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError reports a config field holding an unusable value.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid config: %s: %s", e.Field, e.Message)
}

// Load reads the file at path over the defaults, applies environment
// overrides and validates the result. A missing file is not an error;
// defaults plus environment apply. An empty path skips the file entirely.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return &ParseError{Path: path, Message: err.Error(), Err: err}
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return &ParseError{Path: path, Message: err.Error(), Err: err}
		}
	default:
		return &ValidationError{Field: "path", Message: fmt.Sprintf("unsupported config format %q", ext)}
	}
	return nil
}

// Validate checks field values. Load calls it; callers constructing a
// Config by hand should too.
func (c Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Field: "log_level", Message: fmt.Sprintf("unknown level %q", c.LogLevel)}
	}
	if c.DebounceMS < 0 {
		return &ValidationError{Field: "reload_debounce_ms", Message: "must not be negative"}
	}
	if c.Namespace == "" {
		return &ValidationError{Field: "namespace", Message: "must not be empty"}
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("FITTENCODE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("FITTENCODE_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("FITTENCODE_HIGHLIGHT"); v != "" {
		cfg.Highlight = v
	}
	if v := os.Getenv("FITTENCODE_HOOK"); v != "" {
		cfg.HookPath = v
	}
	if v := os.Getenv("FITTENCODE_NUDGE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Nudge = b
		}
	}
}
