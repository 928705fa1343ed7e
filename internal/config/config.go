package config

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// LayoutEnvVar is read by the keymap compiler when a keyboard attaches.
const LayoutEnvVar = "XKB_DEFAULT_LAYOUT"

// Config holds the effective configuration.
type Config struct {
	// KeyboardLayout is an XKB layout name such as "us" or "de". Empty
	// leaves the environment untouched.
	KeyboardLayout string `yaml:"keyboard_layout,omitempty" toml:"keyboard_layout,omitempty" json:"keyboard_layout,omitempty"`
	// StartupCommand is run through /bin/sh -c once the backend is up.
	StartupCommand string `yaml:"startup_command,omitempty" toml:"startup_command,omitempty" json:"startup_command,omitempty"`
	LogLevel       string `yaml:"log_level" toml:"log_level" json:"log_level"`

	CursorThemeSize int `yaml:"cursor_theme_size" toml:"cursor_theme_size" json:"cursor_theme_size"`

	// RepeatRate is in keys per second, RepeatDelay in milliseconds.
	RepeatRate  int `yaml:"repeat_rate" toml:"repeat_rate" json:"repeat_rate"`
	RepeatDelay int `yaml:"repeat_delay" toml:"repeat_delay" json:"repeat_delay"`

	// ReconcileIntervalSeconds controls how often the daemon checks the
	// window state for drift. 0 disables the check.
	ReconcileIntervalSeconds int `yaml:"reconcile_interval_seconds" toml:"reconcile_interval_seconds" json:"reconcile_interval_seconds"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:                 "info",
		CursorThemeSize:          24,
		RepeatRate:               25,
		RepeatDelay:              600,
		ReconcileIntervalSeconds: 10,
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return &ValidationError{Path: "log_level", Err: err}
	}
	if strings.ContainsAny(c.KeyboardLayout, " \t\n") {
		return &ValidationError{Path: "keyboard_layout", Err: fmt.Errorf("keyboard_layout must not contain whitespace")}
	}
	if c.CursorThemeSize <= 0 {
		return &ValidationError{Path: "cursor_theme_size", Err: fmt.Errorf("cursor_theme_size must be > 0")}
	}
	if c.RepeatRate <= 0 {
		return &ValidationError{Path: "repeat_rate", Err: fmt.Errorf("repeat_rate must be > 0")}
	}
	if c.RepeatDelay <= 0 {
		return &ValidationError{Path: "repeat_delay", Err: fmt.Errorf("repeat_delay must be > 0")}
	}
	if c.ReconcileIntervalSeconds < 0 {
		return &ValidationError{Path: "reconcile_interval_seconds", Err: fmt.Errorf("reconcile_interval_seconds must be >= 0")}
	}
	return nil
}

// ParseLogLevel maps a config log level to a slog level.
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log_level must be one of: debug, info, warn, error")
	}
}

// SlogLevel returns the configured level, falling back to info.
func (c *Config) SlogLevel() slog.Level {
	level, _ := ParseLogLevel(c.LogLevel)
	return level
}

// ReconcileInterval returns the drift check period.
func (c *Config) ReconcileInterval() time.Duration {
	return time.Duration(c.ReconcileIntervalSeconds) * time.Second
}

// ApplyKeyboardLayout exports the keyboard layout so keymaps compiled after
// this call pick it up. It does nothing when no layout is configured.
func (c *Config) ApplyKeyboardLayout() error {
	if c.KeyboardLayout == "" {
		return nil
	}
	if err := os.Setenv(LayoutEnvVar, c.KeyboardLayout); err != nil {
		return fmt.Errorf("failed to set %s: %w", LayoutEnvVar, err)
	}
	return nil
}

// Save writes the configuration to path, creating the directory. The format
// follows the extension, as when loading: TOML for .toml, YAML otherwise.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	var data []byte
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		data = buf.Bytes()
	} else {
		out, err := yaml.Marshal(c)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		data = out
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
