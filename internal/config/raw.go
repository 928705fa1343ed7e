package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ValidationError ties a config error to the key that caused it and, when
// known, the file position that set it.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" {
		return fmt.Sprintf("%s: %s: %v", e.Source.File, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

// UnmarshalTOML accepts the same shapes as UnmarshalYAML.
func (l *IncludeList) UnmarshalTOML(value any) error {
	switch v := value.(type) {
	case string:
		*l = []string{v}
		return nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, s)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

// RawConfig is one config file as written: unset keys stay nil so files can
// be layered.
type RawConfig struct {
	Include IncludeList `yaml:"include" toml:"include"`

	KeyboardLayout           *string `yaml:"keyboard_layout" toml:"keyboard_layout"`
	StartupCommand           *string `yaml:"startup_command" toml:"startup_command"`
	LogLevel                 *string `yaml:"log_level" toml:"log_level"`
	CursorThemeSize          *int    `yaml:"cursor_theme_size" toml:"cursor_theme_size"`
	RepeatRate               *int    `yaml:"repeat_rate" toml:"repeat_rate"`
	RepeatDelay              *int    `yaml:"repeat_delay" toml:"repeat_delay"`
	ReconcileIntervalSeconds *int    `yaml:"reconcile_interval_seconds" toml:"reconcile_interval_seconds"`
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c
	out.Include = nil

	if overlay.KeyboardLayout != nil {
		out.KeyboardLayout = overlay.KeyboardLayout
	}
	if overlay.StartupCommand != nil {
		out.StartupCommand = overlay.StartupCommand
	}
	if overlay.LogLevel != nil {
		out.LogLevel = overlay.LogLevel
	}
	if overlay.CursorThemeSize != nil {
		out.CursorThemeSize = overlay.CursorThemeSize
	}
	if overlay.RepeatRate != nil {
		out.RepeatRate = overlay.RepeatRate
	}
	if overlay.RepeatDelay != nil {
		out.RepeatDelay = overlay.RepeatDelay
	}
	if overlay.ReconcileIntervalSeconds != nil {
		out.ReconcileIntervalSeconds = overlay.ReconcileIntervalSeconds
	}
	return out
}

// BuildEffectiveConfig applies raw on top of the defaults.
func BuildEffectiveConfig(raw RawConfig) *Config {
	cfg := DefaultConfig()
	if raw.KeyboardLayout != nil {
		cfg.KeyboardLayout = *raw.KeyboardLayout
	}
	if raw.StartupCommand != nil {
		cfg.StartupCommand = *raw.StartupCommand
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = *raw.LogLevel
	}
	if raw.CursorThemeSize != nil {
		cfg.CursorThemeSize = *raw.CursorThemeSize
	}
	if raw.RepeatRate != nil {
		cfg.RepeatRate = *raw.RepeatRate
	}
	if raw.RepeatDelay != nil {
		cfg.RepeatDelay = *raw.RepeatDelay
	}
	if raw.ReconcileIntervalSeconds != nil {
		cfg.ReconcileIntervalSeconds = *raw.ReconcileIntervalSeconds
	}
	return cfg
}
