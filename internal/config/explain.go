package config

import "fmt"

// Keys lists every configuration key, in documentation order.
var Keys = []string{
	"keyboard_layout",
	"startup_command",
	"log_level",
	"cursor_theme_size",
	"repeat_rate",
	"repeat_delay",
	"reconcile_interval_seconds",
}

// Explain returns the effective value of key and where it came from.
func Explain(res *LoadResult, key string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if key == "" {
		return nil, Source{}, fmt.Errorf("key is empty")
	}

	value, err := lookupValue(res.Config, key)
	if err != nil {
		return nil, Source{}, err
	}
	if src, ok := res.Sources[key]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

func lookupValue(cfg *Config, key string) (any, error) {
	switch key {
	case "keyboard_layout":
		return cfg.KeyboardLayout, nil
	case "startup_command":
		return cfg.StartupCommand, nil
	case "log_level":
		return cfg.LogLevel, nil
	case "cursor_theme_size":
		return cfg.CursorThemeSize, nil
	case "repeat_rate":
		return cfg.RepeatRate, nil
	case "repeat_delay":
		return cfg.RepeatDelay, nil
	case "reconcile_interval_seconds":
		return cfg.ReconcileIntervalSeconds, nil
	default:
		return nil, fmt.Errorf("unknown key: %s", key)
	}
}

// String renders a source for humans, e.g. "config.yaml:3:12" or "defaults".
func (s Source) String() string {
	switch {
	case s.Kind == SourceFile && s.Line > 0:
		return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
	case s.Kind == SourceFile:
		return s.File
	case s.Name != "":
		return s.Name
	default:
		return string(s.Kind)
	}
}
