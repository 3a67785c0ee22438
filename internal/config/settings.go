package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"

	"github.com/leapstack-labs/xmlviewls/pkg/completion"
	"github.com/leapstack-labs/xmlviewls/pkg/lint"
)

// SettingsSection is the section name requested from the editor.
const SettingsSection = "xmlviewls"

// CodeAssistSettings control which model entries completion offers.
type CodeAssistSettings struct {
	Deprecated   bool `koanf:"deprecated"`
	Experimental bool `koanf:"experimental"`
}

// LoggingSettings control the server log level.
type LoggingSettings struct {
	Level string `koanf:"level"`
}

// Settings are the editor-side settings of one document or the workspace.
type Settings struct {
	CodeAssist CodeAssistSettings `koanf:"codeAssist"`
	Logging    LoggingSettings    `koanf:"logging"`
	Lint       LintConfig         `koanf:"lint"`
}

// DefaultSettings returns the settings used before the editor sends any.
func DefaultSettings() Settings {
	return Settings{Logging: LoggingSettings{Level: DefaultLogLevel}}
}

// DecodeSettings decodes a settings object as sent by the editor. Both the
// bare object and one wrapped in the "xmlviewls" section are accepted.
func DecodeSettings(raw map[string]any) (Settings, error) {
	if inner, ok := raw[SettingsSection].(map[string]any); ok {
		raw = inner
	}

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(map[string]any{
		"logging.level": DefaultLogLevel,
	}, "."), nil); err != nil {
		return Settings{}, fmt.Errorf("failed to load defaults: %w", err)
	}
	if err := k.Load(confmap.Provider(raw, ""), nil); err != nil {
		return Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}

	var s Settings
	if err := k.Unmarshal("", &s); err != nil {
		return Settings{}, fmt.Errorf("unable to decode settings: %w", err)
	}
	return s, nil
}

// Completion returns the completion settings.
func (s Settings) Completion() completion.Settings {
	return completion.Settings{
		IncludeDeprecated:   s.CodeAssist.Deprecated,
		IncludeExperimental: s.CodeAssist.Experimental,
	}
}

// LintConfig returns the lint configuration. Invalid severities fall back to
// the rule defaults.
func (s Settings) LintConfig() *lint.Config {
	return s.LintConfigOver(nil)
}

// LintConfigOver returns the lint configuration of project overlaid with the
// editor settings.
func (s Settings) LintConfigOver(project *LintConfig) *lint.Config {
	cfg, err := project.Merge(&s.Lint).ToLint()
	if err != nil {
		return lint.NewConfig()
	}
	return cfg
}

// LogLevel returns the configured log level, defaulting to info.
func (s Settings) LogLevel() slog.Level {
	return ParseLogLevel(s.Logging.Level)
}

// ParseLogLevel converts a level name to a slog.Level. Unknown names map to
// info; "trace" and "verbose" map to debug.
func ParseLogLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace", "verbose", "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "off":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
