// Package config provides shared configuration types for xmlviewls.
// This package is decoupled from CLI concerns and is used by the LSP server
// and the CLI commands alike.
package config

import (
	"fmt"

	"github.com/leapstack-labs/xmlviewls/pkg/core"
	"github.com/leapstack-labs/xmlviewls/pkg/lint"
)

// LintConfig holds lint rule configuration.
type LintConfig struct {
	// Disabled contains rule IDs to disable
	Disabled []string `koanf:"disabled"`

	// Severity maps rule ID to severity override (error, warning, info, hint)
	Severity map[string]string `koanf:"severity"`
}

// ToLint converts the configuration into a lint.Config. Unknown severity
// names are reported as errors.
func (c *LintConfig) ToLint() (*lint.Config, error) {
	cfg := lint.NewConfig()
	if c == nil {
		return cfg, nil
	}
	for _, id := range c.Disabled {
		cfg.Disable(id)
	}
	for id, name := range c.Severity {
		sev, ok := core.ParseSeverity(name)
		if !ok {
			return nil, fmt.Errorf("lint.severity.%s: unknown severity %q", id, name)
		}
		cfg.SetSeverity(id, sev)
	}
	return cfg, nil
}

// Merge returns c overlaid with other. Rules disabled in either stay
// disabled and severities from other win.
func (c *LintConfig) Merge(other *LintConfig) *LintConfig {
	out := &LintConfig{Severity: make(map[string]string)}
	for _, src := range []*LintConfig{c, other} {
		if src == nil {
			continue
		}
		out.Disabled = append(out.Disabled, src.Disabled...)
		for id, sev := range src.Severity {
			out.Severity[id] = sev
		}
	}
	return out
}

// ServerConfig holds the project configuration read from xmlviewls.yaml.
type ServerConfig struct {
	// ModelDir is the directory holding framework model documents
	ModelDir string `koanf:"model_dir"`

	// CachePath is the SQLite model cache; empty disables caching
	CachePath string `koanf:"cache_path"`

	// DefaultFramework is used when no ui5.yaml names one
	DefaultFramework string `koanf:"default_framework"`

	// DefaultVersion is used when neither descriptor nor ui5.yaml names one;
	// empty selects the newest available version
	DefaultVersion string `koanf:"default_version"`

	LogLevel string      `koanf:"log_level"`
	Watch    bool        `koanf:"watch"`
	Lint     *LintConfig `koanf:"lint"`
}
