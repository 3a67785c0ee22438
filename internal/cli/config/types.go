// Package config provides configuration management for the xmlviewls CLI.
//
// It extends the shared ServerConfig from internal/config with CLI-only
// fields and layers defaults, the config file, environment variables and
// flags with koanf.
package config

import (
	sharedcfg "github.com/leapstack-labs/xmlviewls/internal/config"
)

// LintConfig is an alias for the shared lint configuration.
type LintConfig = sharedcfg.LintConfig

// Config holds all CLI configuration options.
type Config struct {
	sharedcfg.ServerConfig `koanf:",squash"`

	Verbose      bool   `koanf:"verbose"`
	OutputFormat string `koanf:"output"`

	// ProjectRoot is the directory relative paths are resolved against
	ProjectRoot string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultOutput = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	EnvPrefix     = "XMLVIEWLS_"
)
