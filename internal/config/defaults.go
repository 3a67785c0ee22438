package config

import (
	"os"
	"path/filepath"
)

// Default configuration values.
const (
	DefaultFramework = "SAPUI5"
	DefaultLogLevel  = "info"
	AppDirName       = "xmlviewls"
)

// DefaultModelDir returns the model directory used when none is configured.
func DefaultModelDir() string {
	return filepath.Join(baseCacheDir(), "models")
}

// DefaultCachePath returns the model cache path used when none is configured.
func DefaultCachePath() string {
	return filepath.Join(baseCacheDir(), "models.db")
}

func baseCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, AppDirName)
	}
	return "." + AppDirName
}

// ApplyDefaults applies default values to a ServerConfig.
func ApplyDefaults(c *ServerConfig) {
	if c == nil {
		return
	}
	if c.ModelDir == "" {
		c.ModelDir = DefaultModelDir()
	}
	if c.DefaultFramework == "" {
		c.DefaultFramework = DefaultFramework
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}
