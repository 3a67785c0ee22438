package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/xmlviewls/internal/cli/config"
	"github.com/leapstack-labs/xmlviewls/internal/cli/output"
	intconfig "github.com/leapstack-labs/xmlviewls/internal/config"
	"github.com/leapstack-labs/xmlviewls/internal/modelcache"
	"github.com/leapstack-labs/xmlviewls/internal/modelstore"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Store    *modelstore.Store
	Cache    *modelcache.Cache // nil when caching is disabled
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with a model store and renderer.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cmdCtx := NewCommandContextWithoutStore(cmd)

	var cache modelstore.Cache
	if path := cmdCtx.Cfg.CachePath; path != "" {
		c, err := modelcache.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open model cache: %w", err)
		}
		cmdCtx.Cache = c
		cache = c
	}

	cmdCtx.Store = modelstore.New(modelstore.NewDirLoader(cmdCtx.Cfg.ModelDir), cache, cmdCtx.Logger)

	cleanup := func() {
		if cmdCtx.Cache != nil {
			_ = cmdCtx.Cache.Close()
		}
	}
	return cmdCtx, cleanup, nil
}

// NewCommandContextWithoutStore creates a CommandContext without a model store.
// Useful for commands that never load a model.
func NewCommandContextWithoutStore(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// Helper functions shared across commands

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	cfg := &config.Config{
		ServerConfig: intconfig.ServerConfig{
			ModelDir:         getEnvOrDefault("XMLVIEWLS_MODEL_DIR", intconfig.DefaultModelDir()),
			CachePath:        getEnvOrDefault("XMLVIEWLS_CACHE_PATH", intconfig.DefaultCachePath()),
			DefaultFramework: getEnvOrDefault("XMLVIEWLS_DEFAULT_FRAMEWORK", intconfig.DefaultFramework),
			DefaultVersion:   os.Getenv("XMLVIEWLS_DEFAULT_VERSION"),
		},
		Verbose:      os.Getenv("XMLVIEWLS_VERBOSE") == "true",
		OutputFormat: os.Getenv("XMLVIEWLS_OUTPUT"),
	}
	intconfig.ApplyDefaults(&cfg.ServerConfig)
	return cfg
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// rendererFor returns r, or a renderer for format when the command's own
// --format flag overrides the global output mode.
func rendererFor(cmd *cobra.Command, r *output.Renderer, format string) *output.Renderer {
	if format == "" {
		return r
	}
	return output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(format))
}
