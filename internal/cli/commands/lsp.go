package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	intconfig "github.com/leapstack-labs/xmlviewls/internal/config"
	"github.com/leapstack-labs/xmlviewls/internal/lsp"
)

// NewLSPCommand creates the lsp command. version is reported to clients.
func NewLSPCommand(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		Long: `Start the LSP server for IDE integration.

The server communicates over stdin/stdout using JSON-RPC and logs to
stderr. The workspace root is taken from the client's initialize request;
an xmlviewls.yaml found there overrides the command-line configuration.`,
		Example: `  # Start LSP server (usually called by an IDE)
  xmlviewls lsp

  # Use a local model directory
  xmlviewls lsp --model-dir ./models`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLSP(cmd, version)
		},
	}

	return cmd
}

func runLSP(cmd *cobra.Command, version string) error {
	cfg := getConfig()

	// Editor settings may change the level at runtime.
	level := new(slog.LevelVar)
	level.Set(intconfig.ParseLogLevel(cfg.LogLevel))
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	server := lsp.NewServer(os.Stdin, os.Stdout, lsp.Options{
		Logger:   logger,
		Level:    level,
		Defaults: cfg.ServerConfig,
		Version:  version,
	})
	return server.Run(cmd.Context())
}
