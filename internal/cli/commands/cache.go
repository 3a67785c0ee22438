package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/xmlviewls/internal/cli/output"
)

// ErrCacheDisabled is returned by cache commands when cache_path is empty.
var ErrCacheDisabled = errors.New("model cache is disabled (cache_path is empty)")

// NewCacheCommand creates the cache command group.
func NewCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the model cache",
		Long: `Inspect and manage the SQLite cache of built framework models.

The cache lives at cache_path (see xmlviewls.yaml). Models are cached the
first time a view or the language server needs them.`,
	}

	cmd.AddCommand(newCacheListCommand())
	cmd.AddCommand(newCachePurgeCommand())
	cmd.AddCommand(newCacheWarmCommand())
	return cmd
}

// CacheEntryJSON is the JSON form of a cached model.
type CacheEntryJSON struct {
	ID        string    `json:"id"`
	Framework string    `json:"framework"`
	Version   string    `json:"version"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

func newCacheListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()
			if cmdCtx.Cache == nil {
				return ErrCacheDisabled
			}

			entries, err := cmdCtx.Cache.List(cmd.Context())
			if err != nil {
				return err
			}

			r := cmdCtx.Renderer
			if r.EffectiveMode() == output.ModeJSON {
				out := make([]CacheEntryJSON, 0, len(entries))
				for _, e := range entries {
					out = append(out, CacheEntryJSON{
						ID:        e.ID,
						Framework: e.Key.Framework,
						Version:   e.Key.Version,
						SizeBytes: e.SizeBytes,
						CreatedAt: e.CreatedAt,
					})
				}
				return r.JSON(out)
			}

			if len(entries) == 0 {
				r.Println("(no cached models)")
				return nil
			}

			t := table.NewWriter()
			t.SetOutputMirror(r.Writer())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Framework", "Version", "Size", "Cached"})
			for _, e := range entries {
				t.AppendRow(table.Row{e.Key.Framework, e.Key.Version, formatBytes(e.SizeBytes), e.CreatedAt.Format(time.DateTime)})
			}
			if r.EffectiveMode() == output.ModeMarkdown {
				t.RenderMarkdown()
				r.Println("")
			} else {
				t.Render()
			}
			r.Printf("(%d models)\n", len(entries))
			return nil
		},
	}
}

func newCachePurgeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Remove every cached model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()
			if cmdCtx.Cache == nil {
				return ErrCacheDisabled
			}

			n, err := cmdCtx.Cache.Purge(cmd.Context())
			if err != nil {
				return err
			}
			cmdCtx.Renderer.Success(fmt.Sprintf("Removed %d cached models", n))
			return nil
		},
	}
}

func newCacheWarmCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "warm [version...]",
		Short: "Build models and store them in the cache",
		Long: `Build the given versions of the configured framework and store them
in the cache. Without arguments the configured default version is built.`,
		Example: `  xmlviewls cache warm 1.71.49 1.84.0
  xmlviewls cache warm --framework OpenUI5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()
			if cmdCtx.Cache == nil {
				return ErrCacheDisabled
			}

			versions := args
			if len(versions) == 0 {
				versions = []string{cmdCtx.Cfg.DefaultVersion}
			}

			framework := cmdCtx.Cfg.DefaultFramework
			for _, v := range versions {
				m, err := cmdCtx.Store.Resolve(cmd.Context(), framework, v)
				if err != nil {
					return err
				}
				cmdCtx.Renderer.Success(fmt.Sprintf("Cached %s (%d classes)", m.Key(), m.ClassCount()))
			}
			return nil
		},
	}
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
