package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/xmlviewls/internal/cli/config"
	"github.com/leapstack-labs/xmlviewls/internal/cli/output"
	"github.com/leapstack-labs/xmlviewls/internal/modelstore"
	"github.com/leapstack-labs/xmlviewls/internal/workspace"
	"github.com/leapstack-labs/xmlviewls/pkg/core"
	"github.com/leapstack-labs/xmlviewls/pkg/lint"
	"github.com/leapstack-labs/xmlviewls/pkg/xmlast"
)

// ErrIssuesFound is returned by the check command when any finding survives
// the severity filter.
var ErrIssuesFound = errors.New("check issues found")

// CheckOptions holds options for the check command.
type CheckOptions struct {
	Path     string   // File or directory path
	Format   string   // Output format: text, markdown, json
	Disable  []string // Rule IDs to disable
	Severity string   // Minimum severity: error, warning, info, hint
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	opts := &CheckOptions{}
	cmd := &cobra.Command{
		Use:   "check [path]",
		Short: "Run diagnostics on view and fragment files",
		Long: `Analyze XML views and fragments against the framework model.

Each file is checked against the model version its project selects:
ui5.yaml framework settings first, then the manifest's minUI5Version,
then the configured default. Rules can be configured in xmlviewls.yaml.

Output adapts to environment:
  - Terminal: Styled table with colors
  - Piped/Scripted: Markdown table
  - JSON: Machine-readable format`,
		Example: `  # Check every view below the project root
  xmlviewls check

  # Check one application
  xmlviewls check ./webapp

  # Output as JSON
  xmlviewls check --format json

  # Disable specific rules
  xmlviewls check --disable UI5001,UI5002

  # Only report errors
  xmlviewls check --severity error`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.Path = args[0]
			}
			return runCheck(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")
	cmd.Flags().StringSliceVar(&opts.Disable, "disable", nil, "Rule IDs to disable")
	cmd.Flags().StringVar(&opts.Severity, "severity", "hint", "Minimum severity: error, warning, info, hint")

	return cmd
}

// checkFileResult holds check results for a single file.
type checkFileResult struct {
	Path        string
	Model       string
	Err         error
	Doc         *xmlast.Document
	Diagnostics []lint.Diagnostic
}

func runCheck(cmd *cobra.Command, opts *CheckOptions) error {
	threshold, ok := core.ParseSeverity(opts.Severity)
	if !ok {
		return fmt.Errorf("invalid severity %q (want error, warning, info or hint)", opts.Severity)
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg := cmdCtx.Cfg
	r := rendererFor(cmd, cmdCtx.Renderer, opts.Format)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	target := opts.Path
	if target == "" {
		target = cfg.ProjectRoot
	}
	if target == "" {
		target = "."
	}
	target, err = filepath.Abs(target)
	if err != nil {
		return err
	}

	files, err := workspace.FindViews(target)
	if err != nil {
		return fmt.Errorf("failed to find views: %w", err)
	}

	ws := workspace.New(workspaceRoot(cfg, target), cmdCtx.Logger)
	if err := ws.Scan(ctx); err != nil {
		return fmt.Errorf("failed to scan workspace: %w", err)
	}

	lintCfg, err := buildLintConfig(cfg, opts)
	if err != nil {
		return err
	}
	analyzer := lint.NewAnalyzer(lintCfg)

	results := make([]checkFileResult, 0, len(files))
	for _, path := range files {
		res := checkFile(ctx, cmdCtx.Store, ws, analyzer, cfg, path)
		res.Diagnostics = filterBySeverity(res.Diagnostics, threshold)
		res.Path = displayPath(target, path)
		results = append(results, res)
	}

	if renderCheckResults(r, results) {
		return ErrIssuesFound
	}
	return nil
}

// workspaceRoot is the directory scanned for manifests and ui5.yaml files:
// the project root when it contains the target, else the target itself.
func workspaceRoot(cfg *config.Config, target string) string {
	if root := cfg.ProjectRoot; root != "" {
		if rel, err := filepath.Rel(root, target); err == nil && !strings.HasPrefix(rel, "..") {
			return root
		}
	}
	if info, err := os.Stat(target); err == nil && !info.IsDir() {
		return filepath.Dir(target)
	}
	return target
}

func checkFile(ctx context.Context, store *modelstore.Store, ws *workspace.Workspace, analyzer *lint.Analyzer, cfg *config.Config, path string) checkFileResult {
	res := checkFileResult{Path: path}

	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the walked project tree
	if err != nil {
		res.Err = err
		return res
	}

	project := ws.Project(path)
	framework, version := project.Select(cfg.DefaultFramework, cfg.DefaultVersion)
	m, err := store.Resolve(ctx, framework, version)
	if err != nil {
		res.Err = err
		return res
	}
	res.Model = m.Key().String()

	res.Doc = xmlast.Parse(string(data))
	res.Diagnostics = analyzer.Analyze(lint.Context{
		Doc:   res.Doc,
		Model: m,
		Flags: lint.Flags{FlexEnabled: project.FlexEnabled},
	})
	return res
}

func buildLintConfig(cfg *config.Config, opts *CheckOptions) (*lint.Config, error) {
	var lintCfg *lint.Config
	var err error

	// Project config first (lower precedence)
	if cfg != nil {
		lintCfg, err = cfg.Lint.ToLint()
		if err != nil {
			return nil, fmt.Errorf("invalid lint configuration: %w", err)
		}
	} else {
		lintCfg = lint.NewConfig()
	}

	// CLI overrides (higher precedence)
	for _, id := range opts.Disable {
		lintCfg.Disable(strings.ToUpper(strings.TrimSpace(id)))
	}
	return lintCfg, nil
}

func filterBySeverity(diags []lint.Diagnostic, threshold core.Severity) []lint.Diagnostic {
	var filtered []lint.Diagnostic
	for _, d := range diags {
		if d.Severity.AtLeast(threshold) {
			filtered = append(filtered, d)
		}
	}
	return filtered
}

func displayPath(target, path string) string {
	base := target
	if info, err := os.Stat(target); err == nil && !info.IsDir() {
		base = filepath.Dir(target)
	}
	if rel, err := filepath.Rel(base, path); err == nil {
		return filepath.ToSlash(rel)
	}
	return path
}

func summarize(results []checkFileResult) output.LintSummary {
	summary := output.LintSummary{FilesAnalyzed: len(results)}
	for _, res := range results {
		summary.TotalIssues += len(res.Diagnostics)
		for _, d := range res.Diagnostics {
			switch d.Severity {
			case core.SeverityError:
				summary.Errors++
			case core.SeverityWarning:
				summary.Warnings++
			case core.SeverityInfo:
				summary.Info++
			case core.SeverityHint:
				summary.Hints++
			}
		}
	}
	return summary
}

// renderCheckResults writes the results and reports whether anything needs
// attention.
func renderCheckResults(r *output.Renderer, results []checkFileResult) bool {
	summary := summarize(results)
	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}

	if r.EffectiveMode() == output.ModeJSON {
		jsonOutput := output.LintOutput{Summary: summary, Files: []output.LintFileResult{}}
		for _, res := range results {
			fileResult := output.LintFileResult{
				Path:        res.Path,
				Model:       res.Model,
				Diagnostics: []output.LintDiagnostic{},
			}
			if res.Err != nil {
				fileResult.Error = res.Err.Error()
			}
			for _, d := range res.Diagnostics {
				line, col := res.Doc.LineCol(d.Range.Start)
				fileResult.Diagnostics = append(fileResult.Diagnostics, output.LintDiagnostic{
					RuleID:   d.RuleID,
					Severity: d.Severity.String(),
					Message:  d.Message,
					Line:     line,
					Column:   col,
				})
			}
			jsonOutput.Files = append(jsonOutput.Files, fileResult)
		}
		_ = r.JSON(jsonOutput)
		return summary.TotalIssues > 0 || failed > 0
	}

	for _, res := range results {
		if res.Err != nil {
			_, _ = fmt.Fprintf(r.ErrWriter(), "%s: %v\n", res.Path, res.Err)
		}
	}

	if summary.TotalIssues == 0 {
		if failed == 0 {
			r.Success(fmt.Sprintf("No issues found in %d files", summary.FilesAnalyzed))
		}
		return failed > 0
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"File", "Line", "Severity", "Rule", "Message"})
	for _, res := range results {
		for _, d := range res.Diagnostics {
			line, col := res.Doc.LineCol(d.Range.Start)
			t.AppendRow(table.Row{
				res.Path,
				fmt.Sprintf("%d:%d", line, col),
				severityStyle(r, d.Severity),
				d.RuleID,
				d.Message,
			})
		}
	}
	if r.EffectiveMode() == output.ModeMarkdown {
		t.RenderMarkdown()
		r.Println("")
	} else {
		t.Render()
	}

	summaryParts := []string{fmt.Sprintf("%d issues", summary.TotalIssues)}
	if summary.Errors > 0 {
		summaryParts = append(summaryParts, fmt.Sprintf("%d errors", summary.Errors))
	}
	if summary.Warnings > 0 {
		summaryParts = append(summaryParts, fmt.Sprintf("%d warnings", summary.Warnings))
	}
	if summary.Info > 0 {
		summaryParts = append(summaryParts, fmt.Sprintf("%d info", summary.Info))
	}
	if summary.Hints > 0 {
		summaryParts = append(summaryParts, fmt.Sprintf("%d hints", summary.Hints))
	}
	r.Printf("Summary: %s in %d files\n", strings.Join(summaryParts, ", "), summary.FilesAnalyzed)

	return true
}

func severityStyle(r *output.Renderer, sev core.Severity) string {
	return getSeverityStyle(r.Styles(), sev).Render(sev.String())
}
