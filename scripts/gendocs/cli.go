package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/leapstack-labs/xmlviewls/internal/cli"
	"github.com/leapstack-labs/xmlviewls/internal/cli/config"
)

// seeAlso links command pages to the reference pages they depend on.
var seeAlso = map[string][]string{
	"check":    {"[Rules](/rules/)", "[Configuration](/configuration/)"},
	"rules":    {"[Rules](/rules/)"},
	"lsp":      {"[Configuration](/configuration/#editor-settings)"},
	"describe": {"[Configuration](/configuration/#framework-version)"},
	"cache":    {"[Configuration](/configuration/#project-settings)"},
}

// generateCLIDocs writes an index page and one page per command, nested
// commands included, from the xmlviewls command tree.
func generateCLIDocs(outDir string) error {
	log.Printf("Generating CLI docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	root := cli.NewRootCmd()
	if err := writePage(outDir, "index", cliIndex(root)); err != nil {
		return err
	}

	for _, cmd := range documentedCommands(root) {
		if err := writePage(outDir, pageName(cmd), commandPage(cmd)); err != nil {
			return err
		}
	}
	return nil
}

func writePage(outDir, name string, w *MarkdownWriter) error {
	if err := os.WriteFile(filepath.Join(outDir, name+".md"), w.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write %s.md: %w", name, err)
	}
	log.Printf("  Generated %s.md", name)
	return nil
}

// documentedCommands returns every visible command below root, parents
// before their children.
func documentedCommands(root *cobra.Command) []*cobra.Command {
	var out []*cobra.Command
	for _, cmd := range root.Commands() {
		if cmd.Hidden || !cmd.IsAvailableCommand() || cmd.Name() == "help" {
			continue
		}
		out = append(out, cmd)
		out = append(out, documentedCommands(cmd)...)
	}
	return out
}

// commandPath is the command line without the binary name, e.g. "cache list".
func commandPath(cmd *cobra.Command) string {
	return strings.TrimPrefix(cmd.CommandPath(), cmd.Root().Name()+" ")
}

// pageName is the file name of a command page: "cache list" becomes "cache-list".
func pageName(cmd *cobra.Command) string {
	return strings.ReplaceAll(commandPath(cmd), " ", "-")
}

func pageLink(cmd *cobra.Command) string {
	return fmt.Sprintf("[%s](/cli/%s)", InlineCode(commandPath(cmd)), pageName(cmd))
}

func cliIndex(root *cobra.Command) *MarkdownWriter {
	w := NewMarkdownWriter()
	w.Frontmatter("CLI Reference", "Command-line interface reference for xmlviewls")
	w.GeneratedMarker()

	w.Header(1, "CLI Reference")
	w.Paragraph("xmlviewls checks XML views from the command line, inspects the framework model and runs the language server for editors.")
	w.CodeBlock("bash", "go install github.com/leapstack-labs/xmlviewls/cmd/xmlviewls@latest\nxmlviewls <command> [options]")

	w.Header(2, "Commands")
	var rows [][]string
	for _, cmd := range documentedCommands(root) {
		rows = append(rows, []string{pageLink(cmd), cleanDescription(cmd.Short)})
	}
	w.Table([]string{"Command", "Description"}, rows)

	w.Header(2, "Global Options")
	w.Paragraph("Every command accepts these flags. Most of them set a key of " +
		InlineCode("xmlviewls.yaml") + " for one invocation.")
	writeGlobalFlags(w, root.PersistentFlags())

	w.Header(2, "Environment Variables")
	w.Paragraph(fmt.Sprintf("Each top-level key of %s can be set as %s followed by the upper-cased key.",
		InlineCode("xmlviewls.yaml"), InlineCode(config.EnvPrefix)))
	var envRows [][]string
	for _, f := range projectFields() {
		if strings.Contains(f.Name, ".") {
			continue
		}
		envRows = append(envRows, []string{InlineCode(config.EnvVar(f.Name)), cleanDescription(f.Description)})
	}
	w.Table([]string{"Variable", "Description"}, envRows)
	w.Paragraph("Values are applied in this order, later ones winning: built-in defaults, " +
		InlineCode("xmlviewls.yaml") + ", environment variables, flags.")

	w.Header(2, "Exit Codes")
	w.Table([]string{"Code", "Meaning"}, [][]string{
		{InlineCode("0"), "Success"},
		{InlineCode("1"), "Error, or diagnostics at or above " + InlineCode("--severity") + " found by " + InlineCode("check")},
	})
	return w
}

// writeGlobalFlags lists persistent flags with the config key and
// environment variable each one overrides.
func writeGlobalFlags(w *MarkdownWriter, flags *pflag.FlagSet) {
	var rows [][]string
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		key, env := "", ""
		if k := config.FlagKey(f.Name); k != "" {
			key, env = InlineCode(k), InlineCode(config.EnvVar(k))
		}
		rows = append(rows, []string{flagName(f), key, env, cleanDescription(f.Usage)})
	})
	w.Table([]string{"Option", "Config Key", "Environment", "Description"}, rows)
}

func commandPage(cmd *cobra.Command) *MarkdownWriter {
	w := NewMarkdownWriter()
	w.Frontmatter(commandPath(cmd), cmd.Short)
	w.GeneratedMarker()

	w.Header(1, commandPath(cmd))
	desc := cmd.Long
	if desc == "" {
		desc = cmd.Short
	}
	w.Paragraph(desc)

	w.Header(2, "Usage")
	usage := cmd.UseLine()
	if cmd.HasAvailableSubCommands() {
		usage = cmd.CommandPath() + " <subcommand> [options]"
	}
	w.CodeBlock("bash", usage)

	if len(cmd.Aliases) > 0 {
		aliases := make([]string, len(cmd.Aliases))
		for i, a := range cmd.Aliases {
			aliases[i] = InlineCode(a)
		}
		w.Paragraph("Aliases: " + strings.Join(aliases, ", "))
	}

	if cmd.HasAvailableSubCommands() {
		w.Header(2, "Subcommands")
		var rows [][]string
		for _, sub := range cmd.Commands() {
			if sub.IsAvailableCommand() {
				rows = append(rows, []string{pageLink(sub), cleanDescription(sub.Short)})
			}
		}
		w.Table([]string{"Subcommand", "Description"}, rows)
	}

	if cmd.HasAvailableLocalFlags() {
		w.Header(2, "Options")
		writeLocalFlags(w, cmd.LocalNonPersistentFlags())
	}
	w.Paragraph("See [Global Options](/cli/#global-options) for flags shared by every command.")

	if cmd.Example != "" {
		w.Header(2, "Examples")
		w.CodeBlock("bash", dedent(cmd.Example))
	}

	if links := seeAlso[cmd.Name()]; len(links) > 0 && cmd.Parent() == cmd.Root() {
		w.Header(2, "See Also")
		w.BulletList(links)
	}
	return w
}

func writeLocalFlags(w *MarkdownWriter, flags *pflag.FlagSet) {
	var rows [][]string
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		def := f.DefValue
		if def != "" && f.Value.Type() != "bool" {
			def = InlineCode(def)
		}
		rows = append(rows, []string{flagName(f), def, cleanDescription(f.Usage)})
	})
	w.Table([]string{"Option", "Default", "Description"}, rows)
}

// flagName renders a flag as "--name, -n".
func flagName(f *pflag.Flag) string {
	name := InlineCode("--" + f.Name)
	if f.Shorthand != "" {
		name += ", " + InlineCode("-"+f.Shorthand)
	}
	return name
}

// dedent strips the indentation shared by all non-blank lines of an
// example and trims surrounding blank lines.
func dedent(text string) string {
	lines := strings.Split(strings.Trim(text, "\n"), "\n")

	prefix, seen := "", false
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		if !seen {
			prefix, seen = indent, true
			continue
		}
		prefix = commonPrefix(prefix, indent)
	}

	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, prefix)
	}
	return strings.TrimRight(strings.Join(lines, "\n"), " \t\n")
}

func commonPrefix(a, b string) string {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return a[:n]
}
