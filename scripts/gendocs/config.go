package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	intconfig "github.com/leapstack-labs/xmlviewls/internal/config"
)

// ConfigField represents a configuration field definition.
type ConfigField struct {
	Name        string
	Type        string
	Default     string
	Description string
}

// projectFields describes xmlviewls.yaml.
// This is based on internal/config/types.go ServerConfig.
func projectFields() []ConfigField {
	return []ConfigField{
		{Name: "model_dir", Type: "string", Default: "<user cache>/xmlviewls/models", Description: "Directory holding framework model documents, one subdirectory per framework"},
		{Name: "cache_path", Type: "string", Description: "SQLite model cache; empty disables caching"},
		{Name: "default_framework", Type: "string", Default: intconfig.DefaultFramework, Description: "Framework used when no ui5.yaml names one"},
		{Name: "default_version", Type: "string", Description: "Version used when neither manifest nor ui5.yaml names one; empty selects the newest"},
		{Name: "log_level", Type: "string", Default: intconfig.DefaultLogLevel, Description: "debug, info, warn or error"},
		{Name: "watch", Type: "bool", Default: "false", Description: "Watch project descriptors when running as a language server"},
		{Name: "lint.disabled", Type: "[]string", Description: "Rule ids to disable"},
		{Name: "lint.severity", Type: "map[string]string", Description: "Severity override per rule id"},
	}
}

// editorFields describes the settings requested from the editor.
// This is based on internal/config/settings.go Settings.
func editorFields() []ConfigField {
	return []ConfigField{
		{Name: "codeAssist.deprecated", Type: "bool", Default: "false", Description: "Offer deprecated classes and members in completion"},
		{Name: "codeAssist.experimental", Type: "bool", Default: "false", Description: "Offer experimental classes and members in completion"},
		{Name: "logging.level", Type: "string", Default: intconfig.DefaultLogLevel, Description: "Server log level"},
		{Name: "lint.disabled", Type: "[]string", Description: "Rule ids to disable, added to xmlviewls.yaml"},
		{Name: "lint.severity", Type: "map[string]string", Description: "Severity override per rule id, overriding xmlviewls.yaml"},
	}
}

// generateConfigDocs generates the configuration reference page.
func generateConfigDocs(outDir string) error {
	log.Printf("Generating configuration docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	w := NewMarkdownWriter()

	w.Frontmatter("Configuration", "xmlviewls configuration reference")
	w.GeneratedMarker()

	w.Header(1, "Configuration")
	w.Paragraph(fmt.Sprintf("Project settings live in %s in the project root. "+
		"Editors additionally send settings in the %s section.",
		InlineCode(intconfig.ConfigFileName), InlineCode(intconfig.SettingsSection)))

	w.Header(2, "Project Settings")
	writeFieldTable(w, projectFields())

	w.Header(2, "Editor Settings")
	writeFieldTable(w, editorFields())

	w.Header(2, "Framework Version")
	w.Paragraph("The model of a view is selected from the nearest descriptors:")
	w.BulletList([]string{
		InlineCode("ui5.yaml") + " " + InlineCode("framework.name") + " and " + InlineCode("framework.version"),
		InlineCode("manifest.json") + " " + InlineCode("sap.ui5/dependencies/minUI5Version"),
		InlineCode("default_framework") + " and " + InlineCode("default_version"),
	})

	if err := os.WriteFile(filepath.Join(outDir, "index.md"), w.Bytes(), 0600); err != nil {
		return err
	}
	log.Printf("  Generated index.md")
	return nil
}

func writeFieldTable(w *MarkdownWriter, fields []ConfigField) {
	headers := []string{"Field", "Type", "Default", "Description"}
	var rows [][]string
	for _, f := range fields {
		defVal := "-"
		if f.Default != "" {
			defVal = InlineCode(f.Default)
		}
		rows = append(rows, []string{InlineCode(f.Name), f.Type, defVal, f.Description})
	}
	w.Table(headers, rows)
}
