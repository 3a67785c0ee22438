package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/xmlviewls/pkg/lint"
)

// groupDescriptions provides human-readable descriptions for rule groups.
var groupDescriptions = map[string]string{
	"flex":        "Rules that keep views adaptable by key users and flexibility services.",
	"i18n":        "Rules about translatable texts.",
	"values":      "Rules about attribute values checked against the model.",
	"namespaces":  "Rules about XML namespace declarations.",
	"deprecation": "Rules about deprecated model entries.",
	"structure":   "Rules about the element structure of aggregations.",
}

// groupOrder is the order groups appear in.
var groupOrder = []string{"flex", "i18n", "values", "namespaces", "deprecation", "structure"}

// generateRuleDocs generates the rule overview and one page per rule.
func generateRuleDocs(outDir string) error {
	log.Printf("Generating rule docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := generateRuleIndex(outDir, lint.Rules); err != nil {
		return err
	}
	log.Printf("  Generated index.md")

	// Pages are named after lint.BuildDocURL.
	for _, rule := range lint.Rules {
		w := NewMarkdownWriter()
		w.Frontmatter(rule.ID+" "+rule.Name, cleanDescription(rule.Description))
		w.GeneratedMarker()
		writeRuleDoc(w, rule)

		name := strings.ToLower(rule.ID) + ".md"
		if err := os.WriteFile(filepath.Join(outDir, name), w.Bytes(), 0600); err != nil {
			return err
		}
		log.Printf("  Generated %s", name)
	}

	return nil
}

// generateRuleIndex generates the overview page.
func generateRuleIndex(outDir string, rules []lint.Rule) error {
	w := NewMarkdownWriter()

	w.Frontmatter("Rules", "Diagnostics reported for XML views")
	w.GeneratedMarker()

	w.Header(1, "Rules")
	w.Paragraph(fmt.Sprintf("xmlviewls checks views and fragments with **%d rules**. "+
		"Each diagnostic carries the rule id as its code.", len(rules)))

	w.Header(2, "Severity Levels")
	w.Table(
		[]string{"Severity", "Description"},
		[][]string{
			{InlineCode("error"), "Critical issue that should be fixed"},
			{InlineCode("warning"), "Potential issue that should be reviewed"},
			{InlineCode("info"), "Informational feedback"},
			{InlineCode("hint"), "Suggestion for improvement"},
		},
	)

	w.Header(2, "Configuration")
	w.Paragraph("Rules can be configured in `xmlviewls.yaml` and in the editor settings:")
	w.CodeBlock("yaml", `lint:
  disabled: [UI5002]     # disable rules
  severity:
    UI5001: warning      # override severity`)

	grouped := groupRules(rules)
	for _, group := range groupOrder {
		groupRules := grouped[group]
		if len(groupRules) == 0 {
			continue
		}

		// Write group header with anchor
		w.Line(fmt.Sprintf("## %s {#%s}", capitalizeFirst(group), group))
		w.Newline()
		if desc, ok := groupDescriptions[group]; ok {
			w.Paragraph(desc)
		}

		var rows [][]string
		for _, r := range groupRules {
			rows = append(rows, []string{
				fmt.Sprintf("[%s](%s)", r.ID, strings.ToLower(r.ID)),
				InlineCode(r.Name),
				InlineCode(r.Severity.String()),
				cleanDescription(r.Description),
			})
		}
		w.Table([]string{"Rule", "Name", "Severity", "Description"}, rows)
	}

	return os.WriteFile(filepath.Join(outDir, "index.md"), w.Bytes(), 0600)
}

// groupRules organizes rules by their Group field, keeping table order.
func groupRules(rules []lint.Rule) map[string][]lint.Rule {
	grouped := make(map[string][]lint.Rule)
	for _, r := range rules {
		grouped[r.Group] = append(grouped[r.Group], r)
	}
	return grouped
}

// capitalizeFirst capitalizes the first letter of a string.
func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// writeRuleDoc writes detailed documentation for a single rule.
func writeRuleDoc(w *MarkdownWriter, rule lint.Rule) {
	// Rule header: # UI5001 - stable-id
	w.Header(1, fmt.Sprintf("%s - %s", rule.ID, rule.Name))

	// Severity badge and description
	w.Line(fmt.Sprintf("**Severity:** %s", InlineCode(rule.Severity.String())))
	w.Newline()

	w.Paragraph(cleanDescription(rule.Description))

	// Rationale (if available)
	if rationale := rule.Rationale; rationale != "" {
		w.Header(2, "Why This Matters")
		w.Paragraph(strings.TrimSpace(rationale))
	}

	// Bad example (if available)
	if rule.BadExample != "" {
		w.Header(2, "Bad")
		w.CodeBlock("xml", rule.BadExample)
	}

	// Good example (if available)
	if rule.GoodExample != "" {
		w.Header(2, "Good")
		w.CodeBlock("xml", rule.GoodExample)
	}
}
