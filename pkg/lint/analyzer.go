package lint

import (
	"slices"
)

// Analyzer runs the validator table against a document.
type Analyzer struct {
	config *Config
	rules  []Rule
}

// NewAnalyzer creates a new analyzer with optional configuration.
func NewAnalyzer(config *Config) *Analyzer {
	if config == nil {
		config = NewConfig()
	}
	return &Analyzer{config: config, rules: Rules}
}

// Analyze runs every enabled rule. Diagnostics are ordered by position, then
// by rule order.
func (a *Analyzer) Analyze(ctx Context) []Diagnostic {
	if ctx.Doc == nil || ctx.Model == nil {
		return nil
	}

	var diagnostics []Diagnostic
	for _, rule := range a.rules {
		if a.config.IsDisabled(rule.ID) {
			continue
		}

		diags := rule.Check(ctx)
		for i := range diags {
			diags[i].RuleID = rule.ID
			diags[i].Severity = a.config.GetSeverity(rule.ID, rule.Severity)
			diags[i].DocumentationURL = BuildDocURL(rule.ID)
		}
		diagnostics = append(diagnostics, diags...)
	}

	slices.SortStableFunc(diagnostics, func(x, y Diagnostic) int {
		return x.Range.Start - y.Range.Start
	})
	return diagnostics
}
