package lint

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/xmlviewls/pkg/core"
)

// DocsBaseURL is where rule documentation is hosted.
const DocsBaseURL = "https://xmlviewls.dev/docs/rules"

// BuildDocURL constructs a documentation URL for a rule.
func BuildDocURL(ruleID string) string {
	return fmt.Sprintf("%s/%s", DocsBaseURL, strings.ToLower(ruleID))
}

// CheckFunc inspects a document and returns its findings.
type CheckFunc func(ctx Context) []Diagnostic

// Rule is a data-driven validator definition.
type Rule struct {
	ID          string        // diagnostic code, e.g. "UI5001"
	Name        string        // e.g. "stable-id"
	Group       string        // e.g. "flex", "i18n", "values"
	Description string        // one line
	Severity    core.Severity // default severity
	Check       CheckFunc

	Rationale   string
	BadExample  string
	GoodExample string
}

// Rules is the ordered validator table.
var Rules = []Rule{
	StableID,
	HardcodedText,
	InvalidBooleanValue,
	InvalidEnumValue,
	UnknownNamespace,
	DeprecatedUsage,
	NonUniqueID,
	Cardinality,
}

// RuleByID returns a rule from the table.
func RuleByID(id string) (Rule, bool) {
	for _, r := range Rules {
		if r.ID == id {
			return r, true
		}
	}
	return Rule{}, false
}

// newDiagnostic creates a finding. The analyzer stamps the rule id, severity
// and documentation link.
func newDiagnostic(message string, args ...any) Diagnostic {
	return Diagnostic{Message: fmt.Sprintf(message, args...)}
}
