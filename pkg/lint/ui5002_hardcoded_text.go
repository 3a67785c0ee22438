package lint

import (
	"strings"

	"github.com/leapstack-labs/xmlviewls/pkg/core"
	"github.com/leapstack-labs/xmlviewls/pkg/model"
	"github.com/leapstack-labs/xmlviewls/pkg/xmlast"
)

// HardcodedText flags literal values of translatable properties.
var HardcodedText = Rule{
	ID:          "UI5002",
	Name:        "hardcoded-text",
	Group:       "i18n",
	Description: "Translatable properties should be bound to the resource bundle.",
	Severity:    core.SeverityInfo,
	Check:       checkHardcodedText,
	Rationale:   "Literal user-facing text cannot be translated.",
	BadExample:  `<Button text="Save"/>`,
	GoodExample: `<Button text="{i18n>saveButtonText}"/>`,
}

func checkHardcodedText(ctx Context) []Diagnostic {
	var diags []Diagnostic
	propertyAttributes(ctx, func(_ *xmlast.Element, attr *xmlast.Attribute, p *model.Property) {
		if !p.Translatable || strings.TrimSpace(attr.Value) == "" || IsBinding(attr.Value) {
			return
		}

		d := newDiagnostic("Hardcoded text %q in translatable property %q", attr.Value, attr.Key)
		d.Range = attr.ValueSpan
		d.Fix = &HardcodedTextFix{Literal: attr.Value, ValueSpan: attr.ContentSpan()}
		diags = append(diags, d)
	})
	return diags
}
