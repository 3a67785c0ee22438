package lint

import (
	"github.com/leapstack-labs/xmlviewls/pkg/core"
	"github.com/leapstack-labs/xmlviewls/pkg/model"
	"github.com/leapstack-labs/xmlviewls/pkg/xmlast"
)

// InvalidBooleanValue flags boolean properties set to anything but a literal
// true or false.
var InvalidBooleanValue = Rule{
	ID:          "UI5003",
	Name:        "invalid-boolean-value",
	Group:       "values",
	Description: "Boolean properties accept only \"true\" and \"false\".",
	Severity:    core.SeverityError,
	Check:       checkBooleanValue,
	BadExample:  `<Button enabled="yes"/>`,
	GoodExample: `<Button enabled="true"/>`,
}

func checkBooleanValue(ctx Context) []Diagnostic {
	var diags []Diagnostic
	propertyAttributes(ctx, func(_ *xmlast.Element, attr *xmlast.Attribute, p *model.Property) {
		if p.Type != "boolean" || IsBinding(attr.Value) {
			return
		}
		if attr.Value == "true" || attr.Value == "false" {
			return
		}

		d := newDiagnostic("Invalid boolean value %q for %q, expected \"true\" or \"false\"", attr.Value, attr.Key)
		d.Range = attr.ValueSpan
		diags = append(diags, d)
	})
	return diags
}
