package lint

import (
	"strings"

	"github.com/leapstack-labs/xmlviewls/pkg/core"
	"github.com/leapstack-labs/xmlviewls/pkg/model"
	"github.com/leapstack-labs/xmlviewls/pkg/xmlast"
)

// InvalidEnumValue flags enum-typed properties set to an unknown literal.
var InvalidEnumValue = Rule{
	ID:          "UI5004",
	Name:        "invalid-enum-value",
	Group:       "values",
	Description: "Enum-typed properties accept only the values of their enum.",
	Severity:    core.SeverityError,
	Check:       checkEnumValue,
	BadExample:  `<Button type="Accepted"/>`,
	GoodExample: `<Button type="Accept"/>`,
}

func checkEnumValue(ctx Context) []Diagnostic {
	var diags []Diagnostic
	propertyAttributes(ctx, func(_ *xmlast.Element, attr *xmlast.Attribute, p *model.Property) {
		enum, ok := ctx.Model.Enum(p.Type)
		if !ok || IsBinding(attr.Value) {
			return
		}
		if _, ok := enum.Value(attr.Value); ok {
			return
		}

		names := make([]string, 0, len(enum.Values))
		for _, v := range enum.Values {
			if !v.IsDeprecated() {
				names = append(names, v.Name)
			}
		}
		d := newDiagnostic("Unknown value %q for %q, expected one of: %s",
			attr.Value, attr.Key, strings.Join(names, ", "))
		d.Range = attr.ValueSpan
		diags = append(diags, d)
	})
	return diags
}
