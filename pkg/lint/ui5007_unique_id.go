package lint

import (
	"github.com/leapstack-labs/xmlviewls/pkg/core"
	"github.com/leapstack-labs/xmlviewls/pkg/xmlast"
)

// NonUniqueID flags id values used by more than one element.
var NonUniqueID = Rule{
	ID:          "UI5007",
	Name:        "non-unique-id",
	Group:       "flex",
	Description: "Element ids must be unique within a view.",
	Severity:    core.SeverityError,
	Check:       checkUniqueID,
	BadExample:  `<Button id="save"/><Button id="save"/>`,
	GoodExample: `<Button id="save"/><Button id="cancel"/>`,
}

func checkUniqueID(ctx Context) []Diagnostic {
	byID := make(map[string][]*xmlast.Attribute)
	var order []string

	ctx.Doc.Walk(func(el *xmlast.Element) bool {
		attr, ok := el.Attribute("id")
		if !ok || !attr.HasValue || attr.Value == "" || IsBinding(attr.Value) {
			return true
		}
		if _, seen := byID[attr.Value]; !seen {
			order = append(order, attr.Value)
		}
		byID[attr.Value] = append(byID[attr.Value], attr)
		return true
	})

	var diags []Diagnostic
	for _, id := range order {
		attrs := byID[id]
		if len(attrs) < 2 {
			continue
		}
		for _, attr := range attrs {
			d := newDiagnostic("Duplicate id %q, used %d times", id, len(attrs))
			d.Range = attr.ValueSpan
			diags = append(diags, d)
		}
	}
	return diags
}
