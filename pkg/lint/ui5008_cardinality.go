package lint

import (
	"github.com/leapstack-labs/xmlviewls/pkg/core"
	"github.com/leapstack-labs/xmlviewls/pkg/fqn"
	"github.com/leapstack-labs/xmlviewls/pkg/xmlast"
)

// Cardinality flags single-valued aggregations holding more than one child.
var Cardinality = Rule{
	ID:          "UI5008",
	Name:        "cardinality",
	Group:       "structure",
	Description: "Aggregations with cardinality 0..1 accept at most one child.",
	Severity:    core.SeverityError,
	Check:       checkCardinality,
	BadExample:  `<footer><Bar/><Bar/></footer>`,
	GoodExample: `<footer><Bar/></footer>`,
}

func checkCardinality(ctx Context) []Diagnostic {
	var diags []Diagnostic
	ctx.Doc.Walk(func(el *xmlast.Element) bool {
		agg, owner, ok := fqn.ResolveAggregation(ctx.Model, el)
		if !ok || agg.Multiple() || len(el.Children) < 2 {
			return true
		}
		for _, extra := range el.Children[1:] {
			d := newDiagnostic("Aggregation %q of %s accepts a single child", agg.Name, owner.LocalName())
			d.Range = extra.NameSpan
			diags = append(diags, d)
		}
		return true
	})
	return diags
}
