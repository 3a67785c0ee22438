package lint

import (
	"github.com/leapstack-labs/xmlviewls/pkg/core"
	"github.com/leapstack-labs/xmlviewls/pkg/fqn"
	"github.com/leapstack-labs/xmlviewls/pkg/model"
	"github.com/leapstack-labs/xmlviewls/pkg/xmlast"
)

// DeprecatedUsage flags deprecated classes, aggregations, properties, events
// and enum values.
var DeprecatedUsage = Rule{
	ID:          "UI5006",
	Name:        "deprecated-usage",
	Group:       "deprecation",
	Description: "Deprecated API should be replaced.",
	Severity:    core.SeverityWarning,
	Check:       checkDeprecated,
}

func checkDeprecated(ctx Context) []Diagnostic {
	var diags []Diagnostic
	report := func(span xmlast.Span, kind, name string, dep *model.Deprecation) {
		msg := "The " + kind + " %q is deprecated"
		args := []any{name}
		if dep.Since != "" {
			msg += " since %s"
			args = append(args, dep.Since)
		}
		d := newDiagnostic(msg, args...)
		d.Range = span
		d.Tags = []Tag{TagDeprecated}
		diags = append(diags, d)
	}

	ctx.Doc.Walk(func(el *xmlast.Element) bool {
		cls, isClass := fqn.ResolveClass(ctx.Model, el)
		switch {
		case isClass && cls.IsDeprecated():
			report(el.NameSpan, "class", cls.Name, cls.Deprecated)
		case !isClass:
			if agg, _, ok := fqn.ResolveAggregation(ctx.Model, el); ok && agg.IsDeprecated() {
				report(el.NameSpan, "aggregation", agg.Name, agg.Deprecated)
			}
		}
		if !isClass {
			return true
		}

		props := model.FlattenProperties(ctx.Model, cls)
		events := model.FlattenEvents(ctx.Model, cls)
		for _, attr := range el.Attributes {
			if attr.Prefix != "" {
				continue
			}
			if p, ok := props[attr.Key]; ok {
				if p.IsDeprecated() {
					report(attr.KeySpan, "property", p.Name, p.Deprecated)
				}
				if enum, ok := ctx.Model.Enum(p.Type); ok {
					if v, ok := enum.Value(attr.Value); ok && v.IsDeprecated() {
						report(attr.ValueSpan, "enum value", v.Name, v.Deprecated)
					}
				}
				continue
			}
			if e, ok := events[attr.Key]; ok && e.IsDeprecated() {
				report(attr.KeySpan, "event", e.Name, e.Deprecated)
			}
		}
		return true
	})
	return diags
}
