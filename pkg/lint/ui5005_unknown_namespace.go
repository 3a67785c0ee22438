package lint

import (
	"github.com/leapstack-labs/xmlviewls/pkg/core"
	"github.com/leapstack-labs/xmlviewls/pkg/fqn"
	"github.com/leapstack-labs/xmlviewls/pkg/xmlast"
)

// UnknownNamespace flags element and attribute prefixes without a declaration
// in scope.
var UnknownNamespace = Rule{
	ID:          "UI5005",
	Name:        "unknown-namespace",
	Group:       "namespaces",
	Description: "Namespace prefixes must be declared with xmlns.",
	Severity:    core.SeverityError,
	Check:       checkUnknownNamespace,
	BadExample:  `<m:Button/>`,
	GoodExample: `<m:Button xmlns:m="sap.m"/>`,
}

// predeclared prefixes never need an xmlns declaration.
var predeclared = map[string]bool{"xml": true, "xmlns": true}

func checkUnknownNamespace(ctx Context) []Diagnostic {
	var diags []Diagnostic
	ctx.Doc.Walk(func(el *xmlast.Element) bool {
		if el.Prefix != "" && !predeclared[el.Prefix] {
			if _, ok := fqn.ResolveNamespace(el, el.Prefix); !ok {
				d := newDiagnostic("Namespace prefix %q is not declared", el.Prefix)
				d.Range = xmlast.Span{Start: el.NameSpan.Start, End: el.NameSpan.Start + len(el.Prefix)}
				diags = append(diags, d)
			}
		}
		for _, attr := range el.Attributes {
			if attr.Prefix == "" || predeclared[attr.Prefix] {
				continue
			}
			if _, ok := fqn.ResolveNamespace(el, attr.Prefix); !ok {
				d := newDiagnostic("Namespace prefix %q is not declared", attr.Prefix)
				d.Range = xmlast.Span{Start: attr.KeySpan.Start, End: attr.KeySpan.Start + len(attr.Prefix)}
				diags = append(diags, d)
			}
		}
		return true
	})
	return diags
}
