package lint

import (
	"strings"

	"github.com/leapstack-labs/xmlviewls/pkg/fqn"
	"github.com/leapstack-labs/xmlviewls/pkg/model"
	"github.com/leapstack-labs/xmlviewls/pkg/xmlast"
)

// IsBinding reports whether an attribute value is a binding expression rather
// than a literal. An escaped brace ("\{") is a literal.
func IsBinding(value string) bool {
	return strings.HasPrefix(strings.TrimSpace(value), "{")
}

// propertyAttributes calls fn for every attribute of every element that
// resolves to a property of the element's class.
func propertyAttributes(ctx Context, fn func(el *xmlast.Element, attr *xmlast.Attribute, p *model.Property)) {
	ctx.Doc.Walk(func(el *xmlast.Element) bool {
		cls, ok := fqn.ResolveClass(ctx.Model, el)
		if !ok {
			return true
		}
		props := model.FlattenProperties(ctx.Model, cls)
		for _, attr := range el.Attributes {
			if attr.Prefix != "" || !attr.HasValue {
				continue
			}
			if p, ok := props[attr.Key]; ok {
				fn(el, attr, p)
			}
		}
		return true
	})
}
