package completion

import (
	"github.com/leapstack-labs/xmlviewls/pkg/fqn"
	"github.com/leapstack-labs/xmlviewls/pkg/model"
	"github.com/leapstack-labs/xmlviewls/pkg/xmlast"
)

// aggregationSuggestions offers the aggregations of the enclosing class as
// child element names.
func aggregationSuggestions(ctx *Context) []Candidate {
	el := ctx.Element
	// A prefixed tag belongs to another namespace's vocabulary.
	if el.Prefix != "" || el.Parent == nil {
		return nil
	}

	parent := el.Parent
	cls, ok := fqn.ResolveClass(ctx.Model, parent)
	if !ok || !model.IsSubClassOf(ctx.Model, cls, ctx.Model.RootType()) {
		return nil
	}

	var out []Candidate
	for name, agg := range model.FlattenAggregations(ctx.Model, cls) {
		if !ctx.allowed(agg.Meta) {
			continue
		}
		text := name
		if parent.Prefix != "" {
			text = parent.Prefix + ":" + name
		}
		out = append(out, Candidate{
			Kind:        CandidateAggregation,
			Target:      fqn.FromFQN(agg.Owner, name),
			DisplayName: name,
			Range:       ctx.Token,
			Text:        text,
			Detail:      agg.Type,
			Description: agg.Description,
			Deprecated:  agg.IsDeprecated(),
		})
	}
	return out
}

// classSuggestions offers classes that may be instantiated at the cursor:
// children of an aggregation element, or of a class element through its
// default aggregation.
func classSuggestions(ctx *Context) []Candidate {
	el := ctx.Element
	agg, ok := enclosingAggregation(ctx.Model, el.Parent)
	if !ok {
		return nil
	}

	var prefixURI string
	if el.Prefix != "" {
		if prefixURI, ok = fqn.ResolveNamespace(el, el.Prefix); !ok {
			return nil
		}
	}

	var out []Candidate
	for _, cls := range model.FindAssignableClasses(ctx.Model, agg.Type) {
		if cls.Abstract || !ctx.allowed(cls.Meta) {
			continue
		}

		var display string
		if el.Prefix != "" {
			if cls.Library != prefixURI {
				continue
			}
			display = el.Prefix + ":" + cls.LocalName()
		} else if display, ok = fqn.QualifiedName(el, cls.Name); !ok {
			continue
		}

		out = append(out, Candidate{
			Kind:        CandidateClass,
			Target:      cls.Name,
			DisplayName: display,
			Range:       ctx.Token,
			Text:        display,
			Detail:      cls.Name,
			Description: cls.Description,
			Deprecated:  cls.IsDeprecated(),
		})
	}
	return out
}

// enclosingAggregation returns the aggregation a child of parent is placed in.
func enclosingAggregation(m *model.Model, parent *xmlast.Element) (*model.Aggregation, bool) {
	if parent == nil {
		return nil, false
	}

	if cls, ok := fqn.ResolveClass(m, parent); ok {
		name := model.DefaultAggregation(m, cls)
		if name == "" {
			return nil, false
		}
		agg, ok := model.FlattenAggregations(m, cls)[name]
		return agg, ok
	}

	agg, _, ok := fqn.ResolveAggregation(m, parent)
	return agg, ok
}
