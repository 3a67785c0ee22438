package completion

import (
	"strings"

	"github.com/leapstack-labs/xmlviewls/pkg/fqn"
	"github.com/leapstack-labs/xmlviewls/pkg/model"
)

func propertySuggestions(ctx *Context) []Candidate {
	cls, ok := fqn.ResolveClass(ctx.Model, ctx.Element)
	if !ok {
		return nil
	}

	var out []Candidate
	for name, p := range model.FlattenProperties(ctx.Model, cls) {
		if !ctx.allowed(p.Meta) {
			continue
		}
		out = append(out, Candidate{
			Kind:        CandidateProperty,
			Target:      fqn.FromFQN(p.Owner, name),
			DisplayName: name,
			Range:       ctx.Token,
			Text:        name,
			Detail:      p.Type,
			Description: p.Description,
			Deprecated:  p.IsDeprecated(),
		})
	}
	return out
}

func eventSuggestions(ctx *Context) []Candidate {
	cls, ok := fqn.ResolveClass(ctx.Model, ctx.Element)
	if !ok {
		return nil
	}

	var out []Candidate
	for name, e := range model.FlattenEvents(ctx.Model, cls) {
		if !ctx.allowed(e.Meta) {
			continue
		}
		out = append(out, Candidate{
			Kind:        CandidateEvent,
			Target:      fqn.FromFQN(e.Owner, name),
			DisplayName: name,
			Range:       ctx.Token,
			Text:        name,
			Detail:      e.Owner,
			Description: e.Description,
			Deprecated:  e.IsDeprecated(),
		})
	}
	return out
}

// namespaceKeySuggestions offers "xmlns:<name>" declarations for libraries not
// yet bound in scope, once the user started typing "xmlns".
func namespaceKeySuggestions(ctx *Context) []Candidate {
	if !strings.HasPrefix(ctx.Typed, "xmlns") {
		return nil
	}

	var out []Candidate
	for _, ns := range ctx.Model.Namespaces() {
		if _, bound := fqn.PrefixFor(ctx.Element, ns); bound {
			continue
		}
		_, last := fqn.SplitQName(ns)
		key := "xmlns:" + last
		out = append(out, Candidate{
			Kind:        CandidateNamespacePrefix,
			Target:      ns,
			DisplayName: key,
			Range:       ctx.Token,
			Text:        key,
			Detail:      ns,
		})
	}
	return out
}

func booleanValueSuggestions(ctx *Context) []Candidate {
	prop, ok := attributeProperty(ctx)
	if !ok || prop.Type != "boolean" {
		return nil
	}

	out := make([]Candidate, 0, 2)
	for _, v := range []string{"false", "true"} {
		out = append(out, Candidate{
			Kind:        CandidateBoolean,
			Target:      v,
			DisplayName: v,
			Range:       ctx.Token,
			Text:        v,
			Detail:      "boolean",
		})
	}
	return out
}

func enumValueSuggestions(ctx *Context) []Candidate {
	prop, ok := attributeProperty(ctx)
	if !ok {
		return nil
	}
	enum, ok := ctx.Model.Enum(prop.Type)
	if !ok {
		return nil
	}

	var out []Candidate
	for _, v := range enum.Values {
		if !ctx.allowed(v.Meta) {
			continue
		}
		out = append(out, Candidate{
			Kind:        CandidateEnumValue,
			Target:      fqn.FromFQN(enum.Name, v.Name),
			DisplayName: v.Name,
			Range:       ctx.Token,
			Text:        v.Name,
			Detail:      enum.Name,
			Description: v.Description,
			Deprecated:  v.IsDeprecated(),
		})
	}
	return out
}

// namespaceValueSuggestions offers library names as values of xmlns
// declarations.
func namespaceValueSuggestions(ctx *Context) []Candidate {
	if ctx.Attribute == nil || !ctx.Attribute.IsNamespaceDecl() {
		return nil
	}

	var out []Candidate
	for _, ns := range ctx.Model.Namespaces() {
		out = append(out, Candidate{
			Kind:        CandidateNamespaceURI,
			Target:      ns,
			DisplayName: ns,
			Range:       ctx.Token,
			Text:        ns,
		})
	}
	return out
}

// attributeProperty resolves the attribute under the cursor to a property of
// the element's class.
func attributeProperty(ctx *Context) (*model.Property, bool) {
	return fqn.ResolveProperty(ctx.Model, ctx.Attribute)
}
