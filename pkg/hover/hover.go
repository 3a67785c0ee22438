// Package hover renders documentation for the markup under the cursor.
package hover

import (
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/leapstack-labs/xmlviewls/pkg/fqn"
	"github.com/leapstack-labs/xmlviewls/pkg/model"
	"github.com/leapstack-labs/xmlviewls/pkg/xmlast"
)

// Info is rendered hover content for a token.
type Info struct {
	Markdown string
	Range    xmlast.Span
}

// Resolve returns documentation for the token under offset. It reports false
// when the token does not resolve to a model node.
func Resolve(m *model.Model, doc *xmlast.Document, offset int) (*Info, bool) {
	if m == nil || doc == nil {
		return nil, false
	}

	hit := doc.At(offset)
	var md string
	switch hit.Kind {
	case xmlast.HitElementName:
		if cls, ok := fqn.ResolveClass(m, hit.Element); ok {
			md = Class(m, cls)
		} else if agg, owner, ok := fqn.ResolveAggregation(m, hit.Element); ok {
			md = Aggregation(m, agg, owner)
		}
	case xmlast.HitAttributeKey:
		if p, ok := fqn.ResolveProperty(m, hit.Attribute); ok {
			md = Property(m, p, hit.Element)
		} else if e, ok := fqn.ResolveEvent(m, hit.Attribute); ok {
			md = Event(m, e, hit.Element)
		}
	case xmlast.HitAttributeValue:
		if p, ok := fqn.ResolveProperty(m, hit.Attribute); ok {
			if enum, ok := m.Enum(p.Type); ok {
				if v, ok := enum.Value(hit.Attribute.Value); ok {
					md = EnumValue(m, enum, v)
				}
			}
		}
	case xmlast.HitNone:
	}

	if md == "" {
		return nil, false
	}
	return &Info{Markdown: md, Range: hit.Token}, true
}

// IncompleteChain marks a superclass chain cut short by an inheritance cycle.
const IncompleteChain = "(incomplete: inheritance cycle)"

// Class renders documentation for a class.
func Class(m *model.Model, cls *model.Class) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s** (class)\n\n`%s`", cls.LocalName(), cls.Name)
	if cls.Abstract {
		b.WriteString(" *abstract*")
	}
	writeMeta(&b, cls.Meta)

	desc := cls.Description
	chain, cycle := model.SuperclassChain(m, cls)
	if desc == "" {
		for _, super := range chain {
			if super.Description != "" {
				fmt.Fprintf(&b, "\n\n*Inherited from `%s`:*", super.Name)
				desc = super.Description
				break
			}
		}
	}
	writeDescription(&b, desc)

	if len(chain) > 0 || cycle != nil {
		names := make([]string, len(chain))
		for i, c := range chain {
			names[i] = "`" + c.Name + "`"
		}
		fmt.Fprintf(&b, "\n\nExtends: %s", strings.Join(names, " → "))
		if cycle != nil {
			b.WriteString(" " + IncompleteChain)
		}
	}

	writeLink(&b, m, cls.Name)
	return b.String()
}

// Aggregation renders documentation for an aggregation element.
func Aggregation(m *model.Model, agg *model.Aggregation, cls *model.Class) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s** (aggregation)\n\n`%s` %s", agg.Name, agg.Type, agg.Cardinality)
	writeMeta(&b, agg.Meta)
	writeMemberDescription(&b, agg.Description, func() (string, string) {
		return inherited(m, agg.Owner, agg.Name,
			func(c *model.Class) []*model.Aggregation { return c.Aggregations },
			func(x *model.Aggregation) string { return x.Description })
	})
	writeOwner(&b, agg.Owner, cls.Name)
	writeLink(&b, m, agg.Owner)
	return b.String()
}

// Property renders documentation for a property attribute.
func Property(m *model.Model, p *model.Property, el *xmlast.Element) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s** (property)\n\n`%s`", p.Name, p.Type)
	if p.Default != "" {
		fmt.Fprintf(&b, " = `%s`", p.Default)
	}
	if p.Translatable {
		b.WriteString(" *translatable*")
	}
	writeMeta(&b, p.Meta)
	writeMemberDescription(&b, p.Description, func() (string, string) {
		return inherited(m, p.Owner, p.Name,
			func(c *model.Class) []*model.Property { return c.Properties },
			func(x *model.Property) string { return x.Description })
	})
	writeOwner(&b, p.Owner, elementClass(el))
	writeLink(&b, m, p.Owner)
	return b.String()
}

// Event renders documentation for an event attribute.
func Event(m *model.Model, e *model.Event, el *xmlast.Element) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s** (event)", e.Name)
	writeMeta(&b, e.Meta)
	writeMemberDescription(&b, e.Description, func() (string, string) {
		return inherited(m, e.Owner, e.Name,
			func(c *model.Class) []*model.Event { return c.Events },
			func(x *model.Event) string { return x.Description })
	})
	writeOwner(&b, e.Owner, elementClass(el))
	writeLink(&b, m, e.Owner)
	return b.String()
}

// EnumValue renders documentation for an enum literal.
func EnumValue(m *model.Model, enum *model.Enum, v *model.EnumValue) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s** (enum value of `%s`)", v.Name, enum.Name)
	writeMeta(&b, v.Meta)
	writeDescription(&b, v.Description)
	writeLink(&b, m, enum.Name)
	return b.String()
}

func writeMeta(b *strings.Builder, meta model.Meta) {
	if meta.Since != "" {
		fmt.Fprintf(b, "\n\nSince: %s", meta.Since)
	}
	if meta.Experimental {
		b.WriteString("\n\n*Experimental*")
	}
	if dep := meta.Deprecated; dep != nil {
		b.WriteString("\n\n**Deprecated**")
		if dep.Since != "" {
			fmt.Fprintf(b, " since %s", dep.Since)
		}
		if text := Markdown(dep.Text); text != "" {
			b.WriteString(": " + text)
		}
	}
}

func writeDescription(b *strings.Builder, html string) {
	if md := Markdown(html); md != "" {
		b.WriteString("\n\n" + md)
	}
}

// writeMemberDescription writes desc, or the description found by ancestor
// when the member itself is undocumented.
func writeMemberDescription(b *strings.Builder, desc string, ancestor func() (string, string)) {
	if desc == "" {
		var from string
		if from, desc = ancestor(); desc != "" {
			fmt.Fprintf(b, "\n\n*Inherited from `%s`:*", from)
		}
	}
	writeDescription(b, desc)
}

// inherited returns the nearest superclass of owner that declares a member
// called name with a description, and that description.
func inherited[T interface{ MemberName() string }](m *model.Model, owner, name string, own func(*model.Class) []T, describe func(T) string) (string, string) {
	cls, ok := m.Class(owner)
	if !ok {
		return "", ""
	}
	chain, _ := model.SuperclassChain(m, cls)
	for _, super := range chain {
		for _, mem := range own(super) {
			if mem.MemberName() != name {
				continue
			}
			if desc := describe(mem); desc != "" {
				return super.Name, desc
			}
		}
	}
	return "", ""
}

func writeOwner(b *strings.Builder, owner, current string) {
	if owner != "" && owner != current {
		fmt.Fprintf(b, "\n\nInherited from `%s`", owner)
	}
}

func writeLink(b *strings.Builder, m *model.Model, name string) {
	if url := APIReferenceURL(m, name); url != "" {
		fmt.Fprintf(b, "\n\n[API Reference](%s)", url)
	}
}

func elementClass(el *xmlast.Element) string {
	name, _ := fqn.ToFQN(el)
	return name
}

// Markdown converts an API description from HTML. Text that fails to convert
// is returned trimmed as is.
func Markdown(html string) string {
	html = strings.TrimSpace(html)
	if html == "" {
		return ""
	}
	md, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return html
	}
	return strings.TrimSpace(md)
}

// APIReferenceURL links to the framework's API documentation for a symbol.
func APIReferenceURL(m *model.Model, name string) string {
	var base string
	switch strings.ToLower(m.Framework()) {
	case "sapui5":
		base = "https://ui5.sap.com"
	case "openui5":
		base = "https://sdk.openui5.org"
	default:
		return ""
	}
	if v := m.Version(); v != "" {
		base += "/" + v
	}
	return fmt.Sprintf("%s/#/api/%s", base, name)
}
