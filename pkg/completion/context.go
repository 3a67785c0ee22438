package completion

import (
	"github.com/leapstack-labs/xmlviewls/pkg/model"
	"github.com/leapstack-labs/xmlviewls/pkg/xmlast"
)

// Kind is the syntactic context of the cursor.
type Kind int

// Context kinds.
const (
	KindNone Kind = iota
	KindElementName
	KindAttributeName
	KindAttributeValue

	kindCount
)

// String returns a readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindElementName:
		return "element-name"
	case KindAttributeName:
		return "attribute-name"
	case KindAttributeValue:
		return "attribute-value"
	default:
		return "unknown"
	}
}

// Settings gate which candidates are offered.
type Settings struct {
	IncludeDeprecated   bool
	IncludeExperimental bool
}

// Context is the classified cursor position handed to every provider.
type Context struct {
	Kind      Kind
	Model     *model.Model
	Doc       *xmlast.Document
	Element   *xmlast.Element
	Attribute *xmlast.Attribute // nil for element names and blank attribute positions

	// Token is the full span of the token under the cursor. Typed is the part
	// of it before the cursor.
	Token  xmlast.Span
	Typed  string
	Offset int

	Settings Settings
}

// Classify determines the context kind at offset.
func Classify(m *model.Model, doc *xmlast.Document, offset int, settings Settings) *Context {
	ctx := &Context{Model: m, Doc: doc, Offset: offset, Settings: settings}
	if doc == nil || offset < 0 || offset > len(doc.Text) {
		return ctx
	}

	hit := doc.At(offset)
	switch hit.Kind {
	case xmlast.HitElementName:
		ctx.Kind = KindElementName
	case xmlast.HitAttributeKey:
		ctx.Kind = KindAttributeName
	case xmlast.HitAttributeValue:
		ctx.Kind = KindAttributeValue
	default:
		return ctx
	}

	ctx.Element = hit.Element
	ctx.Attribute = hit.Attribute
	ctx.Token = hit.Token
	ctx.Typed = doc.Text[hit.Token.Start:offset]
	return ctx
}

// allowed reports whether a node with meta may be suggested.
func (c *Context) allowed(meta model.Meta) bool {
	if !meta.IsPublic() {
		return false
	}
	if meta.IsDeprecated() && !c.Settings.IncludeDeprecated {
		return false
	}
	if meta.Experimental && !c.Settings.IncludeExperimental {
		return false
	}
	return true
}
