package xmlast

import "strings"

// Span is a half-open byte range [Start, End) into the document text.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes in the span.
func (s Span) Len() int { return s.End - s.Start }

// Contains reports whether off lies in [Start, End]. The end is inclusive so a
// cursor placed right after a token still belongs to it.
func (s Span) Contains(off int) bool { return off >= s.Start && off <= s.End }

// Document is a parsed markup document.
type Document struct {
	Text  string
	Roots []*Element // top-level elements in document order
}

// Root returns the first top-level element, or nil for an empty document.
func (d *Document) Root() *Element {
	if d == nil || len(d.Roots) == 0 {
		return nil
	}
	return d.Roots[0]
}

// Walk visits every element depth-first in document order. Returning false
// from fn skips the element's children.
func (d *Document) Walk(fn func(*Element) bool) {
	if d == nil {
		return
	}
	for _, root := range d.Roots {
		root.walk(fn)
	}
}

// Elements returns every element in document order.
func (d *Document) Elements() []*Element {
	var out []*Element
	d.Walk(func(el *Element) bool {
		out = append(out, el)
		return true
	})
	return out
}

// Element is a markup element, possibly incomplete.
type Element struct {
	Name     string // qualified name as written, e.g. "mvc:View"; empty for a bare "<"
	Prefix   string
	Local    string
	NameSpan Span

	// StartTag spans from "<" through ">" (or "/>"). For an unterminated start
	// tag it ends where scanning stopped.
	StartTag Span
	// TagEnd is the offset of the closing ">" or "/>" of the start tag, or the
	// end of StartTag when the tag is unterminated.
	TagEnd int
	// Span covers the whole element including its end tag when present.
	Span Span

	Attributes []*Attribute
	Children   []*Element
	Parent     *Element

	// Namespaces holds the xmlns declarations of this element, keyed by prefix.
	// The default namespace uses the empty prefix.
	Namespaces map[string]string

	SelfClosing    bool
	StartTagClosed bool
	Closed         bool // self-closing or matched by an end tag
}

// IsRoot reports whether the element sits at the top level of the document.
func (e *Element) IsRoot() bool { return e.Parent == nil }

// Attribute returns the first attribute with the given key.
func (e *Element) Attribute(key string) (*Attribute, bool) {
	for _, a := range e.Attributes {
		if a.Key == key {
			return a, true
		}
	}
	return nil, false
}

// ID returns the value of the "id" attribute.
func (e *Element) ID() (string, bool) {
	a, ok := e.Attribute("id")
	if !ok || !a.HasValue {
		return "", false
	}
	return a.Value, true
}

// Siblings returns the other children of the element's parent.
func (e *Element) Siblings() []*Element {
	if e.Parent == nil {
		return nil
	}
	out := make([]*Element, 0, len(e.Parent.Children))
	for _, c := range e.Parent.Children {
		if c != e {
			out = append(out, c)
		}
	}
	return out
}

func (e *Element) walk(fn func(*Element) bool) {
	if !fn(e) {
		return
	}
	for _, c := range e.Children {
		c.walk(fn)
	}
}

// Attribute is a key/value pair inside a start tag.
type Attribute struct {
	Key     string
	Prefix  string
	Local   string
	KeySpan Span

	HasValue bool
	Value    string // raw text between the quotes, entities not decoded
	// ValueSpan includes the quotes. For an unterminated value it ends where
	// scanning stopped.
	ValueSpan Span
	Quote     byte // '"', '\'' or 0 for an unquoted value
	Closed    bool // closing quote present

	Parent *Element
}

// ContentSpan returns the span of the value text without the quotes.
func (a *Attribute) ContentSpan() Span {
	if !a.HasValue {
		return Span{Start: a.KeySpan.End, End: a.KeySpan.End}
	}
	s := a.ValueSpan
	if a.Quote != 0 {
		s.Start++
		if a.Closed {
			s.End--
		}
	}
	return s
}

// IsNamespaceDecl reports whether the attribute is an xmlns declaration.
func (a *Attribute) IsNamespaceDecl() bool {
	return a.Key == "xmlns" || a.Prefix == "xmlns"
}

// SplitName splits a qualified name at the first colon.
func SplitName(name string) (prefix, local string) {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}
