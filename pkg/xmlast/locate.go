package xmlast

// HitKind tells which part of the markup an offset falls on.
type HitKind int

// Hit kinds.
const (
	HitNone HitKind = iota
	HitElementName
	HitAttributeKey
	HitAttributeValue
)

// Hit describes the markup under an offset. Token is the span of the token the
// offset belongs to; for a value it excludes the quotes, and for a position in
// the whitespace between attributes it is empty.
type Hit struct {
	Kind      HitKind
	Element   *Element
	Attribute *Attribute
	Token     Span
}

// At locates the markup token under offset.
func (d *Document) At(offset int) Hit {
	el := d.startTagAt(offset)
	if el == nil {
		return Hit{}
	}

	if el.NameSpan.Contains(offset) {
		return Hit{Kind: HitElementName, Element: el, Token: el.NameSpan}
	}

	for _, a := range el.Attributes {
		if a.KeySpan.Contains(offset) {
			return Hit{Kind: HitAttributeKey, Element: el, Attribute: a, Token: a.KeySpan}
		}
		if !a.HasValue || a.Quote == 0 {
			continue
		}
		content := a.ContentSpan()
		if content.Contains(offset) {
			return Hit{Kind: HitAttributeValue, Element: el, Attribute: a, Token: content}
		}
		if offset > a.KeySpan.End && offset < a.ValueSpan.End {
			// Between key and value, or on a quote.
			return Hit{Element: el}
		}
	}

	if offset > 0 && offset <= len(d.Text) && isSpace(d.Text[offset-1]) {
		return Hit{Kind: HitAttributeKey, Element: el, Token: Span{Start: offset, End: offset}}
	}
	return Hit{Element: el}
}

// startTagAt returns the element whose start tag contains offset.
func (d *Document) startTagAt(offset int) *Element {
	var found *Element
	d.Walk(func(el *Element) bool {
		if found != nil {
			return false
		}
		if offset > el.StartTag.Start && offset <= el.TagEnd {
			found = el
			return false
		}
		return el.Span.Contains(offset)
	})
	return found
}

// ElementAt returns the innermost element whose span contains offset.
func (d *Document) ElementAt(offset int) *Element {
	var found *Element
	d.Walk(func(el *Element) bool {
		if offset >= el.Span.Start && offset < el.Span.End {
			found = el
			return true
		}
		return false
	})
	return found
}
