package xmlast

import "strings"

// Parse builds a Document from text. It never fails.
func Parse(text string) *Document {
	p := &parser{input: text, doc: &Document{Text: text}}
	p.run()
	return p.doc
}

type parser struct {
	input string
	pos   int
	doc   *Document
	stack []*Element // open elements
}

func (p *parser) run() {
	for p.pos < len(p.input) {
		if p.input[p.pos] != '<' {
			p.skipText()
			continue
		}

		switch {
		case strings.HasPrefix(p.input[p.pos:], "<?"):
			p.skipPast("?>")
		case strings.HasPrefix(p.input[p.pos:], "<!--"):
			p.skipPast("-->")
		case strings.HasPrefix(p.input[p.pos:], "<![CDATA["):
			p.skipPast("]]>")
		case strings.HasPrefix(p.input[p.pos:], "<!"):
			p.skipPast(">")
		case strings.HasPrefix(p.input[p.pos:], "</"):
			p.endTag()
		default:
			p.startTag()
		}
	}

	// Elements never closed extend to the end of the input.
	for _, el := range p.stack {
		el.Span.End = len(p.input)
	}
	p.stack = nil
}

func (p *parser) skipText() {
	if i := strings.IndexByte(p.input[p.pos:], '<'); i >= 0 {
		p.pos += i
		return
	}
	p.pos = len(p.input)
}

func (p *parser) skipPast(terminator string) {
	if i := strings.Index(p.input[p.pos:], terminator); i >= 0 {
		p.pos += i + len(terminator)
		return
	}
	p.pos = len(p.input)
}

func (p *parser) top() *Element {
	if len(p.stack) == 0 {
		return nil
	}
	return p.stack[len(p.stack)-1]
}

func (p *parser) attach(el *Element) {
	if parent := p.top(); parent != nil {
		el.Parent = parent
		parent.Children = append(parent.Children, el)
		return
	}
	p.doc.Roots = append(p.doc.Roots, el)
}

func (p *parser) startTag() {
	el := &Element{}
	start := p.pos
	p.pos++ // '<'

	nameStart := p.pos
	p.pos = p.scanName(p.pos)
	el.Name = p.input[nameStart:p.pos]
	el.Prefix, el.Local = SplitName(el.Name)
	el.NameSpan = Span{Start: nameStart, End: p.pos}

	for {
		p.skipSpace()
		if p.pos >= len(p.input) || p.input[p.pos] == '<' {
			el.TagEnd = p.pos
			break
		}
		if p.input[p.pos] == '>' {
			el.TagEnd = p.pos
			el.StartTagClosed = true
			p.pos++
			break
		}
		if strings.HasPrefix(p.input[p.pos:], "/>") {
			el.TagEnd = p.pos
			el.StartTagClosed = true
			el.SelfClosing = true
			el.Closed = true
			p.pos += 2
			break
		}
		if attr := p.attribute(); attr != nil {
			attr.Parent = el
			el.Attributes = append(el.Attributes, attr)
		}
	}

	el.StartTag = Span{Start: start, End: p.pos}
	el.Span = el.StartTag
	el.Namespaces = namespaceDecls(el.Attributes)

	p.attach(el)
	if el.StartTagClosed && !el.SelfClosing {
		p.stack = append(p.stack, el)
	}
}

// attribute scans one attribute at p.pos. Stray characters are consumed and
// yield nil.
func (p *parser) attribute() *Attribute {
	keyStart := p.pos
	p.pos = p.scanName(p.pos)
	if p.pos == keyStart {
		// "=", "/" or a quote with no key in front of it.
		if c := p.input[p.pos]; c == '"' || c == '\'' {
			p.scanQuoted()
		} else {
			p.pos++
		}
		return nil
	}

	attr := &Attribute{
		Key:     p.input[keyStart:p.pos],
		KeySpan: Span{Start: keyStart, End: p.pos},
	}
	attr.Prefix, attr.Local = SplitName(attr.Key)

	eq := p.peekNonSpace(p.pos)
	if eq >= len(p.input) || p.input[eq] != '=' {
		return attr
	}
	attr.HasValue = true
	p.pos = eq + 1
	p.skipSpace()

	valueStart := p.pos
	if p.pos < len(p.input) && (p.input[p.pos] == '"' || p.input[p.pos] == '\'') {
		attr.Quote = p.input[p.pos]
		attr.Closed = p.scanQuoted()
		attr.ValueSpan = Span{Start: valueStart, End: p.pos}
		content := attr.ContentSpan()
		attr.Value = p.input[content.Start:content.End]
		return attr
	}

	p.pos = p.scanName(p.pos)
	attr.ValueSpan = Span{Start: valueStart, End: p.pos}
	attr.Value = p.input[valueStart:p.pos]
	return attr
}

// scanQuoted consumes a quoted value starting at the opening quote. A value
// cannot contain "<"; hitting one (or the end of input) leaves it unterminated.
func (p *parser) scanQuoted() bool {
	quote := p.input[p.pos]
	p.pos++
	for p.pos < len(p.input) {
		switch p.input[p.pos] {
		case quote:
			p.pos++
			return true
		case '<':
			return false
		}
		p.pos++
	}
	return false
}

func (p *parser) endTag() {
	start := p.pos
	p.pos += 2 // "</"
	nameStart := p.pos
	p.pos = p.scanName(p.pos)
	name := p.input[nameStart:p.pos]

	p.skipSpace()
	if p.pos < len(p.input) && p.input[p.pos] == '>' {
		p.pos++
	}

	if name == "" {
		return
	}
	for i := len(p.stack) - 1; i >= 0; i-- {
		if p.stack[i].Name != name {
			continue
		}
		// Everything opened after the match is implicitly closed here.
		for _, open := range p.stack[i+1:] {
			open.Span.End = start
		}
		p.stack[i].Span.End = p.pos
		p.stack[i].Closed = true
		p.stack = p.stack[:i]
		return
	}
}

func (p *parser) skipSpace() {
	for p.pos < len(p.input) && isSpace(p.input[p.pos]) {
		p.pos++
	}
}

func (p *parser) peekNonSpace(i int) int {
	for i < len(p.input) && isSpace(p.input[i]) {
		i++
	}
	return i
}

// scanName returns the end of the name starting at i.
func (p *parser) scanName(i int) int {
	for i < len(p.input) && isNameChar(p.input[i]) {
		i++
	}
	return i
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isNameChar(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '<', '>', '/', '=', '"', '\'':
		return false
	}
	return true
}

func namespaceDecls(attrs []*Attribute) map[string]string {
	var ns map[string]string
	for _, a := range attrs {
		if !a.IsNamespaceDecl() || !a.HasValue {
			continue
		}
		if ns == nil {
			ns = make(map[string]string)
		}
		if a.Key == "xmlns" {
			ns[""] = a.Value
		} else {
			ns[a.Local] = a.Value
		}
	}
	return ns
}
