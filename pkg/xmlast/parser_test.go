package xmlast

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cursor = "⇶"

// withCursor strips the cursor marker and returns the text and its offset.
func withCursor(t *testing.T, marked string) (string, int) {
	t.Helper()
	off := strings.Index(marked, cursor)
	require.GreaterOrEqual(t, off, 0, "missing cursor marker")
	return strings.Replace(marked, cursor, "", 1), off
}

func TestParse_WellFormed(t *testing.T) {
	text := `<?xml version="1.0" encoding="UTF-8"?>
<!-- a view -->
<mvc:View xmlns:mvc="sap.ui.core.mvc" xmlns="sap.m">
  <Page title='Hello'>
    <content>
      <Button text="Press" /><![CDATA[ <notAnElement/> ]]>
    </content>
  </Page>
</mvc:View>`

	doc := Parse(text)
	require.Len(t, doc.Roots, 1)

	view := doc.Root()
	assert.Equal(t, "mvc:View", view.Name)
	assert.Equal(t, "mvc", view.Prefix)
	assert.Equal(t, "View", view.Local)
	assert.True(t, view.Closed)
	assert.Equal(t, map[string]string{"mvc": "sap.ui.core.mvc", "": "sap.m"}, view.Namespaces)
	assert.Equal(t, strings.Index(text, "<mvc:View"), view.Span.Start)
	assert.Equal(t, len(text), view.Span.End)

	require.Len(t, view.Children, 1)
	page := view.Children[0]
	assert.Equal(t, "Page", page.Name)
	assert.Same(t, view, page.Parent)

	title, ok := page.Attribute("title")
	require.True(t, ok)
	assert.Equal(t, "Hello", title.Value)
	assert.Equal(t, byte('\''), title.Quote)
	assert.Equal(t, "Hello", text[title.ContentSpan().Start:title.ContentSpan().End])

	require.Len(t, page.Children, 1)
	content := page.Children[0]
	require.Len(t, content.Children, 1)
	button := content.Children[0]
	assert.True(t, button.SelfClosing)
	assert.Equal(t, "Button", text[button.NameSpan.Start:button.NameSpan.End])

	var names []string
	for _, el := range doc.Elements() {
		names = append(names, el.Name)
	}
	assert.Equal(t, []string{"mvc:View", "Page", "content", "Button"}, names)
}

func TestParse_Partial(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		verify func(t *testing.T, doc *Document)
	}{
		{
			name: "bare open bracket",
			text: "<Page>\n  <\n</Page>",
			verify: func(t *testing.T, doc *Document) {
				page := doc.Root()
				require.Len(t, page.Children, 1)
				assert.Equal(t, "", page.Children[0].Name)
				assert.True(t, page.Closed, "end tag still matches the page")
			},
		},
		{
			name: "unterminated start tag at EOF",
			text: `<Page><Button text="a`,
			verify: func(t *testing.T, doc *Document) {
				page := doc.Root()
				require.Len(t, page.Children, 1)
				btn := page.Children[0]
				assert.False(t, btn.StartTagClosed)
				require.Len(t, btn.Attributes, 1)
				assert.False(t, btn.Attributes[0].Closed)
				assert.Equal(t, "a", btn.Attributes[0].Value)
				assert.Equal(t, len(doc.Text), page.Span.End)
			},
		},
		{
			name: "unterminated value stops at next tag",
			text: "<Page busy=\"tr\n<Button/></Page>",
			verify: func(t *testing.T, doc *Document) {
				page := doc.Root()
				busy, ok := page.Attribute("busy")
				require.True(t, ok)
				assert.Equal(t, "tr\n", busy.Value)
				assert.False(t, page.StartTagClosed)
				require.Len(t, doc.Roots, 2, "unterminated tag is not a parent")
				assert.Equal(t, "Button", doc.Roots[1].Name)
			},
		},
		{
			name: "unmatched end tag is ignored",
			text: "<Page></Bar><Text/></Page>",
			verify: func(t *testing.T, doc *Document) {
				page := doc.Root()
				require.Len(t, page.Children, 1)
				assert.True(t, page.Closed)
			},
		},
		{
			name: "end tag closes inner open elements",
			text: "<Page><content><Text></Page>",
			verify: func(t *testing.T, doc *Document) {
				page := doc.Root()
				assert.True(t, page.Closed)
				content := page.Children[0]
				assert.False(t, content.Closed)
				assert.Equal(t, strings.Index(doc.Text, "</Page>"), content.Span.End)
			},
		},
		{
			name: "attribute without value",
			text: "<Page busy title=\"x\"/>",
			verify: func(t *testing.T, doc *Document) {
				page := doc.Root()
				require.Len(t, page.Attributes, 2)
				assert.False(t, page.Attributes[0].HasValue)
				assert.Equal(t, "x", page.Attributes[1].Value)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.verify(t, Parse(tt.text))
		})
	}
}

func TestDocument_At(t *testing.T) {
	tests := []struct {
		name     string
		marked   string
		kind     HitKind
		element  string
		attr     string
		typed    string // text between token start and cursor
		tokenLen int
	}{
		{"empty element name", "<Page>\n  <⇶\n</Page>", HitElementName, "", "", "", 0},
		{"partial element name", "<Page>\n  <cu⇶stom\n</Page>", HitElementName, "custom", "", "cu", 6},
		{"prefixed element name", "<Page>\n  <mvc:ba⇶</Page>", HitElementName, "mvc:ba", "", "mvc:ba", 6},
		{"attribute key", `<Page bu⇶sy="true">`, HitAttributeKey, "Page", "busy", "bu", 4},
		{"attribute key in whitespace", `<Page ⇶>`, HitAttributeKey, "Page", "", "", 0},
		{"empty value", `<Page busy="⇶">`, HitAttributeValue, "Page", "busy", "", 0},
		{"value prefix", `<Page busy="t⇶a">`, HitAttributeValue, "Page", "busy", "t", 2},
		{"unterminated value", `<Page busy="t⇶`, HitAttributeValue, "Page", "busy", "t", 1},
		{"on quote", `<Page busy=⇶"true">`, HitNone, "Page", "", "", 0},
		{"element content", "<Page>⇶</Page>", HitNone, "", "", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, off := withCursor(t, tt.marked)
			doc := Parse(text)

			hit := doc.At(off)
			assert.Equal(t, tt.kind, hit.Kind)
			if tt.element != "" {
				require.NotNil(t, hit.Element)
				assert.Equal(t, tt.element, hit.Element.Name)
			}
			if tt.attr != "" {
				require.NotNil(t, hit.Attribute)
				assert.Equal(t, tt.attr, hit.Attribute.Key)
			}
			if tt.kind != HitNone {
				assert.Equal(t, tt.typed, text[hit.Token.Start:off])
				assert.Equal(t, tt.tokenLen, hit.Token.Len())
			}
		})
	}
}

func TestDocument_ElementAt(t *testing.T) {
	text, off := withCursor(t, "<Page><content><Text>a⇶b</Text></content></Page>")
	doc := Parse(text)

	el := doc.ElementAt(off)
	require.NotNil(t, el)
	assert.Equal(t, "Text", el.Name)
	assert.Nil(t, Parse("").ElementAt(0))
}

func TestElement_Siblings(t *testing.T) {
	doc := Parse("<Page><content/><footer/><content/></Page>")
	page := doc.Root()
	require.Len(t, page.Children, 3)

	sibs := page.Children[1].Siblings()
	require.Len(t, sibs, 2)
	assert.Equal(t, "content", sibs[0].Name)
	assert.Empty(t, page.Siblings())
}

func TestDocument_LineCol(t *testing.T) {
	doc := Parse("<a>\n  <bé x=\"1\"/>\n</a>")

	tests := []struct {
		offset    int
		line, col int
	}{
		{0, 1, 1},
		{3, 1, 4},
		{4, 2, 1},
		{7, 2, 4},
		{10, 2, 6}, // after the two-byte é
		{-5, 1, 1},
		{1000, 3, 5},
	}
	for _, tt := range tests {
		line, col := doc.LineCol(tt.offset)
		assert.Equal(t, tt.line, line, "line at %d", tt.offset)
		assert.Equal(t, tt.col, col, "col at %d", tt.offset)
	}
}
