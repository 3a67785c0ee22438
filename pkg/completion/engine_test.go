package completion

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/xmlviewls/internal/testutil"
	"github.com/leapstack-labs/xmlviewls/pkg/model"
	"github.com/leapstack-labs/xmlviewls/pkg/xmlast"
)

const cursor = "⇶"

type scenario struct {
	model    *model.Model
	xml      string
	settings Settings
}

// context parses the snippet and classifies the cursor marker position.
func (s scenario) context(t *testing.T) *Context {
	t.Helper()
	off := strings.Index(s.xml, cursor)
	require.GreaterOrEqual(t, off, 0, "missing cursor marker")
	text := strings.Replace(s.xml, cursor, "", 1)

	m := s.model
	if m == nil {
		m = testutil.UI5Model()
	}
	return Classify(m, xmlast.Parse(text), off, s.settings)
}

func (s scenario) run(t *testing.T, list ...provider) []Candidate {
	t.Helper()
	ctx := s.context(t)
	if len(list) == 0 {
		list = providers[ctx.Kind]
	}
	return run(ctx, list)
}

func displayNames(candidates []Candidate) []string {
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.DisplayName)
	}
	return out
}

const pageView = `
<mvc:View
  xmlns:mvc="sap.ui.core.mvc"
  xmlns="sap.m">
  <Page>
    %s
  </Page>
</mvc:View>`

func inPage(body string) string {
	return strings.Replace(pageView, "%s", body, 1)
}

var pageAggregations = []string{
	"content", "customData", "customHeader", "dependents", "dragDropConfig",
	"footer", "headerContent", "landmarkInfo", "layoutData", "subHeader", "tooltip",
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		xml   string
		kind  Kind
		typed string
	}{
		{"element name", inPage("<cu⇶"), KindElementName, "cu"},
		{"attribute name", `<Page xmlns="sap.m" ti⇶/>`, KindAttributeName, "ti"},
		{"attribute value", `<Page xmlns="sap.m" busy="t⇶"/>`, KindAttributeValue, "t"},
		{"text content", inPage("hello ⇶ world"), KindNone, ""},
		{"outside any tag", "⇶", KindNone, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := scenario{xml: tt.xml}.context(t)
			assert.Equal(t, tt.kind, ctx.Kind)
			assert.Equal(t, tt.typed, ctx.Typed)
		})
	}
}

func TestProviderTable(t *testing.T) {
	for k := KindNone; k < kindCount; k++ {
		assert.NotEqual(t, "unknown", k.String())
		if k == KindNone {
			assert.Empty(t, providers[k])
			continue
		}
		assert.NotEmpty(t, providers[k], "kind %s has no providers", k)
	}
}

func TestAggregationSuggestions(t *testing.T) {
	t.Run("direct and borrowed aggregations", func(t *testing.T) {
		got := scenario{xml: inPage("<⇶")}.run(t, aggregationSuggestions)

		assert.Equal(t, pageAggregations, displayNames(got))
		assert.NotContains(t, displayNames(got), "_internalHeader", "hidden aggregations are never offered")
		for _, c := range got {
			assert.Equal(t, CandidateAggregation, c.Kind)
			assert.Equal(t, 0, c.Range.Len())
		}
	})

	t.Run("pre-existing aggregations are excluded", func(t *testing.T) {
		body := "<content></content>\n<customHeader></customHeader>\n<footer></footer>\n<⇶"
		got := displayNames(scenario{xml: inPage(body)}.run(t, aggregationSuggestions))

		assert.Equal(t, []string{
			"customData", "dependents", "dragDropConfig", "headerContent",
			"landmarkInfo", "layoutData", "subHeader", "tooltip",
		}, got)
	})

	t.Run("true prefix", func(t *testing.T) {
		got := scenario{xml: inPage("<cu⇶")}.run(t, aggregationSuggestions)

		assert.Equal(t, []string{"customData", "customHeader"}, displayNames(got))
		for _, c := range got {
			assert.Equal(t, 2, c.Range.Len(), "replacement covers the typed token")
		}
	})

	t.Run("substring match is case-insensitive", func(t *testing.T) {
		got := scenario{xml: inPage("<Data⇶")}.run(t, aggregationSuggestions)
		assert.Equal(t, []string{"customData", "layoutData"}, displayNames(got))
	})

	t.Run("prefixed tag yields nothing", func(t *testing.T) {
		m := testutil.UI5ModelWith(func(doc *model.APIDocument) {
			page := testutil.FindClass(doc, "sap.m.Page")
			page.Aggregations = append(page.Aggregations, model.APIMember{Name: "mvc:bamba"})
		})
		got := scenario{model: m, xml: inPage("<mvc:ba⇶")}.run(t, aggregationSuggestions)
		assert.Empty(t, got)
	})

	t.Run("document root yields nothing", func(t *testing.T) {
		assert.Empty(t, scenario{xml: "<⇶"}.run(t, aggregationSuggestions))
	})

	t.Run("class outside the root type yields nothing", func(t *testing.T) {
		m := testutil.UI5ModelWith(func(doc *model.APIDocument) {
			component := testutil.FindClass(doc, "sap.ui.core.Component")
			component.Aggregations = append(component.Aggregations, model.APIMember{Name: "dummy"})
		})
		xml := `
<mvc:View xmlns="sap.ui.core">
  <Component>
    <⇶
  </Component>
</mvc:View>`
		assert.Empty(t, scenario{model: m, xml: xml}.run(t, aggregationSuggestions))
		assert.Empty(t, scenario{model: m, xml: xml}.run(t))
	})

	t.Run("deprecated aggregations behind a setting", func(t *testing.T) {
		m := testutil.UI5ModelWith(func(doc *model.APIDocument) {
			page := testutil.FindClass(doc, "sap.m.Page")
			page.Aggregations = append(page.Aggregations, model.APIMember{
				Name: "oldStuff", Deprecated: &model.APIDeprecation{Since: "1.2"},
			})
		})
		s := scenario{model: m, xml: inPage("<old⇶")}
		assert.Empty(t, s.run(t, aggregationSuggestions))

		s.settings.IncludeDeprecated = true
		got := s.run(t, aggregationSuggestions)
		require.Len(t, got, 1)
		assert.True(t, got[0].Deprecated)
	})

	t.Run("aggregation of a prefixed parent keeps its prefix", func(t *testing.T) {
		xml := `<mvc:View xmlns:mvc="sap.ui.core.mvc" xmlns:m="sap.m"><m:Page><foot⇶</m:Page></mvc:View>`
		got := scenario{xml: xml}.run(t, aggregationSuggestions)
		require.Len(t, got, 1)
		assert.Equal(t, "footer", got[0].DisplayName)
		assert.Equal(t, "m:footer", got[0].Text)
	})
}

func TestClassSuggestions(t *testing.T) {
	t.Run("inside an aggregation element", func(t *testing.T) {
		xml := inPage("<customHeader><⇶</customHeader>")
		got := scenario{xml: xml}.run(t, classSuggestions)
		assert.Equal(t, []string{"Bar"}, displayNames(got), "only IBar implementors")
		assert.Equal(t, "sap.m.Bar", got[0].Target)
	})

	t.Run("through the default aggregation", func(t *testing.T) {
		got := displayNames(scenario{xml: inPage("<Bu⇶")}.run(t, classSuggestions))
		assert.Equal(t, []string{"Button"}, got, "unbound namespaces and deprecated classes are skipped")
	})

	t.Run("prefixed token limits to that namespace", func(t *testing.T) {
		xml := `<mvc:View xmlns:mvc="sap.ui.core.mvc" xmlns="sap.m"><mvc:⇶</mvc:View>`
		got := scenario{xml: xml}.run(t, classSuggestions)
		assert.Equal(t, []string{"mvc:View"}, displayNames(got))
		assert.Equal(t, 4, got[0].Range.Len())
	})

	t.Run("abstract and experimental classes", func(t *testing.T) {
		got := displayNames(scenario{xml: inPage("<⇶")}.run(t, classSuggestions))
		assert.NotContains(t, got, "TooltipBase")
		assert.NotContains(t, got, "ExperimentalPanel")

		s := scenario{xml: inPage("<⇶"), settings: Settings{IncludeExperimental: true}}
		assert.Contains(t, displayNames(s.run(t, classSuggestions)), "ExperimentalPanel")
	})
}

func TestAttributeNameSuggestions(t *testing.T) {
	t.Run("properties and events", func(t *testing.T) {
		xml := `<Button xmlns="sap.m" text="Go" ⇶/>`
		got := displayNames(scenario{xml: xml}.run(t))
		assert.Equal(t, []string{
			"busy", "busyIndicatorDelay", "enabled", "icon", "press",
			"type", "validateFieldGroup", "visible",
		}, got, "declared attributes are excluded")
	})

	t.Run("typed key is not excluded by itself", func(t *testing.T) {
		xml := `<Button xmlns="sap.m" tex⇶t="Go"/>`
		assert.Equal(t, []string{"text"}, displayNames(scenario{xml: xml}.run(t)))
	})

	t.Run("namespace declarations", func(t *testing.T) {
		xml := `<mvc:View xmlns:mvc="sap.ui.core.mvc" xmlns="sap.m" xmlns:⇶/>`
		got := scenario{xml: xml}.run(t, namespaceKeySuggestions)
		names := displayNames(got)
		assert.Contains(t, names, "xmlns:core")
		assert.Contains(t, names, "xmlns:commons")
		assert.NotContains(t, names, "xmlns:m", "sap.m is already bound")
		assert.NotContains(t, names, "xmlns:mvc")
	})
}

func TestAttributeValueSuggestions(t *testing.T) {
	t.Run("boolean with empty value", func(t *testing.T) {
		xml := inPage(`<Button busy="⇶"/>`)
		ctx := scenario{xml: xml}.context(t)
		got := run(ctx, providers[ctx.Kind])

		require.Equal(t, []string{"false", "true"}, displayNames(got))
		for _, c := range got {
			assert.Equal(t, ctx.Offset, c.Range.Start)
			assert.Equal(t, ctx.Offset, c.Range.End, "quotes are not replaced")
			assert.Equal(t, c.DisplayName, c.Text)
		}
	})

	t.Run("boolean with partial value", func(t *testing.T) {
		xml := inPage(`<Button busy="t⇶a"/>`)
		ctx := scenario{xml: xml}.context(t)
		got := run(ctx, providers[ctx.Kind])

		require.Equal(t, []string{"true"}, displayNames(got))
		assert.Equal(t, ctx.Offset-1, got[0].Range.Start)
		assert.Equal(t, 2, got[0].Range.Len(), "replacement covers the value content only")
	})

	t.Run("enum values", func(t *testing.T) {
		got := displayNames(scenario{xml: inPage(`<Button type="⇶"/>`)}.run(t))
		assert.Equal(t, []string{"Accept", "Back", "Default", "Emphasized", "Reject", "Transparent"}, got)
	})

	t.Run("namespace values", func(t *testing.T) {
		xml := `<mvc:View xmlns:mvc="sap.ui.core.mvc" xmlns:c="sap.ui.co⇶"/>`
		got := displayNames(scenario{xml: xml}.run(t))
		assert.Equal(t, []string{"sap.ui.commons", "sap.ui.core", "sap.ui.core.mvc"}, got)
	})

	t.Run("unknown property", func(t *testing.T) {
		assert.Empty(t, scenario{xml: inPage(`<Button nope="⇶"/>`)}.run(t))
	})
}

func TestRun_DedupAndSort(t *testing.T) {
	ctx := &Context{Kind: KindAttributeValue, Model: testutil.UI5Model()}
	dup := func(*Context) []Candidate {
		return []Candidate{
			{DisplayName: "b", Target: "x.b"},
			{DisplayName: "a", Target: "x.a"},
			{DisplayName: "b", Target: "x.b"},
			{DisplayName: "b", Target: "y.b"},
		}
	}

	got := run(ctx, []provider{dup})
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].DisplayName)
	assert.Equal(t, "x.b", got[1].Target, "stable order among equal names")
	assert.Equal(t, "y.b", got[2].Target)
}

func TestMatches(t *testing.T) {
	tests := []struct {
		display, typed string
		expected       bool
	}{
		{"customData", "data", true},
		{"customHeader", "cu", true},
		{"customData", "cu", true},
		{"content", "cu", false},
		{"footer", "cu", false},
		{"Überschrift", "üBER", true},
		{"anything", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.display+"/"+tt.typed, func(t *testing.T) {
			folded := foldedToken(tt.typed)
			assert.Equal(t, tt.expected, matches(tt.display, folded))
		})
	}
}
