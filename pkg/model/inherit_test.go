package model_test

import (
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/xmlviewls/internal/testutil"
	"github.com/leapstack-labs/xmlviewls/pkg/model"
)

func mustClass(t *testing.T, m *model.Model, name string) *model.Class {
	t.Helper()
	c, ok := m.Class(name)
	require.True(t, ok, "class %s not in model", name)
	return c
}

func names[T interface{ MemberName() string }](members map[string]T) []string {
	out := make([]string, 0, len(members))
	for name := range members {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func TestSuperclassChain(t *testing.T) {
	m := testutil.UI5Model()

	chain, err := model.SuperclassChain(m, mustClass(t, m, "sap.m.Page"))
	require.NoError(t, err)

	var got []string
	for _, c := range chain {
		got = append(got, c.Name)
	}
	assert.Equal(t, []string{"sap.ui.core.Control", "sap.ui.core.Element", "sap.ui.base.ManagedObject"}, got)
	assert.Empty(t, chain[len(chain)-1].Extends, "chain must end at a class without superclass")
}

func TestSuperclassChain_Root(t *testing.T) {
	m := testutil.UI5Model()

	chain, err := model.SuperclassChain(m, mustClass(t, m, "sap.ui.base.ManagedObject"))
	require.NoError(t, err)
	assert.Empty(t, chain)
}

func TestSuperclassChain_UnknownSuperclassEndsChain(t *testing.T) {
	m, err := model.NewBuilder("SAPUI5", "1.0.0").
		AddClass(&model.Class{Name: "a.B", Extends: "a.Missing"}).
		Build()
	require.NoError(t, err)

	chain, err := model.SuperclassChain(m, mustClass(t, m, "a.B"))
	require.NoError(t, err)
	assert.Empty(t, chain)
}

func TestSuperclassChain_Cycle(t *testing.T) {
	m, err := model.NewBuilder("SAPUI5", "1.0.0").
		AddClass(&model.Class{Name: "x.A", Extends: "x.B"}).
		AddClass(&model.Class{Name: "x.B", Extends: "x.C"}).
		AddClass(&model.Class{Name: "x.C", Extends: "x.A"}).
		Build()
	require.NoError(t, err, "cycles are detected on traversal, not on build")

	chain, err := model.SuperclassChain(m, mustClass(t, m, "x.A"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrMalformedModel))

	var cycleErr *model.CycleError
	require.True(t, errors.As(err, &cycleErr))
	assert.Equal(t, "x.A", cycleErr.Revisited)
	assert.Equal(t, []string{"x.B", "x.C"}, cycleErr.Chain)

	require.Len(t, chain, 2, "partial chain is returned")
	assert.Equal(t, "x.B", chain[0].Name)
	assert.Equal(t, "x.C", chain[1].Name)
}

func TestSuperclassChain_SelfCycle(t *testing.T) {
	m, err := model.NewBuilder("SAPUI5", "1.0.0").
		AddClass(&model.Class{Name: "x.Self", Extends: "x.Self"}).
		Build()
	require.NoError(t, err)

	chain, err := model.SuperclassChain(m, mustClass(t, m, "x.Self"))
	assert.ErrorIs(t, err, model.ErrMalformedModel)
	assert.Empty(t, chain)
}

func TestFlattenAggregations(t *testing.T) {
	m := testutil.UI5Model()
	page := mustClass(t, m, "sap.m.Page")

	flat := model.FlattenAggregations(m, page)

	assert.Equal(t, []string{
		"_internalHeader", "content", "customData", "customHeader", "dependents",
		"dragDropConfig", "footer", "headerContent", "landmarkInfo", "layoutData",
		"subHeader", "tooltip",
	}, names(flat))
	assert.Equal(t, "sap.m.Page", flat["content"].Owner)
	assert.Equal(t, "sap.ui.core.Element", flat["customData"].Owner)
}

func TestFlatten_MostDerivedWins(t *testing.T) {
	m := testutil.UI5ModelWith(func(doc *model.APIDocument) {
		page := testutil.FindClass(doc, "sap.m.Page")
		page.Aggregations = append(page.Aggregations, model.APIMember{
			Name: "tooltip", Type: "string", Cardinality: "0..1",
		})
	})

	flat := model.FlattenAggregations(m, mustClass(t, m, "sap.m.Page"))
	require.Contains(t, flat, "tooltip")
	assert.Equal(t, "sap.m.Page", flat["tooltip"].Owner)
	assert.Equal(t, "string", flat["tooltip"].Type)

	// Every ancestor name is still present.
	element := mustClass(t, m, "sap.ui.core.Element")
	for _, a := range element.Aggregations {
		assert.Contains(t, flat, a.Name)
	}
}

func TestFlattenPropertiesAndEvents(t *testing.T) {
	m := testutil.UI5Model()
	button := mustClass(t, m, "sap.m.Button")

	assert.Equal(t, []string{"busy", "busyIndicatorDelay", "enabled", "icon", "text", "type", "visible"},
		names(model.FlattenProperties(m, button)))
	assert.Equal(t, []string{"press", "validateFieldGroup"}, names(model.FlattenEvents(m, button)))
}

func TestFlatten_CycleUsesPartialChain(t *testing.T) {
	m, err := model.NewBuilder("SAPUI5", "1.0.0").
		AddClass(&model.Class{Name: "x.A", Extends: "x.B",
			Properties: []*model.Property{{Name: "a"}}}).
		AddClass(&model.Class{Name: "x.B", Extends: "x.A",
			Properties: []*model.Property{{Name: "b"}}}).
		Build()
	require.NoError(t, err)

	flat := model.FlattenProperties(m, mustClass(t, m, "x.A"))
	assert.Equal(t, []string{"a", "b"}, names(flat))
}

func TestIsSubClassOf(t *testing.T) {
	m := testutil.UI5Model()
	page := mustClass(t, m, "sap.m.Page")

	tests := []struct {
		ancestor string
		expected bool
	}{
		{"sap.m.Page", true},
		{"sap.ui.core.Control", true},
		{"sap.ui.core.Element", true},
		{"sap.ui.base.ManagedObject", true},
		{"sap.ui.core.Component", false},
		{"sap.m.Button", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.ancestor, func(t *testing.T) {
			assert.Equal(t, tt.expected, model.IsSubClassOf(m, page, tt.ancestor))
		})
	}
}

func TestIsSubClassOf_MatchesChain(t *testing.T) {
	m := testutil.UI5Model()

	for _, c := range m.Classes() {
		chain, err := model.SuperclassChain(m, c)
		require.NoError(t, err)
		inChain := map[string]bool{c.Name: true}
		for _, s := range chain {
			inChain[s.Name] = true
		}
		for _, other := range m.Classes() {
			assert.Equal(t, inChain[other.Name], model.IsSubClassOf(m, c, other.Name),
				"IsSubClassOf(%s, %s)", c.Name, other.Name)
		}
	}
}

func TestFindAssignableClasses(t *testing.T) {
	m := testutil.UI5Model()

	var got []string
	for _, c := range model.FindAssignableClasses(m, "sap.m.IBar") {
		got = append(got, c.Name)
	}
	assert.Equal(t, []string{"sap.m.Bar"}, got)

	got = nil
	for _, c := range model.FindAssignableClasses(m, "sap.ui.core.Element") {
		got = append(got, c.Name)
	}
	assert.Contains(t, got, "sap.m.Page")
	assert.Contains(t, got, "sap.ui.core.Element")
	assert.NotContains(t, got, "sap.ui.core.Component")
	assert.NotContains(t, got, "sap.ui.base.ManagedObject")
}

func TestDefaultAggregation(t *testing.T) {
	m := testutil.UI5ModelWith(func(doc *model.APIDocument) {
		doc.Classes = append(doc.Classes, model.APIClass{Name: "sap.m.SubPage", Extends: "sap.m.Page"})
	})

	assert.Equal(t, "content", model.DefaultAggregation(m, mustClass(t, m, "sap.m.SubPage")))
	assert.Equal(t, "", model.DefaultAggregation(m, mustClass(t, m, "sap.ui.core.Component")))
}
