package testutil

import (
	"github.com/leapstack-labs/xmlviewls/pkg/model"
)

// Framework and version of the fixture model.
const (
	TestFramework = "SAPUI5"
	TestVersion   = "1.71.49"
)

func agg(name, typ string, card model.Cardinality) model.APIMember {
	return model.APIMember{Name: name, Type: typ, Cardinality: string(card), Visibility: "public"}
}

func prop(name, typ string) model.APIMember {
	return model.APIMember{Name: name, Type: typ, Visibility: "public"}
}

func text(name string) model.APIMember {
	return model.APIMember{Name: name, Type: "string", Translatable: true, Visibility: "public"}
}

func event(name string) model.APIMember {
	return model.APIMember{Name: name, Visibility: "public"}
}

// UI5ModelAPI returns a fresh copy of the fixture document. Tests may mutate
// the returned value before building it.
func UI5ModelAPI() *model.APIDocument {
	single, multiple := model.CardinalitySingle, model.CardinalityMultiple

	return &model.APIDocument{
		Framework:        TestFramework,
		Version:          TestVersion,
		DefaultNamespace: "sap.m",
		Classes: []model.APIClass{
			{Name: "sap.ui.base.ManagedObject", Abstract: true,
				Description: "Base class that introduces managed properties and aggregations."},
			{Name: "sap.ui.core.Element", Extends: "sap.ui.base.ManagedObject", Abstract: true,
				Description: "Base class for UI elements.",
				Aggregations: []model.APIMember{
					agg("tooltip", "sap.ui.core.TooltipBase", single),
					agg("customData", "sap.ui.core.CustomData", multiple),
					agg("layoutData", "sap.ui.core.LayoutData", single),
					agg("dependents", "sap.ui.core.Element", multiple),
					agg("dragDropConfig", "sap.ui.core.dnd.DragDropBase", multiple),
				},
			},
			{Name: "sap.ui.core.Control", Extends: "sap.ui.core.Element", Abstract: true,
				Description: "Base class for <b>controls</b>.",
				Properties: []model.APIMember{
					prop("busy", "boolean"),
					prop("busyIndicatorDelay", "int"),
					prop("visible", "boolean"),
				},
				Events: []model.APIMember{event("validateFieldGroup")},
			},
			{Name: "sap.ui.core.CustomData", Extends: "sap.ui.core.Element",
				Properties: []model.APIMember{prop("key", "string"), prop("value", "any")}},
			{Name: "sap.ui.core.LayoutData", Extends: "sap.ui.core.Element", Abstract: true},
			{Name: "sap.ui.core.TooltipBase", Extends: "sap.ui.core.Control", Abstract: true},
			{Name: "sap.ui.core.Component", Extends: "sap.ui.base.ManagedObject",
				Description: "Base class for components."},
			{Name: "sap.ui.core.Fragment", Extends: "sap.ui.base.ManagedObject"},
			{Name: "sap.ui.core.mvc.View", Extends: "sap.ui.core.Control",
				DefaultAggregation: "content",
				Aggregations:       []model.APIMember{agg("content", "sap.ui.core.Control", multiple)},
				Properties:         []model.APIMember{prop("displayBlock", "boolean"), prop("viewName", "string")},
			},
			{Name: "sap.m.Page", Extends: "sap.ui.core.Control", Library: "sap.m",
				Since:              "1.0",
				DefaultAggregation: "content",
				Description:        "A container control that holds one whole screen of an application.",
				Aggregations: []model.APIMember{
					agg("content", "sap.ui.core.Control", multiple),
					agg("customHeader", "sap.m.IBar", single),
					agg("footer", "sap.m.IBar", single),
					agg("headerContent", "sap.ui.core.Control", multiple),
					agg("landmarkInfo", "sap.m.PageAccessibleLandmarkInfo", single),
					agg("subHeader", "sap.m.IBar", single),
					{Name: "_internalHeader", Type: "sap.m.IBar", Cardinality: "0..1", Visibility: "hidden"},
				},
				Properties: []model.APIMember{
					text("title"),
					prop("showHeader", "boolean"),
					prop("showNavButton", "boolean"),
					prop("backgroundDesign", "sap.m.PageBackgroundDesign"),
					{Name: "navButtonText", Type: "string", Translatable: true, Visibility: "public",
						Deprecated: &model.APIDeprecation{Since: "1.20", Text: "Use the <code>navButtonTooltip</code> property."}},
				},
				Events: []model.APIMember{event("navButtonPress")},
			},
			{Name: "sap.m.Bar", Extends: "sap.ui.core.Control", Implements: []string{"sap.m.IBar"},
				Aggregations: []model.APIMember{
					agg("contentLeft", "sap.ui.core.Control", multiple),
					agg("contentMiddle", "sap.ui.core.Control", multiple),
					agg("contentRight", "sap.ui.core.Control", multiple),
				},
			},
			{Name: "sap.m.Button", Extends: "sap.ui.core.Control", Since: "1.0",
				Description: "Enables users to trigger actions.",
				Properties: []model.APIMember{
					text("text"),
					prop("type", "sap.m.ButtonType"),
					prop("enabled", "boolean"),
					prop("icon", "sap.ui.core.URI"),
				},
				Events: []model.APIMember{event("press")},
			},
			{Name: "sap.m.Text", Extends: "sap.ui.core.Control",
				Properties: []model.APIMember{text("text")}},
			{Name: "sap.m.Input", Extends: "sap.ui.core.Control",
				Properties: []model.APIMember{prop("value", "string"), text("placeholder")}},
			{Name: "sap.m.PageAccessibleLandmarkInfo", Extends: "sap.ui.core.Element"},
			{Name: "sap.m.ExperimentalPanel", Extends: "sap.ui.core.Control", Experimental: true},
			{Name: "sap.ui.commons.Button", Extends: "sap.ui.core.Control",
				Deprecated: &model.APIDeprecation{Since: "1.38", Text: "Use sap.m.Button instead."},
				Properties: []model.APIMember{text("text")}},
		},
		Enums: []model.APIEnum{
			{Name: "sap.m.ButtonType", Values: []model.APIMember{
				{Name: "Accept"}, {Name: "Back"}, {Name: "Default"}, {Name: "Emphasized"},
				{Name: "Reject"}, {Name: "Transparent"},
				{Name: "Unstyled", Deprecated: &model.APIDeprecation{Since: "1.60"}},
			}},
			{Name: "sap.m.PageBackgroundDesign", Values: []model.APIMember{
				{Name: "List"}, {Name: "Solid"}, {Name: "Standard"}, {Name: "Transparent"},
			}},
		},
	}
}

// UI5Model builds the fixture model. It panics on error since the fixture is static.
func UI5Model() *model.Model {
	m, err := UI5ModelAPI().Build()
	if err != nil {
		panic(err)
	}
	return m
}

// UI5ModelWith builds the fixture after applying mutate to the document.
func UI5ModelWith(mutate func(doc *model.APIDocument)) *model.Model {
	doc := UI5ModelAPI()
	mutate(doc)
	m, err := doc.Build()
	if err != nil {
		panic(err)
	}
	return m
}

// FindClass returns a pointer to the named class inside doc, or nil.
func FindClass(doc *model.APIDocument, name string) *model.APIClass {
	for i := range doc.Classes {
		if doc.Classes[i].Name == name {
			return &doc.Classes[i]
		}
	}
	return nil
}
