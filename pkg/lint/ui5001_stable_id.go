package lint

import (
	"github.com/leapstack-labs/xmlviewls/pkg/core"
	"github.com/leapstack-labs/xmlviewls/pkg/fqn"
	"github.com/leapstack-labs/xmlviewls/pkg/model"
	"github.com/leapstack-labs/xmlviewls/pkg/xmlast"
)

// StableID requires an id on every control when flexibility is enabled.
var StableID = Rule{
	ID:          "UI5001",
	Name:        "stable-id",
	Group:       "flex",
	Description: "Controls must have a stable id when the project is flex-enabled.",
	Severity:    core.SeverityError,
	Check:       checkStableID,
	Rationale: "Key-user adaptation stores changes against control ids. Generated ids " +
		"change between releases and break stored changes.",
	BadExample:  `<Button text="Save"/>`,
	GoodExample: `<Button id="saveButton" text="Save"/>`,
}

// stableIDExempt lists classes (and their subclasses) that never need an id.
var stableIDExempt = []string{
	"sap.ui.core.mvc.View",
	"sap.ui.core.Fragment",
	"sap.ui.core.CustomData",
	"sap.ui.core.ExtensionPoint",
}

func checkStableID(ctx Context) []Diagnostic {
	if !ctx.Flags.FlexEnabled {
		return nil
	}

	var diags []Diagnostic
	ctx.Doc.Walk(func(el *xmlast.Element) bool {
		if el.IsRoot() {
			return true
		}
		if _, ok := el.Attribute("id"); ok {
			return true
		}
		cls, ok := fqn.ResolveClass(ctx.Model, el)
		if !ok || !needsStableID(ctx.Model, cls) {
			return true
		}

		d := newDiagnostic("%s has no stable id", el.Name)
		d.Range = el.NameSpan
		d.Fix = &StableIDFix{NameSpan: el.NameSpan, Local: el.Local}
		diags = append(diags, d)
		return true
	})
	return diags
}

func needsStableID(m *model.Model, cls *model.Class) bool {
	if !model.IsSubClassOf(m, cls, m.RootType()) {
		return false
	}
	for _, exempt := range stableIDExempt {
		if model.IsSubClassOf(m, cls, exempt) {
			return false
		}
	}
	return true
}
