// Package quickfix turns lint diagnostics into edit actions.
//
// Every fixable diagnostic yields a single-occurrence action with direct
// edits. When a document has several diagnostics of the same code, a batch
// action is added as a command; executing it recomputes the edits for the
// whole document with BatchEdits.
package quickfix

import (
	"fmt"
	"slices"

	"github.com/leapstack-labs/xmlviewls/pkg/lint"
	"github.com/leapstack-labs/xmlviewls/pkg/xmlast"
)

// Commands executed by the editor for batch fixes.
const (
	CommandStableIDFile      = "xmlviewls.quickFix.stableIdFile"
	CommandHardcodedTextFile = "xmlviewls.quickFix.hardcodedTextFile"
)

// BundleModel is the model name resource bundle bindings refer to.
const BundleModel = "i18n"

// Edit replaces Range with NewText. An empty range inserts.
type Edit struct {
	Range   xmlast.Span
	NewText string
}

// Command identifies a batch fix the editor executes later.
type Command struct {
	Title     string
	Name      string
	Arguments []any
}

// Action is one entry of the editor's quick-fix menu: either direct edits or
// a command.
type Action struct {
	Title       string
	Diagnostics []lint.Diagnostic
	Edits       []Edit
	Command     *Command
	Preferred   bool
}

// Bundle is a resource bundle: translation key to text.
type Bundle map[string]string

// KeysFor returns the keys whose text equals value, sorted.
func (b Bundle) KeysFor(value string) []string {
	var keys []string
	for k, v := range b {
		if v == value {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}

// Input is everything the mapper needs for one document.
type Input struct {
	DocumentID string // passed back as the first command argument
	Doc        *xmlast.Document
	Requested  []lint.Diagnostic // diagnostics the editor asks fixes for
	All        []lint.Diagnostic // every diagnostic of the document
	Bundle     Bundle
}

// Actions returns the fix actions for the requested diagnostics.
func Actions(in Input) []Action {
	var actions []Action
	batched := make(map[string]bool)

	for _, d := range in.Requested {
		switch fix := d.Fix.(type) {
		case *lint.StableIDFix:
			id := NewIDGenerator(in.Doc).Next(fix.Local)
			actions = append(actions, Action{
				Title:       fmt.Sprintf("Generate id %q", id),
				Diagnostics: []lint.Diagnostic{d},
				Edits:       []Edit{stableIDEdit(fix, id)},
				Preferred:   true,
			})
		case *lint.HardcodedTextFix:
			for _, key := range in.Bundle.KeysFor(fix.Literal) {
				actions = append(actions, Action{
					Title:       fmt.Sprintf("Replace with {%s>%s}", BundleModel, key),
					Diagnostics: []lint.Diagnostic{d},
					Edits:       []Edit{bundleEdit(fix, key)},
				})
			}
		default:
			continue
		}

		if batched[d.RuleID] {
			continue
		}
		batched[d.RuleID] = true
		if a, ok := batchAction(in, d.RuleID); ok {
			actions = append(actions, a)
		}
	}
	return actions
}

// batchAction offers a document-wide fix when more than one diagnostic of
// code has edits.
func batchAction(in Input, code string) (Action, bool) {
	edits := BatchEdits(in.Doc, in.All, code, in.Bundle)
	if len(edits) < 2 {
		return Action{}, false
	}

	var name, title string
	switch code {
	case lint.StableID.ID:
		name, title = CommandStableIDFile, "Generate ids for all elements in this file"
	case lint.HardcodedText.ID:
		name, title = CommandHardcodedTextFile, "Replace all hardcoded texts with resource bundle keys"
	default:
		return Action{}, false
	}

	var diags []lint.Diagnostic
	for _, d := range in.All {
		if d.RuleID == code {
			diags = append(diags, d)
		}
	}
	return Action{
		Title:       title,
		Diagnostics: diags,
		Command:     &Command{Title: title, Name: name, Arguments: []any{in.DocumentID}},
	}, true
}

// CodeForCommand returns the diagnostic code a batch command fixes.
func CodeForCommand(name string) (string, bool) {
	switch name {
	case CommandStableIDFile:
		return lint.StableID.ID, true
	case CommandHardcodedTextFile:
		return lint.HardcodedText.ID, true
	default:
		return "", false
	}
}

// BatchEdits returns the edits fixing every diagnostic of code in the
// document, ordered by position. Hardcoded texts without a matching bundle key
// are left alone.
func BatchEdits(doc *xmlast.Document, all []lint.Diagnostic, code string, bundle Bundle) []Edit {
	gen := NewIDGenerator(doc)

	var edits []Edit
	for _, d := range all {
		if d.RuleID != code {
			continue
		}
		switch fix := d.Fix.(type) {
		case *lint.StableIDFix:
			edits = append(edits, stableIDEdit(fix, gen.Next(fix.Local)))
		case *lint.HardcodedTextFix:
			if keys := bundle.KeysFor(fix.Literal); len(keys) > 0 {
				edits = append(edits, bundleEdit(fix, keys[0]))
			}
		}
	}

	slices.SortStableFunc(edits, func(a, b Edit) int { return a.Range.Start - b.Range.Start })
	return edits
}

// stableIDEdit inserts an id attribute right after the element name.
func stableIDEdit(fix *lint.StableIDFix, id string) Edit {
	at := fix.NameSpan.End
	return Edit{Range: xmlast.Span{Start: at, End: at}, NewText: fmt.Sprintf(` id="%s"`, id)}
}

// bundleEdit replaces the literal between the quotes with a bundle binding.
func bundleEdit(fix *lint.HardcodedTextFix, key string) Edit {
	return Edit{Range: fix.ValueSpan, NewText: fmt.Sprintf("{%s>%s}", BundleModel, key)}
}

// Apply applies non-overlapping edits to text.
func Apply(text string, edits []Edit) string {
	sorted := slices.Clone(edits)
	slices.SortStableFunc(sorted, func(a, b Edit) int { return b.Range.Start - a.Range.Start })
	for _, e := range sorted {
		text = text[:e.Range.Start] + e.NewText + text[e.Range.End:]
	}
	return text
}
