package lint

import (
	"github.com/leapstack-labs/xmlviewls/pkg/core"
	"github.com/leapstack-labs/xmlviewls/pkg/model"
	"github.com/leapstack-labs/xmlviewls/pkg/xmlast"
)

// Flags are the project-level feature flags validators depend on.
type Flags struct {
	// FlexEnabled requires controls to carry stable ids.
	FlexEnabled bool
}

// Context is the input of every validator.
type Context struct {
	Doc   *xmlast.Document
	Model *model.Model
	Flags Flags
}

// Tag marks a diagnostic for special rendering by editors.
type Tag int

// Diagnostic tags.
const (
	TagUnnecessary Tag = iota + 1
	TagDeprecated
)

// Diagnostic represents a lint finding in one document.
type Diagnostic struct {
	RuleID   string
	Severity core.Severity
	Message  string
	Range    xmlast.Span
	Tags     []Tag

	// Fix is the payload for the quick-fix mapper: *StableIDFix,
	// *HardcodedTextFix or nil.
	Fix any

	DocumentationURL string
}

// StableIDFix locates an element missing its id.
type StableIDFix struct {
	NameSpan xmlast.Span // element name
	Local    string      // local element name, seeds the generated id
}

// HardcodedTextFix locates a literal that belongs in the resource bundle.
type HardcodedTextFix struct {
	Literal   string
	ValueSpan xmlast.Span // value content without quotes
}
