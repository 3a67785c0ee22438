package provider

import (
	"time"

	"github.com/leapstack-labs/xmlviewls/pkg/xmlast"
)

// ParsedDocument holds the parse result for a single file version.
type ParsedDocument struct {
	URI     string
	Version int
	Content string

	Tree         *xmlast.Document
	ElementCount int

	ParsedAt time.Time
}

// Parse creates a ParsedDocument from content.
func Parse(content string, uri string, version int) *ParsedDocument {
	tree := xmlast.Parse(content)
	return &ParsedDocument{
		URI:          uri,
		Version:      version,
		Content:      content,
		Tree:         tree,
		ElementCount: len(tree.Elements()),
		ParsedAt:     time.Now(),
	}
}
