package lsp

import (
	"context"
	"fmt"

	"github.com/leapstack-labs/xmlviewls/pkg/completion"
	"github.com/leapstack-labs/xmlviewls/pkg/hover"
)

// getCompletions returns the completion list at the requested position. An
// unresolvable model yields an empty list.
func (s *Server) getCompletions(ctx context.Context, params CompletionParams) *CompletionList {
	list := &CompletionList{Items: []CompletionItem{}}

	doc := s.documents.Get(params.TextDocument.URI)
	if doc == nil {
		return list
	}

	a, err := s.analyze(ctx, doc)
	if err != nil {
		s.logger.Warn("Completion unavailable", "uri", doc.URI, "error", err)
		return list
	}

	offset := doc.PositionToOffset(params.Position)
	candidates := completion.Complete(a.model, a.parsed.Tree, offset, a.settings.Completion())
	for i, c := range candidates {
		list.Items = append(list.Items, toCompletionItem(doc, i, c))
	}
	return list
}

func toCompletionItem(doc *Document, index int, c completion.Candidate) CompletionItem {
	item := CompletionItem{
		Label:      c.DisplayName,
		Kind:       completionItemKind(c.Kind),
		Detail:     c.Detail,
		SortText:   fmt.Sprintf("%05d", index),
		FilterText: c.DisplayName,
		TextEdit: &TextEdit{
			Range:   doc.SpanToRange(c.Range),
			NewText: c.Text,
		},
	}
	if c.Description != "" {
		item.Documentation = &MarkupContent{Kind: MarkupKindMarkdown, Value: hover.Markdown(c.Description)}
	}
	if c.Deprecated {
		item.Tags = []CompletionItemTag{CompletionItemTagDeprecated}
	}
	return item
}

func completionItemKind(k completion.CandidateKind) CompletionItemKind {
	switch k {
	case completion.CandidateAggregation:
		return CompletionItemKindField
	case completion.CandidateClass:
		return CompletionItemKindClass
	case completion.CandidateProperty:
		return CompletionItemKindProperty
	case completion.CandidateEvent:
		return CompletionItemKindEvent
	case completion.CandidateNamespacePrefix, completion.CandidateNamespaceURI:
		return CompletionItemKindModule
	case completion.CandidateBoolean:
		return CompletionItemKindValue
	case completion.CandidateEnumValue:
		return CompletionItemKindEnumMember
	default:
		return CompletionItemKindText
	}
}
