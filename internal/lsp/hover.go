package lsp

import (
	"context"

	"github.com/leapstack-labs/xmlviewls/pkg/hover"
)

// getHover returns documentation for the token at the requested position,
// or nil when it does not resolve to a model node.
func (s *Server) getHover(ctx context.Context, params HoverParams) *Hover {
	doc := s.documents.Get(params.TextDocument.URI)
	if doc == nil {
		return nil
	}

	a, err := s.analyze(ctx, doc)
	if err != nil {
		s.logger.Warn("Hover unavailable", "uri", doc.URI, "error", err)
		return nil
	}

	info, ok := hover.Resolve(a.model, a.parsed.Tree, doc.PositionToOffset(params.Position))
	if !ok {
		return nil
	}
	r := doc.SpanToRange(info.Range)
	return &Hover{
		Contents: MarkupContent{Kind: MarkupKindMarkdown, Value: info.Markdown},
		Range:    &r,
	}
}
