package lsp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/leapstack-labs/xmlviewls/pkg/lint"
	"github.com/leapstack-labs/xmlviewls/pkg/quickfix"
)

// errInvalidCommand marks executeCommand failures caused by the request.
var errInvalidCommand = errors.New("invalid command")

// getCodeActions returns the quick fixes for the diagnostics in params.
// Diagnostics are recomputed for the current document version and matched
// to the requested ones by code and range.
func (s *Server) getCodeActions(ctx context.Context, params CodeActionParams) []CodeAction {
	actions := []CodeAction{}
	if !wantsQuickFix(params.Context.Only) || len(params.Context.Diagnostics) == 0 {
		return actions
	}

	uri := params.TextDocument.URI
	doc := s.documents.Get(uri)
	if doc == nil {
		return actions
	}

	a, err := s.analyze(ctx, doc)
	if err != nil {
		s.logger.Warn("Code actions unavailable", "uri", uri, "error", err)
		return actions
	}

	all := a.diagnostics()
	requested := matchDiagnostics(doc, all, params.Context.Diagnostics)
	if len(requested) == 0 {
		return actions
	}

	fixes := quickfix.Actions(quickfix.Input{
		DocumentID: uri,
		Doc:        a.parsed.Tree,
		Requested:  requested,
		All:        all,
		Bundle:     quickfix.Bundle(a.project.Bundle),
	})
	for _, fix := range fixes {
		action := CodeAction{
			Title:       fix.Title,
			Kind:        CodeActionKindQuickFix,
			IsPreferred: fix.Preferred,
		}
		for _, d := range fix.Diagnostics {
			action.Diagnostics = append(action.Diagnostics, toLSPDiagnostic(doc, d))
		}
		if len(fix.Edits) > 0 {
			action.Edit = &WorkspaceEdit{
				Changes: map[string][]TextEdit{uri: convertTextEdits(doc, fix.Edits)},
			}
		}
		if fix.Command != nil {
			// Batch fixes are applied through workspace/applyEdit.
			if !s.session.ApplyEditSupported() {
				continue
			}
			action.Command = &Command{
				Title:     fix.Command.Title,
				Command:   fix.Command.Name,
				Arguments: fix.Command.Arguments,
			}
		}
		actions = append(actions, action)
	}
	return actions
}

func wantsQuickFix(only []CodeActionKind) bool {
	if len(only) == 0 {
		return true
	}
	for _, kind := range only {
		if kind == CodeActionKindQuickFix {
			return true
		}
	}
	return false
}

// matchDiagnostics returns the diagnostics of all that the editor sent back.
func matchDiagnostics(doc *Document, all []lint.Diagnostic, sent []Diagnostic) []lint.Diagnostic {
	type key struct {
		code string
		rng  Range
	}
	wanted := make(map[key]bool, len(sent))
	for _, d := range sent {
		wanted[key{d.Code, d.Range}] = true
	}

	var matched []lint.Diagnostic
	for _, d := range all {
		if wanted[key{d.RuleID, doc.SpanToRange(d.Range)}] {
			matched = append(matched, d)
		}
	}
	return matched
}

// convertTextEdits converts quick-fix edits to LSP text edits.
func convertTextEdits(doc *Document, edits []quickfix.Edit) []TextEdit {
	result := make([]TextEdit, len(edits))
	for i, edit := range edits {
		result[i] = TextEdit{
			Range:   doc.SpanToRange(edit.Range),
			NewText: edit.NewText,
		}
	}
	return result
}

// executeCommand runs a batch fix: it recomputes the edits for the whole
// document and asks the client to apply them.
func (s *Server) executeCommand(ctx context.Context, params ExecuteCommandParams) error {
	code, ok := quickfix.CodeForCommand(params.Command)
	if !ok {
		return fmt.Errorf("%w: unknown command %q", errInvalidCommand, params.Command)
	}
	if len(params.Arguments) == 0 {
		return fmt.Errorf("%w: %s needs a document argument", errInvalidCommand, params.Command)
	}
	var uri string
	if err := json.Unmarshal(params.Arguments[0], &uri); err != nil {
		return fmt.Errorf("%w: document argument: %w", errInvalidCommand, err)
	}

	doc := s.documents.Get(uri)
	if doc == nil {
		return fmt.Errorf("%w: document %s is not open", errInvalidCommand, uri)
	}

	a, err := s.analyze(ctx, doc)
	if err != nil {
		return err
	}
	edits := quickfix.BatchEdits(a.parsed.Tree, a.diagnostics(), code, quickfix.Bundle(a.project.Bundle))
	if len(edits) == 0 {
		return nil
	}

	var result ApplyWorkspaceEditResult
	err = s.request(ctx, "workspace/applyEdit", &ApplyWorkspaceEditParams{
		Label: params.Command,
		Edit: WorkspaceEdit{
			Changes: map[string][]TextEdit{uri: convertTextEdits(doc, edits)},
		},
	}, &result)
	if err != nil {
		return fmt.Errorf("apply edit: %w", err)
	}
	if !result.Applied {
		s.logger.Warn("Client rejected edit", "command", params.Command, "reason", result.FailureReason)
	}
	return nil
}
