package lsp

import (
	"context"
	"fmt"

	"github.com/leapstack-labs/xmlviewls/internal/config"
	"github.com/leapstack-labs/xmlviewls/internal/provider"
	"github.com/leapstack-labs/xmlviewls/internal/workspace"
	"github.com/leapstack-labs/xmlviewls/pkg/core"
	"github.com/leapstack-labs/xmlviewls/pkg/lint"
	"github.com/leapstack-labs/xmlviewls/pkg/model"
)

// diagnosticSource is the source reported with every diagnostic.
const diagnosticSource = "xmlviewls"

// analysis is what the feature handlers derive from one document snapshot.
type analysis struct {
	doc      *Document
	parsed   *provider.ParsedDocument
	settings config.Settings
	lint     *lint.Config
	project  workspace.Project
	model    *model.Model
}

// analyze parses doc and resolves its settings, project and model. The
// returned analysis is usable for offsets even when the model failed.
func (s *Server) analyze(ctx context.Context, doc *Document) (*analysis, error) {
	parsed := s.provider.GetOrParse(doc.URI, doc.Content, doc.Version)
	if parsed.Version != doc.Version {
		// The cache already holds a newer version.
		parsed = provider.Parse(doc.Content, doc.URI, doc.Version)
	}

	settings := s.settingsFor(ctx, doc.URI)
	a := &analysis{
		doc:      doc,
		parsed:   parsed,
		settings: settings,
		lint:     settings.LintConfigOver(s.cfg.Lint),
	}

	m, project, err := s.modelFor(ctx, doc.URI)
	a.project = project
	if err != nil {
		return a, err
	}
	a.model = m
	return a, nil
}

// diagnostics runs every enabled validator.
func (a *analysis) diagnostics() []lint.Diagnostic {
	return lint.NewAnalyzer(a.lint).Analyze(lint.Context{
		Doc:   a.parsed.Tree,
		Model: a.model,
		Flags: lint.Flags{FlexEnabled: a.project.FlexEnabled},
	})
}

// modelFor selects and resolves the model of a document from its project
// context and announces it to the client when it changed.
func (s *Server) modelFor(ctx context.Context, uri string) (*model.Model, workspace.Project, error) {
	var project workspace.Project
	if s.workspace != nil {
		project = s.workspace.Project(URIToPath(uri))
	}
	framework, version := project.Select(s.cfg.DefaultFramework, s.cfg.DefaultVersion)

	m, err := s.models.Resolve(ctx, framework, version)
	if err != nil {
		return nil, project, fmt.Errorf("resolve model %s@%s: %w", framework, version, err)
	}

	if s.session.ModelChanged(uri, m.Key()) {
		s.sendNotification(MethodModel, &ModelParams{
			URI:       uri,
			Framework: m.Framework(),
			Version:   m.Version(),
		})
	}
	return m, project, nil
}

// scheduleDiagnostics recomputes the diagnostics of a view or fragment in
// the background.
func (s *Server) scheduleDiagnostics(doc *Document, t ticket) {
	if doc == nil || !workspace.IsViewFile(URIToPath(doc.URI)) {
		return
	}
	s.goHandle(func(ctx context.Context) {
		s.publishDiagnostics(ctx, doc, t)
	})
}

// refreshDiagnostics recomputes the diagnostics of every open document after
// its project context changed. Runs still in flight for the same version are
// superseded.
func (s *Server) refreshDiagnostics() {
	for _, doc := range s.documents.List() {
		t, ok := s.versions.bump(doc.URI)
		if !ok || t.version != doc.Version {
			// Closed, or a newer change already scheduled its own run.
			continue
		}
		s.scheduleDiagnostics(doc, t)
	}
}

// publishDiagnostics analyzes doc and publishes the result unless a newer
// version or a newer run for the same version was dispatched meanwhile.
func (s *Server) publishDiagnostics(ctx context.Context, doc *Document, t ticket) {
	diagnostics := []Diagnostic{}

	a, err := s.analyze(ctx, doc)
	if err != nil {
		s.logger.Warn("Diagnostics unavailable", "uri", doc.URI, "error", err)
	} else {
		for _, d := range a.diagnostics() {
			diagnostics = append(diagnostics, toLSPDiagnostic(doc, d))
		}
	}
	if ctx.Err() != nil {
		return
	}

	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	if !s.versions.current(doc.URI, t) {
		s.logger.Debug("Dropping stale diagnostics", "uri", doc.URI, "version", doc.Version, "generation", t.generation)
		return
	}
	version := doc.Version
	s.sendNotification("textDocument/publishDiagnostics", &PublishDiagnosticsParams{
		URI:         doc.URI,
		Version:     &version,
		Diagnostics: diagnostics,
	})
}

// toLSPDiagnostic converts a lint diagnostic to its protocol form.
func toLSPDiagnostic(doc *Document, d lint.Diagnostic) Diagnostic {
	diag := Diagnostic{
		Range:    doc.SpanToRange(d.Range),
		Severity: toLSPSeverity(d.Severity),
		Code:     d.RuleID,
		Source:   diagnosticSource,
		Message:  d.Message,
	}
	if d.DocumentationURL != "" {
		diag.CodeDescription = &CodeDescription{Href: d.DocumentationURL}
	}
	for _, tag := range d.Tags {
		switch tag {
		case lint.TagUnnecessary:
			diag.Tags = append(diag.Tags, DiagnosticTagUnnecessary)
		case lint.TagDeprecated:
			diag.Tags = append(diag.Tags, DiagnosticTagDeprecated)
		}
	}
	return diag
}

func toLSPSeverity(sev core.Severity) DiagnosticSeverity {
	switch sev {
	case core.SeverityError:
		return DiagnosticSeverityError
	case core.SeverityWarning:
		return DiagnosticSeverityWarning
	case core.SeverityInfo:
		return DiagnosticSeverityInformation
	default:
		return DiagnosticSeverityHint
	}
}
