// Package provider caches parsed markup trees per open document so completion,
// hover, diagnostics and code actions share one parse per version.
package provider

import (
	"log/slog"
	"sync"
)

// Provider caches parsed documents keyed by URI.
type Provider struct {
	documents   map[string]*ParsedDocument
	documentsMu sync.RWMutex

	logger *slog.Logger
}

// New creates a new Provider.
func New(logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		documents: make(map[string]*ParsedDocument),
		logger:    logger,
	}
}

// GetOrParse returns a cached ParsedDocument or parses the content if needed.
// Thread-safe for concurrent access.
func (p *Provider) GetOrParse(uri string, content string, version int) *ParsedDocument {
	p.documentsMu.RLock()
	doc, exists := p.documents[uri]
	if exists && doc.Version >= version {
		p.documentsMu.RUnlock()
		return doc
	}
	p.documentsMu.RUnlock()

	p.documentsMu.Lock()
	defer p.documentsMu.Unlock()

	// Double-check after acquiring write lock
	doc, exists = p.documents[uri]
	if exists && doc.Version >= version {
		return doc
	}

	doc = Parse(content, uri, version)
	p.documents[uri] = doc
	p.logger.Debug("parsed document", "uri", uri, "version", version, "elements", doc.ElementCount)

	return doc
}

// Get returns a cached ParsedDocument without parsing.
// Returns nil if not cached.
func (p *Provider) Get(uri string) *ParsedDocument {
	p.documentsMu.RLock()
	defer p.documentsMu.RUnlock()
	return p.documents[uri]
}

// Invalidate removes a document from the cache.
func (p *Provider) Invalidate(uri string) {
	p.documentsMu.Lock()
	defer p.documentsMu.Unlock()
	delete(p.documents, uri)
}

// InvalidateAll clears the entire document cache.
func (p *Provider) InvalidateAll() {
	p.documentsMu.Lock()
	defer p.documentsMu.Unlock()
	p.documents = make(map[string]*ParsedDocument)
}
