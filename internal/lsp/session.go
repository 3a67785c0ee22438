package lsp

import (
	"sync"

	"github.com/leapstack-labs/xmlviewls/internal/config"
	"github.com/leapstack-labs/xmlviewls/pkg/model"
)

// Session holds the editor-side state of one client connection: the global
// settings, per-document settings fetched with workspace/configuration and the
// model last announced per document.
type Session struct {
	mu sync.RWMutex

	global   config.Settings
	settings map[string]config.Settings
	models   map[string]model.Key

	configurationSupported bool
	applyEditSupported     bool
}

// NewSession creates a session with default settings.
func NewSession() *Session {
	return &Session{
		global:   config.DefaultSettings(),
		settings: make(map[string]config.Settings),
		models:   make(map[string]model.Key),
	}
}

// SetCapabilities records what the client supports.
func (s *Session) SetCapabilities(caps ClientCapabilities) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configurationSupported = caps.Workspace.Configuration
	s.applyEditSupported = caps.Workspace.ApplyEdit
}

// ConfigurationSupported reports whether per-document settings can be requested.
func (s *Session) ConfigurationSupported() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.configurationSupported
}

// ApplyEditSupported reports whether the client accepts workspace/applyEdit.
func (s *Session) ApplyEditSupported() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.applyEditSupported
}

// Global returns the workspace-wide settings.
func (s *Session) Global() config.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.global
}

// SetGlobal replaces the global settings and drops every cached
// per-document entry.
func (s *Session) SetGlobal(settings config.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.global = settings
	s.settings = make(map[string]config.Settings)
}

// DocumentSettings returns the cached settings of a document.
func (s *Session) DocumentSettings(uri string) (config.Settings, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.settings[uri]
	return st, ok
}

// StoreDocumentSettings caches the settings of a document.
func (s *Session) StoreDocumentSettings(uri string, settings config.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[uri] = settings
}

// Forget drops everything cached for a closed document.
func (s *Session) Forget(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.settings, uri)
	delete(s.models, uri)
}

// ModelChanged records key as the model of uri and reports whether it differs
// from the previously recorded one.
func (s *Session) ModelChanged(uri string, key model.Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.models[uri]; ok && prev == key {
		return false
	}
	s.models[uri] = key
	return true
}

// versionGate tracks the latest version seen per document. Background work
// dispatched for an older version must not publish its results. Every
// dispatch also takes a new generation, so of two runs at the same version
// only the one dispatched last may publish.
type versionGate struct {
	mu         sync.Mutex
	latest     map[string]ticket
	generation uint64
}

// ticket identifies one dispatch of background work for a document.
type ticket struct {
	version    int
	generation uint64
}

func newVersionGate() *versionGate {
	return &versionGate{latest: make(map[string]ticket)}
}

// observe records version for uri and returns the ticket for work on it.
func (g *versionGate) observe(uri string, version int) ticket {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.generation++
	t := ticket{version: version, generation: g.generation}
	g.latest[uri] = t
	return t
}

// bump starts a new generation for uri at its latest version. Work holding an
// earlier ticket becomes stale. It reports false for documents not open.
func (g *versionGate) bump(uri string) (ticket, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	t, ok := g.latest[uri]
	if !ok {
		return ticket{}, false
	}
	g.generation++
	t.generation = g.generation
	g.latest[uri] = t
	return t, true
}

// current reports whether t is still the latest ticket for an open uri.
func (g *versionGate) current(uri string, t ticket) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	latest, ok := g.latest[uri]
	return ok && latest == t
}

// forget drops uri; results for it are stale from now on.
func (g *versionGate) forget(uri string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.latest, uri)
}
