// Package modelstore loads framework models and keeps one immutable Model per
// (framework, version) key. Concurrent requests for the same key share one
// in-flight build.
package modelstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/leapstack-labs/xmlviewls/pkg/model"
)

// ErrModelNotFound is returned when no model exists for a framework or version.
var ErrModelNotFound = errors.New("model not found")

// Loader reads model documents from their source.
type Loader interface {
	// Load returns the document for an exact key.
	Load(ctx context.Context, key model.Key) (*model.APIDocument, error)
	// Versions lists the versions available for a framework.
	Versions(ctx context.Context, framework string) ([]string, error)
}

// Cache persists built documents between runs. Implementations must be safe
// for concurrent use.
type Cache interface {
	Get(ctx context.Context, key model.Key) (*model.APIDocument, bool, error)
	Put(ctx context.Context, doc *model.APIDocument) error
}

// Store builds and caches models.
type Store struct {
	loader Loader
	cache  Cache
	logger *slog.Logger

	group singleflight.Group

	mu     sync.RWMutex
	models map[model.Key]*model.Model
}

// New creates a Store. cache may be nil.
func New(loader Loader, cache Cache, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		loader: loader,
		cache:  cache,
		logger: logger,
		models: make(map[model.Key]*model.Model),
	}
}

// Get returns the model for an exact key, building it on first use.
func (s *Store) Get(ctx context.Context, key model.Key) (*model.Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	m, ok := s.models[key]
	s.mu.RUnlock()
	if ok {
		return m, nil
	}

	ch := s.group.DoChan(key.String(), func() (any, error) {
		// A build for this key may have finished between the read and DoChan.
		s.mu.RLock()
		m, ok := s.models[key]
		s.mu.RUnlock()
		if ok {
			return m, nil
		}

		// Detached from the caller: other waiters share this build.
		m, err := s.build(context.WithoutCancel(ctx), key)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.models[key] = m
		s.mu.Unlock()
		return m, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*model.Model), nil
	}
}

// Resolve maps a requested version to an available one and returns the model.
func (s *Store) Resolve(ctx context.Context, framework, version string) (*model.Model, error) {
	versions, err := s.loader.Versions(ctx, framework)
	if err != nil {
		return nil, fmt.Errorf("list %s versions: %w", framework, err)
	}
	resolved, ok := ResolveVersion(versions, version)
	if !ok {
		return nil, fmt.Errorf("%w: %s %s", ErrModelNotFound, framework, version)
	}
	if resolved != version {
		s.logger.Debug("resolved model version", "framework", framework, "requested", version, "resolved", resolved)
	}
	return s.Get(ctx, model.Key{Framework: framework, Version: resolved})
}

// Loaded returns the keys of all models built so far.
func (s *Store) Loaded() []model.Key {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]model.Key, 0, len(s.models))
	for k := range s.models {
		keys = append(keys, k)
	}
	return keys
}

func (s *Store) build(ctx context.Context, key model.Key) (*model.Model, error) {
	start := time.Now()

	doc, source, err := s.document(ctx, key)
	if err != nil {
		return nil, err
	}

	m, err := doc.Build()
	if err != nil {
		return nil, err
	}
	s.checkInheritance(m)

	s.logger.Info("model ready",
		"key", key.String(),
		"source", source,
		"classes", m.ClassCount(),
		"duration", time.Since(start))
	return m, nil
}

// checkInheritance logs every class whose superclass chain runs into a cycle.
// Such a model stays usable; features see the chain up to the cycle.
func (s *Store) checkInheritance(m *model.Model) {
	for _, cls := range m.Classes() {
		if _, err := model.SuperclassChain(m, cls); err != nil {
			s.logger.Warn("incomplete inheritance chain",
				"key", m.Key().String(),
				"class", cls.Name,
				"error", err)
		}
	}
}

// document returns the model document from the cache, falling back to the
// loader and filling the cache.
func (s *Store) document(ctx context.Context, key model.Key) (*model.APIDocument, string, error) {
	if s.cache != nil {
		doc, ok, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			s.logger.Warn("model cache read failed", "key", key.String(), "error", err)
		case ok:
			return doc, "cache", nil
		}
	}

	doc, err := s.loader.Load(ctx, key)
	if err != nil {
		return nil, "", fmt.Errorf("load model %s: %w", key, err)
	}
	// The loader owns version naming; keep the key stable for the cache.
	doc.Framework, doc.Version = key.Framework, key.Version

	if s.cache != nil {
		if err := s.cache.Put(ctx, doc); err != nil {
			s.logger.Warn("model cache write failed", "key", key.String(), "error", err)
		}
	}
	return doc, "loader", nil
}
