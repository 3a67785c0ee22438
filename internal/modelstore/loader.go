package modelstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/leapstack-labs/xmlviewls/pkg/model"
)

// DirLoader reads models from a directory tree:
//
//	<root>/<framework>/<version>.json
//	<root>/<framework>/<version>/*.json   (one file per library, merged)
type DirLoader struct {
	Root string
}

// NewDirLoader creates a loader rooted at dir.
func NewDirLoader(dir string) *DirLoader {
	return &DirLoader{Root: dir}
}

// Versions lists the versions available for framework.
func (l *DirLoader) Versions(_ context.Context, framework string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(l.Root, framework))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: no models for %s in %s", ErrModelNotFound, framework, l.Root)
	}
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var versions []string
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() {
			if !strings.HasSuffix(name, ".json") {
				continue
			}
			name = strings.TrimSuffix(name, ".json")
		}
		if !seen[name] {
			seen[name] = true
			versions = append(versions, name)
		}
	}
	sort.Strings(versions)
	return versions, nil
}

// Load reads and merges the documents for key.
func (l *DirLoader) Load(ctx context.Context, key model.Key) (*model.APIDocument, error) {
	base := filepath.Join(l.Root, key.Framework, key.Version)

	if doc, err := readDocument(base + ".json"); err == nil {
		return doc, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	files, err := filepath.Glob(filepath.Join(base, "*.json"))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, key)
	}
	sort.Strings(files)

	merged := &model.APIDocument{Framework: key.Framework, Version: key.Version}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := readDocument(f)
		if err != nil {
			return nil, err
		}
		merged.Merge(doc)
	}
	return merged, nil
}

func readDocument(path string) (*model.APIDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := model.DecodeAPI(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}
