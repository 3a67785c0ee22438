// Package workspace tracks the project files that shape how a view is
// analyzed: application descriptors, framework version overrides and
// translation bundles. Each provider answers per file path by looking up the
// nearest ancestor directory that carries the relevant file.
package workspace

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"
)

// ChangeKind is the kind of file change fed to Update.
type ChangeKind int

// File change kinds.
const (
	Created ChangeKind = iota + 1
	Modified
	Deleted
)

func (k ChangeKind) String() string {
	switch k {
	case Created:
		return "created"
	case Modified:
		return "modified"
	case Deleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// File names the providers react to.
const (
	ManifestFile = "manifest.json"
	UI5YamlFile  = "ui5.yaml"
	BundleFile   = "i18n.properties"
	BundleDir    = "i18n"
)

// viewPattern matches the markup files that get analyzed.
var viewPattern = regexp.MustCompile(`(view|fragment)\.xml$`)

// scanConcurrency bounds the number of files read at once during Scan.
const scanConcurrency = 8

// Project is the combined per-file view of all providers.
type Project struct {
	MinVersion  string // from the descriptor
	FlexEnabled bool
	Framework   string // from the version override, empty when none
	Version     string // override version, else MinVersion
	Bundle      map[string]string
}

// Workspace owns the three providers for one root directory.
type Workspace struct {
	Root        string
	Descriptors *DescriptorProvider
	Overrides   *OverrideProvider
	Bundles     *BundleProvider

	logger *slog.Logger
}

// New creates an empty workspace rooted at root.
func New(root string, logger *slog.Logger) *Workspace {
	if logger == nil {
		logger = slog.Default()
	}
	return &Workspace{
		Root:        root,
		Descriptors: NewDescriptorProvider(logger),
		Overrides:   NewOverrideProvider(logger),
		Bundles:     NewBundleProvider(logger),
		logger:      logger,
	}
}

// Project returns the combined provider data for path.
func (w *Workspace) Project(path string) Project {
	var p Project
	if d, ok := w.Descriptors.Get(path); ok {
		p.MinVersion = d.MinVersion
		p.FlexEnabled = d.FlexEnabled
		p.Version = d.MinVersion
	}
	if o, ok := w.Overrides.Get(path); ok {
		p.Framework = o.Framework
		if o.Version != "" {
			p.Version = o.Version
		}
	}
	p.Bundle = w.Bundles.Get(path)
	return p
}

// Select returns the framework and version to load for the project, falling
// back to the given defaults.
func (p Project) Select(defaultFramework, defaultVersion string) (framework, version string) {
	framework, version = p.Framework, p.Version
	if framework == "" {
		framework = defaultFramework
	}
	if version == "" {
		version = defaultVersion
	}
	return framework, version
}

// Relevant reports whether any provider reacts to changes of path.
func Relevant(path string) bool {
	switch filepath.Base(path) {
	case ManifestFile, UI5YamlFile:
		return true
	case BundleFile:
		return filepath.Base(filepath.Dir(path)) == BundleDir
	}
	return false
}

// Update routes a file change to the provider that owns the file. It reports
// whether the change was relevant.
func (w *Workspace) Update(path string, kind ChangeKind) (bool, error) {
	if !Relevant(path) {
		return false, nil
	}
	var err error
	switch filepath.Base(path) {
	case ManifestFile:
		err = w.Descriptors.Update(path, kind)
	case UI5YamlFile:
		err = w.Overrides.Update(path, kind)
	case BundleFile:
		err = w.Bundles.Update(path, kind)
	}
	return true, err
}

// Scan walks the workspace and loads every relevant file. Unreadable or
// malformed files are logged and skipped.
func (w *Workspace) Scan(ctx context.Context) error {
	var files []string
	err := filepath.WalkDir(w.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // skip unreadable entries
		}
		if d.IsDir() {
			if path != w.Root && SkipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if Relevant(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(scanConcurrency)
	for _, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, err := w.Update(f, Created); err != nil {
				w.logger.Warn("skipping workspace file", "path", f, "error", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	w.logger.Debug("workspace scanned", "root", w.Root, "files", len(files))
	return nil
}

// SkipDir reports whether a directory is never scanned or watched.
func SkipDir(name string) bool {
	return name == "node_modules" || (strings.HasPrefix(name, ".") && name != ".")
}

// IsViewFile reports whether path is a view or fragment file.
func IsViewFile(path string) bool {
	return viewPattern.MatchString(path)
}

// FindViews returns the view and fragment files under root in lexical order.
// A root naming a file is returned as is.
func FindViews(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	var views []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && SkipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if IsViewFile(path) {
			views = append(views, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(views)
	return views, nil
}
