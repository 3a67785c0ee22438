package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Override is a framework selection from a ui5.yaml file.
type Override struct {
	Path      string
	Framework string
	Version   string
}

type ui5Yaml struct {
	Framework struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"framework"`
}

// OverrideProvider indexes ui5.yaml files by directory.
type OverrideProvider struct {
	index  *dirIndex[Override]
	logger *slog.Logger
}

// NewOverrideProvider creates an empty provider.
func NewOverrideProvider(logger *slog.Logger) *OverrideProvider {
	return &OverrideProvider{index: newDirIndex[Override](), logger: logger}
}

// Get returns the override of the nearest ui5.yaml above path.
func (p *OverrideProvider) Get(path string) (Override, bool) {
	return p.index.nearest(path)
}

// Update reloads or forgets the ui5.yaml at path. A file without a framework
// section removes the override for its directory.
func (p *OverrideProvider) Update(path string, kind ChangeKind) error {
	dir := filepath.Dir(path)
	if kind == Deleted {
		p.index.delete(dir)
		return nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the workspace scan
	if err != nil {
		return err
	}
	var y ui5Yaml
	if err := yaml.Unmarshal(data, &y); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if y.Framework.Name == "" && y.Framework.Version == "" {
		p.index.delete(dir)
		return nil
	}

	o := Override{Path: path, Framework: y.Framework.Name, Version: y.Framework.Version}
	p.index.set(dir, o)
	p.logger.Debug("version override updated", "path", path, "kind", kind.String(),
		"framework", o.Framework, "version", o.Version)
	return nil
}
