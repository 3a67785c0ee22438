package workspace

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Descriptor is the part of an application descriptor the analysis uses.
type Descriptor struct {
	Path        string
	MinVersion  string
	FlexEnabled bool
}

type manifestJSON struct {
	UI5 struct {
		FlexEnabled  bool `json:"flexEnabled"`
		Dependencies struct {
			MinUI5Version json.RawMessage `json:"minUI5Version"`
		} `json:"dependencies"`
	} `json:"sap.ui5"`
}

// DescriptorProvider indexes manifest.json files by directory.
type DescriptorProvider struct {
	index  *dirIndex[Descriptor]
	logger *slog.Logger
}

// NewDescriptorProvider creates an empty provider.
func NewDescriptorProvider(logger *slog.Logger) *DescriptorProvider {
	return &DescriptorProvider{index: newDirIndex[Descriptor](), logger: logger}
}

// Get returns the descriptor of the nearest manifest above path.
func (p *DescriptorProvider) Get(path string) (Descriptor, bool) {
	return p.index.nearest(path)
}

// Update reloads or forgets the manifest at path.
func (p *DescriptorProvider) Update(path string, kind ChangeKind) error {
	dir := filepath.Dir(path)
	if kind == Deleted {
		p.index.delete(dir)
		return nil
	}

	d, err := readDescriptor(path)
	if err != nil {
		// Keep the last good descriptor while the file is being edited.
		return err
	}
	p.index.set(dir, d)
	p.logger.Debug("descriptor updated", "path", path, "kind", kind.String(),
		"min_version", d.MinVersion, "flex_enabled", d.FlexEnabled)
	return nil
}

func readDescriptor(path string) (Descriptor, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the workspace scan
	if err != nil {
		return Descriptor{}, err
	}
	var m manifestJSON
	if err := json.Unmarshal(data, &m); err != nil {
		return Descriptor{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return Descriptor{
		Path:        path,
		MinVersion:  minVersion(m.UI5.Dependencies.MinUI5Version),
		FlexEnabled: m.UI5.FlexEnabled,
	}, nil
}

// minVersion accepts both the string and the list form of minUI5Version.
// For a list the first entry is used.
func minVersion(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var list []string
	if json.Unmarshal(raw, &list) == nil && len(list) > 0 {
		return list[0]
	}
	return ""
}
