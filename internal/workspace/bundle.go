package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/magiconair/properties"
)

// BundleProvider indexes i18n/i18n.properties files by the directory that
// contains the i18n folder.
type BundleProvider struct {
	index  *dirIndex[map[string]string]
	logger *slog.Logger
}

// NewBundleProvider creates an empty provider.
func NewBundleProvider(logger *slog.Logger) *BundleProvider {
	return &BundleProvider{index: newDirIndex[map[string]string](), logger: logger}
}

// Get returns the key to text table of the nearest bundle above path, or nil.
func (p *BundleProvider) Get(path string) map[string]string {
	b, _ := p.index.nearest(path)
	return b
}

// Update reloads or forgets the bundle at path.
func (p *BundleProvider) Update(path string, kind ChangeKind) error {
	owner := filepath.Dir(filepath.Dir(path))
	if kind == Deleted {
		p.index.delete(owner)
		return nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the workspace scan
	if err != nil {
		return err
	}
	b, err := ParseBundle(data)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	p.index.set(owner, b)
	p.logger.Debug("resource bundle updated", "path", path, "kind", kind.String(), "keys", len(b))
	return nil
}

// ParseBundle decodes a .properties translation file. Values are kept
// verbatim; ${...} references are not expanded.
func ParseBundle(data []byte) (map[string]string, error) {
	l := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	props, err := l.LoadBytes(data)
	if err != nil {
		return nil, err
	}
	return props.Map(), nil
}
