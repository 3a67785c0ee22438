// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/leapstack-labs/xmlviewls/internal/cli/output"
	fixtures "github.com/leapstack-labs/xmlviewls/internal/testutil"
	"github.com/leapstack-labs/xmlviewls/pkg/model"
)

// MainView is a view with one hard-coded text and one element without id.
const MainView = `<mvc:View xmlns:mvc="sap.ui.core.mvc" xmlns="sap.m">
  <Page id="page" title="Orders">
    <content>
      <Button text="{i18n>save}" />
    </content>
  </Page>
</mvc:View>
`

// CleanFragment produces no diagnostics.
const CleanFragment = `<core:FragmentDefinition xmlns:core="sap.ui.core" xmlns="sap.m">
  <Text id="hint" text="{i18n>hint}" />
</core:FragmentDefinition>
`

// SetupTestProject creates a temporary project with a manifest, a model
// directory holding the fixture model and two view files. It returns the
// project root; models live in <root>/models.
func SetupTestProject(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()

	manifest := `{"sap.ui5": {"flexEnabled": true, "dependencies": {"minUI5Version": "` +
		fixtures.TestVersion + `"}}}`
	files := map[string]string{
		"webapp/manifest.json":           manifest,
		"webapp/i18n/i18n.properties":    "save=Save\nhint=Hint\n",
		"webapp/view/Main.view.xml":      MainView,
		"webapp/view/Hint.fragment.xml":  CleanFragment,
		"webapp/view/notes.xml":          "<not-a-view/>",
		"node_modules/x/Broken.view.xml": "<mvc:View",
		"xmlviewls.yaml":                 "model_dir: models\ncache_path: \"\"\n",
	}
	for rel, content := range files {
		path := filepath.Join(tmpDir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("failed to create directory for %s: %v", rel, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("failed to create %s: %v", rel, err)
		}
	}

	WriteModel(t, filepath.Join(tmpDir, "models"))
	return tmpDir
}

// WriteModel writes the fixture model into a model directory.
func WriteModel(t *testing.T, modelDir string) {
	t.Helper()
	WriteModelWith(t, modelDir, nil)
}

// WriteModelWith writes the fixture model after applying mutate to it.
func WriteModelWith(t *testing.T, modelDir string, mutate func(doc *model.APIDocument)) {
	t.Helper()

	doc := fixtures.UI5ModelAPI()
	if mutate != nil {
		mutate(doc)
	}

	dir := filepath.Join(modelDir, fixtures.TestFramework)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("failed to create model directory: %v", err)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("failed to encode model: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, fixtures.TestVersion+".json"), data, 0o600); err != nil {
		t.Fatalf("failed to write model: %v", err)
	}
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
// Output is captured in buffers for inspection.
func NewTestRenderer(mode output.Mode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// Output returns the stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdown performs basic markdown validation.
// It checks for unclosed code fences and empty headers.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	fenceCount := strings.Count(md, "```")
	if fenceCount%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d occurrences", fenceCount)
	}

	lines := strings.Split(md, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
	}
}
