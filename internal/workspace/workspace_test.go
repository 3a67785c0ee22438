package workspace_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/xmlviewls/internal/testutil"
	"github.com/leapstack-labs/xmlviewls/internal/workspace"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

const manifest = `{
  "sap.app": {"id": "demo"},
  "sap.ui5": {
    "flexEnabled": true,
    "dependencies": {"minUI5Version": "1.71.0"}
  }
}`

// newTree lays out a small project and returns its root and a view path.
func newTree(t *testing.T) (string, string) {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "app", "webapp", "manifest.json"), manifest)
	writeFile(t, filepath.Join(root, "app", "webapp", "i18n", "i18n.properties"),
		"# texts\nappTitle=Demo\nsave = Save\n")
	writeFile(t, filepath.Join(root, "app", "ui5.yaml"),
		"specVersion: '3.0'\nframework:\n  name: OpenUI5\n  version: \"1.84.0\"\n")
	writeFile(t, filepath.Join(root, "node_modules", "lib", "manifest.json"), manifest)
	writeFile(t, filepath.Join(root, ".git", "manifest.json"), manifest)
	return root, filepath.Join(root, "app", "webapp", "view", "Main.view.xml")
}

func TestWorkspace_Scan(t *testing.T) {
	root, view := newTree(t)
	ws := workspace.New(root, testutil.NewTestLogger(t))
	require.NoError(t, ws.Scan(context.Background()))

	p := ws.Project(view)
	assert.Equal(t, "1.71.0", p.MinVersion)
	assert.True(t, p.FlexEnabled)
	assert.Equal(t, "OpenUI5", p.Framework)
	assert.Equal(t, "1.84.0", p.Version)
	assert.Equal(t, map[string]string{"appTitle": "Demo", "save": "Save"}, p.Bundle)

	// Skipped directories are not indexed.
	_, ok := ws.Descriptors.Get(filepath.Join(root, "node_modules", "lib", "x.xml"))
	assert.False(t, ok)
	_, ok = ws.Descriptors.Get(filepath.Join(root, ".git", "x.xml"))
	assert.False(t, ok)
}

func TestWorkspace_ProjectOutsideApp(t *testing.T) {
	root, _ := newTree(t)
	ws := workspace.New(root, testutil.NewTestLogger(t))
	require.NoError(t, ws.Scan(context.Background()))

	p := ws.Project(filepath.Join(root, "other", "Main.view.xml"))
	assert.Equal(t, workspace.Project{}, p)
}

func TestWorkspace_Update(t *testing.T) {
	root, view := newTree(t)
	ws := workspace.New(root, testutil.NewTestLogger(t))
	require.NoError(t, ws.Scan(context.Background()))

	manifestPath := filepath.Join(root, "app", "webapp", "manifest.json")
	writeFile(t, manifestPath, `{"sap.ui5": {"flexEnabled": false, "dependencies": {"minUI5Version": ["1.96.0", "2.0.0"]}}}`)
	relevant, err := ws.Update(manifestPath, workspace.Modified)
	require.NoError(t, err)
	assert.True(t, relevant)

	d, ok := ws.Descriptors.Get(view)
	require.True(t, ok)
	assert.False(t, d.FlexEnabled)
	assert.Equal(t, "1.96.0", d.MinVersion)

	// A broken file keeps the last good state.
	writeFile(t, manifestPath, `{"sap.ui5": `)
	_, err = ws.Update(manifestPath, workspace.Modified)
	require.Error(t, err)
	d, ok = ws.Descriptors.Get(view)
	require.True(t, ok)
	assert.Equal(t, "1.96.0", d.MinVersion)

	_, err = ws.Update(manifestPath, workspace.Deleted)
	require.NoError(t, err)
	_, ok = ws.Descriptors.Get(view)
	assert.False(t, ok)

	yamlPath := filepath.Join(root, "app", "ui5.yaml")
	writeFile(t, yamlPath, "specVersion: '3.0'\n")
	_, err = ws.Update(yamlPath, workspace.Modified)
	require.NoError(t, err)
	_, ok = ws.Overrides.Get(view)
	assert.False(t, ok)

	bundlePath := filepath.Join(root, "app", "webapp", "i18n", "i18n.properties")
	_, err = ws.Update(bundlePath, workspace.Deleted)
	require.NoError(t, err)
	assert.Nil(t, ws.Bundles.Get(view))

	relevant, err = ws.Update(filepath.Join(root, "app", "README.md"), workspace.Created)
	require.NoError(t, err)
	assert.False(t, relevant)
}

func TestProject_Select(t *testing.T) {
	fw, v := workspace.Project{}.Select("SAPUI5", "1.71.49")
	assert.Equal(t, "SAPUI5", fw)
	assert.Equal(t, "1.71.49", v)

	fw, v = workspace.Project{Framework: "OpenUI5", Version: "1.84.0"}.Select("SAPUI5", "")
	assert.Equal(t, "OpenUI5", fw)
	assert.Equal(t, "1.84.0", v)

	fw, v = workspace.Project{MinVersion: "1.60.0", Version: "1.60.0"}.Select("SAPUI5", "")
	assert.Equal(t, "SAPUI5", fw)
	assert.Equal(t, "1.60.0", v)
}

func TestRelevant(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/a/manifest.json", true},
		{"/a/ui5.yaml", true},
		{"/a/i18n/i18n.properties", true},
		{"/a/other/i18n.properties", false},
		{"/a/i18n/i18n_de.properties", false},
		{"/a/Main.view.xml", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, workspace.Relevant(filepath.FromSlash(tt.path)))
		})
	}
}

func TestParseBundle(t *testing.T) {
	b, err := workspace.ParseBundle([]byte(
		"! comment\n" +
			"title=Hello ${name}\n" +
			"greeting : Gr\\u00fc\\u00dfe\n" +
			"multi=one \\\n    two\n"))
	require.NoError(t, err)

	assert.Equal(t, "Hello ${name}", b["title"])
	assert.Equal(t, "Grüße", b["greeting"])
	assert.Equal(t, "one two", b["multi"])
}

func TestChangeKind_String(t *testing.T) {
	assert.Equal(t, "created", workspace.Created.String())
	assert.Equal(t, "modified", workspace.Modified.String())
	assert.Equal(t, "deleted", workspace.Deleted.String())
	assert.Equal(t, "unknown", workspace.ChangeKind(0).String())
}

func TestWorkspace_Watch(t *testing.T) {
	root, view := newTree(t)
	ws := workspace.New(root, testutil.NewTestLogger(t))
	require.NoError(t, ws.Scan(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	var (
		mu      sync.Mutex
		changes []string
		done    = make(chan struct{})
	)
	go func() {
		defer close(done)
		_ = ws.Watch(ctx, func(path string, _ workspace.ChangeKind) {
			mu.Lock()
			changes = append(changes, path)
			mu.Unlock()
		})
	}()
	defer func() {
		cancel()
		<-done
	}()

	yamlPath := filepath.Join(root, "app", "ui5.yaml")
	content := []byte("framework:\n  name: SAPUI5\n  version: \"1.96.2\"\n")
	// The watcher registers asynchronously; keep rewriting until it reports.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(yamlPath, content, 0o600)
		o, ok := ws.Overrides.Get(view)
		return ok && o.Framework == "SAPUI5" && o.Version == "1.96.2"
	}, 5*time.Second, 50*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, changes, yamlPath)
}

func TestIsViewFile(t *testing.T) {
	assert.True(t, workspace.IsViewFile("/a/Main.view.xml"))
	assert.True(t, workspace.IsViewFile("/a/Dialog.fragment.xml"))
	assert.False(t, workspace.IsViewFile("/a/notes.xml"))
	assert.False(t, workspace.IsViewFile("/a/Main.view.js"))
}

func TestFindViews(t *testing.T) {
	root, view := newTree(t)
	writeFile(t, view, "<mvc:View/>")
	fragment := filepath.Join(root, "app", "webapp", "view", "A.fragment.xml")
	writeFile(t, fragment, "<core:FragmentDefinition/>")
	writeFile(t, filepath.Join(root, "app", "webapp", "view", "notes.xml"), "<x/>")
	writeFile(t, filepath.Join(root, "node_modules", "lib", "B.view.xml"), "<x/>")

	views, err := workspace.FindViews(root)
	require.NoError(t, err)
	assert.Equal(t, []string{fragment, view}, views)

	views, err = workspace.FindViews(view)
	require.NoError(t, err)
	assert.Equal(t, []string{view}, views)

	_, err = workspace.FindViews(filepath.Join(root, "missing"))
	assert.Error(t, err)
}
