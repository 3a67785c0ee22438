package lsp

import (
	"encoding/json"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clitestutil "github.com/leapstack-labs/xmlviewls/internal/cli/testutil"
	"github.com/leapstack-labs/xmlviewls/internal/testutil"
	"github.com/leapstack-labs/xmlviewls/pkg/quickfix"
)

// twoButtonsView has two elements without id and no hard-coded text.
const twoButtonsView = `<mvc:View xmlns:mvc="sap.ui.core.mvc" xmlns="sap.m">
  <Page id="page">
    <content>
      <Button text="{i18n>save}" />
      <Button text="{i18n>hint}" />
    </content>
  </Page>
</mvc:View>
`

func mainViewURI(root string) string {
	return PathToURI(filepath.Join(root, "webapp", "view", "Main.view.xml"))
}

func startProject(t *testing.T, caps ClientCapabilities) (*testClient, string) {
	t.Helper()
	root := clitestutil.SetupTestProject(t)
	c := startServer(t, Options{Version: "1.2.3"})
	c.initialize(root, caps, nil)
	return c, root
}

func TestServer_Initialize(t *testing.T) {
	root := clitestutil.SetupTestProject(t)
	c := startServer(t, Options{Version: "1.2.3"})

	result := c.initialize(root, ClientCapabilities{}, nil)

	caps := result.Capabilities
	require.NotNil(t, caps.TextDocumentSync)
	assert.Equal(t, TextDocumentSyncKindFull, caps.TextDocumentSync.Change)
	assert.True(t, caps.HoverProvider)
	require.NotNil(t, caps.CompletionProvider)
	assert.Subset(t, caps.CompletionProvider.TriggerCharacters, []string{"<", ":", "\"", "'"},
		"completion opens on element starts, prefixes and both attribute quotes")
	require.NotNil(t, caps.CodeActionProvider)
	assert.Equal(t, []CodeActionKind{CodeActionKindQuickFix}, caps.CodeActionProvider.CodeActionKinds)
	require.NotNil(t, caps.ExecuteCommandProvider)
	assert.ElementsMatch(t,
		[]string{quickfix.CommandStableIDFile, quickfix.CommandHardcodedTextFile},
		caps.ExecuteCommandProvider.Commands)
	require.NotNil(t, result.ServerInfo)
	assert.Equal(t, "xmlviewls", result.ServerInfo.Name)
	assert.Equal(t, "1.2.3", result.ServerInfo.Version)

	resp := c.call("initialize", InitializeParams{RootURI: PathToURI(root)})
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeInvalidRequest, resp.Error.Code)
}

func TestServer_RequestErrors(t *testing.T) {
	c := startServer(t, Options{})

	resp := c.call("textDocument/hover", HoverParams{})
	require.NotNil(t, resp.Error, "requests before initialize fail")
	assert.Equal(t, CodeServerNotInitialized, resp.Error.Code)

	c.initialize(t.TempDir(), ClientCapabilities{}, nil)

	resp = c.call("textDocument/definition", HoverParams{})
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeMethodNotFound, resp.Error.Code)

	resp = c.call("textDocument/completion", json.RawMessage(`"not an object"`))
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeInvalidParams, resp.Error.Code)
}

func TestServer_ShutdownRejectsRequests(t *testing.T) {
	c := startServer(t, Options{})
	c.initialize(t.TempDir(), ClientCapabilities{}, nil)

	resp := c.call("shutdown", nil)
	require.Nil(t, resp.Error)

	resp = c.call("textDocument/hover", HoverParams{})
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeInvalidRequest, resp.Error.Code)

	assert.NoError(t, c.exit())
}

func TestServer_ExitWithoutShutdown(t *testing.T) {
	c := startServer(t, Options{})
	c.initialize(t.TempDir(), ClientCapabilities{}, nil)

	assert.ErrorIs(t, c.exit(), ErrExitWithoutShutdown)
}

func TestServer_Diagnostics(t *testing.T) {
	c, root := startProject(t, ClientCapabilities{})
	uri := mainViewURI(root)
	notesURI := PathToURI(filepath.Join(root, "webapp", "view", "notes.xml"))

	c.open(notesURI, "<not-a-view/>", 1)
	c.open(uri, clitestutil.MainView, 1)

	pub := c.waitDiagnostics(uri, 1)
	require.NotNil(t, pub.Version)
	assert.Equal(t, 1, *pub.Version)
	require.Equal(t, []string{"UI5002", "UI5001"}, codes(pub.Diagnostics))

	hardcoded := pub.Diagnostics[0]
	assert.Equal(t, DiagnosticSeverityInformation, hardcoded.Severity)
	assert.Equal(t, uint32(1), hardcoded.Range.Start.Line)
	assert.Equal(t, diagnosticSource, hardcoded.Source)

	stableID := pub.Diagnostics[1]
	assert.Equal(t, DiagnosticSeverityError, stableID.Severity)
	assert.Equal(t, Position{Line: 3, Character: 7}, stableID.Range.Start)
	require.NotNil(t, stableID.CodeDescription)
	assert.Contains(t, stableID.CodeDescription.Href, "UI5001")

	assert.Empty(t, c.publications(notesURI), "only views and fragments are diagnosed")

	n := c.waitNotification(MethodModel, nil)
	var model ModelParams
	require.NoError(t, json.Unmarshal(n.Params, &model))
	assert.Equal(t, ModelParams{URI: uri, Framework: testutil.TestFramework, Version: testutil.TestVersion}, model)
}

func TestServer_DiagnosticsFollowChanges(t *testing.T) {
	c, root := startProject(t, ClientCapabilities{})
	uri := mainViewURI(root)

	c.open(uri, clitestutil.MainView, 1)
	c.waitDiagnostics(uri, 1)

	c.change(uri, twoButtonsView, 2)
	pub := c.waitDiagnostics(uri, 2)
	require.NotNil(t, pub.Version)
	assert.Equal(t, 2, *pub.Version)
	assert.Equal(t, []string{"UI5001", "UI5001"}, codes(pub.Diagnostics))

	c.notify("textDocument/didClose", DidCloseTextDocumentParams{TextDocument: TextDocumentIdentifier{URI: uri}})
	pub = c.waitDiagnostics(uri, 3)
	assert.Empty(t, pub.Diagnostics, "closing clears diagnostics")
	assert.Nil(t, pub.Version)
}

func TestServer_DocumentSettings(t *testing.T) {
	var caps ClientCapabilities
	caps.Workspace.Configuration = true
	c, root := startProject(t, caps)
	uri := mainViewURI(root)
	c.setSettings(map[string]any{
		"xmlviewls": map[string]any{"lint": map[string]any{"disabled": []any{"UI5002"}}},
	})

	pos := c.open(uri, clitestutil.MainView, 1)
	pub := c.waitDiagnostics(uri, 1)
	assert.Equal(t, []string{"UI5001"}, codes(pub.Diagnostics))
	assert.Equal(t, 1, c.configurationRequests())

	// Cached until the configuration changes.
	c.call("textDocument/hover", HoverParams{TextDocumentPositionParams{
		TextDocument: TextDocumentIdentifier{URI: uri}, Position: pos,
	}})
	assert.Equal(t, 1, c.configurationRequests())

	c.setSettings(map[string]any{})
	c.notify("workspace/didChangeConfiguration", DidChangeConfigurationParams{Settings: map[string]any{}})
	pub = c.waitDiagnostics(uri, 2)
	assert.Equal(t, []string{"UI5002", "UI5001"}, codes(pub.Diagnostics))
	assert.Equal(t, 2, c.configurationRequests())
}

func TestServer_GlobalSettings(t *testing.T) {
	level := new(slog.LevelVar)
	root := clitestutil.SetupTestProject(t)
	c := startServer(t, Options{Level: level})
	c.initialize(root, ClientCapabilities{}, map[string]any{
		"settings": map[string]any{
			"logging": map[string]any{"level": "debug"},
			"lint":    map[string]any{"disabled": []any{"UI5002"}},
		},
	})
	uri := mainViewURI(root)

	c.open(uri, clitestutil.MainView, 1)
	pub := c.waitDiagnostics(uri, 1)
	assert.Equal(t, []string{"UI5001"}, codes(pub.Diagnostics))
	assert.Equal(t, slog.LevelDebug, level.Level())

	c.notify("workspace/didChangeConfiguration", DidChangeConfigurationParams{Settings: map[string]any{
		"xmlviewls": map[string]any{
			"logging": map[string]any{"level": "warn"},
			"lint":    map[string]any{"severity": map[string]any{"UI5001": "warning"}},
		},
	}})
	pub = c.waitDiagnostics(uri, 2)
	require.Equal(t, []string{"UI5002", "UI5001"}, codes(pub.Diagnostics))
	assert.Equal(t, DiagnosticSeverityWarning, pub.Diagnostics[1].Severity)
	assert.Equal(t, slog.LevelWarn, level.Level())
}

func TestServer_Completion(t *testing.T) {
	c, root := startProject(t, ClientCapabilities{})
	uri := mainViewURI(root)

	pos := c.open(uri, `<mvc:View xmlns:mvc="sap.ui.core.mvc" xmlns="sap.m">
  <Page id="page">
    <content>
      <Button id="b" busy="⇶" />
    </content>
  </Page>
</mvc:View>`, 1)

	var list CompletionList
	c.callResult("textDocument/completion", CompletionParams{TextDocumentPositionParams: TextDocumentPositionParams{
		TextDocument: TextDocumentIdentifier{URI: uri}, Position: pos,
	}}, &list)

	require.Len(t, list.Items, 2)
	assert.Equal(t, "false", list.Items[0].Label)
	assert.Equal(t, "true", list.Items[1].Label)
	for _, item := range list.Items {
		assert.Equal(t, CompletionItemKindValue, item.Kind)
		require.NotNil(t, item.TextEdit)
		assert.Equal(t, Range{Start: pos, End: pos}, item.TextEdit.Range, "quotes are not replaced")
		assert.Equal(t, item.Label, item.TextEdit.NewText)
	}
}

func TestServer_CompletionSingleQuotedValue(t *testing.T) {
	c, root := startProject(t, ClientCapabilities{})
	uri := mainViewURI(root)

	pos := c.open(uri, `<mvc:View xmlns:mvc='sap.ui.core.mvc' xmlns='sap.m'><Button id='b' busy='⇶'/></mvc:View>`, 1)

	var list CompletionList
	c.callResult("textDocument/completion", CompletionParams{
		TextDocumentPositionParams: TextDocumentPositionParams{
			TextDocument: TextDocumentIdentifier{URI: uri}, Position: pos,
		},
		Context: &CompletionContext{TriggerKind: 2, TriggerCharacter: "'"},
	}, &list)

	require.Len(t, list.Items, 2)
	assert.Equal(t, []string{"false", "true"}, []string{list.Items[0].Label, list.Items[1].Label})
	assert.Equal(t, Range{Start: pos, End: pos}, list.Items[0].TextEdit.Range)
}

func TestServer_CompletionUTF16(t *testing.T) {
	c, root := startProject(t, ClientCapabilities{})
	uri := mainViewURI(root)

	pos := c.open(uri, `<mvc:View xmlns:mvc="sap.ui.core.mvc" xmlns="sap.m"><Page id="p" title="Grüße 😀"><content><Button id="b" busy="t⇶"/></content></Page></mvc:View>`, 1)
	require.Equal(t, uint32(0), pos.Line)

	var list CompletionList
	c.callResult("textDocument/completion", CompletionParams{TextDocumentPositionParams: TextDocumentPositionParams{
		TextDocument: TextDocumentIdentifier{URI: uri}, Position: pos,
	}}, &list)

	require.Len(t, list.Items, 1)
	item := list.Items[0]
	assert.Equal(t, "true", item.Label)
	assert.Equal(t, Position{Line: 0, Character: pos.Character - 1}, item.TextEdit.Range.Start)
	assert.Equal(t, pos, item.TextEdit.Range.End)
}

func TestServer_Hover(t *testing.T) {
	c, root := startProject(t, ClientCapabilities{})
	uri := mainViewURI(root)

	pos := c.open(uri, `<mvc:View xmlns:mvc="sap.ui.core.mvc" xmlns="sap.m">
  <Pa⇶ge id="page">
  </Page>
</mvc:View>`, 1)

	var hover Hover
	c.callResult("textDocument/hover", HoverParams{TextDocumentPositionParams{
		TextDocument: TextDocumentIdentifier{URI: uri}, Position: pos,
	}}, &hover)
	assert.Equal(t, MarkupKindMarkdown, hover.Contents.Kind)
	assert.Contains(t, hover.Contents.Value, "`sap.m.Page`")
	require.NotNil(t, hover.Range)
	assert.Equal(t, Range{Start: Position{Line: 1, Character: 3}, End: Position{Line: 1, Character: 7}}, *hover.Range)

	resp := c.call("textDocument/hover", HoverParams{TextDocumentPositionParams{
		TextDocument: TextDocumentIdentifier{URI: uri}, Position: Position{Line: 2, Character: 0},
	}})
	require.Nil(t, resp.Error)
	assert.Equal(t, "null", string(resp.Result))
}

func TestServer_CodeActions(t *testing.T) {
	c, root := startProject(t, ClientCapabilities{})
	uri := mainViewURI(root)

	c.open(uri, clitestutil.MainView, 1)
	pub := c.waitDiagnostics(uri, 1)
	require.Len(t, pub.Diagnostics, 2)

	var actions []CodeAction
	c.callResult("textDocument/codeAction", CodeActionParams{
		TextDocument: TextDocumentIdentifier{URI: uri},
		Range:        pub.Diagnostics[1].Range,
		Context:      CodeActionContext{Diagnostics: pub.Diagnostics},
	}, &actions)

	require.Len(t, actions, 1, "no bundle key matches the hard-coded title")
	action := actions[0]
	assert.Equal(t, `Generate id "_IDGenButton1"`, action.Title)
	assert.Equal(t, CodeActionKindQuickFix, action.Kind)
	assert.True(t, action.IsPreferred)
	require.NotNil(t, action.Edit)
	assert.Equal(t, []TextEdit{{
		Range:   Range{Start: Position{Line: 3, Character: 13}, End: Position{Line: 3, Character: 13}},
		NewText: ` id="_IDGenButton1"`,
	}}, action.Edit.Changes[uri])

	c.callResult("textDocument/codeAction", CodeActionParams{
		TextDocument: TextDocumentIdentifier{URI: uri},
		Context:      CodeActionContext{Diagnostics: pub.Diagnostics, Only: []CodeActionKind{"refactor"}},
	}, &actions)
	assert.Empty(t, actions)
}

func TestServer_BatchCommand(t *testing.T) {
	var caps ClientCapabilities
	caps.Workspace.ApplyEdit = true
	c, root := startProject(t, caps)
	uri := mainViewURI(root)

	c.open(uri, twoButtonsView, 1)
	pub := c.waitDiagnostics(uri, 1)
	require.Len(t, pub.Diagnostics, 2)

	var actions []CodeAction
	c.callResult("textDocument/codeAction", CodeActionParams{
		TextDocument: TextDocumentIdentifier{URI: uri},
		Context:      CodeActionContext{Diagnostics: pub.Diagnostics[:1]},
	}, &actions)
	require.Len(t, actions, 2)
	batch := actions[1]
	require.NotNil(t, batch.Command)
	assert.Equal(t, quickfix.CommandStableIDFile, batch.Command.Command)
	assert.Equal(t, []any{uri}, batch.Command.Arguments)
	assert.Len(t, batch.Diagnostics, 2)

	args, err := json.Marshal(uri)
	require.NoError(t, err)
	resp := c.call("workspace/executeCommand", ExecuteCommandParams{
		Command:   batch.Command.Command,
		Arguments: []json.RawMessage{args},
	})
	require.Nil(t, resp.Error)

	applied := c.appliedEdits()
	require.Len(t, applied, 1)
	edits := applied[0].Edit.Changes[uri]
	require.Len(t, edits, 2)
	assert.Equal(t, ` id="_IDGenButton1"`, edits[0].NewText)
	assert.Equal(t, ` id="_IDGenButton2"`, edits[1].NewText)
	assert.Equal(t, uint32(3), edits[0].Range.Start.Line)
	assert.Equal(t, uint32(4), edits[1].Range.Start.Line)

	resp = c.call("workspace/executeCommand", ExecuteCommandParams{Command: "xmlviewls.unknown"})
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeInvalidParams, resp.Error.Code)
}

func TestServer_BatchCommandNeedsApplyEdit(t *testing.T) {
	c, root := startProject(t, ClientCapabilities{})
	uri := mainViewURI(root)

	c.open(uri, twoButtonsView, 1)
	pub := c.waitDiagnostics(uri, 1)

	var actions []CodeAction
	c.callResult("textDocument/codeAction", CodeActionParams{
		TextDocument: TextDocumentIdentifier{URI: uri},
		Context:      CodeActionContext{Diagnostics: pub.Diagnostics[:1]},
	}, &actions)
	require.Len(t, actions, 1)
	assert.Nil(t, actions[0].Command)
}

func TestServer_WatchedFiles(t *testing.T) {
	c, root := startProject(t, ClientCapabilities{})
	uri := mainViewURI(root)

	c.open(uri, clitestutil.MainView, 1)
	pub := c.waitDiagnostics(uri, 1)
	require.Contains(t, codes(pub.Diagnostics), "UI5001")

	manifest := writeFile(t, root, "webapp/manifest.json",
		`{"sap.ui5": {"flexEnabled": false, "dependencies": {"minUI5Version": "`+testutil.TestVersion+`"}}}`)
	c.notify("workspace/didChangeWatchedFiles", DidChangeWatchedFilesParams{Changes: []FileEvent{
		{URI: PathToURI(manifest), Type: FileChangeTypeChanged},
	}})

	pub = c.waitDiagnostics(uri, 2)
	assert.Equal(t, []string{"UI5002"}, codes(pub.Diagnostics), "stable ids are only required for flex-enabled apps")
}

func TestServer_ModelNotFound(t *testing.T) {
	root := clitestutil.SetupTestProject(t)
	c := startServer(t, Options{})
	c.initialize(root, ClientCapabilities{}, map[string]any{"modelDir": "missing"})

	n := c.waitNotification("window/showMessage", nil)
	var msg ShowMessageParams
	require.NoError(t, json.Unmarshal(n.Params, &msg))
	assert.Equal(t, MessageTypeWarning, msg.Type)
	assert.Contains(t, msg.Message, filepath.Join(root, "missing"))

	uri := mainViewURI(root)
	pos := c.open(uri, clitestutil.MainView, 1)
	pub := c.waitDiagnostics(uri, 1)
	assert.Empty(t, pub.Diagnostics)

	var list CompletionList
	c.callResult("textDocument/completion", CompletionParams{TextDocumentPositionParams: TextDocumentPositionParams{
		TextDocument: TextDocumentIdentifier{URI: uri}, Position: pos,
	}}, &list)
	assert.Empty(t, list.Items)
}
