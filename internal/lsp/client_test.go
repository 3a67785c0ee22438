package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/xmlviewls/internal/testutil"
)

const (
	waitTimeout = 5 * time.Second
	waitTick    = 10 * time.Millisecond
	cursor      = "⇶"
)

// testClient drives a Server over in-memory pipes the way an editor does.
// Requests from the server are answered automatically.
type testClient struct {
	t *testing.T

	toServer *io.PipeWriter
	writeMu  sync.Mutex
	nextID   atomic.Int64

	mu             sync.Mutex
	responses      map[string]*JSONRPCMessage
	notifications  []*JSONRPCMessage
	settings       map[string]any // answer to workspace/configuration
	configRequests int
	applied        []ApplyWorkspaceEditParams

	done   chan error
	exited bool
}

// startServer runs a server until the test ends.
func startServer(t *testing.T, opts Options) *testClient {
	t.Helper()

	clientR, serverW := io.Pipe()
	serverR, clientW := io.Pipe()

	if opts.Logger == nil {
		opts.Logger = testutil.NewTestLogger(t)
	}
	server := NewServer(serverR, serverW, opts)

	c := &testClient{
		t:         t,
		toServer:  clientW,
		responses: make(map[string]*JSONRPCMessage),
		done:      make(chan error, 1),
	}

	go func() {
		err := server.Run(context.Background())
		_ = serverW.Close()
		c.done <- err
	}()
	go c.readLoop(bufio.NewReader(clientR))

	t.Cleanup(c.stop)
	return c
}

func (c *testClient) readLoop(r *bufio.Reader) {
	for {
		msg, err := readMessage(r)
		if err != nil {
			return
		}
		switch {
		case msg.Method != "" && msg.ID != nil:
			go c.answer(msg)
		case msg.Method != "":
			c.mu.Lock()
			c.notifications = append(c.notifications, msg)
			c.mu.Unlock()
		default:
			c.mu.Lock()
			c.responses[string(*msg.ID)] = msg
			c.mu.Unlock()
		}
	}
}

// answer replies to a request sent by the server.
func (c *testClient) answer(msg *JSONRPCMessage) {
	var result any
	switch msg.Method {
	case "workspace/configuration":
		c.mu.Lock()
		c.configRequests++
		result = []any{c.settings}
		c.mu.Unlock()
	case "workspace/applyEdit":
		var params ApplyWorkspaceEditParams
		_ = json.Unmarshal(msg.Params, &params)
		c.mu.Lock()
		c.applied = append(c.applied, params)
		c.mu.Unlock()
		result = ApplyWorkspaceEditResult{Applied: true}
	}
	body, _ := json.Marshal(result)
	c.write(&JSONRPCMessage{JSONRPC: "2.0", ID: msg.ID, Result: body})
}

func (c *testClient) write(msg *JSONRPCMessage) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = writeMessage(c.toServer, msg)
}

// call sends a request and waits for its response.
func (c *testClient) call(method string, params any) *JSONRPCMessage {
	c.t.Helper()

	id := strconv.FormatInt(c.nextID.Add(1), 10)
	rawID := json.RawMessage(id)
	body, err := json.Marshal(params)
	require.NoError(c.t, err)
	c.write(&JSONRPCMessage{JSONRPC: "2.0", ID: &rawID, Method: method, Params: body})

	var resp *JSONRPCMessage
	require.Eventually(c.t, func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		resp = c.responses[id]
		return resp != nil
	}, waitTimeout, waitTick, "no response to %s", method)
	return resp
}

// callResult sends a request, requires success and decodes the result.
func (c *testClient) callResult(method string, params any, result any) {
	c.t.Helper()
	resp := c.call(method, params)
	require.Nil(c.t, resp.Error, "%s failed", method)
	require.NoError(c.t, json.Unmarshal(resp.Result, result))
}

func (c *testClient) notify(method string, params any) {
	c.t.Helper()
	body, err := json.Marshal(params)
	require.NoError(c.t, err)
	c.write(&JSONRPCMessage{JSONRPC: "2.0", Method: method, Params: body})
}

// initialize performs the initialize handshake for a project root.
func (c *testClient) initialize(root string, caps ClientCapabilities, initOpts map[string]any) InitializeResult {
	c.t.Helper()
	var result InitializeResult
	c.callResult("initialize", InitializeParams{
		RootURI:               PathToURI(root),
		Capabilities:          caps,
		InitializationOptions: initOpts,
	}, &result)
	c.notify("initialized", struct{}{})
	return result
}

// open opens a document. A cursor marker in text is removed and its position
// returned.
func (c *testClient) open(uri, text string, version int) Position {
	c.t.Helper()
	off := strings.Index(text, cursor)
	if off >= 0 {
		text = strings.Replace(text, cursor, "", 1)
	} else {
		off = 0
	}
	c.notify("textDocument/didOpen", DidOpenTextDocumentParams{
		TextDocument: TextDocumentItem{URI: uri, LanguageID: "xml", Version: version, Text: text},
	})
	return newDocument(uri, text, version).OffsetToPosition(off)
}

func (c *testClient) change(uri, text string, version int) {
	c.t.Helper()
	c.notify("textDocument/didChange", DidChangeTextDocumentParams{
		TextDocument:   VersionedTextDocumentIdentifier{TextDocumentIdentifier{URI: uri}, version},
		ContentChanges: []TextDocumentContentChangeEvent{{Text: text}},
	})
}

// waitNotification waits for a notification matching method and match.
func (c *testClient) waitNotification(method string, match func(*JSONRPCMessage) bool) *JSONRPCMessage {
	c.t.Helper()
	var found *JSONRPCMessage
	require.Eventually(c.t, func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		for _, n := range c.notifications {
			if n.Method == method && (match == nil || match(n)) {
				found = n
				return true
			}
		}
		return false
	}, waitTimeout, waitTick, "no %s notification", method)
	return found
}

// publications returns every publishDiagnostics notification for uri.
func (c *testClient) publications(uri string) []PublishDiagnosticsParams {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []PublishDiagnosticsParams
	for _, n := range c.notifications {
		if n.Method != "textDocument/publishDiagnostics" {
			continue
		}
		var p PublishDiagnosticsParams
		if json.Unmarshal(n.Params, &p) == nil && p.URI == uri {
			out = append(out, p)
		}
	}
	return out
}

// waitDiagnostics waits for the nth publication (1-based) for uri.
func (c *testClient) waitDiagnostics(uri string, n int) PublishDiagnosticsParams {
	c.t.Helper()
	var pubs []PublishDiagnosticsParams
	require.Eventually(c.t, func() bool {
		pubs = c.publications(uri)
		return len(pubs) >= n
	}, waitTimeout, waitTick, "expected %d diagnostics publications for %s", n, uri)
	return pubs[n-1]
}

func (c *testClient) setSettings(settings map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings = settings
}

func (c *testClient) configurationRequests() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.configRequests
}

func (c *testClient) appliedEdits() []ApplyWorkspaceEditParams {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ApplyWorkspaceEditParams(nil), c.applied...)
}

// exit sends exit and returns the server's Run result.
func (c *testClient) exit() error {
	c.t.Helper()
	c.notify("exit", nil)
	c.exited = true
	select {
	case err := <-c.done:
		_ = c.toServer.Close()
		return err
	case <-time.After(waitTimeout):
		c.t.Fatal("server did not exit")
		return nil
	}
}

func (c *testClient) stop() {
	if c.exited {
		return
	}
	c.call("shutdown", nil)
	require.NoError(c.t, c.exit())
}

// writeFile writes a file below root, creating directories.
func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func codes(diags []Diagnostic) []string {
	out := make([]string, len(diags))
	for i, d := range diags {
		out[i] = d.Code
	}
	return out
}
