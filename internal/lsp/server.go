package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/leapstack-labs/xmlviewls/internal/config"
	"github.com/leapstack-labs/xmlviewls/internal/modelcache"
	"github.com/leapstack-labs/xmlviewls/internal/modelstore"
	"github.com/leapstack-labs/xmlviewls/internal/provider"
	"github.com/leapstack-labs/xmlviewls/internal/workspace"
	"github.com/leapstack-labs/xmlviewls/pkg/quickfix"
)

// JSON-RPC and LSP error codes.
const (
	CodeParseError           = -32700
	CodeInvalidRequest       = -32600
	CodeMethodNotFound       = -32601
	CodeInvalidParams        = -32602
	CodeInternalError        = -32603
	CodeServerNotInitialized = -32002
)

// MethodModel is the custom notification announcing a document's model.
const MethodModel = "xmlviewls/model"

// DefaultRequestTimeout bounds requests sent to the client.
const DefaultRequestTimeout = 5 * time.Second

// ErrExitWithoutShutdown is returned by Run when the client sent exit
// without a preceding shutdown request.
var ErrExitWithoutShutdown = errors.New("exit received before shutdown")

// Options configure a Server.
type Options struct {
	Logger *slog.Logger
	// Level, when set, is adjusted by the editor's logging.level setting.
	Level *slog.LevelVar
	// Defaults apply when the workspace has no xmlviewls.yaml.
	Defaults config.ServerConfig
	// Version is reported in the initialize result.
	Version string
	// RequestTimeout bounds requests to the client; zero means DefaultRequestTimeout.
	RequestTimeout time.Duration
}

// Server implements the Language Server Protocol for XML views.
type Server struct {
	// Document management
	documents *DocumentStore
	versions  *versionGate

	// Shared parse cache for completion, hover, diagnostics and code actions
	provider *provider.Provider

	session *Session

	// Project context, set by initialize
	projectRoot string
	cfg         config.ServerConfig
	models      *modelstore.Store
	cache       *modelcache.Cache
	workspace   *workspace.Workspace
	initialized atomic.Bool

	// Background handlers
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// I/O
	reader    *bufio.Reader
	writer    io.Writer
	writeMu   sync.Mutex
	publishMu sync.Mutex

	// Requests sent to the client, keyed by id
	nextID    atomic.Int64
	pending   map[string]chan *JSONRPCMessage
	pendingMu sync.Mutex

	// Logging
	logger *slog.Logger
	level  *slog.LevelVar

	opts Options

	// Shutdown state
	shutdown atomic.Bool
}

// NewServer creates a new LSP server instance.
func NewServer(reader io.Reader, writer io.Writer, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	config.ApplyDefaults(&opts.Defaults)

	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		ctx:       ctx,
		cancel:    cancel,
		documents: NewDocumentStore(),
		versions:  newVersionGate(),
		provider:  provider.New(opts.Logger),
		session:   NewSession(),
		cfg:       opts.Defaults,
		reader:    bufio.NewReader(reader),
		writer:    writer,
		pending:   make(map[string]chan *JSONRPCMessage),
		logger:    opts.Logger,
		level:     opts.Level,
		opts:      opts,
	}
}

// NewServerWithLogger creates a new LSP server instance with a custom logger
// and default options.
func NewServerWithLogger(reader io.Reader, writer io.Writer, logger *slog.Logger) *Server {
	return NewServer(reader, writer, Options{Logger: logger})
}

// Run processes JSON-RPC messages until the client disconnects, sends exit
// or ctx is canceled. Background handlers are waited for before returning.
func (s *Server) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s.cancel()
	s.ctx, s.cancel = context.WithCancel(ctx)
	defer s.close()

	s.logger.Info("xmlviewls LSP server starting")

	for {
		if s.ctx.Err() != nil {
			return nil
		}

		msg, err := readMessage(s.reader)
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.logger.Info("Client disconnected")
				return nil
			}
			s.logger.Error("Error reading message", "error", err)
			continue
		}

		if msg.Method == "exit" {
			s.logger.Info("Server exit")
			if !s.shutdown.Load() {
				return ErrExitWithoutShutdown
			}
			return nil
		}

		if err := s.handleMessage(msg); err != nil {
			s.logger.Error("Error handling message", "method", msg.Method, "error", err)
		}
	}
}

// close stops background work and releases the model cache.
func (s *Server) close() {
	s.cancel()
	s.wg.Wait()
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			s.logger.Warn("failed to close model cache", "error", err)
		}
		s.cache = nil
	}
}

// goHandle runs fn in the background with the server's lifetime context.
func (s *Server) goHandle(fn func(ctx context.Context)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn(s.ctx)
	}()
}

// JSONRPCMessage represents a JSON-RPC 2.0 message.
type JSONRPCMessage struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      *json.RawMessage `json:"id,omitempty"`
	Method  string           `json:"method,omitempty"`
	Params  json.RawMessage  `json:"params,omitempty"`
	Result  json.RawMessage  `json:"result,omitempty"`
	Error   *JSONRPCError    `json:"error,omitempty"`
}

// JSONRPCError represents a JSON-RPC error.
type JSONRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *JSONRPCError) Error() string {
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}

// readMessage reads a JSON-RPC message from the input stream.
func readMessage(r *bufio.Reader) (*JSONRPCMessage, error) {
	// Read headers
	var contentLength int
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			break // End of headers
		}

		if lengthStr, ok := strings.CutPrefix(line, "Content-Length: "); ok {
			contentLength, err = strconv.Atoi(lengthStr)
			if err != nil {
				return nil, fmt.Errorf("invalid Content-Length: %w", err)
			}
		}
	}

	if contentLength == 0 {
		return nil, fmt.Errorf("missing Content-Length header")
	}

	// Read body
	body := make([]byte, contentLength)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("error reading body: %w", err)
	}

	// Parse message
	var msg JSONRPCMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("error parsing message: %w", err)
	}

	return &msg, nil
}

// writeMessage frames and writes a JSON-RPC message.
func writeMessage(w io.Writer, msg *JSONRPCMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	header := fmt.Sprintf("Content-Length: %d\r\n\r\n", len(body))
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}
	_, err = w.Write(body)
	return err
}

// sendResponse sends a JSON-RPC response.
func (s *Server) sendResponse(id *json.RawMessage, result any, err *JSONRPCError) {
	msg := JSONRPCMessage{
		JSONRPC: "2.0",
		ID:      id,
	}

	if err != nil {
		msg.Error = err
	} else {
		resultBytes, _ := json.Marshal(result)
		msg.Result = resultBytes
	}

	s.send(&msg)
}

// sendNotification sends a JSON-RPC notification (no ID).
func (s *Server) sendNotification(method string, params any) {
	msg := JSONRPCMessage{
		JSONRPC: "2.0",
		Method:  method,
	}

	if params != nil {
		paramsBytes, _ := json.Marshal(params)
		msg.Params = paramsBytes
	}

	s.send(&msg)
}

func (s *Server) send(msg *JSONRPCMessage) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := writeMessage(s.writer, msg); err != nil {
		s.logger.Error("Error writing message", "error", err)
	}
}

// request sends a request to the client and waits for its response. The
// response is delivered by the read loop, so request must not be called from
// it.
func (s *Server) request(ctx context.Context, method string, params any, result any) error {
	id := strconv.FormatInt(s.nextID.Add(1), 10)
	rawID := json.RawMessage(id)

	ch := make(chan *JSONRPCMessage, 1)
	s.pendingMu.Lock()
	s.pending[id] = ch
	s.pendingMu.Unlock()
	defer func() {
		s.pendingMu.Lock()
		delete(s.pending, id)
		s.pendingMu.Unlock()
	}()

	paramsBytes, err := json.Marshal(params)
	if err != nil {
		return err
	}
	s.send(&JSONRPCMessage{JSONRPC: "2.0", ID: &rawID, Method: method, Params: paramsBytes})

	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", method, ctx.Err())
	case resp := <-ch:
		if resp.Error != nil {
			return resp.Error
		}
		if result == nil || len(resp.Result) == 0 {
			return nil
		}
		return json.Unmarshal(resp.Result, result)
	}
}

// handleResponse delivers a client response to the waiting request.
func (s *Server) handleResponse(msg *JSONRPCMessage) {
	id := strings.Trim(string(*msg.ID), `"`)

	s.pendingMu.Lock()
	ch, ok := s.pending[id]
	s.pendingMu.Unlock()

	if !ok {
		s.logger.Debug("Response for unknown request", "id", id)
		return
	}
	ch <- msg
}

// handleMessage dispatches a message to the appropriate handler.
func (s *Server) handleMessage(msg *JSONRPCMessage) error {
	if msg.Method == "" && msg.ID != nil {
		s.handleResponse(msg)
		return nil
	}

	s.logger.Debug("Received", "method", msg.Method)

	if msg.Method != "initialize" && !s.initialized.Load() {
		if msg.ID != nil {
			s.sendResponse(msg.ID, nil, &JSONRPCError{Code: CodeServerNotInitialized, Message: "server not initialized"})
		}
		return nil
	}
	if s.shutdown.Load() && msg.ID != nil {
		s.sendResponse(msg.ID, nil, &JSONRPCError{Code: CodeInvalidRequest, Message: "server is shutting down"})
		return nil
	}

	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized":
		return s.handleInitialized(msg)
	case "shutdown":
		return s.handleShutdown(msg)
	case "textDocument/didOpen":
		return s.handleDidOpen(msg)
	case "textDocument/didClose":
		return s.handleDidClose(msg)
	case "textDocument/didChange":
		return s.handleDidChange(msg)
	case "textDocument/didSave":
		return s.handleDidSave(msg)
	case "textDocument/completion":
		return s.handleCompletion(msg)
	case "textDocument/hover":
		return s.handleHover(msg)
	case "textDocument/codeAction":
		return s.handleCodeAction(msg)
	case "workspace/executeCommand":
		return s.handleExecuteCommand(msg)
	case "workspace/didChangeConfiguration":
		return s.handleDidChangeConfiguration(msg)
	case "workspace/didChangeWatchedFiles":
		return s.handleDidChangeWatchedFiles(msg)
	default:
		if msg.ID != nil {
			// Unknown method with ID - respond with method not found
			s.sendResponse(msg.ID, nil, &JSONRPCError{
				Code:    CodeMethodNotFound,
				Message: "Method not found: " + msg.Method,
			})
		}
		return nil
	}
}

// --- Lifecycle handlers ---

func (s *Server) handleInitialize(msg *JSONRPCMessage) error {
	if s.initialized.Load() {
		s.sendResponse(msg.ID, nil, &JSONRPCError{Code: CodeInvalidRequest, Message: "server already initialized"})
		return nil
	}

	var params InitializeParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.sendResponse(msg.ID, nil, &JSONRPCError{Code: CodeInvalidParams, Message: err.Error()})
		return err
	}

	s.projectRoot = URIToPath(params.RootURI)
	if s.projectRoot == "" {
		s.projectRoot = params.RootPath
	}
	s.logger.Info("Project root", "path", s.projectRoot)
	s.session.SetCapabilities(params.Capabilities)

	s.loadProjectConfig()
	if err := s.applyInitializationOptions(params.InitializationOptions); err != nil {
		s.logger.Warn("Ignoring invalid initialization options", "error", err)
	}
	s.openModels()
	s.openWorkspace()

	result := InitializeResult{
		Capabilities: ServerCapabilities{
			TextDocumentSync: &TextDocumentSyncOptions{
				OpenClose: true,
				Change:    TextDocumentSyncKindFull,
				Save:      &SaveOptions{},
			},
			CompletionProvider: &CompletionOptions{
				TriggerCharacters: []string{"<", ":", " ", "\"", "'"},
			},
			HoverProvider: true,
			CodeActionProvider: &CodeActionOptions{
				CodeActionKinds: []CodeActionKind{CodeActionKindQuickFix},
			},
			ExecuteCommandProvider: &ExecuteCommandOptions{
				Commands: []string{quickfix.CommandStableIDFile, quickfix.CommandHardcodedTextFile},
			},
		},
		ServerInfo: &ServerInfo{Name: "xmlviewls", Version: s.opts.Version},
	}

	s.initialized.Store(true)
	s.sendResponse(msg.ID, result, nil)
	return nil
}

// loadProjectConfig reads xmlviewls.yaml from the project root. Without one
// the server keeps its defaults.
func (s *Server) loadProjectConfig() {
	if s.projectRoot == "" {
		return
	}
	cfg, err := config.LoadFromDir(s.projectRoot)
	if err != nil {
		s.logger.Warn("Failed to load project config", "root", s.projectRoot, "error", err)
		return
	}
	if cfg == nil {
		return
	}
	s.cfg = *cfg
	s.logger.Info("Loaded project config", "file", config.FindConfigFile(s.projectRoot))
}

// openModels creates the model store, backed by the persistent cache when
// one is configured and can be opened.
func (s *Server) openModels() {
	var cache modelstore.Cache
	if path := s.cfg.CachePath; path != "" {
		c, err := modelcache.Open(path)
		if err != nil {
			s.logger.Warn("Model cache unavailable", "path", path, "error", err)
		} else {
			s.cache = c
			cache = c
		}
	}
	s.models = modelstore.New(modelstore.NewDirLoader(s.cfg.ModelDir), cache, s.logger)
	s.logger.Info("Model store ready", "model_dir", s.cfg.ModelDir, "cache", s.cfg.CachePath)
}

// openWorkspace scans the project for descriptors, version overrides and
// resource bundles, and starts the file watcher when configured.
func (s *Server) openWorkspace() {
	if s.projectRoot == "" {
		return
	}
	s.workspace = workspace.New(s.projectRoot, s.logger)
	if err := s.workspace.Scan(s.ctx); err != nil {
		s.logger.Warn("Workspace scan failed", "root", s.projectRoot, "error", err)
	}

	if s.cfg.Watch {
		s.goHandle(func(ctx context.Context) {
			if err := s.workspace.Watch(ctx, func(path string, kind workspace.ChangeKind) {
				s.logger.Debug("Workspace file changed", "path", path, "kind", kind)
				s.refreshDiagnostics()
			}); err != nil {
				s.logger.Error("Workspace watcher stopped", "error", err)
			}
		})
	}
}

func (s *Server) handleInitialized(_ *JSONRPCMessage) error {
	s.logger.Info("Server initialized")

	s.goHandle(func(ctx context.Context) {
		_, err := s.models.Resolve(ctx, s.cfg.DefaultFramework, s.cfg.DefaultVersion)
		if errors.Is(err, modelstore.ErrModelNotFound) {
			s.sendNotification("window/showMessage", &ShowMessageParams{
				Type: MessageTypeWarning,
				Message: fmt.Sprintf("No %s models found in %s. Completion and diagnostics need a model; set model_dir in xmlviewls.yaml.",
					s.cfg.DefaultFramework, s.cfg.ModelDir),
			})
		} else if err != nil {
			s.logger.Warn("Failed to load default model", "error", err)
		}
	})
	return nil
}

func (s *Server) handleShutdown(msg *JSONRPCMessage) error {
	s.shutdown.Store(true)
	s.sendResponse(msg.ID, nil, nil)
	s.logger.Info("Server shutdown")
	return nil
}

// --- Document handlers ---

func (s *Server) handleDidOpen(msg *JSONRPCMessage) error {
	var params DidOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}

	item := params.TextDocument
	doc := s.documents.Open(item.URI, item.Text, item.Version)
	t := s.versions.observe(item.URI, item.Version)
	s.logger.Debug("Opened", "uri", item.URI, "version", item.Version)

	s.scheduleDiagnostics(doc, t)
	return nil
}

func (s *Server) handleDidClose(msg *JSONRPCMessage) error {
	var params DidCloseTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}

	uri := params.TextDocument.URI
	s.documents.Close(uri)
	s.versions.forget(uri)
	s.provider.Invalidate(uri)
	s.session.Forget(uri)
	s.logger.Debug("Closed", "uri", uri)

	// Clear diagnostics
	if workspace.IsViewFile(URIToPath(uri)) {
		s.publishMu.Lock()
		s.sendNotification("textDocument/publishDiagnostics", &PublishDiagnosticsParams{
			URI:         uri,
			Diagnostics: []Diagnostic{},
		})
		s.publishMu.Unlock()
	}
	return nil
}

func (s *Server) handleDidChange(msg *JSONRPCMessage) error {
	var params DidChangeTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}

	// We use full sync, so take the last change
	if len(params.ContentChanges) == 0 {
		return nil
	}
	uri, version := params.TextDocument.URI, params.TextDocument.Version
	lastChange := params.ContentChanges[len(params.ContentChanges)-1]
	doc := s.documents.Update(uri, lastChange.Text, version)
	if doc == nil {
		s.logger.Warn("Change for a document that is not open", "uri", uri)
		return nil
	}
	t := s.versions.observe(uri, version)

	s.scheduleDiagnostics(doc, t)
	return nil
}

func (s *Server) handleDidSave(msg *JSONRPCMessage) error {
	var params DidSaveTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}

	path := URIToPath(params.TextDocument.URI)
	s.logger.Debug("Saved", "path", path)

	// Saving a manifest, ui5.yaml or bundle that is open in the editor
	// changes the project context of every view.
	if s.workspace != nil && workspace.Relevant(path) {
		changed, err := s.workspace.Update(path, workspace.Modified)
		if err != nil {
			s.logger.Warn("Failed to reload project file", "path", path, "error", err)
		}
		if changed {
			s.refreshDiagnostics()
		}
	}
	return nil
}

// --- Feature handlers ---

func (s *Server) handleCompletion(msg *JSONRPCMessage) error {
	var params CompletionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.sendResponse(msg.ID, nil, &JSONRPCError{Code: CodeInvalidParams, Message: err.Error()})
		return err
	}

	s.goHandle(func(ctx context.Context) {
		s.sendResponse(msg.ID, s.getCompletions(ctx, params), nil)
	})
	return nil
}

func (s *Server) handleHover(msg *JSONRPCMessage) error {
	var params HoverParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.sendResponse(msg.ID, nil, &JSONRPCError{Code: CodeInvalidParams, Message: err.Error()})
		return err
	}

	s.goHandle(func(ctx context.Context) {
		s.sendResponse(msg.ID, s.getHover(ctx, params), nil)
	})
	return nil
}

func (s *Server) handleCodeAction(msg *JSONRPCMessage) error {
	var params CodeActionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.sendResponse(msg.ID, nil, &JSONRPCError{Code: CodeInvalidParams, Message: err.Error()})
		return err
	}

	s.goHandle(func(ctx context.Context) {
		s.sendResponse(msg.ID, s.getCodeActions(ctx, params), nil)
	})
	return nil
}

func (s *Server) handleExecuteCommand(msg *JSONRPCMessage) error {
	var params ExecuteCommandParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.sendResponse(msg.ID, nil, &JSONRPCError{Code: CodeInvalidParams, Message: err.Error()})
		return err
	}

	s.goHandle(func(ctx context.Context) {
		if err := s.executeCommand(ctx, params); err != nil {
			code := CodeInternalError
			if errors.Is(err, errInvalidCommand) {
				code = CodeInvalidParams
			}
			s.logger.Warn("Command failed", "command", params.Command, "error", err)
			s.sendResponse(msg.ID, nil, &JSONRPCError{Code: code, Message: err.Error()})
			return
		}
		s.sendResponse(msg.ID, nil, nil)
	})
	return nil
}
