package lsp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-viper/mapstructure/v2"

	"github.com/leapstack-labs/xmlviewls/internal/config"
	"github.com/leapstack-labs/xmlviewls/internal/workspace"
)

// InitializationOptions are the options an editor may pass with initialize.
// They override xmlviewls.yaml.
type InitializationOptions struct {
	ModelDir  string `mapstructure:"modelDir"`
	CachePath string `mapstructure:"cachePath"`
	Framework string `mapstructure:"framework"`
	Version   string `mapstructure:"version"`
	Watch     *bool  `mapstructure:"watch"`

	// Settings are the initial global settings, in the shape of
	// workspace/didChangeConfiguration.
	Settings map[string]any `mapstructure:"settings"`
}

// DecodeInitializationOptions decodes the raw initializationOptions object.
func DecodeInitializationOptions(raw map[string]any) (InitializationOptions, error) {
	var opts InitializationOptions
	if len(raw) == 0 {
		return opts, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &opts,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return opts, err
	}
	if err := decoder.Decode(raw); err != nil {
		return opts, fmt.Errorf("invalid initializationOptions: %w", err)
	}
	return opts, nil
}

func (s *Server) applyInitializationOptions(raw map[string]any) error {
	opts, err := DecodeInitializationOptions(raw)
	if err != nil {
		return err
	}

	if opts.ModelDir != "" {
		s.cfg.ModelDir = config.ResolvePath(opts.ModelDir, s.projectRoot)
	}
	if opts.CachePath != "" {
		s.cfg.CachePath = config.ResolvePath(opts.CachePath, s.projectRoot)
	}
	if opts.Framework != "" {
		s.cfg.DefaultFramework = opts.Framework
	}
	if opts.Version != "" {
		s.cfg.DefaultVersion = opts.Version
	}
	if opts.Watch != nil {
		s.cfg.Watch = *opts.Watch
	}

	if opts.Settings != nil {
		settings, err := config.DecodeSettings(opts.Settings)
		if err != nil {
			return err
		}
		s.applyGlobalSettings(settings)
	}
	return nil
}

// applyGlobalSettings replaces the global settings and applies the log level.
func (s *Server) applyGlobalSettings(settings config.Settings) {
	s.session.SetGlobal(settings)
	if s.level != nil {
		s.level.Set(settings.LogLevel())
	}
}

// settingsFor returns the settings of a document: the cached per-document
// settings, else the client's answer to workspace/configuration, else the
// global settings.
func (s *Server) settingsFor(ctx context.Context, uri string) config.Settings {
	if st, ok := s.session.DocumentSettings(uri); ok {
		return st
	}
	if !s.session.ConfigurationSupported() {
		return s.session.Global()
	}

	reqCtx, cancel := context.WithTimeout(ctx, s.opts.RequestTimeout)
	defer cancel()

	var result []map[string]any
	err := s.request(reqCtx, "workspace/configuration", &ConfigurationParams{
		Items: []ConfigurationItem{{ScopeURI: uri, Section: config.SettingsSection}},
	}, &result)
	if err != nil {
		s.logger.Debug("workspace/configuration failed", "uri", uri, "error", err)
		return s.session.Global()
	}
	if len(result) == 0 || result[0] == nil {
		return s.session.Global()
	}

	st, err := config.DecodeSettings(result[0])
	if err != nil {
		s.logger.Warn("Invalid document settings", "uri", uri, "error", err)
		return s.session.Global()
	}
	if s.documents.Get(uri) != nil {
		s.session.StoreDocumentSettings(uri, st)
	}
	return st
}

func (s *Server) handleDidChangeConfiguration(msg *JSONRPCMessage) error {
	var params DidChangeConfigurationParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}

	settings, err := config.DecodeSettings(params.Settings)
	if err != nil {
		s.logger.Warn("Ignoring invalid settings", "error", err)
		return nil
	}
	s.applyGlobalSettings(settings)
	s.logger.Info("Settings changed", "log_level", settings.Logging.Level)

	s.refreshDiagnostics()
	return nil
}

func (s *Server) handleDidChangeWatchedFiles(msg *JSONRPCMessage) error {
	var params DidChangeWatchedFilesParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	if s.workspace == nil {
		return nil
	}

	refresh := false
	for _, change := range params.Changes {
		path := URIToPath(change.URI)
		changed, err := s.workspace.Update(path, changeKind(change.Type))
		if err != nil {
			s.logger.Warn("Failed to apply file change", "path", path, "error", err)
			continue
		}
		refresh = refresh || changed
	}
	if refresh {
		s.refreshDiagnostics()
	}
	return nil
}

func changeKind(t FileChangeType) workspace.ChangeKind {
	switch t {
	case FileChangeTypeCreated:
		return workspace.Created
	case FileChangeTypeDeleted:
		return workspace.Deleted
	default:
		return workspace.Modified
	}
}
