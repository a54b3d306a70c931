// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// app.go - Shared wiring for command handlers. Every subcommand builds
// its collaborators from one App so config, storage, and the platform
// client are constructed exactly one way.

package cli

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/jeranaias/sia-console/internal/api"
	"github.com/jeranaias/sia-console/internal/config"
	"github.com/jeranaias/sia-console/internal/index"
	"github.com/jeranaias/sia-console/internal/session"
	"github.com/jeranaias/sia-console/internal/storage"
)

// =============================================================================
// APP WIRING
// =============================================================================

// App holds the collaborators shared by the command handlers.
type App struct {
	Config *config.Config
	Store  *storage.Store
	Client *api.Client

	args Args

	// Built lazily: the index is only opened by commands that need it.
	idx *index.TranscriptIndex
}

// NewApp loads configuration, applies the global flags, and builds
// the storage layer and platform client.
func NewApp(args Args) (*App, error) {
	var cfg *config.Config
	var err error
	if args.ConfigPath != "" {
		cfg, err = config.LoadFromPath(args.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	setupLogging()

	// Command-line flags beat config and environment.
	if args.BaseURL != "" {
		cfg.Platform.BaseURL = args.BaseURL
	}
	if args.Agent != "" {
		cfg.Platform.DefaultAgent = args.Agent
	}
	config.SetGlobal(cfg)

	store, err := buildStore(cfg)
	if err != nil {
		return nil, err
	}

	client := api.NewClientWithConfig(&api.ClientConfig{
		BaseURL:   api.ResolveBaseURL(cfg.Platform.BaseURL),
		AuthToken: cfg.Platform.AuthToken,
	})

	return &App{
		Config: cfg,
		Store:  store,
		Client: client,
		args:   args,
	}, nil
}

// setupLogging sends the log to a file under the config directory.
// The chat view owns the terminal; stray writes to stderr would tear
// the screen. Falls back to stderr when the directory is unavailable.
func setupLogging() {
	configDir, err := config.ConfigDir()
	if err != nil {
		return
	}
	logDir := filepath.Join(configDir, "logs")
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return
	}
	f, err := os.OpenFile(filepath.Join(logDir, "console.log"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return
	}
	log.SetOutput(f)
}

func buildStore(cfg *config.Config) (*storage.Store, error) {
	if cfg.Storage.EncryptPassphrase != "" {
		store, err := storage.NewEncryptedStore(cfg.Storage.Path, cfg.Storage.EncryptPassphrase)
		if err != nil {
			return nil, fmt.Errorf("open encrypted store: %w", err)
		}
		return store, nil
	}
	store, err := storage.NewStore(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return store, nil
}

// Index opens the transcript search index on first use.
func (a *App) Index() (*index.TranscriptIndex, error) {
	if a.idx != nil {
		return a.idx, nil
	}
	idx, err := index.Open(a.Config.Storage.IndexPath)
	if err != nil {
		return nil, fmt.Errorf("open search index: %w", err)
	}
	a.idx = idx
	return idx, nil
}

// Sessions builds a session manager over the store. The index is
// attached when it opens; search stays best-effort otherwise.
func (a *App) Sessions() *session.Manager {
	idx, err := a.Index()
	if err != nil {
		log.Printf("INDEX: search unavailable: %v", err)
		idx = nil
	}
	return session.NewManager(session.Config{
		Store:          a.Store,
		Index:          idx,
		SaveEveryTurns: a.Config.Storage.SaveEveryTurns,
	})
}

// Close releases the lazily opened resources.
func (a *App) Close() {
	if a.idx != nil {
		if err := a.idx.Close(); err != nil {
			log.Printf("INDEX: close: %v", err)
		}
	}
}

// infof prints an informational line unless --quiet was given.
func (a *App) infof(format string, v ...any) {
	if a.args.Quiet {
		return
	}
	fmt.Printf(format+"\n", v...)
}

// Fatalf prints an error and exits non-zero. Used only at the top of
// command handlers, never in library code.
func Fatalf(format string, v ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", errorStyle.Render("[Error]"), fmt.Sprintf(format, v...))
	os.Exit(1)
}

// normalizeKey accepts either a full "{agent}_{conversation}" key or a
// unique prefix of one and resolves it against the stored records.
func normalizeKey(a *App, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("conversation key required")
	}
	records := a.Store.Load()
	if _, ok := records[raw]; ok {
		return raw, nil
	}

	var matches []string
	for key := range records {
		if strings.HasPrefix(key, raw) {
			matches = append(matches, key)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return "", fmt.Errorf("no conversation matches %q", raw)
	default:
		return "", fmt.Errorf("%q is ambiguous (%d matches)", raw, len(matches))
	}
}
