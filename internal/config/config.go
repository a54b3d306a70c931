// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management
// for sia-console.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/sia-console/internal/sanitize"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete sia-console configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	// Platform connection
	Platform PlatformConfig `toml:"platform" json:"platform"`

	// Streaming behavior
	Stream StreamConfig `toml:"stream" json:"stream"`

	// Conversation persistence
	Storage StorageConfig `toml:"storage" json:"storage"`

	// Transcript preview server
	Server ServerConfig `toml:"server" json:"server"`

	// Terminal UI
	UI UIConfig `toml:"ui" json:"ui"`
}

// PlatformConfig contains SIA platform connection settings.
type PlatformConfig struct {
	// BaseURL is the platform base URL (empty = resolve from
	// SIA_API_BASE_URL or the http://localhost:8000 default)
	BaseURL string `toml:"base_url" json:"base_url"`
	// UserID identifies this console user to the platform
	UserID string `toml:"user_id" json:"user_id"`
	// DefaultAgent is preselected on startup when set
	DefaultAgent string `toml:"default_agent" json:"default_agent"`
	// AuthToken is sent as a Bearer token when non-empty
	AuthToken string `toml:"auth_token" json:"auth_token"`
}

// StreamConfig contains streaming and sanitization settings.
type StreamConfig struct {
	// Enabled requests streamed responses (default: true)
	Enabled bool `toml:"enabled" json:"enabled"`
	// DeltaCap is the per-chunk size limit in runes.
	// Values outside 1-1000000 are clamped.
	DeltaCap int `toml:"delta_cap" json:"delta_cap"`
	// MessageCap is the outbound message size limit in runes.
	// Values outside 1-1000000 are clamped.
	MessageCap int `toml:"message_cap" json:"message_cap"`
	// HistoryLimit is how many prior turns accompany each send (0 = all)
	HistoryLimit int `toml:"history_limit" json:"history_limit"`
}

// StorageConfig contains conversation persistence settings.
type StorageConfig struct {
	// Path is the conversation document path (empty = default
	// ~/.sia-console/conversations.json)
	Path string `toml:"path" json:"path"`
	// SaveEveryTurns forces a save each time this many turns accumulate
	// since the last save (default: 5)
	SaveEveryTurns int `toml:"save_every_turns" json:"save_every_turns"`
	// EncryptPassphrase enables at-rest encryption when non-empty
	EncryptPassphrase string `toml:"encrypt_passphrase" json:"encrypt_passphrase"`
	// IndexPath is the transcript search database path (empty = default
	// ~/.sia-console/transcripts.db)
	IndexPath string `toml:"index_path" json:"index_path"`
}

// ServerConfig contains transcript preview server settings.
type ServerConfig struct {
	// Addr is the listen address for `sia-console serve`
	Addr string `toml:"addr" json:"addr"`
	// RateLimit is requests per second per client (0 = default 10)
	RateLimit float64 `toml:"rate_limit" json:"rate_limit"`
	// RateBurst is the rate limiter burst size (0 = default 20)
	RateBurst int `toml:"rate_burst" json:"rate_burst"`
}

// UIConfig contains terminal UI settings.
type UIConfig struct {
	// Theme selects the glamour style: "auto", "dark", "light"
	Theme string `toml:"theme" json:"theme"`
	// ShowTimestamps displays per-turn timestamps in the transcript
	ShowTimestamps bool `toml:"show_timestamps" json:"show_timestamps"`
	// WordWrap is the markdown render width (0 = terminal width)
	WordWrap int `toml:"word_wrap" json:"word_wrap"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in default configuration.
func Default() *Config {
	return &Config{
		Version: "1",
		Platform: PlatformConfig{
			UserID: defaultUserID(),
		},
		Stream: StreamConfig{
			Enabled:      true,
			DeltaCap:     sanitize.DefaultDeltaCap,
			MessageCap:   sanitize.DefaultMessageCap,
			HistoryLimit: 0,
		},
		Storage: StorageConfig{
			SaveEveryTurns: 5,
		},
		Server: ServerConfig{
			Addr:      "127.0.0.1:8765",
			RateLimit: 10,
			RateBurst: 20,
		},
		UI: UIConfig{
			Theme: "auto",
		},
	}
}

// defaultUserID derives a user id from the system username.
func defaultUserID() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	if u := os.Getenv("USERNAME"); u != "" {
		return u
	}
	return "console-user"
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns the configuration directory (~/.sia-console).
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".sia-console"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// ensureSecurePermissions checks and fixes permissions on config files.
// SECURITY: Config files should be 0600 to protect auth tokens.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	if tomlPath, err := ConfigPathTOML(); err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			return LoadFromPath(tomlPath)
		}
	}
	if jsonPath, err := ConfigPathJSON(); err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			return LoadFromPath(jsonPath)
		}
	}

	cfg := Default()
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific file path with full
// validation. JSON is detected by extension; everything else is TOML.
func LoadFromPath(path string) (*Config, error) {
	if err := ensureSecurePermissions(path); err != nil {
		// Permissions might not be fixable on all systems.
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	cfg := Default()
	if strings.HasSuffix(path, ".json") {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read JSON config: %w", err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode JSON config: %w", err)
		}
	} else {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode TOML config: %w", err)
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes the configuration to the default TOML path.
func Save(cfg *Config) error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration as TOML with owner-only permissions.
func SaveTOML(cfg *Config, path string) error {
	var sb strings.Builder
	if err := toml.NewEncoder(&sb).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode TOML config: %w", err)
	}
	return os.WriteFile(path, []byte(sb.String()), 0600)
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError describes one invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidateErrors aggregates all validation failures.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.Platform.BaseURL != "" {
		if u, err := url.Parse(c.Platform.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			errs = append(errs, ValidationError{"platform.base_url", "must be an http(s) URL"})
		}
	}
	if c.UI.Theme != "auto" && c.UI.Theme != "dark" && c.UI.Theme != "light" {
		errs = append(errs, ValidationError{"ui.theme", "must be auto, dark, or light"})
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, ValidationError{"server.rate_limit", "must be non-negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills zero values and clamps out-of-range ones.
func (c *Config) SetDefaults() {
	if c.Platform.UserID == "" {
		c.Platform.UserID = defaultUserID()
	}
	c.Stream.DeltaCap = clampCap(c.Stream.DeltaCap, sanitize.DefaultDeltaCap)
	c.Stream.MessageCap = clampCap(c.Stream.MessageCap, sanitize.DefaultMessageCap)
	if c.Stream.HistoryLimit < 0 {
		c.Stream.HistoryLimit = 0
	}
	if c.Storage.SaveEveryTurns <= 0 {
		c.Storage.SaveEveryTurns = 5
	}
	if c.Server.Addr == "" {
		c.Server.Addr = "127.0.0.1:8765"
	}
	if c.Server.RateLimit == 0 {
		c.Server.RateLimit = 10
	}
	if c.Server.RateBurst == 0 {
		c.Server.RateBurst = 20
	}
	if c.UI.Theme == "" {
		c.UI.Theme = "auto"
	}
	if c.UI.WordWrap < 0 {
		c.UI.WordWrap = 0
	}
}

// clampCap keeps a sanitizer cap inside a sane range.
func clampCap(v, def int) int {
	if v == 0 {
		return def
	}
	if v < 1 {
		return 1
	}
	if v > 1000000 {
		return 1000000
	}
	return v
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies SIA_* environment variables over file values.
func (c *Config) ApplyEnvOverrides() {
	if base := os.Getenv("SIA_API_BASE_URL"); base != "" {
		c.Platform.BaseURL = base
	}
	if user := os.Getenv("SIA_USER_ID"); user != "" {
		c.Platform.UserID = user
	}
	if agent := os.Getenv("SIA_AGENT"); agent != "" {
		c.Platform.DefaultAgent = agent
	}
	if token := os.Getenv("SIA_AUTH_TOKEN"); token != "" {
		c.Platform.AuthToken = token
	}
	if stream := os.Getenv("SIA_STREAM"); stream != "" {
		c.Stream.Enabled = stream == "1" || strings.ToLower(stream) == "true"
	}
	if path := os.Getenv("SIA_STORAGE_PATH"); path != "" {
		c.Storage.Path = path
	}
	if pass := os.Getenv("SIA_STORAGE_PASSPHRASE"); pass != "" {
		c.Storage.EncryptPassphrase = pass
	}
	if every := os.Getenv("SIA_SAVE_EVERY"); every != "" {
		if n, err := strconv.Atoi(every); err == nil && n > 0 {
			c.Storage.SaveEveryTurns = n
		}
	}
}

// =============================================================================
// GLOBAL ACCESS
// =============================================================================

var (
	globalConfig     *Config
	globalConfigMu   sync.RWMutex
	globalConfigOnce sync.Once
)

// Global returns the process-wide configuration, loading it on first use.
func Global() *Config {
	globalConfigOnce.Do(func() {
		globalConfigMu.Lock()
		defer globalConfigMu.Unlock()
		if globalConfig != nil {
			// SetGlobal ran before first access.
			return
		}
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
			cfg.SetDefaults()
		}
		globalConfig = cfg
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the global configuration from disk. Thread-safe.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
	return nil
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state between tests.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
