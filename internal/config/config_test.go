// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management
// for sia-console.
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jeranaias/sia-console/internal/sanitize"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SIA_API_BASE_URL", "SIA_USER_ID", "SIA_AGENT", "SIA_AUTH_TOKEN",
		"SIA_STREAM", "SIA_STORAGE_PATH", "SIA_STORAGE_PASSPHRASE", "SIA_SAVE_EVERY",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestDefault(t *testing.T) {
	clearEnv(t)
	cfg := Default()

	if !cfg.Stream.Enabled {
		t.Error("streaming should default on")
	}
	if cfg.Stream.DeltaCap != sanitize.DefaultDeltaCap {
		t.Errorf("DeltaCap = %d", cfg.Stream.DeltaCap)
	}
	if cfg.Stream.MessageCap != sanitize.DefaultMessageCap {
		t.Errorf("MessageCap = %d", cfg.Stream.MessageCap)
	}
	if cfg.Storage.SaveEveryTurns != 5 {
		t.Errorf("SaveEveryTurns = %d, want 5", cfg.Storage.SaveEveryTurns)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadFromPath_TOML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[platform]
base_url = "https://sia.example.com"
user_id = "tester"

[stream]
enabled = false
delta_cap = 500

[storage]
save_every_turns = 3
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Platform.BaseURL != "https://sia.example.com" {
		t.Errorf("BaseURL = %q", cfg.Platform.BaseURL)
	}
	if cfg.Platform.UserID != "tester" {
		t.Errorf("UserID = %q", cfg.Platform.UserID)
	}
	if cfg.Stream.Enabled {
		t.Error("stream.enabled should be false")
	}
	if cfg.Stream.DeltaCap != 500 {
		t.Errorf("DeltaCap = %d", cfg.Stream.DeltaCap)
	}
	// Unset fields keep defaults.
	if cfg.Stream.MessageCap != sanitize.DefaultMessageCap {
		t.Errorf("MessageCap = %d", cfg.Stream.MessageCap)
	}
	if cfg.Storage.SaveEveryTurns != 3 {
		t.Errorf("SaveEveryTurns = %d", cfg.Storage.SaveEveryTurns)
	}
}

func TestLoadFromPath_JSON(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"platform": {"base_url": "http://10.0.0.5:8000"}, "ui": {"theme": "dark"}}`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Platform.BaseURL != "http://10.0.0.5:8000" {
		t.Errorf("BaseURL = %q", cfg.Platform.BaseURL)
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("Theme = %q", cfg.UI.Theme)
	}
}

func TestSetDefaults_Clamping(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name      string
		in        int
		wantDelta int
	}{
		{"zero uses default", 0, sanitize.DefaultDeltaCap},
		{"negative clamps to one", -5, 1},
		{"huge clamps to max", 5000000, 1000000},
		{"in range kept", 42, 42},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Stream.DeltaCap = tt.in
			cfg.SetDefaults()
			if cfg.Stream.DeltaCap != tt.wantDelta {
				t.Errorf("DeltaCap = %d, want %d", cfg.Stream.DeltaCap, tt.wantDelta)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	cfg := Default()
	cfg.Platform.BaseURL = "not a url"
	cfg.UI.Theme = "neon"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}
	verrs, ok := err.(ValidateErrors)
	if !ok {
		t.Fatalf("error type %T", err)
	}
	if len(verrs) != 2 {
		t.Errorf("got %d errors: %v", len(verrs), verrs)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SIA_API_BASE_URL", "https://env.example.com")
	t.Setenv("SIA_STREAM", "false")
	t.Setenv("SIA_SAVE_EVERY", "7")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Platform.BaseURL != "https://env.example.com" {
		t.Errorf("BaseURL = %q", cfg.Platform.BaseURL)
	}
	if cfg.Stream.Enabled {
		t.Error("SIA_STREAM=false should disable streaming")
	}
	if cfg.Storage.SaveEveryTurns != 7 {
		t.Errorf("SaveEveryTurns = %d", cfg.Storage.SaveEveryTurns)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.Platform.BaseURL = "https://round.example.com"
	cfg.Storage.SaveEveryTurns = 9
	if err := SaveTOML(cfg, path); err != nil {
		t.Fatal(err)
	}

	// Saved files are owner-only.
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("permissions = %o, want 0600", perm)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Platform.BaseURL != cfg.Platform.BaseURL {
		t.Errorf("BaseURL = %q", loaded.Platform.BaseURL)
	}
	if loaded.Storage.SaveEveryTurns != 9 {
		t.Errorf("SaveEveryTurns = %d", loaded.Storage.SaveEveryTurns)
	}
}

func TestGlobal(t *testing.T) {
	clearEnv(t)
	ResetGlobalForTesting()
	t.Cleanup(ResetGlobalForTesting)

	custom := Default()
	custom.Platform.UserID = "global-test"
	SetGlobal(custom)

	if got := Global(); got.Platform.UserID != "global-test" {
		t.Errorf("UserID = %q", got.Platform.UserID)
	}
}
