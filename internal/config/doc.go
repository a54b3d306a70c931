// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management
// for sia-console.
//
// Supports both TOML and JSON configuration formats, with sensible
// defaults, environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.sia-console/config.toml
//   - ~/.sia-console/config.json
//   - Built-in defaults
//
// A Watcher can be attached to reload the configuration when the file
// changes on disk.
package config
