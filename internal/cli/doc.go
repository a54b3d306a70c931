// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli parses the sia-console command line and runs the
// command handlers that sit outside the full-screen chat view.
package cli
