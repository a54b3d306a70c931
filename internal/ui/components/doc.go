// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides reusable UI pieces for the sia-console
// TUI: the typing indicator, the header bar, and the syntax-highlighted
// code block renderer.
package components
