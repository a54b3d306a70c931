// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session manages the active conversation and its persistence
// cadence.
//
// # Key Types
//
//   - Manager: owns the record map, the active conversation, and the
//     selected agent
//
// # Persistence cadence
//
// The manager saves the full record map:
//
//   - every Nth appended turn (default 5)
//   - on every stream finalization
//   - on explicit user actions: switching agents, starting a new
//     conversation, clearing history
//
// Switching agents persists the outgoing conversation exactly once.
// Save failures are logged and reported but never interrupt the chat
// flow; the in-memory state stays authoritative until the next save.
package session
