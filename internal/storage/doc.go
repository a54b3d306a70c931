// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists conversation records for sia-console.
//
// The entire map of known records (keyed "{agentId}_{conversationId}")
// is serialized and written as one document, so every write reflects a
// fully consistent snapshot. Loads never fail into the chat flow: an
// absent or corrupt document yields an empty map and a log line.
//
// Concurrent writers (two console processes sharing a profile) are not
// coordinated; last writer wins.
package storage
