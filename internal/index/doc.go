// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package index provides full-text search over stored conversation
// transcripts, backed by SQLite FTS5.
//
// The index is derived data: the JSON conversation document in storage
// remains the source of truth, and the index can be rebuilt from it at
// any time. Index failures therefore never block the chat flow.
package index
