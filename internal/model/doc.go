// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and turns.
//
// A Turn is one message (user or assistant) within a conversation. A
// Record is a full conversation transcript owned by this console session,
// keyed by (agent id, conversation id).
//
// Invariants maintained here:
//   - Turn order is chronological and never reordered
//   - A turn's Content is sanitized plain text, never rendered HTML
//   - A finalized turn is immutable; only the in-flight assistant turn
//     is mutated (its content grows monotonically while streaming)
package model
