// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stream orchestrates one message round-trip: send the user
// text, decode the SSE reply, sanitize and render each delta, and
// finalize the turn.
//
// # State machine
//
//	Idle -> AwaitingFirstByte -> Streaming -> Finalizing -> Idle
//
// Any failure moves to Error; the partial turn is kept and the next
// send starts from a clean slate.
//
// Each flight pins its conversation record and turn index at send time,
// so a later agent switch cannot misroute deltas: the stream completes
// into the conversation it started in.
package stream
