// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server serves read-only HTML previews of stored conversation
// transcripts on localhost.
//
// Routes:
//
//	GET /                     conversation list, newest first
//	GET /conversations/{key}  one rendered transcript
//	GET /healthz              liveness probe
//
// Transcript bodies pass through the same markdown-to-safe-HTML
// pipeline as the live console, so hostile stored content cannot
// execute in the preview either. All responses carry restrictive
// security headers and every handler sits behind logging, recovery,
// and per-client rate limiting.
package server
