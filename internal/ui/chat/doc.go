// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the interactive chat view for sia-console.
//
// The Bubble Tea model owns the transcript viewport, the composer
// textarea, and the typing indicator. Stream updates arrive through a
// Bridge that forwards orchestrator callbacks into the program's
// message loop, with re-renders throttled to keep long replies smooth.
package chat
