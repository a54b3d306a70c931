// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the interactive chat view for sia-console.
//
// This file implements render throttling for smooth, flicker-free
// output while a reply streams. Without it every delta would re-render
// the transcript, which flickers and burns CPU at high token rates.
package chat

import (
	"sync"
	"time"
)

// =============================================================================
// RENDER THROTTLE
// =============================================================================

// RenderThrottle coalesces transcript refresh requests to a capped
// frame rate. Update requests arrive from the stream goroutine;
// ShouldRender is polled from the main Bubble Tea loop.
type RenderThrottle struct {
	mu        sync.Mutex
	dirty     bool
	lastFlush time.Time
	minFlush  time.Duration
}

// NewRenderThrottle creates a throttle capped at maxFPS frames per
// second (default 30 when out of range).
func NewRenderThrottle(maxFPS int) *RenderThrottle {
	if maxFPS <= 0 || maxFPS > 60 {
		maxFPS = 30
	}
	return &RenderThrottle{
		minFlush: time.Second / time.Duration(maxFPS),
	}
}

// Mark records that the transcript changed.
func (rt *RenderThrottle) Mark() {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.dirty = true
}

// ShouldRender reports whether a re-render is due, and consumes the
// dirty flag when it is.
func (rt *RenderThrottle) ShouldRender() bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if !rt.dirty || time.Since(rt.lastFlush) < rt.minFlush {
		return false
	}
	rt.dirty = false
	rt.lastFlush = time.Now()
	return true
}

// Drain forces consumption of any pending refresh, ignoring the frame
// cap. Used when a stream finishes so the last tokens always land.
func (rt *RenderThrottle) Drain() bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	was := rt.dirty
	rt.dirty = false
	rt.lastFlush = time.Now()
	return was
}
