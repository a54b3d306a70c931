// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render converts accumulated chat text into safe output.
package render

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// =============================================================================
// TERMINAL RENDERER
// =============================================================================

// TermRenderer renders chat buffers for terminal display using glamour.
// The same sanitized plain-text buffer feeds both this and HTMLRenderer;
// only the presentation differs.
type TermRenderer struct {
	renderer *glamour.TermRenderer
}

// NewTermRenderer creates a terminal markdown renderer wrapped at the
// given width. If glamour initialization fails the renderer degrades to
// returning the buffer unchanged.
func NewTermRenderer(width int) *TermRenderer {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		r = nil
	}
	return &TermRenderer{renderer: r}
}

// Render renders markdown for the terminal. Returns the original content
// if rendering fails or the renderer is unavailable.
func (t *TermRenderer) Render(content string) string {
	if t.renderer == nil {
		return content
	}
	out, err := t.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n")
}
