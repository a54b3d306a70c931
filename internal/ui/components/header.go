// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides reusable UI pieces for the sia-console
// TUI.
package components

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/sia-console/internal/ui/styles"
)

// =============================================================================
// HEADER BAR
// =============================================================================

// Header is the top bar showing the agent and stream state.
type Header struct {
	AgentID string
	State   string
	Width   int
}

// View renders the header across the configured width.
func (h Header) View() string {
	agent := h.AgentID
	if agent == "" {
		agent = "no agent"
	}
	left := "sia-console · " + agent

	right := h.State
	pad := h.Width - runewidth.StringWidth(left) - runewidth.StringWidth(right) - 4
	if pad < 1 {
		pad = 1
	}

	line := left + lipgloss.NewStyle().Render(spaces(pad)) +
		styles.Timestamp.Render(right)
	return styles.Header.Width(h.Width).Render(line)
}

func spaces(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
