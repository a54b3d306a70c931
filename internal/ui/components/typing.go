// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides reusable UI pieces for the sia-console
// TUI.
package components

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/sia-console/internal/ui/styles"
)

// =============================================================================
// TYPING INDICATOR
// =============================================================================

// Typing shows an animated indicator while the agent prepares a reply.
type Typing struct {
	spinner spinner.Model
	active  bool
}

// NewTyping creates an inactive typing indicator.
func NewTyping() Typing {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Purple)
	return Typing{spinner: s}
}

// Show activates the indicator and returns the tick command.
func (t *Typing) Show() tea.Cmd {
	t.active = true
	return t.spinner.Tick
}

// Hide deactivates the indicator.
func (t *Typing) Hide() {
	t.active = false
}

// Active reports whether the indicator is visible.
func (t Typing) Active() bool {
	return t.active
}

// Update advances the animation.
func (t Typing) Update(msg tea.Msg) (Typing, tea.Cmd) {
	if !t.active {
		return t, nil
	}
	var cmd tea.Cmd
	t.spinner, cmd = t.spinner.Update(msg)
	return t, cmd
}

// View renders the indicator line ("" when inactive).
func (t Typing) View() string {
	if !t.active {
		return ""
	}
	return t.spinner.View() + styles.SystemMessage.Render(" agent is typing…")
}
