// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// styles.go - Shared styling for the plain-output commands. The chat
// view has its own style set under internal/ui/styles; these cover
// everything printed straight to stdout.

package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// init pins the lipgloss color profile to what the terminal actually
// supports, so piped output stays free of escape codes.
func init() {
	lipgloss.SetColorProfile(ColorProfile())
}

// =============================================================================
// SHARED STYLES
// =============================================================================

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")) // cyan

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")) // light gray

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("141")) // purple

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")) // green

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // amber

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")) // red

	promptStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)
