// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the sia-console
// TUI.
package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// COLORS
// =============================================================================

// Cyan - Brand color, user highlights
var Cyan = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}

// Purple - Assistant messages, selections
var Purple = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}

// Emerald - Success states, connected indicator
var Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}

// Rose - Errors, disconnects
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// Amber - Warnings, in-flight state
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// Overlay - Borders, separators
var Overlay = lipgloss.AdaptiveColor{Light: "#E5E5E5", Dark: "#313244"}

// TextPrimary - Main body text
var TextPrimary = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#CDD6F4"}

// TextMuted - Hints, timestamps
var TextMuted = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6C7086"}

// =============================================================================
// STYLES
// =============================================================================

// Header is the top bar with the agent name and connection state.
var Header = lipgloss.NewStyle().
	Bold(true).
	Foreground(Cyan).
	BorderStyle(lipgloss.NormalBorder()).
	BorderBottom(true).
	BorderForeground(Overlay).
	Padding(0, 1)

// UserLabel prefixes user turns in the transcript.
var UserLabel = lipgloss.NewStyle().
	Bold(true).
	Foreground(Cyan)

// AssistantLabel prefixes assistant turns in the transcript.
var AssistantLabel = lipgloss.NewStyle().
	Bold(true).
	Foreground(Purple)

// SystemMessage renders out-of-band notices.
var SystemMessage = lipgloss.NewStyle().
	Foreground(Amber).
	Italic(true)

// ErrorMessage renders failures.
var ErrorMessage = lipgloss.NewStyle().
	Foreground(Rose).
	Bold(true)

// Timestamp renders per-turn times.
var Timestamp = lipgloss.NewStyle().
	Foreground(TextMuted)

// InputBox frames the message composer.
var InputBox = lipgloss.NewStyle().
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(Overlay).
	Padding(0, 1)

// StatusBar is the bottom hint line.
var StatusBar = lipgloss.NewStyle().
	Foreground(TextMuted).
	Padding(0, 1)

// Selected highlights the active item in pickers.
var Selected = lipgloss.NewStyle().
	Bold(true).
	Foreground(Emerald)
