// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the interactive chat view for sia-console.
package chat

import (
	"strings"

	"github.com/jeranaias/sia-console/internal/model"
	"github.com/jeranaias/sia-console/internal/ui/components"
	"github.com/jeranaias/sia-console/internal/ui/styles"
)

// =============================================================================
// VIEW
// =============================================================================

// View renders the full chat screen.
func (m *Model) View() string {
	if !m.ready {
		return "starting…"
	}

	header := components.Header{
		AgentID: m.sessions.AgentID(),
		State:   m.orch.State().String(),
		Width:   m.width,
	}

	var b strings.Builder
	b.WriteString(header.View())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	if t := m.typing.View(); t != "" {
		b.WriteString(t)
	}
	b.WriteString("\n")
	b.WriteString(styles.InputBox.Width(m.width - 2).Render(m.textarea.View()))
	b.WriteString("\n")
	b.WriteString(styles.StatusBar.Render(m.status + "  ·  enter send · tab agent · ctrl+n new · ctrl+c quit"))
	return b.String()
}

// refreshTranscript rebuilds the viewport content from the active
// conversation.
func (m *Model) refreshTranscript() {
	if !m.ready {
		return
	}

	record := m.sessions.Current()

	var b strings.Builder
	for _, turn := range record.Turns {
		if turn.Content == "" {
			continue
		}
		b.WriteString(m.renderTurn(turn))
		b.WriteString("\n")
	}
	for _, notice := range m.notices {
		b.WriteString(styles.SystemMessage.Render(notice))
		b.WriteString("\n")
	}

	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(b.String())
	if atBottom {
		m.viewport.GotoBottom()
	}
}

// renderTurn formats one turn: label line, then the markdown body.
func (m *Model) renderTurn(turn model.Turn) string {
	var label string
	switch turn.Role {
	case model.RoleUser:
		label = styles.UserLabel.Render("you")
	case model.RoleAssistant:
		label = styles.AssistantLabel.Render("agent")
	default:
		label = string(turn.Role)
	}
	if m.showTimestamps {
		label += " " + styles.Timestamp.Render(turn.Timestamp.Format("15:04:05"))
	}

	body := m.term.Render(turn.Content)
	return label + "\n" + body + "\n"
}
