// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the interactive chat view for sia-console.
package chat

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the chat view and blocks until the user quits. The bridge
// is attached to the running program so stream callbacks reach the
// message loop.
func Run(cfg Config) error {
	m := NewModel(cfg)
	p := tea.NewProgram(m, tea.WithAltScreen())

	if cfg.Bridge != nil {
		cfg.Bridge.Attach(p.Send)
	}

	_, err := p.Run()
	return err
}
