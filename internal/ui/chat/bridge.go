// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the interactive chat view for sia-console.
package chat

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// STREAM BRIDGE
// =============================================================================

// Bridge forwards orchestrator callbacks into the Bubble Tea message
// loop. It satisfies the stream UI contract and is safe to call from
// the stream goroutine. Calls made before Attach are dropped, which
// only matters during startup.
type Bridge struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

// NewBridge creates an unattached bridge.
func NewBridge() *Bridge {
	return &Bridge{}
}

// Attach connects the bridge to a running program's Send.
func (b *Bridge) Attach(send func(tea.Msg)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.send = send
}

func (b *Bridge) post(msg tea.Msg) {
	b.mu.Lock()
	send := b.send
	b.mu.Unlock()
	if send != nil {
		send(msg)
	}
}

// RenderTurn signals a transcript refresh. The rendered HTML is not
// used here; the terminal view re-renders from the conversation record
// with its own markdown renderer.
func (b *Bridge) RenderTurn(string) {
	b.post(TurnUpdatedMsg{})
}

// ShowTyping displays the typing indicator.
func (b *Bridge) ShowTyping() {
	b.post(TypingMsg{Show: true})
}

// HideTyping removes the typing indicator.
func (b *Bridge) HideTyping() {
	b.post(TypingMsg{Show: false})
}

// ScrollToEnd pins the transcript to the newest content.
func (b *Bridge) ScrollToEnd() {
	b.post(ScrollMsg{})
}

// ShowSystemMessage appends a notice to the transcript.
func (b *Bridge) ShowSystemMessage(msg string) {
	b.post(SystemNoticeMsg{Text: msg})
}
