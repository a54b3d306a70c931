// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the interactive chat view for sia-console.
package chat

import "github.com/jeranaias/sia-console/internal/api"

// =============================================================================
// BUBBLE TEA MESSAGES
// =============================================================================

// TurnUpdatedMsg signals that the in-flight turn changed and the
// transcript should re-render.
type TurnUpdatedMsg struct{}

// TypingMsg toggles the typing indicator.
type TypingMsg struct {
	Show bool
}

// SystemNoticeMsg appends an out-of-band notice to the transcript.
type SystemNoticeMsg struct {
	Text string
}

// ScrollMsg pins the viewport to the newest content.
type ScrollMsg struct{}

// SendDoneMsg reports a finished (or failed) message round-trip.
type SendDoneMsg struct {
	Err error
}

// AgentsLoadedMsg delivers the agent list fetched at startup.
type AgentsLoadedMsg struct {
	Agents []api.AgentInfo
	Err    error
}
