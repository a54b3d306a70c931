// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the SIA agent platform.
package api

// =============================================================================
// REQUEST TYPES
// =============================================================================

// Message is one prior turn sent as conversational context.
type Message struct {
	Role    string `json:"role"`    // "user" or "assistant"
	Content string `json:"content"`
}

// SendRequest is the webhook payload for a user message.
type SendRequest struct {
	UserID         string    `json:"user_id"`
	Channel        string    `json:"channel"` // always "web"
	Text           string    `json:"text"`
	ConversationID string    `json:"conversation_id"`
	Stream         bool      `json:"stream"`
	History        []Message `json:"history"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// JobAccepted is the platform's acknowledgement of a non-streaming send.
type JobAccepted struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// AgentInfo describes one configured agent.
type AgentInfo struct {
	ID    string `json:"id"`
	Model string `json:"model"`
}

// AgentList is the GET /agents response.
type AgentList struct {
	Agents []AgentInfo `json:"agents"`
}

// AuthStatus is the POST /api/auth/verify response.
type AuthStatus struct {
	Valid bool   `json:"valid"`
	User  string `json:"user,omitempty"`
}
