// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and turns.
package model

import (
	"strconv"
	"time"

	"github.com/jeranaias/sia-console/internal/util"
)

// =============================================================================
// CONVERSATION RECORD
// =============================================================================

// Record holds one conversation transcript with its metadata.
type Record struct {
	ID                 string    `json:"id"`
	AgentID            string    `json:"agent_id"`
	Title              string    `json:"title"`
	Turns              []Turn    `json:"turns"`
	LastMessagePreview string    `json:"last_message_preview"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// NewRecord creates an empty conversation for an agent with a fresh
// millisecond-timestamp conversation id.
func NewRecord(agentID string) *Record {
	now := time.Now()
	return &Record{
		ID:        "conv_" + strconv.FormatInt(now.UnixMilli(), 10),
		AgentID:   agentID,
		Turns:     make([]Turn, 0),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Key returns the storage key for a record: "{agentId}_{conversationId}".
func Key(agentID, conversationID string) string {
	return agentID + "_" + conversationID
}

// Key returns this record's storage key.
func (r *Record) Key() string {
	return Key(r.AgentID, r.ID)
}

// =============================================================================
// TURN MANAGEMENT
// =============================================================================

// AppendTurn appends a turn and returns its index. Insertion order is
// chronological; turns are never reordered.
func (r *Record) AppendTurn(t Turn) int {
	r.Turns = append(r.Turns, t)
	r.touch()
	return len(r.Turns) - 1
}

// SetTurnContent overwrites the content of the turn at index i. Used only
// for the in-flight assistant turn while its stream is open.
func (r *Record) SetTurnContent(i int, content string) {
	if i < 0 || i >= len(r.Turns) {
		return
	}
	r.Turns[i].Content = content
	r.touch()
}

// FinalizeTurn stamps the completion timestamp on the turn at index i,
// after which the turn is treated as immutable.
func (r *Record) FinalizeTurn(i int) {
	if i < 0 || i >= len(r.Turns) {
		return
	}
	r.Turns[i].Timestamp = time.Now()
	r.touch()
}

// TurnCount returns the number of turns.
func (r *Record) TurnCount() int {
	return len(r.Turns)
}

// IsEmpty returns true if the record holds no turns.
func (r *Record) IsEmpty() bool {
	return len(r.Turns) == 0
}

// touch refreshes derived metadata after any mutation.
func (r *Record) touch() {
	r.UpdatedAt = time.Now()
	r.updateTitle()
	r.updatePreview()
}

// =============================================================================
// DERIVED METADATA
// =============================================================================

// updateTitle derives the title from the first user turn if unset.
func (r *Record) updateTitle() {
	if r.Title != "" {
		return
	}
	for _, t := range r.Turns {
		if t.Role == RoleUser && t.Content != "" {
			r.Title = util.TruncateRunes(util.CollapseWhitespace(t.Content), 50)
			return
		}
	}
}

// updatePreview derives the preview from the newest non-empty turn.
func (r *Record) updatePreview() {
	for i := len(r.Turns) - 1; i >= 0; i-- {
		if r.Turns[i].Content != "" {
			r.LastMessagePreview = util.TruncateRunes(util.CollapseWhitespace(r.Turns[i].Content), 80)
			return
		}
	}
}

// GetTitle returns the title or a default for empty conversations.
func (r *Record) GetTitle() string {
	if r.Title != "" {
		return r.Title
	}
	return "New conversation"
}

// Clone creates a deep copy of the record.
func (r *Record) Clone() *Record {
	clone := *r
	clone.Turns = make([]Turn, len(r.Turns))
	copy(clone.Turns, r.Turns)
	return &clone
}
