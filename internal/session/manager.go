// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session manages the active conversation and its persistence
// cadence.
package session

import (
	"log"
	"sync"

	"github.com/jeranaias/sia-console/internal/api"
	"github.com/jeranaias/sia-console/internal/index"
	"github.com/jeranaias/sia-console/internal/model"
	"github.com/jeranaias/sia-console/internal/storage"
)

// =============================================================================
// SESSION MANAGER
// =============================================================================

// Manager owns the record map, the active conversation, and the
// selected agent. All methods are safe for concurrent use.
type Manager struct {
	mu sync.Mutex

	store *storage.Store
	idx   *index.TranscriptIndex // optional, best-effort

	records map[string]*model.Record
	current *model.Record
	agentID string

	// Save cadence
	saveEvery      int
	turnsSinceSave int
}

// Config holds configuration for the session manager.
type Config struct {
	// Store persists the record map. Required.
	Store *storage.Store

	// Index receives transcript updates for search. Optional.
	Index *index.TranscriptIndex

	// SaveEveryTurns forces a save each time this many turns accumulate
	// since the last save (default: 5).
	SaveEveryTurns int
}

// NewManager creates a manager and loads the persisted record map.
func NewManager(cfg Config) *Manager {
	saveEvery := cfg.SaveEveryTurns
	if saveEvery <= 0 {
		saveEvery = 5
	}
	return &Manager{
		store:     cfg.Store,
		idx:       cfg.Index,
		records:   cfg.Store.Load(),
		saveEvery: saveEvery,
	}
}

// =============================================================================
// AGENT SELECTION
// =============================================================================

// AgentID returns the currently selected agent ("" before selection).
func (m *Manager) AgentID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.agentID
}

// SelectAgent switches the console to another agent. The outgoing
// conversation is persisted exactly once, then a fresh conversation
// begins for the new agent. Selecting the already-active agent is a
// no-op.
func (m *Manager) SelectAgent(agentID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if agentID == m.agentID {
		return
	}
	m.persistCurrentLocked()
	m.agentID = agentID
	m.current = nil
	m.turnsSinceSave = 0
}

// =============================================================================
// CONVERSATION LIFECYCLE
// =============================================================================

// Current returns the active record, creating one if none exists yet.
func (m *Manager) Current() *model.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentLocked()
}

func (m *Manager) currentLocked() *model.Record {
	if m.current == nil {
		m.current = model.NewRecord(m.agentID)
	}
	return m.current
}

// NewConversation persists the active conversation and starts a fresh
// one for the same agent.
func (m *Manager) NewConversation() *model.Record {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.persistCurrentLocked()
	m.current = model.NewRecord(m.agentID)
	m.turnsSinceSave = 0
	return m.current
}

// Resume makes a stored conversation the active one. The outgoing
// conversation is persisted first.
func (m *Manager) Resume(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.records[key]
	if !ok {
		return false
	}
	m.persistCurrentLocked()
	m.current = record
	m.agentID = record.AgentID
	m.turnsSinceSave = 0
	return true
}

// Delete removes a stored conversation and saves the document. Deleting
// the active conversation also clears it.
func (m *Manager) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.records, key)
	if m.current != nil && m.current.Key() == key {
		m.current = nil
		m.turnsSinceSave = 0
	}
	if m.idx != nil {
		if err := m.idx.Remove(key); err != nil {
			log.Printf("SESSION: index remove failed: %v", err)
		}
	}
	return m.store.Save(m.records)
}

// ClearAll drops every stored conversation and the active one.
func (m *Manager) ClearAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = map[string]*model.Record{}
	m.current = nil
	m.turnsSinceSave = 0
	return m.store.Save(m.records)
}

// =============================================================================
// TURNS
// =============================================================================

// AppendUserTurn appends a user message to the active conversation and
// applies the turn-count save cadence.
func (m *Manager) AppendUserTurn(text string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.currentLocked().AppendTurn(model.NewUserTurn(text))
	m.countTurnLocked()
	return i
}

// BeginAssistantTurn appends an empty assistant turn for an incoming
// stream and returns its index.
func (m *Manager) BeginAssistantTurn() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.currentLocked().AppendTurn(model.NewAssistantTurn())
	m.countTurnLocked()
	return i
}

// SetAssistantContent overwrites the in-flight assistant turn's content.
// No save cadence applies; streaming updates are in-memory only.
func (m *Manager) SetAssistantContent(i int, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		m.current.SetTurnContent(i, content)
	}
}

// FinalizeAssistantTurn marks the assistant turn complete and persists
// unconditionally.
func (m *Manager) FinalizeAssistantTurn(i int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return nil
	}
	m.current.FinalizeTurn(i)
	return m.persistCurrentLocked()
}

// SetRecordContent overwrites a turn in the given record. Used by an
// in-flight stream, which keeps its own record pointer so an agent
// switch cannot misroute its updates.
func (m *Manager) SetRecordContent(r *model.Record, i int, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r != nil {
		r.SetTurnContent(i, content)
	}
}

// FinalizeRecordTurn completes a turn in the given record and persists
// it, even when the record is no longer the active conversation.
func (m *Manager) FinalizeRecordTurn(r *model.Record, i int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r == nil {
		return nil
	}
	r.FinalizeTurn(i)
	return m.persistRecordLocked(r)
}

// countTurnLocked applies the every-Nth-turn save cadence.
func (m *Manager) countTurnLocked() {
	m.turnsSinceSave++
	if m.turnsSinceSave >= m.saveEvery {
		if err := m.persistCurrentLocked(); err != nil {
			log.Printf("SESSION: cadence save failed: %v", err)
		}
	}
}

// =============================================================================
// PERSISTENCE
// =============================================================================

// Persist saves the active conversation and the full record map now.
func (m *Manager) Persist() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.persistCurrentLocked()
}

// persistCurrentLocked folds the active conversation into the record
// map and writes the document. Empty conversations are not stored.
func (m *Manager) persistCurrentLocked() error {
	m.turnsSinceSave = 0
	return m.persistRecordLocked(m.current)
}

// persistRecordLocked folds one record into the map and writes the
// document.
func (m *Manager) persistRecordLocked(r *model.Record) error {
	if r == nil || r.IsEmpty() {
		return nil
	}
	m.records[r.Key()] = r

	if err := m.store.Save(m.records); err != nil {
		log.Printf("SESSION: save failed: %v", err)
		return err
	}
	if m.idx != nil {
		if err := m.idx.Update(r); err != nil {
			log.Printf("SESSION: index update failed: %v", err)
		}
	}
	return nil
}

// =============================================================================
// QUERIES
// =============================================================================

// ListRecent returns stored conversations, newest first, truncated for
// selection UIs.
func (m *Manager) ListRecent() []*model.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return storage.ListRecent(m.records, storage.SelectionListLimit)
}

// Records returns a snapshot of the full record map.
func (m *Manager) Records() map[string]*model.Record {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := make(map[string]*model.Record, len(m.records))
	for k, v := range m.records {
		snapshot[k] = v.Clone()
	}
	return snapshot
}

// History converts the active conversation's finished turns into wire
// messages, oldest first. The in-flight empty assistant turn (if any)
// is skipped. limit > 0 keeps only the newest limit turns.
func (m *Manager) History(limit int) []api.Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return nil
	}
	msgs := make([]api.Message, 0, len(m.current.Turns))
	for _, t := range m.current.Turns {
		if t.Content == "" {
			continue
		}
		msgs = append(msgs, api.Message{Role: string(t.Role), Content: t.Content})
	}
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs
}
