// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session manages the active conversation and its persistence
// cadence.
package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/sia-console/internal/storage"
)

func newTestManager(t *testing.T, saveEvery int) (*Manager, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "conversations.json")
	store, err := storage.NewStore(path)
	require.NoError(t, err)

	m := NewManager(Config{Store: store, SaveEveryTurns: saveEvery})
	return m, path
}

// documentKeys re-reads the on-disk document and counts stored records.
func documentKeys(t *testing.T, path string) int {
	t.Helper()
	store, err := storage.NewStore(path)
	require.NoError(t, err)
	return len(store.Load())
}

func TestSelectAgent_PersistsOutgoingConversationOnce(t *testing.T) {
	m, path := newTestManager(t, 100) // cadence high so only the switch saves

	m.SelectAgent("alpha")
	m.AppendUserTurn("hello alpha")
	i := m.BeginAssistantTurn()
	m.SetAssistantContent(i, "hi")

	require.Equal(t, 0, documentKeys(t, path), "no save before switch")

	m.SelectAgent("beta")
	assert.Equal(t, 1, documentKeys(t, path), "switch persists outgoing conversation")
	assert.Equal(t, "beta", m.AgentID())
	assert.True(t, m.Current().IsEmpty(), "new agent starts a fresh conversation")

	// Re-selecting the same agent changes nothing.
	stat1, err := os.Stat(path)
	require.NoError(t, err)
	m.SelectAgent("beta")
	stat2, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, stat1.ModTime(), stat2.ModTime(), "re-select must not rewrite the document")
}

func TestSaveCadence_EveryNthTurn(t *testing.T) {
	m, path := newTestManager(t, 4)
	m.SelectAgent("bot")

	// Turns 1-3: no save yet.
	m.AppendUserTurn("one")
	i := m.BeginAssistantTurn()
	m.SetAssistantContent(i, "two")
	m.AppendUserTurn("three")
	assert.Equal(t, 0, documentKeys(t, path))

	// 4th turn triggers the cadence save.
	m.BeginAssistantTurn()
	assert.Equal(t, 1, documentKeys(t, path))
}

func TestFinalizeAlwaysPersists(t *testing.T) {
	m, path := newTestManager(t, 100)
	m.SelectAgent("bot")

	m.AppendUserTurn("question")
	i := m.BeginAssistantTurn()
	m.SetAssistantContent(i, "answer")
	require.NoError(t, m.FinalizeAssistantTurn(i))

	store, err := storage.NewStore(path)
	require.NoError(t, err)
	loaded := store.Load()
	require.Len(t, loaded, 1)
	for _, r := range loaded {
		require.Len(t, r.Turns, 2)
		assert.Equal(t, "answer", r.Turns[1].Content)
	}
}

func TestNewConversation_PersistsAndResets(t *testing.T) {
	m, path := newTestManager(t, 100)
	m.SelectAgent("bot")

	m.AppendUserTurn("first conversation")
	old := m.Current()
	fresh := m.NewConversation()

	assert.NotEqual(t, old.ID, fresh.ID)
	assert.True(t, fresh.IsEmpty())
	assert.Equal(t, 1, documentKeys(t, path))
}

func TestEmptyConversationIsNeverStored(t *testing.T) {
	m, path := newTestManager(t, 100)
	m.SelectAgent("bot")

	_ = m.Current() // materialize an empty record
	m.SelectAgent("other")
	m.NewConversation()

	assert.Equal(t, 0, documentKeys(t, path))
}

func TestResume(t *testing.T) {
	m, _ := newTestManager(t, 100)
	m.SelectAgent("bot")

	m.AppendUserTurn("remember me")
	key := m.Current().Key()
	require.NoError(t, m.Persist())

	m.NewConversation()
	m.AppendUserTurn("unrelated")

	require.True(t, m.Resume(key))
	assert.Equal(t, key, m.Current().Key())
	assert.Equal(t, "remember me", m.Current().Turns[0].Content)

	assert.False(t, m.Resume("no_such_key"))
}

func TestDelete(t *testing.T) {
	m, path := newTestManager(t, 100)
	m.SelectAgent("bot")

	m.AppendUserTurn("doomed")
	key := m.Current().Key()
	require.NoError(t, m.Persist())

	require.NoError(t, m.Delete(key))
	assert.Equal(t, 0, documentKeys(t, path))
	assert.True(t, m.Current().IsEmpty(), "deleting the active conversation clears it")
}

func TestHistory(t *testing.T) {
	m, _ := newTestManager(t, 100)
	m.SelectAgent("bot")

	m.AppendUserTurn("q1")
	i := m.BeginAssistantTurn()
	m.SetAssistantContent(i, "a1")
	m.AppendUserTurn("q2")
	m.BeginAssistantTurn() // in-flight, empty: excluded

	msgs := m.History(0)
	require.Len(t, msgs, 3)
	assert.Equal(t, "user", msgs[0].Role)
	assert.Equal(t, "q1", msgs[0].Content)
	assert.Equal(t, "assistant", msgs[1].Role)

	limited := m.History(2)
	require.Len(t, limited, 2)
	assert.Equal(t, "a1", limited[0].Content)
	assert.Equal(t, "q2", limited[1].Content)
}

func TestManagerLoadsExistingDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conversations.json")
	store, err := storage.NewStore(path)
	require.NoError(t, err)

	m1 := NewManager(Config{Store: store})
	m1.SelectAgent("bot")
	m1.AppendUserTurn("persisted across restarts")
	require.NoError(t, m1.Persist())

	m2 := NewManager(Config{Store: store})
	assert.Len(t, m2.ListRecent(), 1)
}
