// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package index provides full-text search over stored conversation
// transcripts, backed by SQLite FTS5.
package index

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/sia-console/internal/model"
)

func openTestIndex(t *testing.T) *TranscriptIndex {
	t.Helper()
	idx, err := Open(filepath.Join(t.TempDir(), "transcripts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func conversation(agentID string, pairs ...string) *model.Record {
	r := model.NewRecord(agentID)
	for i, text := range pairs {
		if i%2 == 0 {
			r.AppendTurn(model.NewUserTurn(text))
		} else {
			idx := r.AppendTurn(model.NewAssistantTurn())
			r.SetTurnContent(idx, text)
		}
	}
	return r
}

func TestRebuildAndSearch(t *testing.T) {
	idx := openTestIndex(t)

	r1 := conversation("support-bot",
		"how do I reset my password",
		"Use the account settings page to reset it.")
	r2 := conversation("support-bot",
		"what is the shipping policy",
		"Orders ship within two business days.")

	records := map[string]*model.Record{r1.Key(): r1, r2.Key(): r2}
	require.NoError(t, idx.Rebuild(context.Background(), records))

	stats := idx.Stats()
	assert.Equal(t, 2, stats.ConversationCount)
	assert.Equal(t, 4, stats.TurnCount)

	results, err := idx.Search("password", SearchOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, r1.Key(), results[0].ConversationKey)
	assert.Contains(t, results[0].Snippet, ">>")

	results, err = idx.Search("shipping", SearchOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, r2.Key(), results[0].ConversationKey)
}

func TestSearch_AgentFilter(t *testing.T) {
	idx := openTestIndex(t)

	r1 := conversation("alpha", "tell me about rockets", "Rockets are fast.")
	r2 := conversation("beta", "tell me about rockets", "Very fast indeed.")
	require.NoError(t, idx.Rebuild(context.Background(),
		map[string]*model.Record{r1.Key(): r1, r2.Key(): r2}))

	results, err := idx.Search("rockets", SearchOptions{AgentID: "alpha"})
	require.NoError(t, err)
	for _, r := range results {
		assert.Equal(t, "alpha", r.AgentID)
	}
	assert.NotEmpty(t, results)
}

func TestSearch_EmptyQuery(t *testing.T) {
	idx := openTestIndex(t)

	results, err := idx.Search("   ", SearchOptions{})
	require.NoError(t, err)
	assert.Nil(t, results)
}

func TestSearch_PunctuationIsNotSyntax(t *testing.T) {
	idx := openTestIndex(t)

	r := conversation("bot", `what does "foo-bar" mean?`, "It is a placeholder.")
	require.NoError(t, idx.Rebuild(context.Background(),
		map[string]*model.Record{r.Key(): r}))

	// FTS5 operators in user input must not cause a query error.
	for _, q := range []string{`"foo`, `foo-bar`, `NEAR(`, `a AND`, `col:x`} {
		_, err := idx.Search(q, SearchOptions{})
		assert.NoError(t, err, "query %q", q)
	}
}

func TestUpdateReplacesEarlierCopy(t *testing.T) {
	idx := openTestIndex(t)

	r := conversation("bot", "original question", "original answer")
	require.NoError(t, idx.Update(r))

	r.AppendTurn(model.NewUserTurn("followup about giraffes"))
	require.NoError(t, idx.Update(r))

	results, err := idx.Search("giraffes", SearchOptions{})
	require.NoError(t, err)
	require.Len(t, results, 1)

	// No duplicate rows for the original turns.
	results, err = idx.Search("original", SearchOptions{})
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestRemove(t *testing.T) {
	idx := openTestIndex(t)

	r := conversation("bot", "delete me please", "done")
	require.NoError(t, idx.Update(r))
	require.NoError(t, idx.Remove(r.Key()))

	results, err := idx.Search("delete", SearchOptions{})
	require.NoError(t, err)
	assert.Empty(t, results)
}
