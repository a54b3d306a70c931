// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package index provides full-text search over stored conversation
// transcripts, backed by SQLite FTS5.
package index

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// SEARCH
// =============================================================================

// SearchResult is one matching turn with conversation context.
type SearchResult struct {
	ConversationKey string
	AgentID         string
	Title           string
	TurnIndex       int
	Role            string
	Snippet         string
	Timestamp       time.Time
	Rank            float64
}

// SearchOptions filters and limits a search.
type SearchOptions struct {
	// AgentID restricts results to one agent ("" = all).
	AgentID string
	// Limit caps the number of results (0 = default 25).
	Limit int
}

// Search runs an FTS5 query over turn content, best matches first.
func (idx *TranscriptIndex) Search(query string, opts SearchOptions) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 25
	}

	sqlQuery := `
		SELECT c.key, c.agent_id, c.title, t.turn_index, t.role,
		       snippet(turns_fts, 0, '>>', '<<', '...', 12),
		       t.ts, rank
		FROM turns_fts
		JOIN turns t ON t.id = turns_fts.rowid
		JOIN conversations c ON c.id = t.conversation_id
		WHERE turns_fts MATCH ?`
	args := []interface{}{ftsQuery(query)}

	if opts.AgentID != "" {
		sqlQuery += " AND c.agent_id = ?"
		args = append(args, opts.AgentID)
	}

	sqlQuery += " ORDER BY rank LIMIT ?"
	args = append(args, limit)

	rows, err := idx.db.Query(sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		var ts int64
		if err := rows.Scan(&r.ConversationKey, &r.AgentID, &r.Title,
			&r.TurnIndex, &r.Role, &r.Snippet, &ts, &r.Rank); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
		r.Timestamp = time.Unix(ts, 0)
		results = append(results, r)
	}
	return results, rows.Err()
}

// ftsQuery wraps each term in quotes so user punctuation cannot be
// misread as FTS5 query syntax.
func ftsQuery(query string) string {
	terms := strings.Fields(query)
	quoted := make([]string, 0, len(terms))
	for _, term := range terms {
		term = strings.ReplaceAll(term, `"`, `""`)
		quoted = append(quoted, `"`+term+`"`)
	}
	return strings.Join(quoted, " ")
}
