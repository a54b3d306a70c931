// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package index provides full-text search over stored conversation
// transcripts, backed by SQLite FTS5.
package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/sia-console/internal/model"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrNotIndexed    = errors.New("transcripts not indexed")
	ErrIndexing      = errors.New("rebuild in progress")
	ErrDatabaseError = errors.New("database error")
)

// =============================================================================
// TRANSCRIPT INDEX
// =============================================================================

// TranscriptIndex maintains a searchable copy of the conversation store.
type TranscriptIndex struct {
	db *sql.DB
	mu sync.RWMutex

	dbPath string

	// Rebuild state
	rebuilding  bool
	rebuildMu   sync.Mutex
	lastRebuild time.Time
	convCount   int
	turnCount   int
}

// Open opens (or creates) the index database at dbPath. An empty path
// defaults to ~/.sia-console/transcripts.db.
func Open(dbPath string) (*TranscriptIndex, error) {
	if dbPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dbPath = filepath.Join(homeDir, ".sia-console", "transcripts.db")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	idx := &TranscriptIndex{db: db, dbPath: dbPath}

	if err := idx.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	idx.loadStats()

	return idx, nil
}

// initSchema creates the database schema
func (idx *TranscriptIndex) initSchema() error {
	if _, err := idx.db.Exec(Schema); err != nil {
		return err
	}
	_, err := idx.db.Exec(InitMetadata)
	return err
}

// Close closes the index and releases resources
func (idx *TranscriptIndex) Close() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.db != nil {
		return idx.db.Close()
	}
	return nil
}

// =============================================================================
// REBUILD
// =============================================================================

// Rebuild replaces the full index with the given record map. The store
// document is the source of truth; this is a drop-and-reload.
func (idx *TranscriptIndex) Rebuild(ctx context.Context, records map[string]*model.Record) error {
	idx.rebuildMu.Lock()
	if idx.rebuilding {
		idx.rebuildMu.Unlock()
		return ErrIndexing
	}
	idx.rebuilding = true
	idx.rebuildMu.Unlock()

	defer func() {
		idx.rebuildMu.Lock()
		idx.rebuilding = false
		idx.rebuildMu.Unlock()
	}()

	startTime := time.Now()

	tx, err := idx.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM turns"); err != nil {
		return fmt.Errorf("failed to clear turns: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM conversations"); err != nil {
		return fmt.Errorf("failed to clear conversations: %w", err)
	}

	var convCount, turnCount int
	for _, record := range records {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := insertRecord(tx, record)
		if err != nil {
			return err
		}
		convCount++
		turnCount += n
	}

	if _, err := tx.Exec("UPDATE metadata SET value = ? WHERE key = 'last_rebuild'", startTime.Unix()); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	idx.mu.Lock()
	idx.lastRebuild = startTime
	idx.convCount = convCount
	idx.turnCount = turnCount
	idx.mu.Unlock()

	return nil
}

// Update re-indexes a single record, replacing any earlier copy.
func (idx *TranscriptIndex) Update(record *model.Record) error {
	tx, err := idx.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	if err := deleteByKey(tx, record.Key()); err != nil {
		return err
	}
	if _, err := insertRecord(tx, record); err != nil {
		return err
	}

	return tx.Commit()
}

// Remove drops a conversation from the index by storage key.
func (idx *TranscriptIndex) Remove(key string) error {
	tx, err := idx.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	if err := deleteByKey(tx, key); err != nil {
		return err
	}
	return tx.Commit()
}

// insertRecord writes one record and its turns, returning the turn count.
func insertRecord(tx *sql.Tx, record *model.Record) (int, error) {
	result, err := tx.Exec(`
		INSERT INTO conversations (key, agent_id, title, updated_at, indexed_at)
		VALUES (?, ?, ?, ?, ?)
	`, record.Key(), record.AgentID, record.GetTitle(), record.UpdatedAt.Unix(), time.Now().Unix())
	if err != nil {
		return 0, err
	}

	convID, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	for i, turn := range record.Turns {
		_, err := tx.Exec(`
			INSERT INTO turns (conversation_id, turn_index, role, content, ts)
			VALUES (?, ?, ?, ?, ?)
		`, convID, i, string(turn.Role), turn.Content, turn.Timestamp.Unix())
		if err != nil {
			return 0, err
		}
	}

	return len(record.Turns), nil
}

// deleteByKey removes a conversation and its turns by storage key.
func deleteByKey(tx *sql.Tx, key string) error {
	// ON DELETE CASCADE clears the turns; the FTS trigger clears the
	// shadow table for each deleted turn.
	_, err := tx.Exec("DELETE FROM conversations WHERE key = ?", key)
	return err
}

// =============================================================================
// STATISTICS
// =============================================================================

// Stats holds index statistics.
type Stats struct {
	ConversationCount int
	TurnCount         int
	LastRebuild       time.Time
	IsRebuilding      bool
	DatabaseSize      int64
}

// Stats returns current index statistics.
func (idx *TranscriptIndex) Stats() Stats {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	idx.rebuildMu.Lock()
	rebuilding := idx.rebuilding
	idx.rebuildMu.Unlock()

	var dbSize int64
	if info, err := os.Stat(idx.dbPath); err == nil {
		dbSize = info.Size()
	}

	return Stats{
		ConversationCount: idx.convCount,
		TurnCount:         idx.turnCount,
		LastRebuild:       idx.lastRebuild,
		IsRebuilding:      rebuilding,
		DatabaseSize:      dbSize,
	}
}

// loadStats loads statistics from the database
func (idx *TranscriptIndex) loadStats() {
	var lastRebuild int64
	if err := idx.db.QueryRow("SELECT value FROM metadata WHERE key = 'last_rebuild'").Scan(&lastRebuild); err == nil && lastRebuild > 0 {
		idx.lastRebuild = time.Unix(lastRebuild, 0)
	}
	idx.db.QueryRow("SELECT COUNT(*) FROM conversations").Scan(&idx.convCount)
	idx.db.QueryRow("SELECT COUNT(*) FROM turns").Scan(&idx.turnCount)
}
