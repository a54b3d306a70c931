// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists conversation records for sia-console.
package storage

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/jeranaias/sia-console/internal/model"
	"github.com/jeranaias/sia-console/internal/util"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultFileName is the single document holding all records.
	DefaultFileName = "conversations.json"

	// SelectionListLimit caps how many records a selection list shows.
	// The stored document itself is never truncated.
	SelectionListLimit = 20
)

// =============================================================================
// STORE
// =============================================================================

// Store is the persistence bridge between in-memory records and disk.
type Store struct {
	path   string
	cipher *Cipher
}

// NewStore creates a store writing to the given file path. An empty path
// defaults to ~/.sia-console/conversations.json.
func NewStore(path string) (*Store, error) {
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(homeDir, ".sia-console", DefaultFileName)
	}
	return &Store{path: path}, nil
}

// NewEncryptedStore creates a store that encrypts the document at rest
// with a key derived from the passphrase.
func NewEncryptedStore(path, passphrase string) (*Store, error) {
	s, err := NewStore(path)
	if err != nil {
		return nil, err
	}
	s.cipher, err = NewCipher(passphrase)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the document path.
func (s *Store) Path() string {
	return s.path
}

// =============================================================================
// SAVE / LOAD
// =============================================================================

// Save serializes the full record map and writes it as one unit.
func (s *Store) Save(records map[string]*model.Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}

	if s.cipher != nil {
		enc, err := s.cipher.Encrypt(data)
		if err != nil {
			return err
		}
		data = enc
	}

	// RELIABILITY: Atomic write with fsync prevents a torn document.
	return util.AtomicWriteFile(s.path, data, 0600)
}

// Load returns the last-written record map. Absence and corruption both
// yield an empty map: persistence problems are logged, never propagated
// into the chat flow.
func (s *Store) Load() map[string]*model.Record {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("STORAGE: read failed, starting empty: %v", err)
		}
		return map[string]*model.Record{}
	}

	if s.cipher != nil && IsEncrypted(data) {
		data, err = s.cipher.Decrypt(data)
		if err != nil {
			log.Printf("STORAGE: decrypt failed, starting empty: %v", err)
			return map[string]*model.Record{}
		}
	}

	var records map[string]*model.Record
	if err := json.Unmarshal(data, &records); err != nil {
		log.Printf("STORAGE: corrupt document, starting empty: %v", err)
		return map[string]*model.Record{}
	}
	if records == nil {
		records = map[string]*model.Record{}
	}
	return records
}

// Delete removes the whole document. Missing files are not an error.
func (s *Store) Delete() error {
	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// =============================================================================
// LISTING
// =============================================================================

// ListRecent returns records most-recently-updated-first, truncated to
// limit (0 means no truncation).
func ListRecent(records map[string]*model.Record, limit int) []*model.Record {
	out := make([]*model.Record, 0, len(records))
	for _, r := range records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].Key() < out[j].Key()
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
