// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package metadata provides the persisted metadata store for chatvault.
package metadata

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/jeranaias/chatvault/internal/util"
)

// =============================================================================
// DOCUMENT
// =============================================================================

// Watermark records how far a conversation has been exported.
type Watermark struct {
	// TS is the raw timestamp of the last exported message (source epoch).
	TS int64 `json:"ts"`
	// ISO is the human-readable form of TS, kept for inspection only.
	ISO string `json:"iso"`
}

// document is the on-disk shape of the metadata store.
type document struct {
	Handles    map[string]string    `json:"handles"`
	Chats      map[string]Watermark `json:"chats"`
	Cache      map[string]string    `json:"cache"`
	UIDefaults map[string]string    `json:"ui_defaults"`
}

// normalize guarantees all subkeys exist so callers never see nil maps.
func (d *document) normalize() {
	if d.Handles == nil {
		d.Handles = map[string]string{}
	}
	if d.Chats == nil {
		d.Chats = map[string]Watermark{}
	}
	if d.Cache == nil {
		d.Cache = map[string]string{}
	}
	if d.UIDefaults == nil {
		d.UIDefaults = map[string]string{}
	}
}

// =============================================================================
// STORE
// =============================================================================

// Store provides mutex-guarded access to the metadata document. It is safe
// for concurrent use by attachment workers.
type Store struct {
	mu   sync.Mutex
	path string
	doc  document
}

// Open loads the metadata store from path. A missing or corrupt file yields
// an empty, normalized store; Open never fails.
func Open(path string) *Store {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if err == nil {
		// Corrupt JSON falls through to empty defaults.
		json.Unmarshal(data, &s.doc)
	}
	s.doc.normalize()
	return s
}

// Path returns the on-disk location of the store.
func (s *Store) Path() string {
	return s.path
}

// Save persists the store atomically (temp file + fsync + rename).
func (s *Store) Save() error {
	s.mu.Lock()
	s.doc.normalize()
	data, err := json.MarshalIndent(&s.doc, "", "  ")
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return util.AtomicWriteFile(s.path, data, 0644)
}

// =============================================================================
// ENRICHMENT CACHE
// =============================================================================

// CacheGet returns the cached enrichment text for a fingerprint.
func (s *Store) CacheGet(fingerprint string) (string, bool) {
	if fingerprint == "" {
		return "", false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	text, ok := s.doc.Cache[fingerprint]
	return text, ok
}

// CachePut stores enrichment text under a fingerprint. Empty fingerprints
// and empty texts are ignored; the cache only grows.
func (s *Store) CachePut(fingerprint, text string) {
	if fingerprint == "" || text == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Cache[fingerprint] = text
}

// CacheLen returns the number of cached enrichment entries.
func (s *Store) CacheLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.doc.Cache)
}

// =============================================================================
// WATERMARKS
// =============================================================================

// Watermark returns the export watermark for a conversation.
func (s *Store) Watermark(chatGUID string) (Watermark, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wm, ok := s.doc.Chats[chatGUID]
	return wm, ok
}

// SetWatermark overwrites the watermark for a conversation. The watermark
// never moves backwards; an older timestamp is ignored.
func (s *Store) SetWatermark(chatGUID string, wm Watermark) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.doc.Chats[chatGUID]; ok && prev.TS > wm.TS {
		return
	}
	s.doc.Chats[chatGUID] = wm
}

// Watermarks returns a copy of all conversation watermarks.
func (s *Store) Watermarks() map[string]Watermark {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Watermark, len(s.doc.Chats))
	for k, v := range s.doc.Chats {
		out[k] = v
	}
	return out
}

// =============================================================================
// HANDLE ALIASES AND UI DEFAULTS
// =============================================================================

// HandleAlias returns a manually configured display name for a handle.
func (s *Store) HandleAlias(handle string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name, ok := s.doc.Handles[handle]
	return name, ok
}

// SetHandleAlias records a manual display name for a handle.
func (s *Store) SetHandleAlias(handle, name string) {
	if handle == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Handles[handle] = name
}

// HandleAliases returns a copy of all manual handle aliases.
func (s *Store) HandleAliases() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.doc.Handles))
	for k, v := range s.doc.Handles {
		out[k] = v
	}
	return out
}

// UIDefault returns a stored UI default value.
func (s *Store) UIDefault(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.doc.UIDefaults[key]
	return v, ok
}

// SetUIDefault stores a UI default value.
func (s *Store) SetUIDefault(key, value string) {
	if key == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.UIDefaults[key] = value
}
