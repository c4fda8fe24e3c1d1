// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package contacts resolves raw message handles to display names.
package contacts

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// =============================================================================
// RESOLVER
// =============================================================================

// Resolver maps a raw handle to a display name.
type Resolver interface {
	// Resolve returns a display name for a handle. Unmatched handles come
	// back unchanged; an empty handle resolves to "Unknown".
	Resolve(handle string) string
}

// MapResolver resolves handles against a normalized lookup table.
type MapResolver struct {
	byHandle map[string]string
}

// NewMapResolver builds a resolver from a handle -> name table. Keys are
// normalized on insert, so callers may pass raw handles.
func NewMapResolver(entries map[string]string) *MapResolver {
	r := &MapResolver{byHandle: make(map[string]string, len(entries))}
	for handle, name := range entries {
		if norm := NormalizeHandle(handle); norm != "" && name != "" {
			r.byHandle[norm] = name
		}
	}
	return r
}

// Resolve implements Resolver.
func (r *MapResolver) Resolve(handle string) string {
	if handle == "" {
		return "Unknown"
	}
	if name, ok := r.byHandle[NormalizeHandle(handle)]; ok {
		return name
	}
	return handle
}

// Len returns the number of known handles.
func (r *MapResolver) Len() int {
	return len(r.byHandle)
}

// =============================================================================
// HANDLE NORMALIZATION
// =============================================================================

// NormalizeHandle canonicalizes a handle for lookup. Emails are lowercased
// and trimmed; phone numbers are reduced to digits, keeping the trailing ten
// so differing country-code prefixes still match.
func NormalizeHandle(handle string) string {
	if handle == "" {
		return ""
	}
	if strings.Contains(handle, "@") {
		return strings.ToLower(strings.TrimSpace(handle))
	}

	var digits strings.Builder
	for _, r := range handle {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	norm := digits.String()
	if len(norm) >= 10 {
		return norm[len(norm)-10:]
	}
	return norm
}

// =============================================================================
// ADDRESS BOOK LOADING
// =============================================================================

const phoneSQL = `
SELECT r.ZFIRSTNAME, r.ZLASTNAME, r.ZORGANIZATION, p.ZFULLNUMBER
FROM ZABCDPHONENUMBER p
JOIN ZABCDRECORD r ON p.ZOWNER = r.Z_PK`

const emailSQL = `
SELECT r.ZFIRSTNAME, r.ZLASTNAME, r.ZORGANIZATION, e.ZADDRESS
FROM ZABCDEMAILADDRESS e
JOIN ZABCDRECORD r ON e.ZOWNER = r.Z_PK`

// Load builds a resolver from every .abcddb database in dir, overlaid with
// manual aliases. An empty dir loads aliases only; an unreadable individual
// database is skipped rather than failing the whole load.
func Load(dir string, aliases map[string]string) (*MapResolver, error) {
	entries := map[string]string{}

	if dir != "" {
		files, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("read contacts dir: %w", err)
		}
		for _, f := range files {
			if f.IsDir() || !strings.HasSuffix(f.Name(), ".abcddb") {
				continue
			}
			// A single unreadable address book should not sink name
			// resolution for the rest.
			loadAddressBook(filepath.Join(dir, f.Name()), entries)
		}
	}

	for handle, name := range aliases {
		entries[handle] = name
	}
	return NewMapResolver(entries), nil
}

// loadAddressBook merges one .abcddb database into entries.
func loadAddressBook(path string, entries map[string]string) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return
	}
	defer db.Close()

	for _, query := range []string{phoneSQL, emailSQL} {
		rows, err := db.Query(query)
		if err != nil {
			continue
		}
		for rows.Next() {
			var first, last, org, handle sql.NullString
			if err := rows.Scan(&first, &last, &org, &handle); err != nil {
				continue
			}
			name := strings.TrimSpace(strings.Join(nonEmpty(first.String, last.String), " "))
			if name == "" {
				name = org.String
			}
			if name != "" && handle.String != "" {
				entries[handle.String] = name
			}
		}
		rows.Close()
	}
}

func nonEmpty(parts ...string) []string {
	var out []string
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
