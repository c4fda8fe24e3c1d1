// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package contacts resolves raw message handles to display names.
package contacts

import (
	"database/sql"
	"path/filepath"
	"testing"
)

// =============================================================================
// NORMALIZATION TESTS
// =============================================================================

func TestNormalizeHandle(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"Friend@Example.COM ", "friend@example.com"},
		{"+1 (555) 123-4567", "5551234567"},
		{"15551234567", "5551234567"},
		{"555-1234", "5551234"},
	}

	for _, tt := range tests {
		if got := NormalizeHandle(tt.input); got != tt.want {
			t.Errorf("NormalizeHandle(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

// =============================================================================
// RESOLVER TESTS
// =============================================================================

func TestMapResolver_Resolve(t *testing.T) {
	r := NewMapResolver(map[string]string{
		"+15551234567":       "Alex",
		"Friend@Example.com": "Sam",
	})

	if got := r.Resolve("555-123-4567"); got != "Alex" {
		t.Errorf("Resolve phone = %q, want Alex", got)
	}
	if got := r.Resolve("friend@example.com"); got != "Sam" {
		t.Errorf("Resolve email = %q, want Sam", got)
	}
}

func TestMapResolver_Fallbacks(t *testing.T) {
	r := NewMapResolver(nil)

	if got := r.Resolve(""); got != "Unknown" {
		t.Errorf("Resolve(\"\") = %q, want Unknown", got)
	}
	if got := r.Resolve("+15559999999"); got != "+15559999999" {
		t.Errorf("Resolve unmatched = %q, want raw handle", got)
	}
}

// =============================================================================
// ADDRESS BOOK TESTS
// =============================================================================

const abcdSchema = `
CREATE TABLE ZABCDRECORD (
	Z_PK INTEGER PRIMARY KEY,
	ZFIRSTNAME TEXT,
	ZLASTNAME TEXT,
	ZORGANIZATION TEXT
);
CREATE TABLE ZABCDPHONENUMBER (
	Z_PK INTEGER PRIMARY KEY,
	ZOWNER INTEGER,
	ZFULLNUMBER TEXT
);
CREATE TABLE ZABCDEMAILADDRESS (
	Z_PK INTEGER PRIMARY KEY,
	ZOWNER INTEGER,
	ZADDRESS TEXT
);
`

func newAddressBook(t *testing.T, dir string) {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(dir, "contacts.abcddb"))
	if err != nil {
		t.Fatalf("open address book: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(abcdSchema); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	stmts := []string{
		`INSERT INTO ZABCDRECORD VALUES (1, 'Alex', 'Rivera', NULL)`,
		`INSERT INTO ZABCDRECORD VALUES (2, NULL, NULL, 'Acme Corp')`,
		`INSERT INTO ZABCDPHONENUMBER VALUES (1, 1, '+1 555 123 4567')`,
		`INSERT INTO ZABCDEMAILADDRESS VALUES (1, 2, 'billing@acme.test')`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
}

func TestLoad_AddressBookAndAliases(t *testing.T) {
	dir := t.TempDir()
	newAddressBook(t, dir)

	r, err := Load(dir, map[string]string{"+15550000000": "Manual Alias"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got := r.Resolve("5551234567"); got != "Alex Rivera" {
		t.Errorf("Resolve phone = %q, want Alex Rivera", got)
	}
	if got := r.Resolve("billing@acme.test"); got != "Acme Corp" {
		t.Errorf("Resolve org email = %q, want Acme Corp", got)
	}
	if got := r.Resolve("+1 (555) 000-0000"); got != "Manual Alias" {
		t.Errorf("Resolve alias = %q, want Manual Alias", got)
	}
}

func TestLoad_EmptyDir(t *testing.T) {
	r, err := Load("", map[string]string{"x@y.test": "X"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := r.Resolve("x@y.test"); got != "X" {
		t.Errorf("Resolve = %q, want X", got)
	}
}
