// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package archive

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// =============================================================================
// FINGERPRINT TESTS
// =============================================================================

func TestFingerprint_Stable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photo.heic")
	if err := os.WriteFile(path, []byte("pixels"), 0644); err != nil {
		t.Fatal(err)
	}

	fp1, ok := Fingerprint(path)
	if !ok {
		t.Fatal("Fingerprint failed on existing file")
	}
	fp2, _ := Fingerprint(path)
	if fp1 != fp2 {
		t.Errorf("Fingerprint not stable: %q != %q", fp1, fp2)
	}
	if len(fp1) != 32 {
		t.Errorf("Fingerprint length = %d, want 32 hex chars", len(fp1))
	}
}

func TestFingerprint_ChangesWithContentSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photo.heic")
	os.WriteFile(path, []byte("pixels"), 0644)
	fp1, _ := Fingerprint(path)

	os.WriteFile(path, []byte("more pixels now"), 0644)
	fp2, _ := Fingerprint(path)

	if fp1 == fp2 {
		t.Error("Fingerprint unchanged after size change")
	}
}

func TestFingerprint_ChangesWithMtime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photo.heic")
	os.WriteFile(path, []byte("pixels"), 0644)
	fp1, _ := Fingerprint(path)

	past := time.Now().Add(-time.Hour)
	os.Chtimes(path, past, past)
	fp2, _ := Fingerprint(path)

	if fp1 == fp2 {
		t.Error("Fingerprint unchanged after mtime change")
	}
}

func TestFingerprint_MissingFile(t *testing.T) {
	if _, ok := Fingerprint(filepath.Join(t.TempDir(), "nope")); ok {
		t.Error("Fingerprint should fail for a missing file")
	}
}

// =============================================================================
// TRUST GATE TESTS
// =============================================================================

func writeHelper(t *testing.T, content string) (path, hash string) {
	t.Helper()
	path = filepath.Join(t.TempDir(), "helper")
	if err := os.WriteFile(path, []byte(content), 0755); err != nil {
		t.Fatal(err)
	}
	sum := sha256.Sum256([]byte(content))
	return path, hex.EncodeToString(sum[:])
}

func TestVerifyBinary_Match(t *testing.T) {
	path, hash := writeHelper(t, "#!/bin/sh\nexit 0\n")
	if !VerifyBinary(path, hash) {
		t.Error("VerifyBinary rejected a matching binary")
	}
	// Hash comparison is case-insensitive on the expected side.
	if !VerifyBinary(path, strings.ToUpper(hash)) {
		t.Error("VerifyBinary rejected an uppercase pin")
	}
}

func TestVerifyBinary_Mismatch(t *testing.T) {
	path, _ := writeHelper(t, "#!/bin/sh\nexit 0\n")
	if VerifyBinary(path, strings.Repeat("0", 64)) {
		t.Error("VerifyBinary accepted a wrong pin")
	}
}

func TestVerifyBinary_MissingOrEmpty(t *testing.T) {
	_, hash := writeHelper(t, "x")
	if VerifyBinary(filepath.Join(t.TempDir(), "absent"), hash) {
		t.Error("VerifyBinary accepted a missing binary")
	}

	empty := filepath.Join(t.TempDir(), "empty")
	os.WriteFile(empty, nil, 0755)
	if VerifyBinary(empty, hash) {
		t.Error("VerifyBinary accepted an empty binary")
	}

	path, _ := writeHelper(t, "x")
	if VerifyBinary(path, "") {
		t.Error("VerifyBinary accepted an empty pin")
	}
}

// =============================================================================
// REACTION TESTS
// =============================================================================

func TestReactionLabel(t *testing.T) {
	tests := []struct {
		code int64
		want string
	}{
		{2000, "Loved"},
		{2001, "Liked"},
		{2002, "Disliked"},
		{2003, "Laughed"},
		{2004, "Emphasized"},
		{2005, "Questioned"},
		{3000, "Removed Love"},
		{3005, "Removed Question"},
		{0, ""},
		{9999, ""},
		{-1, ""},
	}
	for _, tt := range tests {
		if got := ReactionLabel(tt.code); got != tt.want {
			t.Errorf("ReactionLabel(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

// =============================================================================
// SANITIZE TESTS
// =============================================================================

func TestSanitizeFolderName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Family Chat", "Family Chat"},
		{"alice@example.com", "aliceexample.com"},
		{"a/b\\c:d", "abcd"},
		{"  spaced  ", "spaced"},
		{"", "Unknown_Chat"},
		{"///", "Unknown_Chat"},
	}
	for _, tt := range tests {
		if got := SanitizeFolderName(tt.in); got != tt.want {
			t.Errorf("SanitizeFolderName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeFolderName_Truncates(t *testing.T) {
	got := SanitizeFolderName(strings.Repeat("a", 300))
	if len([]rune(got)) != 100 {
		t.Errorf("long name truncated to %d runes, want 100", len([]rune(got)))
	}
}

func TestFileStamp(t *testing.T) {
	if got := fileStamp("2024-01-02 09:05:00"); got != "20240102_090500" {
		t.Errorf("fileStamp = %q, want 20240102_090500", got)
	}
}
