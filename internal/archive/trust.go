// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package archive

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"strings"
)

// VerifyBinary reports whether the file at path hashes (SHA-256) to the
// pinned expectedHash. Helper binaries are only ever executed after passing
// this gate. Returns false for a missing, unreadable, or empty file, or an
// empty pin.
func VerifyBinary(path, expectedHash string) bool {
	if path == "" || expectedHash == "" {
		return false
	}

	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil || n == 0 {
		return false
	}
	return hex.EncodeToString(h.Sum(nil)) == strings.ToLower(expectedHash)
}
