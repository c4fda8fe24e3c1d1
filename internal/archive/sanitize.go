// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package archive

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/chatvault/internal/util"
)

// maxFolderNameRunes caps sanitized conversation folder names.
const maxFolderNameRunes = 100

// SanitizeFolderName turns a conversation display name into a safe directory
// component: NFC-normalized, stripped to letters, digits, and " ._-", and
// length-capped. An empty result falls back to "Unknown_Chat".
func SanitizeFolderName(name string) string {
	name = norm.NFC.String(name)

	var sb strings.Builder
	for _, r := range name {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(r)
		case r == ' ' || r == '.' || r == '_' || r == '-':
			sb.WriteRune(r)
		}
	}

	out := strings.TrimSpace(util.TruncateRunesNoEllipsis(sb.String(), maxFolderNameRunes))
	if out == "" {
		return "Unknown_Chat"
	}
	return out
}

// sanitizeBaseName strips an attachment filename down to characters that are
// safe in any destination filesystem.
func sanitizeBaseName(name string) string {
	var sb strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '_' || r == '-' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// fileStamp converts an ISO timestamp into a filename prefix that sorts
// chronologically: colons and dashes removed, the space replaced with an
// underscore ("2024-01-02 09:05:00" -> "20240102_090500").
func fileStamp(tsISO string) string {
	s := strings.ReplaceAll(tsISO, ":", "")
	s = strings.ReplaceAll(s, "-", "")
	return strings.ReplaceAll(s, " ", "_")
}
