// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package msgstore provides read-only access to the source message database.
package msgstore

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"howett.net/plist"
)

// =============================================================================
// BODY DECODING
// =============================================================================

// Newer messages leave the text column NULL and carry the body inside an
// NSKeyedArchiver blob in attributedBody. The blob's object table holds the
// body string alongside NS* class names and attribute keys.

// nsExclude lists archiver strings that are never the message body.
var nsExclude = map[string]struct{}{
	"NSAttributedString": {},
	"NSString":           {},
	"NSDictionary":       {},
	"NSColor":            {},
	"NSFont":             {},
	"NSParagraphStyle":   {},
	"NSMutableString":    {},
	"NSShadow":           {},
	"NSBackgroundColor":  {},
	"NSKern":             {},
	"NSStrikethrough":    {},
	"NSUnderline":        {},
	"NSExpansion":        {},
	"NSObliqueness":      {},
}

// printableRun matches a run of at least four printable ASCII characters,
// the raw-bytes fallback when the blob is not a parseable property list.
var printableRun = regexp.MustCompile(`[\x20-\x7E\s]{4,}`)

// DecodeBody returns the message body, preferring the plain text column and
// falling back to the attributedBody blob. A blob that cannot be decoded at
// all yields a hex-snippet marker so the record stays auditable.
func DecodeBody(text string, attributed []byte) string {
	if text != "" {
		return text
	}
	if len(attributed) == 0 {
		return ""
	}

	if bytes.HasPrefix(attributed, []byte("bplist")) {
		if body, ok := decodeKeyedArchive(attributed); ok {
			return body
		}
	}

	if m := printableRun.FindString(string(attributed)); m != "" {
		return strings.TrimSpace(m)
	}

	snippet := attributed
	if len(snippet) > 20 {
		snippet = snippet[:20]
	}
	return fmt.Sprintf("[Decode Failed: %x...]", snippet)
}

// decodeKeyedArchive extracts the body string from an NSKeyedArchiver blob.
// The body is the first object-table string that is not a class name or an
// attribute key.
func decodeKeyedArchive(data []byte) (string, bool) {
	var archive struct {
		Objects []any `plist:"$objects"`
	}
	if _, err := plist.Unmarshal(data, &archive); err != nil {
		return "", false
	}

	for _, obj := range archive.Objects {
		s, isString := obj.(string)
		if !isString || s == "" {
			continue
		}
		if _, excluded := nsExclude[s]; excluded {
			continue
		}
		if strings.HasPrefix(s, "NS") || strings.HasPrefix(s, "-") || strings.HasPrefix(s, "$") {
			continue
		}
		return s, true
	}
	return "", false
}
